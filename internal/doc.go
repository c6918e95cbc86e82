// Package internal contains the implementation packages for tsvalidate.
//
// # Package Organization
//
//   - types: Virtual files, diagnostics and validation results
//   - fileset: Normalization of caller-supplied file sets
//   - workspace: Scratch directories and the generated tsconfig.json
//   - compiler: Syntax pass and TypeScript compiler invocation
//   - diagnostics: Mapping compiler output back to caller paths
//   - validator: The public entry points, deadline and cleanup handling
//   - config, logging, errors, validation: Shared infrastructure
//   - manifest, report, version: Support for the command-line interface
//
// A validation call flows fileset → workspace → compiler → diagnostics,
// with the validator owning the deadline and the workspace lifetime.
package internal
