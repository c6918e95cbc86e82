// # Available Commands
//
//   - validate: Validate files, a directory tree or manifests
//   - doctor: Check compiler availability and workspace permissions
//   - version: Show build information
//
// # Command Examples
//
//	// Validate two files as one set
//	tsvalidate validate models/user.ts index.ts
//
//	// Validate a batch of manifests with a 5 second deadline each
//	tsvalidate validate -m a.yml -m b.yml --timeout 5s
//
//	// Emit an HTML report
//	tsvalidate validate --root ./snippet --format html > report.html
//
// # Exit Status
//
// validate exits with status 1 when any file set is invalid or rejected,
// and with status 1 on usage or configuration errors.
package cmd
