// Package compiler provides the compilation driver: an in-process syntax
// pass over every file of a workspace followed by a whole-set semantic pass
// run by the TypeScript compiler against the workspace's generated config.
package compiler

import (
	"context"

	"github.com/conneroisu/tsvalidate/internal/fileset"
	"github.com/conneroisu/tsvalidate/internal/logging"
	"github.com/conneroisu/tsvalidate/internal/types"
	"github.com/conneroisu/tsvalidate/internal/workspace"
)

// RawDiagnostic is a diagnostic as reported by one of the passes, before
// paths and columns are translated for the caller.
type RawDiagnostic struct {
	// File is the reported path, relative to the workspace root or absolute.
	// Empty for diagnostics that concern the whole set.
	File     string
	Line     int
	Column   int
	Message  string
	Code     string
	Severity types.Severity
	Source   types.DiagnosticSource

	// ByteColumn marks Column as a 0-based byte offset into LineText rather
	// than a 1-based character column.
	ByteColumn bool
	LineText   string
}

// TypeChecker performs whole-set semantic analysis of a workspace.
type TypeChecker interface {
	Check(ctx context.Context, ws *workspace.Workspace) ([]RawDiagnostic, error)
}

// Driver runs the compilation passes over a workspace.
type Driver struct {
	checker    TypeChecker
	syntax     *SyntaxChecker
	skipSyntax bool
	logger     logging.Logger
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithoutSyntaxPass disables the in-process syntax pass.
func WithoutSyntaxPass() DriverOption {
	return func(d *Driver) {
		d.skipSyntax = true
	}
}

// WithLogger sets the driver logger.
func WithLogger(logger logging.Logger) DriverOption {
	return func(d *Driver) {
		d.logger = logger.WithComponent("compiler")
	}
}

// NewDriver creates a driver around a type checker.
func NewDriver(checker TypeChecker, opts ...DriverOption) *Driver {
	d := &Driver{
		checker: checker,
		syntax:  NewSyntaxChecker(),
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Compile collects every diagnostic of the workspace's file set. Files with
// syntax errors short-circuit the semantic pass since the compiler would
// only report them again. Diagnostics for files outside the set are dropped.
func (d *Driver) Compile(ctx context.Context, ws *workspace.Workspace) ([]RawDiagnostic, error) {
	set := ws.Set()
	if len(set.CheckedPaths()) == 0 {
		return nil, nil
	}

	if !d.skipSyntax {
		diags := d.syntax.Check(set)
		if hasErrors(diags) {
			d.logger.Debug(ctx, "Syntax pass failed, skipping type check", "diagnostics", len(diags))
			return diags, nil
		}

		semantic, err := d.semantic(ctx, ws)
		if err != nil {
			return nil, err
		}
		return append(diags, semantic...), nil
	}

	return d.semantic(ctx, ws)
}

func (d *Driver) semantic(ctx context.Context, ws *workspace.Workspace) ([]RawDiagnostic, error) {
	raws, err := d.checker.Check(ctx, ws)
	if err != nil {
		return nil, err
	}

	kept := raws[:0]
	for _, r := range raws {
		if r.File != "" {
			if _, ok := ws.Relative(r.File); !ok {
				d.logger.Debug(ctx, "Dropping diagnostic outside the file set", "file", r.File, "code", r.Code)
				continue
			}
		}
		kept = append(kept, r)
	}
	return kept, nil
}

func hasErrors(diags []RawDiagnostic) bool {
	for _, d := range diags {
		if d.Severity == types.SeverityError {
			return true
		}
	}
	return false
}

// reportedPath is how a set path appears to the passes: relative to the
// workspace root.
func reportedPath(f fileset.File) string {
	return workspace.SourceDirName + "/" + f.Path
}
