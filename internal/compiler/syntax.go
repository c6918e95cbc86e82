package compiler

import (
	"path"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/sourcegraph/conc/iter"

	"github.com/conneroisu/tsvalidate/internal/fileset"
	"github.com/conneroisu/tsvalidate/internal/types"
)

// SyntaxChecker parses files in-process and reports parse failures. It
// never resolves imports or types.
type SyntaxChecker struct{}

// NewSyntaxChecker creates a syntax checker.
func NewSyntaxChecker() *SyntaxChecker {
	return &SyntaxChecker{}
}

// Check parses every checked file of the set concurrently. The result is
// in declaration order.
func (s *SyntaxChecker) Check(set *fileset.Set) []RawDiagnostic {
	var files []fileset.File
	for _, f := range set.Files() {
		if fileset.IsChecked(f.Path) {
			files = append(files, f)
		}
	}

	perFile := iter.Map(files, func(f *fileset.File) []RawDiagnostic {
		return parseFile(*f)
	})

	var out []RawDiagnostic
	for _, diags := range perFile {
		out = append(out, diags...)
	}
	return out
}

func parseFile(f fileset.File) []RawDiagnostic {
	result := api.Transform(f.Content, api.TransformOptions{
		Loader:     loaderFor(f.Path),
		Sourcefile: reportedPath(f),
		LogLevel:   api.LogLevelSilent,
	})

	// Warnings are esbuild lint checks, not parse failures; the compiler
	// does not report them.
	diags := make([]RawDiagnostic, 0, len(result.Errors))
	for _, msg := range result.Errors {
		diags = append(diags, fromMessage(f, msg, types.SeverityError))
	}
	return diags
}

func fromMessage(f fileset.File, msg api.Message, severity types.Severity) RawDiagnostic {
	raw := RawDiagnostic{
		File:       reportedPath(f),
		Message:    msg.Text,
		Code:       msg.ID,
		Severity:   severity,
		Source:     types.SourceSyntax,
		ByteColumn: true,
	}
	if msg.Location != nil {
		raw.Line = msg.Location.Line
		raw.Column = msg.Location.Column
		raw.LineText = msg.Location.LineText
	}
	return raw
}

func loaderFor(p string) api.Loader {
	switch strings.ToLower(path.Ext(p)) {
	case ".tsx":
		return api.LoaderTSX
	case ".jsx":
		return api.LoaderJSX
	case ".js", ".mjs", ".cjs":
		return api.LoaderJS
	default:
		return api.LoaderTS
	}
}
