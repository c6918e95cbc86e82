// Package diagnostics translates raw compiler output into caller-facing
// diagnostics: workspace paths become the caller's original paths, columns
// become 1-based character columns, and the list is put into a stable order.
package diagnostics

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/conneroisu/tsvalidate/internal/compiler"
	"github.com/conneroisu/tsvalidate/internal/fileset"
	"github.com/conneroisu/tsvalidate/internal/types"
)

// Resolver maps compiler-reported paths back into the file set.
type Resolver interface {
	Relative(reported string) (string, bool)
	Set() *fileset.Set
}

type keyed struct {
	diag  types.Diagnostic
	index int
}

// Map converts raw diagnostics. Diagnostics naming a file outside the set
// are dropped; set-wide diagnostics are kept and sorted after all file
// diagnostics. File diagnostics are ordered by declaration order of their
// file, then line, column and message. Exact duplicates are reported once.
func Map(r Resolver, raws []compiler.RawDiagnostic) []types.Diagnostic {
	set := r.Set()
	items := make([]keyed, 0, len(raws))
	seen := make(map[types.Diagnostic]bool, len(raws))

	for _, raw := range raws {
		d := types.Diagnostic{
			Message:  normalizeMessage(raw.Message),
			Severity: raw.Severity,
			Code:     raw.Code,
			Source:   raw.Source,
		}
		if d.Severity == "" {
			d.Severity = types.SeverityError
		}

		index := set.Len()
		if raw.File != "" {
			rel, ok := r.Relative(raw.File)
			if !ok {
				continue
			}
			f, _ := set.Lookup(rel)
			d.FilePath = f.Original
			d.Line = max(raw.Line, 1)
			d.Column = column(raw)
			index = f.Index
		}

		if seen[d] {
			continue
		}
		seen[d] = true
		items = append(items, keyed{diag: d, index: index})
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		return cmp.Or(
			cmp.Compare(a.index, b.index),
			cmp.Compare(a.diag.Line, b.diag.Line),
			cmp.Compare(a.diag.Column, b.diag.Column),
			cmp.Compare(a.diag.Message, b.diag.Message),
		)
	})

	out := make([]types.Diagnostic, len(items))
	for i, it := range items {
		out[i] = it.diag
	}
	return out
}

// column returns the 1-based column in UTF-16 code units, the unit editors
// and the TypeScript compiler use.
func column(raw compiler.RawDiagnostic) int {
	if !raw.ByteColumn {
		return max(raw.Column, 1)
	}

	offset := min(max(raw.Column, 0), len(raw.LineText))
	prefix := raw.LineText[:offset]

	units := 0
	for len(prefix) > 0 {
		r, size := utf8.DecodeRuneInString(prefix)
		prefix = prefix[size:]
		if n := utf16.RuneLen(r); n > 0 {
			units += n
		} else {
			units++
		}
	}
	return units + 1
}

func normalizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	return strings.TrimSpace(msg)
}

// HasErrors reports whether any diagnostic is an error.
func HasErrors(diags []types.Diagnostic) bool {
	return slices.ContainsFunc(diags, types.Diagnostic.IsError)
}

// Summary counts diagnostics by severity.
type Summary struct {
	Errors   int `json:"errors" yaml:"errors"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Files    int `json:"files" yaml:"files"`
}

// Summarize counts the diagnostics and the distinct files they name.
func Summarize(diags []types.Diagnostic) Summary {
	var s Summary
	files := make(map[string]bool)
	for _, d := range diags {
		if d.IsError() {
			s.Errors++
		} else {
			s.Warnings++
		}
		if d.FilePath != "" {
			files[d.FilePath] = true
		}
	}
	s.Files = len(files)
	return s
}

// ByFile groups diagnostics by file path preserving order. Set-wide
// diagnostics are grouped under the empty path.
func ByFile(diags []types.Diagnostic) (paths []string, groups map[string][]types.Diagnostic) {
	groups = make(map[string][]types.Diagnostic)
	for _, d := range diags {
		if _, ok := groups[d.FilePath]; !ok {
			paths = append(paths, d.FilePath)
		}
		groups[d.FilePath] = append(groups[d.FilePath], d)
	}
	return paths, groups
}
