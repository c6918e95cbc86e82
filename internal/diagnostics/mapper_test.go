package diagnostics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/tsvalidate/internal/compiler"
	"github.com/conneroisu/tsvalidate/internal/fileset"
	"github.com/conneroisu/tsvalidate/internal/types"
)

// setResolver resolves "src/<path>" the way a materialized workspace does.
type setResolver struct {
	set *fileset.Set
}

func (r setResolver) Relative(reported string) (string, bool) {
	p, ok := strings.CutPrefix(reported, "src/")
	if !ok {
		return "", false
	}
	if _, found := r.set.Lookup(p); !found {
		return "", false
	}
	return p, true
}

func (r setResolver) Set() *fileset.Set {
	return r.set
}

func newResolver(t *testing.T, files ...types.VirtualFile) setResolver {
	t.Helper()
	set, err := fileset.Normalize(files)
	require.NoError(t, err)
	return setResolver{set: set}
}

func TestMap_UsesCallerPaths(t *testing.T) {
	r := newResolver(t,
		types.VirtualFile{Path: "./models\\user.ts", Content: "export {};"},
		types.VirtualFile{Path: "", Content: "export {};"},
	)

	diags := Map(r, []compiler.RawDiagnostic{
		{File: "src/models/user.ts", Line: 2, Column: 5, Message: "bad", Code: "TS2322", Severity: types.SeverityError},
		{File: "src/untitled-1.ts", Line: 1, Column: 1, Message: "also bad", Severity: types.SeverityError},
	})

	require.Len(t, diags, 2)
	assert.Equal(t, "./models\\user.ts", diags[0].FilePath)
	assert.Equal(t, 2, diags[0].Line)
	assert.Equal(t, 5, diags[0].Column)
	assert.Equal(t, "TS2322", diags[0].Code)
	assert.Equal(t, "untitled-1.ts", diags[1].FilePath)
}

func TestMap_Ordering(t *testing.T) {
	r := newResolver(t,
		types.VirtualFile{Path: "b.ts", Content: "export {};"},
		types.VirtualFile{Path: "a.ts", Content: "export {};"},
	)

	diags := Map(r, []compiler.RawDiagnostic{
		{Message: "global", Code: "TS5023", Severity: types.SeverityError},
		{File: "src/a.ts", Line: 3, Column: 1, Message: "a3"},
		{File: "src/b.ts", Line: 7, Column: 2, Message: "b7c2"},
		{File: "src/a.ts", Line: 1, Column: 9, Message: "a1"},
		{File: "src/b.ts", Line: 7, Column: 1, Message: "b7c1"},
	})

	var got []string
	for _, d := range diags {
		got = append(got, d.Message)
	}
	assert.Equal(t, []string{"b7c1", "b7c2", "a1", "a3", "global"}, got)
	assert.Equal(t, types.SeverityError, diags[2].Severity, "missing severity defaults to error")
}

func TestMap_SamePositionOrderedByMessage(t *testing.T) {
	r := newResolver(t, types.VirtualFile{Path: "a.ts", Content: "export {};"})

	diags := Map(r, []compiler.RawDiagnostic{
		{File: "src/a.ts", Line: 2, Column: 5, Message: "Cannot find name 'y'.", Code: "TS2304"},
		{File: "src/a.ts", Line: 2, Column: 5, Message: "Cannot find name 'x'.", Code: "TS2304"},
	})

	require.Len(t, diags, 2)
	assert.Equal(t, "Cannot find name 'x'.", diags[0].Message)
	assert.Equal(t, "Cannot find name 'y'.", diags[1].Message)
}

func TestMap_DropsForeignFilesAndDuplicates(t *testing.T) {
	r := newResolver(t, types.VirtualFile{Path: "a.ts", Content: "export {};"})

	dup := compiler.RawDiagnostic{File: "src/a.ts", Line: 1, Column: 1, Message: "dup", Severity: types.SeverityError}
	diags := Map(r, []compiler.RawDiagnostic{
		dup,
		{File: "node_modules/@types/node/index.d.ts", Line: 1, Column: 1, Message: "foreign"},
		dup,
	})

	require.Len(t, diags, 1)
	assert.Equal(t, "dup", diags[0].Message)
}

func TestColumn(t *testing.T) {
	tests := []struct {
		name     string
		raw      compiler.RawDiagnostic
		expected int
	}{
		{"character column kept", compiler.RawDiagnostic{Column: 7}, 7},
		{"zero clamped", compiler.RawDiagnostic{Column: 0}, 1},
		{"ascii byte offset", compiler.RawDiagnostic{ByteColumn: true, Column: 4, LineText: "let x = 1"}, 5},
		{"multibyte prefix", compiler.RawDiagnostic{ByteColumn: true, Column: 8, LineText: "\"héllo\" + x"}, 8},
		{"astral prefix", compiler.RawDiagnostic{ByteColumn: true, Column: 4, LineText: "😀 x"}, 3},
		{"offset past end", compiler.RawDiagnostic{ByteColumn: true, Column: 99, LineText: "abc"}, 4},
		{"negative offset", compiler.RawDiagnostic{ByteColumn: true, Column: -3, LineText: "abc"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, column(tt.raw))
		})
	}
}

func TestSummarize(t *testing.T) {
	diags := []types.Diagnostic{
		{FilePath: "a.ts", Severity: types.SeverityError},
		{FilePath: "a.ts", Severity: types.SeverityWarning},
		{FilePath: "b.ts", Severity: types.SeverityError},
		{Severity: types.SeverityError},
	}

	s := Summarize(diags)
	assert.Equal(t, Summary{Errors: 3, Warnings: 1, Files: 2}, s)
	assert.True(t, HasErrors(diags))
	assert.False(t, HasErrors(diags[1:2]))
	assert.False(t, HasErrors(nil))
}

func TestByFile(t *testing.T) {
	diags := []types.Diagnostic{
		{FilePath: "b.ts", Message: "1"},
		{FilePath: "a.ts", Message: "2"},
		{FilePath: "b.ts", Message: "3"},
		{Message: "4"},
	}

	paths, groups := ByFile(diags)
	assert.Equal(t, []string{"b.ts", "a.ts", ""}, paths)
	assert.Len(t, groups["b.ts"], 2)
	assert.Equal(t, "4", groups[""][0].Message)
}
