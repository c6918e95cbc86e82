package fileset

import (
	"testing"

	"github.com/conneroisu/tsvalidate/internal/errors"
	"github.com/conneroisu/tsvalidate/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Paths(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "a.ts", "a.ts"},
		{"leading dot slash", "./src/a.ts", "src/a.ts"},
		{"backslashes", `src\models\user.ts`, "src/models/user.ts"},
		{"redundant segments", "src/./lib//x.ts", "src/lib/x.ts"},
		{"inner parent segment", "src/../lib/x.ts", "lib/x.ts"},
		{"surrounding whitespace", "  a.ts ", "a.ts"},
		{"decomposed unicode", "cafe\u0301.ts", "caf\u00e9.ts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Normalize([]types.VirtualFile{{Path: tt.input, Content: "export {};"}})
			require.NoError(t, err)

			files := set.Files()
			require.Len(t, files, 1)
			assert.Equal(t, tt.expected, files[0].Path)
			assert.Equal(t, tt.input, files[0].Original)
		})
	}
}

func TestNormalize_Fallbacks(t *testing.T) {
	set, err := Normalize([]types.VirtualFile{
		{Path: "", Content: "export const a = 1;"},
		{Path: "untitled-2.ts", Content: "export const b = 2;"},
		{Path: "   ", Content: ""},
	})
	require.NoError(t, err)

	files := set.Files()
	require.Len(t, files, 3)

	assert.Equal(t, "untitled-1.ts", files[0].Path)
	assert.Equal(t, "untitled-1.ts", files[0].Original)
	assert.Equal(t, "untitled-2.ts", files[1].Path)
	assert.Equal(t, "untitled-3.ts", files[2].Path, "fallback names skip explicit paths")
	assert.Equal(t, PlaceholderContent, files[2].Content)
	assert.Equal(t, "export const a = 1;", files[0].Content)
}

func TestNormalize_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		files []types.VirtualFile
		code  string
	}{
		{
			name:  "absolute path",
			files: []types.VirtualFile{{Path: "/etc/passwd.ts"}},
			code:  errors.ErrCodeInvalidPath,
		},
		{
			name:  "escaping path",
			files: []types.VirtualFile{{Path: "../outside.ts"}},
			code:  errors.ErrCodeInvalidPath,
		},
		{
			name:  "windows drive",
			files: []types.VirtualFile{{Path: `C:\project\a.ts`}},
			code:  errors.ErrCodeInvalidPath,
		},
		{
			name: "duplicate after normalization",
			files: []types.VirtualFile{
				{Path: "src/a.ts"},
				{Path: "./src/a.ts"},
			},
			code: errors.ErrCodeDuplicatePath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Normalize(tt.files)
			require.Error(t, err)
			assert.Nil(t, set)
			assert.True(t, errors.IsInvalidInput(err))
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	for _, input := range [][]types.VirtualFile{nil, {}} {
		set, err := Normalize(input)
		require.NoError(t, err)
		assert.Equal(t, 0, set.Len())
		assert.Empty(t, set.CheckedPaths())
	}
}

func TestSet_LookupAndIndex(t *testing.T) {
	set, err := Normalize([]types.VirtualFile{
		{Path: "b.ts", Content: "export const b = 1;"},
		{Path: "data/config.json", Content: `{"a": 1}`},
		{Path: "a.tsx", Content: "export const a = 1;"},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, set.Index("b.ts"))
	assert.Equal(t, 1, set.Index("data/config.json"))
	assert.Equal(t, 2, set.Index("a.tsx"))
	assert.Equal(t, -1, set.Index("missing.ts"))

	f, ok := set.Lookup("a.tsx")
	require.True(t, ok)
	assert.Equal(t, 2, f.Index)

	_, ok = set.Lookup("missing.ts")
	assert.False(t, ok)

	assert.Equal(t, []string{"b.ts", "a.tsx"}, set.CheckedPaths())
}

func TestSet_FilesIsACopy(t *testing.T) {
	set, err := Normalize([]types.VirtualFile{{Path: "a.ts", Content: "export {};"}})
	require.NoError(t, err)

	files := set.Files()
	files[0].Path = "mutated.ts"

	assert.Equal(t, "a.ts", set.Files()[0].Path)
}

func TestIsChecked(t *testing.T) {
	checked := []string{"a.ts", "a.d.ts", "a.tsx", "a.mts", "a.cts", "a.js", "a.jsx", "a.mjs", "a.cjs", "A.TS"}
	for _, p := range checked {
		assert.True(t, IsChecked(p), p)
	}

	unchecked := []string{"a.json", "a.css", "README", "a.ts.bak"}
	for _, p := range unchecked {
		assert.False(t, IsChecked(p), p)
	}
}
