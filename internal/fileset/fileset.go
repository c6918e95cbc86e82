// Package fileset normalizes caller-supplied virtual files into a canonical,
// ordered set with unique relative paths.
//
// Normalization is pure: paths are converted to forward slashes, Unicode NFC,
// cleaned and stripped of leading "./"; blank paths receive generated
// fallback names and blank contents a placeholder module body. Paths that
// are absolute, escape the set root or collide with another entry are
// rejected as invalid input.
package fileset

import (
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/conneroisu/tsvalidate/internal/errors"
	"github.com/conneroisu/tsvalidate/internal/types"
	"github.com/conneroisu/tsvalidate/internal/validation"
)

// PlaceholderContent replaces blank file contents. It makes the file an
// empty ES module rather than a global script.
const PlaceholderContent = "export {};\n"

// fallbackPattern names files submitted with a blank path.
const fallbackPattern = "untitled-%d.ts"

// checkedExtensions are the files handed to the type checker. Everything
// else is still materialized so it can be imported (e.g. JSON modules).
var checkedExtensions = []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs"}

// File is a normalized virtual file.
type File struct {
	// Path is the canonical slash-separated relative path
	Path string
	// Original is the path exactly as the caller supplied it, or the
	// fallback name when it was blank
	Original string
	// Content is the text to materialize
	Content string
	// Index is the declaration position within the request
	Index int
}

// Set is an ordered, duplicate-free collection of normalized files.
type Set struct {
	files  []File
	byPath map[string]int
}

// Normalize canonicalizes the caller's files. It fails only with an
// invalid-input error; it has no side effects.
func Normalize(files []types.VirtualFile) (*Set, error) {
	set := &Set{
		files:  make([]File, 0, len(files)),
		byPath: make(map[string]int, len(files)),
	}

	// Reserve every explicit path first so fallback names never shadow one.
	canonical := make([]string, len(files))
	for i, f := range files {
		if strings.TrimSpace(f.Path) == "" {
			continue
		}

		p, err := canonicalPath(f.Path)
		if err != nil {
			return nil, errors.ErrInvalidPath(f.Path, err.Error()).WithContext("index", i)
		}
		if _, taken := set.byPath[p]; taken {
			return nil, errors.ErrDuplicatePath(p).WithContext("index", i)
		}
		set.byPath[p] = -1
		canonical[i] = p
	}

	next := 1
	for i, f := range files {
		p := canonical[i]
		original := f.Path
		if p == "" {
			p, next = set.fallbackName(next)
			set.byPath[p] = -1
			original = p
		}

		content := f.Content
		if strings.TrimSpace(content) == "" {
			content = PlaceholderContent
		}

		set.byPath[p] = len(set.files)
		set.files = append(set.files, File{
			Path:     p,
			Original: original,
			Content:  content,
			Index:    i,
		})
	}

	return set, nil
}

func canonicalPath(raw string) (string, error) {
	p := strings.TrimSpace(raw)
	p = strings.ReplaceAll(p, "\\", "/")
	p = norm.NFC.String(p)

	if err := validation.ValidateRelativePath(p); err != nil {
		return "", err
	}

	p = path.Clean(p)
	p = strings.TrimPrefix(p, "./")
	return p, nil
}

func (s *Set) fallbackName(next int) (string, int) {
	for {
		name := fmt.Sprintf(fallbackPattern, next)
		next++
		if _, taken := s.byPath[name]; !taken {
			return name, next
		}
	}
}

// Files returns the normalized files in declaration order.
func (s *Set) Files() []File {
	out := make([]File, len(s.files))
	copy(out, s.files)
	return out
}

// Len returns the number of files in the set.
func (s *Set) Len() int {
	return len(s.files)
}

// Lookup returns the file stored under the canonical path p.
func (s *Set) Lookup(p string) (File, bool) {
	i, ok := s.byPath[p]
	if !ok || i < 0 {
		return File{}, false
	}
	return s.files[i], true
}

// Index returns the declaration position of the canonical path p, or -1.
func (s *Set) Index(p string) int {
	i, ok := s.byPath[p]
	if !ok {
		return -1
	}
	return i
}

// CheckedPaths returns the canonical paths the type checker must load, in
// declaration order.
func (s *Set) CheckedPaths() []string {
	var out []string
	for _, f := range s.files {
		if IsChecked(f.Path) {
			out = append(out, f.Path)
		}
	}
	return out
}

// IsChecked reports whether a path carries a TypeScript or JavaScript extension.
func IsChecked(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	for _, e := range checkedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
