// Package manifest assembles file sets for the CLI: from YAML or JSON
// manifest files, from a directory tree, or from individual files on disk.
package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/conneroisu/tsvalidate/internal/errors"
	"github.com/conneroisu/tsvalidate/internal/types"
	"github.com/conneroisu/tsvalidate/internal/validation"
)

// MaxFileSize bounds a single file read from disk.
const MaxFileSize = 4 << 20

// skippedDirs are never descended into when collecting a directory.
var skippedDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
}

// collectedExtensions are picked up from a directory tree.
var collectedExtensions = []string{
	".ts", ".tsx", ".mts", ".cts",
	".js", ".jsx", ".mjs", ".cjs",
	".json",
}

// Manifest describes one file set.
//
//	name: user-service
//	timeoutMs: 10000
//	files:
//	  - path: models/user.ts
//	    content: |
//	      export interface User { id: number }
//	  - path: index.ts
//	    source: ./index.ts   # read from disk, relative to the manifest
type Manifest struct {
	Name      string  `yaml:"name" json:"name"`
	TimeoutMs int     `yaml:"timeoutMs" json:"timeoutMs"`
	Files     []Entry `yaml:"files" json:"files"`
}

// Entry is one file of a manifest. Content wins over Source.
type Entry struct {
	Path    string  `yaml:"path" json:"path"`
	Content *string `yaml:"content" json:"content"`
	Source  string  `yaml:"source" json:"source"`
}

// Load reads a manifest. JSON manifests are accepted as YAML.
func Load(path string) (*Manifest, error) {
	raw, err := readLimited(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("invalid manifest %s: %v", path, err))
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &m, nil
}

// VirtualFiles resolves the manifest entries. Source paths are relative to
// baseDir and must stay inside it.
func (m *Manifest) VirtualFiles(baseDir string) ([]types.VirtualFile, error) {
	files := make([]types.VirtualFile, 0, len(m.Files))
	for i, e := range m.Files {
		if e.Content != nil {
			files = append(files, types.VirtualFile{Path: e.Path, Content: *e.Content})
			continue
		}
		if e.Source == "" {
			files = append(files, types.VirtualFile{Path: e.Path})
			continue
		}

		source, err := within(baseDir, e.Source)
		if err != nil {
			return nil, errors.NewConfigError(fmt.Sprintf("manifest %s entry %d: %v", m.Name, i, err))
		}
		raw, err := readLimited(source)
		if err != nil {
			return nil, err
		}

		p := e.Path
		if p == "" {
			p = filepath.ToSlash(e.Source)
		}
		files = append(files, types.VirtualFile{Path: p, Content: string(raw)})
	}
	return files, nil
}

// FromDir collects every source and JSON file below root. Paths are
// relative to root; dependency and build output directories are skipped.
func FromDir(root string) ([]types.VirtualFile, error) {
	var files []types.VirtualFile
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && (skippedDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || validation.ValidateFileExtension(d.Name(), collectedExtensions) != nil {
			return nil
		}

		raw, err := readLimited(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, types.VirtualFile{Path: filepath.ToSlash(rel), Content: string(raw)})
		return nil
	})
	if err != nil {
		return nil, errors.WrapIO(err, fmt.Sprintf("failed to collect files under %s", root))
	}
	return files, nil
}

// FromPaths reads individual files. Relative paths are kept as given;
// absolute ones are made relative to baseDir.
func FromPaths(baseDir string, paths []string) ([]types.VirtualFile, error) {
	files := make([]types.VirtualFile, 0, len(paths))
	for _, p := range paths {
		raw, err := readLimited(p)
		if err != nil {
			return nil, err
		}

		rel := p
		if filepath.IsAbs(p) {
			if rel, err = filepath.Rel(baseDir, p); err != nil {
				return nil, errors.WrapIO(err, fmt.Sprintf("cannot relate %s to %s", p, baseDir))
			}
		}
		files = append(files, types.VirtualFile{Path: filepath.ToSlash(rel), Content: string(raw)})
	}
	return files, nil
}

func within(baseDir, rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("source %q must be relative", rel)
	}
	joined := filepath.Join(baseDir, rel)
	r, err := filepath.Rel(baseDir, joined)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("source %q escapes the manifest directory", rel)
	}
	return joined, nil
}

func readLimited(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WrapIO(err, fmt.Sprintf("cannot read %s", path))
	}
	if info.Size() > MaxFileSize {
		return nil, errors.NewIOError(fmt.Sprintf("%s is larger than %d bytes", path, MaxFileSize), nil)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO(err, fmt.Sprintf("cannot read %s", path))
	}
	return raw, nil
}
