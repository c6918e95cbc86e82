// Package workspace materializes a normalized file set into an isolated,
// uniquely named temporary directory together with a compiler
// configuration scoped to that directory, and removes it again.
//
// Layout of a workspace:
//
//	<base>/tsvalidate-<id>-<random>/
//	├── tsconfig.json   generated, never extends anything
//	└── src/            the caller's files at their relative paths
//
// Keeping the caller's files under src/ means a tsconfig.json supplied as
// part of the set is plain data and can never replace the generated one.
package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/conneroisu/tsvalidate/internal/errors"
	"github.com/conneroisu/tsvalidate/internal/fileset"
)

const (
	// SourceDirName is the directory under the root holding the caller's files.
	SourceDirName = "src"
	// ConfigFileName is the generated compiler configuration.
	ConfigFileName = "tsconfig.json"

	dirPrefix = "tsvalidate-"
)

// Options controls where and how a workspace is materialized.
type Options struct {
	// BaseDir is the parent directory; empty means os.TempDir()
	BaseDir string
	// ID correlates the directory name with a validation call; empty means a new UUID
	ID string
	// Compiler is written to the generated tsconfig.json
	Compiler CompilerOptions
}

// Workspace is the on-disk materialization of one file set. It is owned by
// a single validation call and must be released by it.
type Workspace struct {
	// Root is the workspace directory
	Root string
	// SourceDir is Root/src
	SourceDir string
	// ConfigPath is Root/tsconfig.json
	ConfigPath string

	set      *fileset.Set
	realRoot string

	releaseOnce sync.Once
	releaseErr  error
}

// Materialize creates the workspace directory, writes every file of the set
// under it and generates the compiler configuration. On failure it removes
// whatever it created and returns an I/O error.
func Materialize(set *fileset.Set, opts Options) (*Workspace, error) {
	base := opts.BaseDir
	if base == "" {
		base = os.TempDir()
	}

	id := opts.ID
	if id == "" {
		id = uuid.New().String()
	}

	root, err := os.MkdirTemp(base, dirPrefix+id+"-*")
	if err != nil {
		return nil, errors.NewIOError("failed to create workspace directory", err).
			WithContext("base_dir", base)
	}

	ws := &Workspace{
		Root:       root,
		SourceDir:  filepath.Join(root, SourceDirName),
		ConfigPath: filepath.Join(root, ConfigFileName),
		set:        set,
		realRoot:   root,
	}

	// The compiler reports resolved paths; on some platforms the temp dir is a symlink.
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		ws.realRoot = resolved
	}

	if err := ws.populate(opts.Compiler); err != nil {
		_ = ws.Release()
		return nil, err
	}

	return ws, nil
}

func (w *Workspace) populate(compiler CompilerOptions) error {
	if err := os.MkdirAll(w.SourceDir, 0o755); err != nil {
		return errors.NewIOError("failed to create source directory", err)
	}

	for _, f := range w.set.Files() {
		target := w.AbsPath(f.Path)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errors.NewIOError("failed to create directory", err).WithLocation(f.Original, 0, 0)
		}
		if err := os.WriteFile(target, []byte(f.Content), 0o644); err != nil {
			return errors.NewIOError("failed to write file", err).WithLocation(f.Original, 0, 0)
		}
	}

	cfg := newTSConfig(compiler, w.set.CheckedPaths())
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.WrapInternal(err, "failed to encode compiler configuration")
	}
	if err := os.WriteFile(w.ConfigPath, data, 0o644); err != nil {
		return errors.NewIOError("failed to write compiler configuration", err)
	}

	return nil
}

// AbsPath returns the on-disk location of a canonical set path.
func (w *Workspace) AbsPath(setPath string) string {
	return filepath.Join(w.SourceDir, filepath.FromSlash(setPath))
}

// Set returns the file set the workspace was materialized from.
func (w *Workspace) Set() *fileset.Set {
	return w.set
}

// Relative maps a path reported by the compiler back to the canonical set
// path. Reported paths may be absolute or relative to Root. The second
// result is false for files that are not part of the set.
func (w *Workspace) Relative(reported string) (string, bool) {
	if reported == "" {
		return "", false
	}

	p := filepath.ToSlash(filepath.Clean(filepath.FromSlash(reported)))
	for _, root := range []string{w.realRoot, w.Root} {
		prefix := filepath.ToSlash(root) + "/"
		if strings.HasPrefix(p, prefix) {
			p = strings.TrimPrefix(p, prefix)
			break
		}
	}

	if !strings.HasPrefix(p, SourceDirName+"/") {
		return "", false
	}
	p = strings.TrimPrefix(p, SourceDirName+"/")

	if _, ok := w.set.Lookup(p); !ok {
		return "", false
	}
	return p, true
}

// Release removes the workspace directory tree. It is safe to call more
// than once; later calls return the first result.
func (w *Workspace) Release() error {
	w.releaseOnce.Do(func() {
		if err := os.RemoveAll(w.Root); err != nil {
			w.releaseErr = errors.NewIOError(fmt.Sprintf("failed to remove workspace %s", w.Root), err)
		}
	})
	return w.releaseErr
}

// RemoveLeftovers removes the directory tree again regardless of earlier
// releases. It catches files a still-running compiler wrote after Release.
func (w *Workspace) RemoveLeftovers() error {
	if err := os.RemoveAll(w.Root); err != nil {
		return errors.NewIOError(fmt.Sprintf("failed to remove workspace %s", w.Root), err)
	}
	return nil
}
