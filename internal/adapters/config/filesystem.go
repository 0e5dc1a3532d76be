package config

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileSystem is the part of the filesystem the loader reads.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	// Glob expands a classpath wildcard into absolute paths.
	Glob(pattern string) ([]string, error)
}

// OSFS reads the real filesystem.
type OSFS struct{}

// NewOSFS creates a new OSFS instance.
func NewOSFS() *OSFS {
	return &OSFS{}
}

// Stat returns file info for the given path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	// #nosec G304 -- configuration and .env files of the project
	return os.ReadFile(path)
}

// Glob returns matches for the given pattern.
func (OSFS) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

// RootedFS serves an fs.FS as if it were mounted at Root. Paths outside Root do not
// exist.
type RootedFS struct {
	Root string
	FS   fs.FS
}

// NewRootedFS mounts fsys at root.
func NewRootedFS(root string, fsys fs.FS) *RootedFS {
	return &RootedFS{Root: filepath.Clean(root), FS: fsys}
}

// Stat returns file info for the given path.
func (r *RootedFS) Stat(p string) (fs.FileInfo, error) {
	rel, ok := r.rel(p)
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
	}
	return fs.Stat(r.FS, rel)
}

// ReadFile reads the entire file at path.
func (r *RootedFS) ReadFile(p string) ([]byte, error) {
	rel, ok := r.rel(p)
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: p, Err: fs.ErrNotExist}
	}
	return fs.ReadFile(r.FS, rel)
}

// Glob returns matches for the given pattern as absolute paths under Root.
func (r *RootedFS) Glob(pattern string) ([]string, error) {
	rel, ok := r.rel(pattern)
	if !ok {
		return nil, nil
	}
	matches, err := fs.Glob(r.FS, rel)
	if err != nil {
		return nil, err
	}
	for i, m := range matches {
		matches[i] = filepath.Join(r.Root, filepath.FromSlash(m))
	}
	return matches, nil
}

// rel maps an absolute path below Root to a slash-separated fs.FS path.
func (r *RootedFS) rel(p string) (string, bool) {
	if !filepath.IsAbs(p) {
		return path.Clean(filepath.ToSlash(p)), true
	}
	rel, err := filepath.Rel(r.Root, filepath.Clean(p))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
