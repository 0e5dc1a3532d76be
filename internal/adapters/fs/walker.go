// Package fs provides file system adapters for walking and reading source files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"strings"

	"go.trai.ch/javelin/internal/core/domain"
)

// JavaSuffix is the extension of the files the walker yields by default.
const JavaSuffix = ".java"

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields the files under root whose name ends in suffix, skipping VCS and
// javelin metadata directories and any directory matching an ignore pattern.
// Paths start with root.
func (w *Walker) WalkFiles(root, suffix string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if path != root && w.shouldSkipDir(d.Name(), ignores) {
					return filepath.SkipDir
				}
				return nil
			}

			if !strings.HasSuffix(d.Name(), suffix) || matchesAny(d.Name(), ignores) {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}

			return nil
		})
	}
}

func (w *Walker) shouldSkipDir(name string, ignores []string) bool {
	switch name {
	case ".git", ".jj", domain.JavelinDirName:
		return true
	}
	return matchesAny(name, ignores)
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if matched, _ := filepath.Match(p, name); matched {
			return true
		}
	}
	return false
}
