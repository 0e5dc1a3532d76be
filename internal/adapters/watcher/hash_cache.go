package watcher

import (
	"errors"
	"io/fs"
	"slices"
	"sync"
	"unique"

	"go.trai.ch/javelin/internal/core/domain"
)

// FileHasher computes the content hash of a file.
type FileHasher interface {
	ComputeFileHash(path string) (string, error)
	Forget(path string)
}

// ChangeSet is the outcome of filtering a batch of watch events.
type ChangeSet struct {
	// Changed lists new files and files whose content hash differs.
	Changed []string
	// Removed lists known files that no longer exist.
	Removed []string
}

// Empty reports whether the batch changed nothing.
func (c ChangeSet) Empty() bool {
	return len(c.Changed) == 0 && len(c.Removed) == 0
}

// HashCache remembers the content hash of every watched source so that events which
// leave a file's content untouched (touch, editor swap files, rename round trips) do
// not trigger a recompile.
type HashCache struct {
	mu      sync.RWMutex
	entries map[unique.Handle[string]]string
	hasher  FileHasher
}

// NewHashCache creates a new hash cache.
func NewHashCache(hasher FileHasher) *HashCache {
	return &HashCache{
		entries: make(map[unique.Handle[string]]string),
		hasher:  hasher,
	}
}

// Prime records the content ids of the sources of a completed compile.
func (h *HashCache) Prime(inputs []*domain.SourceInput) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, in := range inputs {
		h.entries[unique.Make(in.Unit.DisplayLocation)] = in.Unit.ContentID.ContentHash
	}
}

// Known reports whether path was primed or seen in an earlier batch.
func (h *HashCache) Known(path string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.entries[unique.Make(path)]
	return ok
}

// Filter rehashes the given paths and returns the ones whose content really changed.
// Paths that cannot be hashed for reasons other than absence are reported as changed
// so that the compiler surfaces the problem.
func (h *HashCache) Filter(paths []string) ChangeSet {
	var cs ChangeSet

	for _, path := range paths {
		handle := unique.Make(path)
		h.hasher.Forget(path)
		hash, err := h.hasher.ComputeFileHash(path)

		h.mu.Lock()
		prev, known := h.entries[handle]
		switch {
		case err != nil && errors.Is(err, fs.ErrNotExist):
			if known {
				delete(h.entries, handle)
				cs.Removed = append(cs.Removed, path)
			}
		case err != nil:
			cs.Changed = append(cs.Changed, path)
		case !known || prev != hash:
			h.entries[handle] = hash
			cs.Changed = append(cs.Changed, path)
		}
		h.mu.Unlock()
	}

	slices.Sort(cs.Changed)
	slices.Sort(cs.Removed)
	return cs
}
