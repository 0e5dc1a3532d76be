package unitcache

import (
	"errors"
	"os"

	"go.trai.ch/javelin/internal/adapters/classfile"
	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/ports"
	"go.trai.ch/zerr"
)

// Factory opens the unit cache selected by the configuration.
type Factory struct {
	reader ports.ClassReader
	logger ports.Logger
}

// NewFactory creates a new Factory.
func NewFactory(reader ports.ClassReader, logger ports.Logger) *Factory {
	return &Factory{reader: reader, logger: logger}
}

// Open returns a persistent cache when cfg enables it and a memory cache otherwise.
// Payloads of replayed units are stored in blobs.
func (f *Factory) Open(cfg domain.CacheConfig, blobs ports.BlobStore) (ports.UnitCache, error) {
	if !cfg.Persistent {
		return NewMemoryCache(cfg.MemoryEntries)
	}
	return OpenPersistent(Options{
		Dir:                  cfg.Dir,
		MemoryEntries:        cfg.MemoryEntries,
		ConsolidateThreshold: cfg.ConsolidateThreshold,
	}, blobs, classfile.Signer(f.reader), f.logger)
}

// Stats describes the persistent cache directory.
type Stats struct {
	Dir   string
	Files int
	Bytes int64
}

// Inspect reports the log files in dir without replaying them.
func Inspect(dir string) (Stats, error) {
	stats := Stats{Dir: dir}
	files, err := listLogFiles(dir)
	if errors.Is(err, os.ErrNotExist) {
		return stats, nil
	}
	if err != nil {
		return stats, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "dir", dir)
	}
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		stats.Files++
		stats.Bytes += info.Size()
	}
	return stats, nil
}

// Clean deletes every log file in dir and returns how many were removed.
func Clean(dir string) (int, error) {
	files, err := listLogFiles(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "dir", dir)
	}
	removed := 0
	for _, path := range files {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", path)
		}
		removed++
	}
	return removed, nil
}
