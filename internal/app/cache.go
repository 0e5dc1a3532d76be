package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.trai.ch/javelin/internal/adapters/unitcache"
	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/zerr"
)

// CacheStats describes the persistent unit cache of the project.
type CacheStats struct {
	Dir        string `json:"dir"`
	Persistent bool   `json:"persistent"`
	LogFiles   int    `json:"logFiles"`
	LogBytes   int64  `json:"logBytes"`
	BlobBytes  int64  `json:"blobBytes"`
}

// CacheClean removes the persistent unit cache and its blob store.
func (a *App) CacheClean(_ context.Context) error {
	cfg, err := a.loader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	a.logger.Info("removing unit cache...")
	removed, err := unitcache.Clean(cfg.Cache.Dir)
	if err != nil {
		return err
	}
	blobs := filepath.Join(cfg.Cache.Dir, domain.BlobFileName)
	if err := os.Remove(blobs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", blobs)
	}
	a.logger.Info(fmt.Sprintf("removed %d unit cache %s from %s",
		removed, plural(removed, "file", "files"), cfg.Cache.Dir))
	return nil
}

// CacheStats prints the size of the persistent unit cache without replaying it.
func (a *App) CacheStats(_ context.Context, asJSON bool) error {
	cfg, err := a.loader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	inspected, err := unitcache.Inspect(cfg.Cache.Dir)
	if err != nil {
		return err
	}
	stats := CacheStats{
		Dir:        inspected.Dir,
		Persistent: cfg.Cache.Persistent,
		LogFiles:   inspected.Files,
		LogBytes:   inspected.Bytes,
	}
	if info, err := os.Stat(filepath.Join(cfg.Cache.Dir, domain.BlobFileName)); err == nil {
		stats.BlobBytes = info.Size()
	}

	if asJSON {
		return json.NewEncoder(a.out).Encode(stats)
	}
	state := "disabled"
	if stats.Persistent {
		state = "enabled"
	}
	_, err = fmt.Fprintf(a.out, "Unit cache: %s (persistent cache %s)\nLog files: %d (%d bytes)\nBlob store: %d bytes\n",
		stats.Dir, state, stats.LogFiles, stats.LogBytes, stats.BlobBytes)
	return err
}
