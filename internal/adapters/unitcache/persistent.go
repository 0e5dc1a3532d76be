package unitcache

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.UnitCache = (*PersistentCache)(nil)

// PersistentCache layers an append-only log of unit snapshots over a MemoryCache.
//
// A loader goroutine replays the existing log files when the cache opens; every
// operation waits for it. Writes go through an unbounded queue drained by a single
// writer goroutine, so Add never blocks on disk.
type PersistentCache struct {
	mem       *MemoryCache
	dir       string
	blobs     ports.BlobStore
	signer    domain.SignatureFunc
	logger    ports.Logger
	threshold int
	timeout   time.Duration

	loaded chan struct{}
	done   chan struct{}
	queue  *writeQueue

	mu            sync.Mutex
	files         []string
	closed        bool
	consolidating bool
	writeOnce     sync.Once
}

// Options configures a PersistentCache.
type Options struct {
	// Dir holds the log files.
	Dir string
	// MemoryEntries bounds the in-memory index.
	MemoryEntries int
	// ConsolidateThreshold is the log file count above which Cleanup rewrites the cache.
	ConsolidateThreshold int
	// ShutdownTimeout bounds how long Close waits for the writer.
	ShutdownTimeout time.Duration
}

// OpenPersistent creates the cache directory and starts the loader and writer.
func OpenPersistent(
	opts Options,
	blobs ports.BlobStore,
	signer domain.SignatureFunc,
	logger ports.Logger,
) (*PersistentCache, error) {
	if err := os.MkdirAll(opts.Dir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheDirCreateFailed.Error()), "dir", opts.Dir)
	}
	mem, err := NewMemoryCache(opts.MemoryEntries)
	if err != nil {
		return nil, err
	}
	if opts.ConsolidateThreshold <= 0 {
		opts.ConsolidateThreshold = domain.DefaultConsolidateThreshold
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = domain.DefaultCacheShutdownTimeoutS * time.Second
	}

	c := &PersistentCache{
		mem:       mem,
		dir:       opts.Dir,
		blobs:     blobs,
		signer:    signer,
		logger:    logger,
		threshold: opts.ConsolidateThreshold,
		timeout:   opts.ShutdownTimeout,
		loaded:    make(chan struct{}),
		done:      make(chan struct{}),
		queue:     newWriteQueue(),
	}
	go c.load()
	go c.write()
	return c, nil
}

// Add stores u. Units compiled by this process are also appended to the log.
func (c *PersistentCache) Add(u *domain.CompilationUnit) {
	<-c.loaded
	c.mem.Add(u)
	if u.Provenance() != domain.ProvenanceRuntime || !u.IsChecked() {
		return
	}
	c.enqueue(writeRequest{record: snapshot(u)})
}

// FindByPath returns the newest unit for path.
func (c *PersistentCache) FindByPath(path string) (*domain.CompilationUnit, bool) {
	<-c.loaded
	return c.mem.FindByPath(path)
}

// FindByContentID returns the unit for a specific source revision.
func (c *PersistentCache) FindByContentID(id domain.ContentID) (*domain.CompilationUnit, bool) {
	<-c.loaded
	return c.mem.FindByContentID(id)
}

// Remove drops u from memory. The log keeps its record until the next consolidation.
func (c *PersistentCache) Remove(u *domain.CompilationUnit) {
	<-c.loaded
	c.mem.Remove(u)
}

// Len returns the number of cached units.
func (c *PersistentCache) Len() int {
	<-c.loaded
	return c.mem.Len()
}

// Files returns the log files currently backing the cache, oldest first.
func (c *PersistentCache) Files() []string {
	<-c.loaded
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.files)
}

// Cleanup asks the writer to consolidate the log once it spans more files than the
// threshold. At most one consolidation is queued at a time.
func (c *PersistentCache) Cleanup() {
	<-c.loaded
	c.mu.Lock()
	if len(c.files) <= c.threshold || c.consolidating {
		c.mu.Unlock()
		return
	}
	c.consolidating = true
	c.mu.Unlock()

	units := c.mem.Units()
	records := make([]*unitRecord, 0, len(units))
	for _, u := range units {
		if u.IsChecked() {
			records = append(records, snapshot(u))
		}
	}
	c.enqueue(writeRequest{consolidate: records})
}

// Close flushes queued writes and stops the writer, waiting at most the shutdown
// timeout or until ctx is done.
func (c *PersistentCache) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.queue.push(writeRequest{stop: true})

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()
	select {
	case <-c.done:
		return nil
	case <-timer.C:
		return zerr.With(domain.ErrCacheShutdownTimeout, "timeout", c.timeout.String())
	case <-ctx.Done():
		return zerr.Wrap(ctx.Err(), domain.ErrCacheShutdownTimeout.Error())
	}
}

func (c *PersistentCache) enqueue(req writeRequest) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}
	c.queue.push(req)
}

// load replays every log file, oldest first. For each resource path the unit with the
// newest modification time wins.
func (c *PersistentCache) load() {
	defer close(c.loaded)

	files, err := listLogFiles(c.dir)
	if err != nil {
		c.logger.Warn(zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "dir", c.dir).Error())
		return
	}

	kept := files[:0]
	count := 0
	for _, path := range files {
		n, ok := c.replay(path)
		count += n
		if ok {
			kept = append(kept, path)
		}
	}

	c.mu.Lock()
	c.files = kept
	c.mu.Unlock()
	c.logger.Debug(fmt.Sprintf("unit cache loaded %d units from %d files", count, len(kept)))
}

// replay applies the records of one file. A truncated trailing record ends the file
// normally; any other decoding error deletes it. Records applied before the error stay.
func (c *PersistentCache) replay(path string) (int, bool) {
	f, err := os.Open(path) //nolint:gosec // path comes from the cache directory listing
	if err != nil {
		c.logger.Warn(zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "path", path).Error())
		return 0, false
	}
	defer func() { _ = f.Close() }()

	dec := json.NewDecoder(bufio.NewReader(f))
	applied := 0
	for {
		var rec unitRecord
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return applied, true
		}
		if err != nil {
			c.logger.Debug("deleting corrupt unit cache file " + path + ": " + err.Error())
			_ = f.Close()
			if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				c.logger.Debug("could not delete " + path + ": " + rmErr.Error())
			}
			return applied, false
		}

		if existing, ok := c.mem.FindByPath(rec.ResourcePath); ok && existing.LastModified() > rec.LastModified {
			continue
		}
		u, err := rec.restore(c.blobs, c.signer)
		if err != nil {
			c.logger.Debug("skipping unit cache record " + rec.TypeName + ": " + err.Error())
			continue
		}
		c.mem.Add(u)
		applied++
	}
}

// write is the writer goroutine. It drains the queue in submission order and flushes
// the open log after every drain.
func (c *PersistentCache) write() {
	defer close(c.done)
	<-c.loaded

	lw := &logWriter{dir: c.dir}
	defer func() { _ = lw.close() }()

	for {
		batch := c.queue.drain()
		for _, req := range batch {
			switch {
			case req.stop:
				c.report(lw.flush())
				return
			case req.consolidate != nil:
				c.report(lw.flush())
				c.consolidate(lw, req.consolidate)
			default:
				c.report(c.append(lw, req.record))
			}
		}
		c.report(lw.flush())
	}
}

func (c *PersistentCache) append(lw *logWriter, rec *unitRecord) error {
	if err := rec.loadPayloads(); err != nil {
		c.logger.Debug("not persisting " + rec.TypeName + ": " + err.Error())
		return nil
	}
	opened, err := lw.encode(rec)
	if opened != "" {
		c.mu.Lock()
		c.files = append(c.files, opened)
		c.mu.Unlock()
	}
	return err
}

// consolidate rewrites the live records into a fresh file and deletes every older one.
func (c *PersistentCache) consolidate(lw *logWriter, records []*unitRecord) {
	defer func() {
		c.mu.Lock()
		c.consolidating = false
		c.mu.Unlock()
	}()
	if err := lw.close(); err != nil {
		c.report(err)
		return
	}

	c.mu.Lock()
	old := slices.Clone(c.files)
	c.files = nil
	c.mu.Unlock()

	for _, rec := range records {
		if err := c.append(lw, rec); err != nil {
			c.report(err)
			return
		}
	}
	if err := lw.flush(); err != nil {
		c.report(err)
		return
	}
	for _, path := range old {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			c.logger.Debug("could not delete " + path + ": " + err.Error())
		}
	}
	c.logger.Debug(fmt.Sprintf("unit cache consolidated %d files into one", len(old)))
}

// report logs the first write failure. The cache is best effort.
func (c *PersistentCache) report(err error) {
	if err == nil {
		return
	}
	c.writeOnce.Do(func() {
		c.logger.Error(zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "dir", c.dir))
	})
}

// logWriter owns the log file of the current session. The file is created on the
// first record.
type logWriter struct {
	dir  string
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

func (w *logWriter) encode(rec *unitRecord) (string, error) {
	var opened string
	if w.file == nil {
		f, err := createLogFile(w.dir)
		if err != nil {
			return "", err
		}
		w.file = f
		w.buf = bufio.NewWriter(f)
		w.enc = json.NewEncoder(w.buf)
		opened = f.Name()
	}
	return opened, w.enc.Encode(rec)
}

func (w *logWriter) flush() error {
	if w.buf == nil {
		return nil
	}
	return w.buf.Flush()
}

func (w *logWriter) close() error {
	if w.file == nil {
		return nil
	}
	err := errors.Join(w.flush(), w.file.Close())
	w.file, w.buf, w.enc = nil, nil, nil
	return err
}

// createLogFile opens a new log file whose name sorts after every existing one.
func createLogFile(dir string) (*os.File, error) {
	for stamp := time.Now().UnixNano(); ; stamp++ {
		name := filepath.Join(dir, fmt.Sprintf("%s%020d%s", domain.UnitCacheFilePrefix, stamp, domain.UnitCacheFileSuffix))
		//nolint:gosec // name is built from the cache directory
		f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, domain.FilePerm)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		return f, err
	}
}

// listLogFiles returns the log files in dir, oldest first.
func listLogFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !IsLogFile(name) {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	slices.Sort(out)
	return out, nil
}

// IsLogFile reports whether name is a unit cache log file name.
func IsLogFile(name string) bool {
	if !strings.HasPrefix(name, domain.UnitCacheFilePrefix) || !strings.HasSuffix(name, domain.UnitCacheFileSuffix) {
		return false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, domain.UnitCacheFilePrefix), domain.UnitCacheFileSuffix)
	return stamp != "" && strings.Trim(stamp, "0123456789") == ""
}
