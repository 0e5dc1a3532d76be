package fs

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.SourceProvider = (*SourceProvider)(nil)

// SourceProvider discovers .java files under the configured source roots and hashes
// their content.
type SourceProvider struct {
	walker *Walker
	logger ports.Logger
}

// NewSourceProvider creates a new SourceProvider.
func NewSourceProvider(walker *Walker, logger ports.Logger) *SourceProvider {
	return &SourceProvider{walker: walker, logger: logger}
}

type candidate struct {
	root string
	path string
	rel  string
}

// Discover returns every source under roots, sorted by type name. When two roots hold
// the same resource path, the earlier root wins.
func (p *SourceProvider) Discover(ctx context.Context, roots []string) ([]*domain.SourceInput, error) {
	seen := make(map[string]string)
	var candidates []candidate
	for _, root := range roots {
		for path := range p.walker.WalkFiles(root, JavaSuffix, nil) {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, domain.ErrSourceReadFailed.Error()), "path", path)
			}
			rel = filepath.ToSlash(rel)
			if prev, ok := seen[rel]; ok {
				p.logger.Debug("ignoring " + path + ", shadowed by " + prev)
				continue
			}
			seen[rel] = path
			candidates = append(candidates, candidate{root: root, path: path, rel: rel})
		}
	}

	inputs := make([]*domain.SourceInput, len(candidates))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, c := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			in, err := ReadSource(c.path, c.rel)
			if err != nil {
				return err
			}
			inputs[i] = in
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(inputs, func(a, b *domain.SourceInput) int {
		return strings.Compare(a.Unit.TypeName, b.Unit.TypeName)
	})
	return inputs, nil
}

// ReadSource reads one source file. rel is its slash-separated path below the source
// root, from which the type name is derived.
func ReadSource(path, rel string) (*domain.SourceInput, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSourceReadFailed.Error()), "path", path)
	}
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from the source root walk
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSourceReadFailed.Error()), "path", path)
	}

	typeName := TypeNameOf(rel)
	return &domain.SourceInput{
		Unit: domain.UnitSource{
			TypeName:        typeName,
			DisplayLocation: path,
			ResourcePath:    rel,
			ContentID:       domain.NewContentID(typeName, data),
			LastModified:    info.ModTime().UnixNano(),
		},
		Source: data,
	}, nil
}

// TypeNameOf maps a resource path such as com/example/Foo.java to com.example.Foo.
func TypeNameOf(rel string) string {
	return strings.ReplaceAll(strings.TrimSuffix(filepath.ToSlash(rel), JavaSuffix), "/", ".")
}

// Hasher computes content ids for files that changed on disk, memoizing by path and
// modification time.
type Hasher struct {
	mu    sync.Mutex
	cache map[string]hashEntry
}

type hashEntry struct {
	modTime int64
	size    int64
	hash    string
}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{cache: make(map[string]hashEntry)}
}

// ComputeFileHash returns the content hash of the file at path.
func (h *Hasher) ComputeFileHash(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrSourceReadFailed.Error()), "path", path)
	}

	h.mu.Lock()
	e, ok := h.cache[path]
	h.mu.Unlock()
	if ok && e.modTime == info.ModTime().UnixNano() && e.size == info.Size() {
		return e.hash, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrSourceReadFailed.Error()), "path", path)
	}
	hash := domain.HashBytes(data)

	h.mu.Lock()
	h.cache[path] = hashEntry{modTime: info.ModTime().UnixNano(), size: info.Size(), hash: hash}
	h.mu.Unlock()
	return hash, nil
}

// Forget drops the memoized hash of path.
func (h *Hasher) Forget(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.cache, path)
}
