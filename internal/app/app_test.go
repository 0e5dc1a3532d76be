package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/javelin/internal/adapters/fs"
	"go.trai.ch/javelin/internal/adapters/unitcache"
	"go.trai.ch/javelin/internal/app"
	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/ports"
	"go.trai.ch/javelin/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// fakeWatcher delivers the events sent on its channel until the watch context ends.
type fakeWatcher struct {
	events  chan ports.WatchEvent
	started chan []string
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{
		events:  make(chan ports.WatchEvent),
		started: make(chan []string, 1),
	}
}

func (w *fakeWatcher) Start(ctx context.Context, roots []string) error {
	go func() {
		<-ctx.Done()
		close(w.events)
	}()
	w.started <- roots
	return nil
}

func (w *fakeWatcher) Stop() error { return nil }

func (w *fakeWatcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for ev := range w.events {
			if !yield(ev) {
				return
			}
		}
	}
}

type fixture struct {
	root     string
	loader   *mocks.MockConfigLoader
	sources  *mocks.MockSourceProvider
	compiler *mocks.MockCompiler
	logger   *mocks.MockLogger
	watcher  *fakeWatcher
	out      *bytes.Buffer
	app      *app.App

	mu       sync.Mutex
	compiled [][]string
	broken   map[string]bool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		root:     t.TempDir(),
		loader:   mocks.NewMockConfigLoader(ctrl),
		sources:  mocks.NewMockSourceProvider(ctrl),
		compiler: mocks.NewMockCompiler(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		watcher:  newFakeWatcher(),
		out:      new(bytes.Buffer),
		broken:   make(map[string]bool),
	}
	f.logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	f.logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	f.logger.EXPECT().Error(gomock.Any()).AnyTimes()
	f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(f.compile).AnyTimes()

	reader := mocks.NewMockClassReader(ctrl)
	f.app = app.New(
		f.loader,
		f.sources,
		mocks.NewMockSourceParser(ctrl),
		reader,
		unitcache.NewFactory(reader, f.logger),
		f.watcher,
		fs.NewHasher(),
		f.logger,
	).
		WithOutput(f.out).
		WithDebounceWindow(time.Millisecond).
		WithCompilerFactory(func(*domain.Config, ports.BlobStore, ports.Tracer) ports.Compiler {
			return f.compiler
		})
	return f
}

func (f *fixture) config() *domain.Config {
	return &domain.Config{
		Root:        f.root,
		SourceRoots: []string{filepath.Join(f.root, "src")},
		Cache: domain.CacheConfig{
			Dir:           filepath.Join(f.root, domain.DefaultUnitCachePath()),
			MemoryEntries: 16,
		},
	}
}

// compile declares an empty package p type per input. Inputs named in broken fail.
func (f *fixture) compile(
	_ context.Context,
	inputs []*domain.SourceInput,
	_ domain.ClassIndex,
) ([]*domain.CompileOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(inputs))
	outputs := make([]*domain.CompileOutput, 0, len(inputs))
	for _, in := range inputs {
		names = append(names, in.Unit.TypeName)
		decl := &domain.Declaration{Package: "p", Source: in.Source}
		if f.broken[in.Unit.TypeName] {
			decl.Problems = append(decl.Problems, domain.NewError("compiler", 3, "cannot find symbol"))
		}
		outputs = append(outputs, &domain.CompileOutput{Input: in, Declaration: decl})
	}
	f.compiled = append(f.compiled, names)
	return outputs, nil
}

func (f *fixture) calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.compiled))
	copy(out, f.compiled)
	return out
}

func (f *fixture) writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.root, "src", "p", name+".java")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	return path
}

// discoverFromDisk reads the sources written by writeSource.
func (f *fixture) discoverFromDisk(names ...string) func(context.Context, []string) ([]*domain.SourceInput, error) {
	return func(context.Context, []string) ([]*domain.SourceInput, error) {
		var inputs []*domain.SourceInput
		for _, name := range names {
			rel := "p/" + name + ".java"
			in, err := fs.ReadSource(filepath.Join(f.root, "src", filepath.FromSlash(rel)), rel)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, in)
		}
		return inputs, nil
	}
}

func TestApp_Compile(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, "A", "package p; class A {}")
	f.writeSource(t, "B", "package p; class B {}")

	f.loader.EXPECT().Load(".").Return(f.config(), nil)
	f.sources.EXPECT().Discover(gomock.Any(), []string{filepath.Join(f.root, "src")}).
		DoAndReturn(f.discoverFromDisk("A", "B"))

	err := f.app.Compile(context.Background(), app.CompileOptions{})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"p.A", "p.B"}}, f.calls())
	assert.Equal(t, "Compiled 2 units (0 from cache), 0 with errors; 0 types in 0 packages\n", f.out.String())
}

func TestApp_Compile_JSON(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, "A", "package p; class A {}")

	f.loader.EXPECT().Load(".").Return(f.config(), nil)
	f.sources.EXPECT().Discover(gomock.Any(), gomock.Any()).DoAndReturn(f.discoverFromDisk("A"))

	err := f.app.Compile(context.Background(), app.CompileOptions{JSON: true})
	require.NoError(t, err)

	var sum app.Summary
	require.NoError(t, json.Unmarshal(f.out.Bytes(), &sum))
	assert.Equal(t, 1, sum.Sources)
	assert.Equal(t, 1, sum.CacheEntries)
	assert.False(t, sum.PersistentCache)
	assert.Contains(t, sum.Phases, "compile")
}

func TestApp_Compile_StrictErrors(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, "A", "package p; class A { broken }")
	f.broken["p.A"] = true

	f.loader.EXPECT().Load(".").Return(f.config(), nil)
	f.sources.EXPECT().Discover(gomock.Any(), gomock.Any()).DoAndReturn(f.discoverFromDisk("A"))

	err := f.app.Compile(context.Background(), app.CompileOptions{Strict: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrCompilationErrors.Error())
	assert.Contains(t, f.out.String(), "1 with errors")
}

func TestApp_Compile_LoadError(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(".").Return(nil, errors.New("bad yaml"))

	err := f.app.Compile(context.Background(), app.CompileOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad yaml")
	assert.Empty(t, f.calls())
}

func TestApp_Compile_PersistentCacheReuse(t *testing.T) {
	f := newFixture(t)
	f.writeSource(t, "A", "package p; class A {}")

	cfg := f.config()
	cfg.Cache.Persistent = true
	cfg.Cache.ConsolidateThreshold = domain.DefaultConsolidateThreshold
	f.loader.EXPECT().Load(".").Return(cfg, nil).Times(2)
	f.sources.EXPECT().Discover(gomock.Any(), gomock.Any()).DoAndReturn(f.discoverFromDisk("A")).Times(2)

	require.NoError(t, f.app.Compile(context.Background(), app.CompileOptions{}))
	f.out.Reset()
	require.NoError(t, f.app.Compile(context.Background(), app.CompileOptions{}))

	assert.Equal(t, [][]string{{"p.A"}}, f.calls())
	assert.Contains(t, f.out.String(), "(1 from cache)")
	assert.FileExists(t, filepath.Join(cfg.Cache.Dir, domain.BlobFileName))
}

func TestApp_Types_InvalidPattern(t *testing.T) {
	f := newFixture(t)

	err := f.app.Types(context.Background(), "p.[", app.CompileOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid type pattern")
}

func TestApp_Watch(t *testing.T) {
	f := newFixture(t)
	path := f.writeSource(t, "A", "package p; class A {}")
	f.writeSource(t, "B", "package p; class B {}")

	f.loader.EXPECT().Load(".").Return(f.config(), nil)
	f.sources.EXPECT().Discover(gomock.Any(), gomock.Any()).DoAndReturn(f.discoverFromDisk("A", "B")).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- f.app.Watch(ctx, app.CompileOptions{})
	}()

	select {
	case roots := <-f.watcher.started:
		assert.Equal(t, []string{filepath.Join(f.root, "src")}, roots)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher was not started")
	}

	// A touch without a content change is filtered out.
	f.watcher.events <- ports.WatchEvent{Path: path, Operation: ports.OpWrite}
	// Only the edited source is compiled again.
	require.NoError(t, os.WriteFile(path, []byte("package p; class A { int x; }"), domain.FilePerm))
	f.watcher.events <- ports.WatchEvent{Path: path, Operation: ports.OpWrite}

	require.Eventually(t, func() bool {
		return len(f.calls()) == 2
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
	assert.Equal(t, [][]string{{"p.A", "p.B"}, {"p.A"}}, f.calls())
}

func TestApp_CacheStatsAndClean(t *testing.T) {
	f := newFixture(t)
	cfg := f.config()
	require.NoError(t, os.MkdirAll(cfg.Cache.Dir, domain.DirPerm))
	logFile := filepath.Join(cfg.Cache.Dir, domain.UnitCacheFilePrefix+"1"+domain.UnitCacheFileSuffix)
	require.NoError(t, os.WriteFile(logFile, []byte("{}\n"), domain.FilePerm))
	blobFile := filepath.Join(cfg.Cache.Dir, domain.BlobFileName)
	require.NoError(t, os.WriteFile(blobFile, []byte("0123456789"), domain.FilePerm))

	f.loader.EXPECT().Load(".").Return(cfg, nil).Times(3)

	require.NoError(t, f.app.CacheStats(context.Background(), true))
	var stats app.CacheStats
	require.NoError(t, json.Unmarshal(f.out.Bytes(), &stats))
	assert.Equal(t, 1, stats.LogFiles)
	assert.Equal(t, int64(3), stats.LogBytes)
	assert.Equal(t, int64(10), stats.BlobBytes)

	require.NoError(t, f.app.CacheClean(context.Background()))
	assert.NoFileExists(t, logFile)
	assert.NoFileExists(t, blobFile)

	f.out.Reset()
	require.NoError(t, f.app.CacheStats(context.Background(), false))
	assert.Contains(t, f.out.String(), "Log files: 0 (0 bytes)")
}
