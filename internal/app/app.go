// Package app implements the application layer for javelin.
package app

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/javelin/internal/adapters/blobcache"
	"go.trai.ch/javelin/internal/adapters/javac"
	"go.trai.ch/javelin/internal/adapters/telemetry"
	"go.trai.ch/javelin/internal/adapters/watcher"
	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/ports"
	"go.trai.ch/javelin/internal/engine/compilation"
	"go.trai.ch/javelin/internal/engine/typemodel"
	"go.trai.ch/zerr"
)

// CacheOpener opens the unit cache selected by the configuration.
type CacheOpener interface {
	Open(cfg domain.CacheConfig, blobs ports.BlobStore) (ports.UnitCache, error)
}

// CompilerFactory builds the foreign compiler for a loaded configuration.
type CompilerFactory func(cfg *domain.Config, blobs ports.BlobStore, tracer ports.Tracer) ports.Compiler

// outputSettings is implemented by loggers whose output can be reconfigured.
type outputSettings interface {
	SetVerbose(enable bool)
	SetJSON(enable bool)
}

// App represents the main application logic.
type App struct {
	loader  ports.ConfigLoader
	sources ports.SourceProvider
	parser  ports.SourceParser
	reader  ports.ClassReader
	caches  CacheOpener
	watcher ports.Watcher
	hasher  watcher.FileHasher
	logger  ports.Logger

	out         io.Writer
	newCompiler CompilerFactory
	window      time.Duration
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	sources ports.SourceProvider,
	parser ports.SourceParser,
	reader ports.ClassReader,
	caches CacheOpener,
	w ports.Watcher,
	hasher watcher.FileHasher,
	log ports.Logger,
) *App {
	a := &App{
		loader:  loader,
		sources: sources,
		parser:  parser,
		reader:  reader,
		caches:  caches,
		watcher: w,
		hasher:  hasher,
		logger:  log,
		out:     os.Stdout,
		window:  watcher.DefaultDebounceWindow,
	}
	a.newCompiler = a.javacCompiler
	return a
}

// WithOutput sets the writer that receives command results.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// WithCompilerFactory replaces the javac compiler.
// This is primarily used for testing without a JDK.
func (a *App) WithCompilerFactory(f CompilerFactory) *App {
	a.newCompiler = f
	return a
}

// WithDebounceWindow sets how long Watch waits for further events before recompiling.
func (a *App) WithDebounceWindow(d time.Duration) *App {
	a.window = d
	return a
}

// CompileOptions configures the Compile, Types and Watch methods.
type CompileOptions struct {
	// NoCache ignores the persistent unit cache for this run.
	NoCache bool
	// Strict fails when any unit has errors, in addition to the configured setting.
	Strict bool
	// Verbose reports every unit error and the debug log.
	Verbose bool
	// JSON switches the log and the summary to JSON.
	JSON bool
}

func (a *App) javacCompiler(cfg *domain.Config, blobs ports.BlobStore, tracer ports.Tracer) ports.Compiler {
	return javac.New(javac.Options{
		Javac:     cfg.Javac,
		Classpath: cfg.Classpath,
	}, a.parser, a.reader, blobs, tracer, a.logger)
}

func (a *App) configureOutput(opts CompileOptions) {
	if o, ok := a.logger.(outputSettings); ok {
		o.SetVerbose(opts.Verbose)
		o.SetJSON(opts.JSON)
	}
}

// session holds the resources of one command: the configuration, the blob store, the
// unit cache and the tracer.
type session struct {
	cfg      *domain.Config
	opts     CompileOptions
	blobs    ports.BlobStore
	cache    ports.UnitCache
	tracer   ports.Tracer
	bridge   *telemetry.Bridge
	shutdown func(context.Context) error
}

func (a *App) openSession(opts CompileOptions) (*session, error) {
	a.configureOutput(opts)

	cfg, err := a.loader.Load(".")
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	if opts.NoCache {
		cfg.Cache.Persistent = false
	}
	if opts.Strict {
		cfg.Strict = true
	}

	var blobs *blobcache.Store
	if cfg.Cache.Persistent {
		blobs, err = blobcache.Open(filepath.Join(cfg.Cache.Dir, domain.BlobFileName))
	} else {
		blobs, err = blobcache.OpenTemp()
	}
	if err != nil {
		return nil, err
	}

	cache, err := a.caches.Open(cfg.Cache, blobs)
	if err != nil {
		_ = blobs.Close()
		return nil, err
	}

	// Spans of every phase are reported through the bridge, which logs their timings.
	bridge := telemetry.NewBridge(a.logger)
	shutdown := telemetry.Setup(bridge)

	return &session{
		cfg:      cfg,
		opts:     opts,
		blobs:    blobs,
		cache:    cache,
		tracer:   telemetry.NewOTelTracer("javelin").WithLogger(a.logger),
		bridge:   bridge,
		shutdown: shutdown,
	}, nil
}

// close flushes the unit cache before the blob store it refers to is released.
func (s *session) close(ctx context.Context) error {
	return errors.Join(
		s.cache.Close(ctx),
		s.blobs.Close(),
		s.shutdown(context.WithoutCancel(ctx)),
	)
}

func (a *App) deps(s *session) compilation.Deps {
	return compilation.Deps{
		Compiler: a.newCompiler(s.cfg, s.blobs, s.tracer),
		Cache:    s.cache,
		Reader:   a.reader,
		Resolver: typemodel.NewPlatformResolver(),
		Logger:   a.logger,
		Tracer:   s.tracer,
	}
}

func (s *session) options() compilation.Options {
	return compilation.Options{
		Strict:           s.cfg.Strict,
		Verbose:          s.opts.Verbose,
		DumpErrorSources: s.cfg.DumpErrorSources,
		SuppressMissing:  s.cfg.SuppressMissing,
	}
}

// build discovers the sources of the project and compiles them. In strict mode the
// state is returned together with domain.ErrCompilationErrors.
func (a *App) build(ctx context.Context, s *session) (*compilation.State, []*domain.SourceInput, error) {
	inputs, err := a.sources.Discover(ctx, s.cfg.SourceRoots)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to discover sources")
	}
	if len(inputs) == 0 {
		a.logger.Warn("no Java sources found in the configured source roots")
	}
	state, err := compilation.Build(ctx, a.deps(s), s.options(), inputs)
	return state, inputs, err
}
