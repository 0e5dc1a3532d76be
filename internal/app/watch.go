package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.trai.ch/javelin/internal/adapters/fs"
	"go.trai.ch/javelin/internal/adapters/watcher"
	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Watch compiles the project, then recompiles whenever the content of a source changes.
// Unchanged units are reused from the unit cache, which stays open between rebuilds.
// Watch returns when ctx is canceled.
func (a *App) Watch(ctx context.Context, opts CompileOptions) (err error) {
	s, err := a.openSession(opts)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.close(ctx))
	}()

	hashes := watcher.NewHashCache(a.hasher)
	if err := a.rebuild(ctx, s, hashes); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if err := a.watcher.Start(gctx, s.cfg.SourceRoots); err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.watcher.Stop())
	}()
	a.logger.Info(fmt.Sprintf("watching %d source %s for changes",
		len(s.cfg.SourceRoots), plural(len(s.cfg.SourceRoots), "root", "roots")))

	batches := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(a.window, func(paths []string) {
		select {
		case batches <- paths:
		case <-gctx.Done():
		}
	})
	defer debouncer.Stop()

	g.Go(func() error {
		// The event stream ends when gctx is canceled.
		for ev := range a.watcher.Events() {
			if strings.HasSuffix(ev.Path, fs.JavaSuffix) {
				debouncer.Add(ev.Path)
			}
		}
		return nil
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case paths := <-batches:
				changes := hashes.Filter(paths)
				if changes.Empty() {
					continue
				}
				a.logger.Info(fmt.Sprintf("%d changed, %d removed; recompiling",
					len(changes.Changed), len(changes.Removed)))
				if err := a.rebuild(gctx, s, hashes); err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				}
			}
		}
	})
	if err := g.Wait(); err != nil {
		return zerr.Wrap(err, "watch stopped")
	}
	return nil
}

// rebuild compiles the current sources and records their content for change filtering.
func (a *App) rebuild(ctx context.Context, s *session, hashes *watcher.HashCache) error {
	state, inputs, err := a.build(ctx, s)
	if inputs != nil {
		hashes.Prime(inputs)
	}
	if state == nil {
		return err
	}
	if perr := a.printSummary(s, state); perr != nil {
		return errors.Join(err, perr)
	}
	// Strict failures are reported and the watch goes on.
	if errors.Is(err, domain.ErrCompilationErrors) {
		a.logger.Error(err)
		return nil
	}
	return err
}
