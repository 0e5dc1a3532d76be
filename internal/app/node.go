package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/javelin/internal/adapters/classfile" //nolint:depguard // Wired in app layer
	"go.trai.ch/javelin/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/javelin/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/javelin/internal/adapters/javasrc"   //nolint:depguard // Wired in app layer
	"go.trai.ch/javelin/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/javelin/internal/adapters/unitcache" //nolint:depguard // Wired in app layer
	"go.trai.ch/javelin/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/javelin/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains the initialized application components the CLI layer needs.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			fs.SourceProviderNodeID,
			fs.HasherNodeID,
			javasrc.NodeID,
			classfile.NodeID,
			unitcache.NodeID,
			watcher.WatcherNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			sources, err := graft.Dep[ports.SourceProvider](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[*fs.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			parser, err := graft.Dep[ports.SourceParser](ctx)
			if err != nil {
				return nil, err
			}
			reader, err := graft.Dep[ports.ClassReader](ctx)
			if err != nil {
				return nil, err
			}
			caches, err := graft.Dep[*unitcache.Factory](ctx)
			if err != nil {
				return nil, err
			}
			w, err := graft.Dep[ports.Watcher](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(loader, sources, parser, reader, caches, w, hasher, log), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{AppNodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}
