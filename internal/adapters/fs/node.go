package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/javelin/internal/adapters/logger"
	"go.trai.ch/javelin/internal/core/ports"
)

const (
	// WalkerNodeID is the unique identifier for the walker Graft node.
	WalkerNodeID graft.ID = "adapter.fs.walker"
	// SourceProviderNodeID is the unique identifier for the source provider Graft node.
	SourceProviderNodeID graft.ID = "adapter.fs.source_provider"
	// HasherNodeID is the unique identifier for the file hasher Graft node.
	HasherNodeID graft.ID = "adapter.fs.hasher"
)

func init() {
	graft.Register(graft.Node[*Walker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Walker, error) {
			return NewWalker(), nil
		},
	})

	graft.Register(graft.Node[ports.SourceProvider]{
		ID:        SourceProviderNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{WalkerNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.SourceProvider, error) {
			walker, err := graft.Dep[*Walker](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewSourceProvider(walker, log), nil
		},
	})

	graft.Register(graft.Node[*Hasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Hasher, error) {
			return NewHasher(), nil
		},
	})
}
