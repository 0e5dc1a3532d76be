package unitcache

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/javelin/internal/adapters/classfile"
	"go.trai.ch/javelin/internal/adapters/logger"
	"go.trai.ch/javelin/internal/core/ports"
)

// NodeID is the unique identifier for the unit cache factory Graft node.
const NodeID graft.ID = "adapter.unit_cache_factory"

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{classfile.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Factory, error) {
			reader, err := graft.Dep[ports.ClassReader](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(reader, log), nil
		},
	})
}
