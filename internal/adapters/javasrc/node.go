package javasrc

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/javelin/internal/core/ports"
)

// NodeID is the unique identifier for the source parser Graft node.
const NodeID graft.ID = "adapter.source_parser"

func init() {
	graft.Register(graft.Node[ports.SourceParser]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.SourceParser, error) {
			return NewParser(), nil
		},
	})
}
