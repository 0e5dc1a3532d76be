package classfile

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/javelin/internal/core/ports"
)

// NodeID is the unique identifier for the class reader Graft node.
const NodeID graft.ID = "adapter.class_reader"

func init() {
	graft.Register(graft.Node[ports.ClassReader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ClassReader, error) {
			return NewReader(), nil
		},
	})
}
