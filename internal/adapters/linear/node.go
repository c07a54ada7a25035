package linear

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/matrix/internal/adapters/detector"
	"go.trai.ch/matrix/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the renderer factory node.
	NodeID graft.ID = "adapter.renderer"
)

func init() {
	graft.Register(graft.Node[ports.RendererFactory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.RendererFactory, error) {
			return NewFactory(detector.DetectEnvironment), nil
		},
	})
}
