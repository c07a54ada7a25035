package progrock

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/matrix/internal/core/ports"
)

// NodeID is the unique identifier for the journal factory node.
const NodeID graft.ID = "adapter.journals"

func init() {
	graft.Register(graft.Node[ports.TelemetryFactory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.TelemetryFactory, error) {
			return NewJournals(), nil
		},
	})
}
