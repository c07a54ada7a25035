package workspace

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/matrix/internal/core/ports"
)

const NodeID graft.ID = "adapter.workspace"

func init() {
	graft.Register(graft.Node[ports.WorkspaceProvider]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.WorkspaceProvider, error) {
			return NewManager(os.Getenv("MATRIX_WORKSPACE_ROOT")), nil
		},
	})
}
