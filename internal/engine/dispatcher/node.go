package dispatcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/matrix/internal/adapters/actions"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/matrix/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/matrix/internal/adapters/shell"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/matrix/internal/adapters/workspace" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/matrix/internal/core/ports"
)

// NodeID is the unique identifier for the dispatcher Graft node.
const NodeID graft.ID = "engine.dispatcher"

func init() {
	graft.Register(graft.Node[*Dispatcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			shell.NodeID,
			actions.NodeID,
			workspace.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Dispatcher, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}

			registry, err := graft.Dep[ports.ActionRegistry](ctx)
			if err != nil {
				return nil, err
			}

			workspaces, err := graft.Dep[ports.WorkspaceProvider](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewDispatcher(executor, registry, workspaces, log), nil
		},
	})
}
