package actions

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/matrix/internal/adapters/fs"
	"go.trai.ch/matrix/internal/adapters/toolchain"
	"go.trai.ch/matrix/internal/core/ports"
)

const NodeID graft.ID = "adapter.actions"

func init() {
	graft.Register(graft.Node[ports.ActionRegistry]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.CopierNodeID, toolchain.NodeID},
		Run: func(ctx context.Context) (ports.ActionRegistry, error) {
			copier, err := graft.Dep[*fs.Copier](ctx)
			if err != nil {
				return nil, err
			}
			locator, err := graft.Dep[ports.ToolLocator](ctx)
			if err != nil {
				return nil, err
			}
			return NewRegistry(NewCheckout(copier), NewSetup(locator)), nil
		},
	})
}
