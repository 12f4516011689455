package runner

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/emmet/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/emmet/internal/registry"
	"go.trai.ch/emmet/internal/tasks"
)

// NodeID is the unique identifier for the runner Graft node.
const NodeID graft.ID = "engine.runner"

func init() {
	graft.Register(graft.Node[*Runner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			tasks.RegistryNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Runner, error) {
			reg, err := graft.Dep[*registry.Registry](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(reg, log), nil
		},
	})
}
