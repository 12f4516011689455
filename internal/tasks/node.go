package tasks

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/emmet/internal/adapters/fs"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/emmet/internal/adapters/shell" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/emmet/internal/registry"
)

// RegistryNodeID is the unique identifier for the element registry Graft node.
const RegistryNodeID graft.ID = "engine.registry"

func init() {
	graft.Register(graft.Node[*registry.Registry]{
		ID:        RegistryNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			shell.NodeID,
			fs.HasherNodeID,
			fs.ResolverNodeID,
		},
		Run: func(ctx context.Context) (*registry.Registry, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}

			resolver, err := graft.Dep[ports.FileResolver](ctx)
			if err != nil {
				return nil, err
			}

			reg := registry.New()
			if err := NewLibrary(executor, hasher, resolver).Register(reg); err != nil {
				return nil, err
			}
			return reg, nil
		},
	})
}
