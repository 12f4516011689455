package watcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/emmet/internal/adapters/fs"
	"go.trai.ch/emmet/internal/adapters/logger"
	"go.trai.ch/emmet/internal/core/ports"
)

// FactoryNodeID is the unique identifier for the watcher factory Graft node.
const FactoryNodeID graft.ID = "adapter.watcher_factory"

func init() {
	graft.Register(graft.Node[ports.WatcherFactory]{
		ID:        FactoryNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, fs.WalkerNodeID},
		Run: func(ctx context.Context) (ports.WatcherFactory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			walker, err := graft.Dep[*fs.Walker](ctx)
			if err != nil {
				return nil, err
			}
			return func() (ports.Watcher, error) {
				w, err := NewWatcher(log, walker)
				if err != nil {
					return nil, err
				}
				return w, nil
			}, nil
		},
	})
}
