package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/emmet/internal/adapters/fs"       //nolint:depguard // Wired in app layer
	"go.trai.ch/emmet/internal/adapters/logger"   //nolint:depguard // Wired in app layer
	"go.trai.ch/emmet/internal/adapters/script"   //nolint:depguard // Wired in app layer
	"go.trai.ch/emmet/internal/adapters/settings" //nolint:depguard // Wired in app layer
	"go.trai.ch/emmet/internal/adapters/watcher"  //nolint:depguard // Wired in app layer
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/emmet/internal/engine/runner"
)

// NodeID is the unique identifier for the main App Graft node.
const NodeID graft.ID = "app.main"

func init() {
	graft.Register(graft.Node[*App]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			runner.NodeID,
			script.NodeID,
			settings.NodeID,
			logger.ConcreteNodeID,
			fs.HasherNodeID,
			watcher.FactoryNodeID,
		},
		Run: runAppNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	r, err := graft.Dep[*runner.Runner](ctx)
	if err != nil {
		return nil, err
	}

	scripts, err := graft.Dep[ports.ScriptLoader](ctx)
	if err != nil {
		return nil, err
	}

	settingsLoader, err := graft.Dep[ports.SettingsLoader](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[*logger.Logger](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}

	watchers, err := graft.Dep[ports.WatcherFactory](ctx)
	if err != nil {
		return nil, err
	}

	return New(r, scripts, settingsLoader, log, hasher, watchers), nil
}
