// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/emmet/internal/adapters/fs"
	_ "go.trai.ch/emmet/internal/adapters/logger"
	_ "go.trai.ch/emmet/internal/adapters/script"
	_ "go.trai.ch/emmet/internal/adapters/settings"
	_ "go.trai.ch/emmet/internal/adapters/shell"
	_ "go.trai.ch/emmet/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/emmet/internal/app"
	_ "go.trai.ch/emmet/internal/engine/runner"
	_ "go.trai.ch/emmet/internal/tasks"
)
