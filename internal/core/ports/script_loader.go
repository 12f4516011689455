package ports

import "go.trai.ch/emmet/internal/core/domain"

// ScriptLoader defines the interface for loading build scripts.
//
//go:generate mockgen -source=script_loader.go -destination=mocks/mock_script_loader.go -package=mocks
type ScriptLoader interface {
	// Load parses the build script at path.
	Load(path string) (*domain.Project, error)
	// Find locates the build script in dir. When findInParent is set the
	// search continues upwards until a script is found.
	Find(dir string, findInParent bool) (string, error)
}
