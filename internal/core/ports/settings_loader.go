package ports

import "go.trai.ch/emmet/internal/core/domain"

// SettingsLoader defines the interface for loading host settings.
//
//go:generate mockgen -source=settings_loader.go -destination=mocks/mock_settings_loader.go -package=mocks
type SettingsLoader interface {
	// Load reads the settings file at path. A missing file yields empty settings.
	Load(path string) (*domain.Settings, error)
}
