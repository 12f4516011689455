package app

import (
	"fmt"
	"strings"

	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/zerr"
)

// RunOptions configures a build run.
type RunOptions struct {
	// BuildFile is the script to load. When empty the script is looked up in Dir.
	BuildFile string
	// Dir is the directory the script lookup starts in. Empty means the
	// working directory.
	Dir string
	// FindInParent continues the script lookup in parent directories.
	FindInParent bool
	// Targets are the targets to run. Empty runs the project default.
	Targets []string
	// Properties are read-only overrides applied before anything else.
	Properties map[string]string
	// Framework selects a framework from the settings file.
	Framework string
	// SettingsFile overrides the settings file next to the script.
	SettingsFile string

	Level     domain.Level
	JSON      bool
	LogFile   string
	Summary   bool
	TraceFile string
	Watch     bool
}

// ParseDefines converts name=value pairs into a property map. Later
// definitions of the same name win.
func ParseDefines(defines []string) (map[string]string, error) {
	props := make(map[string]string, len(defines))
	for _, def := range defines {
		name, value, ok := strings.Cut(def, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, usageError(fmt.Sprintf("invalid property definition '%s', expected name=value", def))
		}
		if err := domain.ValidatePropertyName(name); err != nil {
			return nil, zerr.With(usageError(fmt.Sprintf("invalid property name '%s'", name)), "property", name)
		}
		props[name] = value
	}
	return props, nil
}

func usageError(msg string) error {
	return zerr.Wrap(domain.ErrUsage, msg)
}
