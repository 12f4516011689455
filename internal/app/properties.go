package app

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/emmet/internal/build"
	"go.trai.ch/emmet/internal/core/domain"
)

// seedProperties builds the initial property store of a run. Every seeded
// property is read-only, so the first writer of a name wins: command line
// overrides beat engine properties, which beat framework, settings and
// environment values.
func (a *App) seedProperties(
	project *domain.Project,
	settings *domain.Settings,
	framework *domain.Framework,
	overrides map[string]string,
) (*domain.PropertyStore, error) {
	props := domain.NewPropertyStore()

	if err := setAll(props, overrides); err != nil {
		return nil, err
	}

	engine := map[string]string{
		domain.PropVersion:          build.Version,
		domain.PropFilename:         a.executable,
		domain.PropLocation:         filepath.Dir(a.executable),
		domain.PropProjectName:      project.Name,
		domain.PropProjectBaseDir:   project.BaseDir,
		domain.PropProjectBuildFile: project.File,
		domain.PropProjectDefault:   project.Default,
	}
	if framework != nil {
		engine[domain.PropFrameworkName] = framework.Name
		engine[domain.PropFrameworkDesc] = framework.Description
	}
	if err := setAll(props, engine); err != nil {
		return nil, err
	}

	if framework != nil {
		if err := setAll(props, framework.Properties); err != nil {
			return nil, err
		}
	}
	if err := setAll(props, settings.Properties); err != nil {
		return nil, err
	}

	for _, kv := range a.environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		name := domain.EnvPropertyPrefix + key
		if domain.ValidatePropertyName(name) != nil {
			a.logger.Debug("skipping environment variable '" + key + "': not a valid property name")
			continue
		}
		_ = props.Set(name, value, true)
	}

	return props, nil
}

func setAll(props *domain.PropertyStore, values map[string]string) error {
	for _, name := range slices.Sorted(maps.Keys(values)) {
		if err := props.Set(name, values[name], true); err != nil {
			return err
		}
	}
	return nil
}
