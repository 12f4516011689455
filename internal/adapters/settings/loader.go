// Package settings loads the optional HCL settings file that declares
// frameworks and global properties.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SettingsLoader = (*Loader)(nil)

// Loader implements ports.SettingsLoader.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the settings file at path. A missing file yields empty settings.
func (l *Loader) Load(path string) (*domain.Settings, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		l.Logger.Debug(fmt.Sprintf("no settings file at %s", path))
		return &domain.Settings{}, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, parseError(path, diags.Error())
	}

	var raw File
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, parseError(path, diags.Error())
	}

	settings, err := convertFile(&raw)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}

	l.Logger.Debug(fmt.Sprintf("loaded settings from %s with %d frameworks", path, len(settings.Frameworks)))
	return settings, nil
}

func parseError(path, msg string) error {
	return zerr.With(zerr.Wrap(domain.ErrSettingsParseFailed, msg), "path", path)
}

func convertFile(raw *File) (*domain.Settings, error) {
	props, err := stringMap(raw.Properties, "properties")
	if err != nil {
		return nil, err
	}

	s := &domain.Settings{
		DefaultFramework: raw.DefaultFramework,
		Properties:       props,
	}

	seen := make(map[string]bool, len(raw.Frameworks))
	for _, fb := range raw.Frameworks {
		if seen[fb.Name] {
			return nil, zerr.With(zerr.Wrap(domain.ErrSettingsParseFailed,
				fmt.Sprintf("framework '%s' is declared more than once", fb.Name)), "framework", fb.Name)
		}
		seen[fb.Name] = true

		fwProps, err := stringMap(fb.Properties, fmt.Sprintf("properties of framework '%s'", fb.Name))
		if err != nil {
			return nil, err
		}
		s.Frameworks = append(s.Frameworks, domain.Framework{
			Name:        fb.Name,
			Description: fb.Description,
			Properties:  fwProps,
		})
	}

	if s.DefaultFramework != "" && !seen[s.DefaultFramework] {
		return nil, zerr.With(zerr.Wrap(domain.ErrSettingsParseFailed,
			fmt.Sprintf("default framework '%s' is not declared", s.DefaultFramework)), "framework", s.DefaultFramework)
	}
	return s, nil
}

// stringMap converts an object or map of primitive values into strings.
func stringMap(v cty.Value, what string) (map[string]string, error) {
	if v.IsNull() {
		return map[string]string{}, nil
	}
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, zerr.Wrap(domain.ErrSettingsParseFailed, what+" must be a map")
	}
	if !v.IsWhollyKnown() {
		return nil, zerr.Wrap(domain.ErrSettingsParseFailed, what+" must not contain unknown values")
	}

	out := make(map[string]string, v.LengthInt())
	keys := make([]string, 0, v.LengthInt())
	for it := v.ElementIterator(); it.Next(); {
		k, elem := it.Element()
		name := k.AsString()
		if elem.IsNull() {
			return nil, zerr.With(zerr.Wrap(domain.ErrSettingsParseFailed,
				fmt.Sprintf("%s: value of '%s' must not be null", what, name)), "property", name)
		}
		str, err := convert.Convert(elem, cty.String)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrSettingsParseFailed,
				fmt.Sprintf("%s: value of '%s' must be a string, number or bool", what, name)), "property", name)
		}
		var s string
		if err := gocty.FromCtyValue(str, &s); err != nil {
			return nil, zerr.Wrap(err, "failed to decode property value")
		}
		out[name] = s
		keys = append(keys, name)
	}

	slices.Sort(keys)
	for _, k := range keys {
		if err := domain.ValidatePropertyName(k); err != nil {
			return nil, err
		}
	}
	return out, nil
}
