package domain

import (
	"fmt"
	"strings"

	"go.trai.ch/zerr"
)

// SettingsFileName is the settings file looked up next to the build script.
const SettingsFileName = ".emmet.hcl"

// Framework is a named set of properties selected with the framework selector.
type Framework struct {
	Name        string
	Description string
	Properties  map[string]string
}

// Settings holds host configuration loaded from the settings file.
type Settings struct {
	DefaultFramework string
	Properties       map[string]string
	Frameworks       []Framework
}

// Framework returns the framework with the given name.
func (s *Settings) Framework(name string) (*Framework, bool) {
	for i := range s.Frameworks {
		if s.Frameworks[i].Name == name {
			return &s.Frameworks[i], true
		}
	}
	return nil, false
}

// SelectFramework resolves the selector against the configured frameworks.
// An empty selector falls back to the default framework; with no default it
// returns nil. An unknown name fails with a message listing the possible values.
func (s *Settings) SelectFramework(selector string) (*Framework, error) {
	name := selector
	if name == "" {
		name = s.DefaultFramework
	}
	if name == "" {
		return nil, nil //nolint:nilnil // no framework selected
	}
	if fw, ok := s.Framework(name); ok {
		return fw, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "invalid framework '%s' specified.\n", name)
	if len(s.Frameworks) == 0 {
		b.WriteString("There are no frameworks configured.")
	} else {
		b.WriteString("Possible values include:")
		for _, fw := range s.Frameworks {
			fmt.Fprintf(&b, "\n %s (%s)", fw.Name, fw.Description)
		}
	}
	return nil, zerr.With(zerr.Wrap(ErrUnknownFramework, b.String()), "framework", name)
}
