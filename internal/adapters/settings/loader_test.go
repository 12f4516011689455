package settings_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/emmet/internal/adapters/settings"
	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func load(t *testing.T, content string) (*domain.Settings, error) {
	t.Helper()
	log := mocks.NewMockLogger(gomock.NewController(t))
	log.EXPECT().Debug(gomock.Any()).AnyTimes()

	path := filepath.Join(t.TempDir(), domain.SettingsFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return settings.NewLoader(log).Load(path)
}

func TestLoader_Load(t *testing.T) {
	s, err := load(t, `
default_framework = "go1.22"
properties = {
  "ci"      = true
  "retries" = 3
  "channel" = "stable"
}

framework "go1.22" {
  description = "Go 1.22 toolchain"
  properties = {
    "go.version" = "1.22"
    "go.root"    = "/usr/local/go"
  }
}

framework "go1.21" {
  description = "Go 1.21 toolchain"
}
`)
	require.NoError(t, err)

	assert.Equal(t, "go1.22", s.DefaultFramework)
	assert.Equal(t, map[string]string{"ci": "true", "retries": "3", "channel": "stable"}, s.Properties)
	require.Len(t, s.Frameworks, 2)
	assert.Equal(t, domain.Framework{
		Name:        "go1.22",
		Description: "Go 1.22 toolchain",
		Properties:  map[string]string{"go.version": "1.22", "go.root": "/usr/local/go"},
	}, s.Frameworks[0])
	assert.Equal(t, "go1.21", s.Frameworks[1].Name)
	assert.Empty(t, s.Frameworks[1].Properties)

	fw, err := s.SelectFramework("")
	require.NoError(t, err)
	assert.Equal(t, "go1.22", fw.Name)
}

func TestLoader_MissingFile(t *testing.T) {
	log := mocks.NewMockLogger(gomock.NewController(t))
	log.EXPECT().Debug(gomock.Any())

	s, err := settings.NewLoader(log).Load(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	assert.Empty(t, s.Frameworks)
	assert.Empty(t, s.DefaultFramework)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		contains string
	}{
		{name: "syntax error", content: `framework "a" {`, contains: ""},
		{name: "unknown attribute", content: `colour = "blue"`, contains: "colour"},
		{name: "duplicate framework", content: "framework \"a\" {}\nframework \"a\" {}\n", contains: "declared more than once"},
		{name: "undeclared default", content: `default_framework = "missing"`, contains: "default framework 'missing' is not declared"},
		{name: "nested value", content: `properties = { "a" = ["x"] }`, contains: "value of 'a' must be a string, number or bool"},
		{name: "null value", content: `properties = { "a" = null }`, contains: "must not be null"},
		{name: "not a map", content: `properties = "x"`, contains: "must be a map"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.content)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrSettingsParseFailed), "got %v", err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestLoader_InvalidPropertyName(t *testing.T) {
	_, err := load(t, `properties = { "bad name" = "x" }`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidPropertyName))
}
