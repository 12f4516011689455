package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestPropertyStore_Expand(t *testing.T) {
	s := domain.NewPropertyStore()
	require.NoError(t, s.Set("project.name", "emmet", false))
	require.NoError(t, s.Set("out", "${project.name}", false))
	require.NoError(t, s.Set("empty", "", false))

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"NoReferences", "plain text", "plain text"},
		{"Single", "name=${project.name}", "name=emmet"},
		{"Adjacent", "${project.name}${project.name}", "emmetemmet"},
		{"TrimmedName", "${ project.name }", "emmet"},
		{"NotRecursive", "${out}", "${project.name}"},
		{"EmptyValue", "[${empty}]", "[]"},
		{"Escaped", "$${project.name}", "${project.name}"},
		{"EscapedThenReference", "$${x} ${project.name}", "${x} emmet"},
		{"Unterminated", "value ${project.name", "value ${project.name"},
		{"EmptyReference", "a ${} b", "a ${} b"},
		{"LoneDollar", "cost $5", "cost $5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Expand(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPropertyStore_Expand_Idempotent(t *testing.T) {
	s := domain.NewPropertyStore()
	for _, text := range []string{"", "abc", "a $ b", "{x}", "$${ still literal", "${unterminated"} {
		once, err := s.Expand(text)
		require.NoError(t, err)
		twice, err := s.Expand(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "input %q", text)
	}
}

func TestPropertyStore_Expand_EscapeIsNotIdempotent(t *testing.T) {
	s := domain.NewPropertyStore()

	once, err := s.Expand("cost: $${price}")
	require.NoError(t, err)
	assert.Equal(t, "cost: ${price}", once)

	_, err = s.Expand(once)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUndefinedProperty)

	require.NoError(t, s.Set("price", "3", false))
	twice, err := s.Expand(once)
	require.NoError(t, err)
	assert.Equal(t, "cost: 3", twice)
}

func TestPropertyStore_Expand_Undefined(t *testing.T) {
	s := domain.NewPropertyStore()

	_, err := s.Expand("hello ${user.name}!")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUndefinedProperty))
	assert.Contains(t, err.Error(), "user.name")

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, "user.name", zErr.Metadata()["property"])

	require.NoError(t, s.Set("user.name", "ada", false))
	got, err := s.Expand("hello ${user.name}!")
	require.NoError(t, err)
	assert.Equal(t, "hello ada!", got)
}

func TestPropertyStore_ReadOnly(t *testing.T) {
	s := domain.NewPropertyStore()
	require.NoError(t, s.Set("mode", "release", true))

	require.NoError(t, s.Set("mode", "debug", false))
	require.NoError(t, s.Set("mode", "other", true))

	v, ok := s.Get("mode")
	require.True(t, ok)
	assert.Equal(t, "release", v)
	assert.True(t, s.IsReadOnly("mode"))

	err := s.Define("mode", "debug", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrReadOnlyProperty))

	v, _ = s.Get("mode")
	assert.Equal(t, "release", v)
}

func TestPropertyStore_Overwrite(t *testing.T) {
	s := domain.NewPropertyStore()
	require.NoError(t, s.Set("a", "1", false))
	require.NoError(t, s.Define("a", "2", false))

	v, ok := s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "2", v)
	assert.False(t, s.IsReadOnly("a"))
}

func TestPropertyStore_InvalidName(t *testing.T) {
	s := domain.NewPropertyStore()

	for _, name := range []string{"", "has space", ".leading", "a$b", "x{y}"} {
		t.Run(name, func(t *testing.T) {
			err := s.Set(name, "v", false)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidPropertyName))
			assert.False(t, s.Contains(name))
		})
	}

	for _, name := range []string{"a", "sys.env.HOME", "go-version", "_x", "1st"} {
		assert.NoError(t, domain.ValidatePropertyName(name), name)
	}
}

func TestPropertyStore_Names(t *testing.T) {
	s := domain.NewPropertyStore()
	require.NoError(t, s.Set("b", "", false))
	require.NoError(t, s.Set("a", "", false))
	require.NoError(t, s.Set("c.d", "", true))

	assert.Equal(t, []string{"a", "b", "c.d"}, s.Names())
	assert.False(t, s.Contains("missing"))
	_, ok := s.Get("missing")
	assert.False(t, ok)
}
