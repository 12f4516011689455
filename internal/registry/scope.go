package registry

import (
	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports"
)

type reference struct {
	element string
	value   ports.Element
}

// Scope is the per-run context elements are bound against.
type Scope struct {
	// Properties expands attribute values.
	Properties *domain.PropertyStore
	// BaseDir resolves relative path attributes.
	BaseDir string

	refs map[string]reference
}

// NewScope creates a Scope for one build run.
func NewScope(props *domain.PropertyStore, baseDir string) *Scope {
	return &Scope{
		Properties: props,
		BaseDir:    baseDir,
		refs:       make(map[string]reference),
	}
}

// Reference returns the data type declared with the given id.
func (s *Scope) Reference(id string) (ports.Element, bool) {
	ref, ok := s.lookup(id)
	return ref.value, ok
}

func (s *Scope) lookup(id string) (reference, bool) {
	ref, ok := s.refs[id]
	return ref, ok
}

// define stores a data type under id. A later declaration replaces an earlier one.
func (s *Scope) define(id, element string, value ports.Element) {
	if s.refs == nil {
		s.refs = make(map[string]reference)
	}
	s.refs[id] = reference{element: element, value: value}
}
