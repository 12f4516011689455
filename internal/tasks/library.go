// Package tasks provides the built-in tasks and data types.
package tasks

import (
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/emmet/internal/registry"
)

// Library constructs the built-in elements with their collaborators.
type Library struct {
	executor ports.Executor
	hasher   ports.Hasher
	resolver ports.FileResolver
}

// NewLibrary creates a Library.
func NewLibrary(executor ports.Executor, hasher ports.Hasher, resolver ports.FileResolver) *Library {
	return &Library{
		executor: executor,
		hasher:   hasher,
		resolver: resolver,
	}
}

// Factories returns a factory for every built-in element.
func (l *Library) Factories() []registry.Factory {
	return []registry.Factory{
		func() ports.Element { return &Echo{} },
		func() ports.Element { return &Property{Overwrite: true} },
		func() ports.Element { return &Fail{} },
		func() ports.Element { return &Exec{executor: l.executor} },
		func() ports.Element { return &Mkdir{} },
		func() ports.Element { return &Delete{} },
		func() ports.Element { return &Copy{} },
		func() ports.Element { return &Checksum{hasher: l.hasher} },
		func() ports.Element { return &Call{} },
		func() ports.Element { return l.newFileSet() },
		func() ports.Element { return &EnvVar{} },
		func() ports.Element { return &Arg{} },
	}
}

// Register adds the built-in elements to reg.
func (l *Library) Register(reg *registry.Registry) error {
	for _, f := range l.Factories() {
		if err := reg.Register(f); err != nil {
			return err
		}
	}
	return nil
}

func (l *Library) newFileSet() *FileSet {
	return &FileSet{DefaultExcludes: true, resolver: l.resolver}
}
