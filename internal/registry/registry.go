// Package registry maps element names to task and data type implementations
// and binds declarative script elements onto fresh instances.
package registry

import (
	"fmt"
	"slices"
	"sync"

	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/zerr"
)

// Factory creates a fresh, unbound instance of an element type.
type Factory func() ports.Element

// Policy decides which registration is kept when an element name is registered twice.
type Policy int

const (
	// LastWins replaces an existing binding, letting extensions override built-ins.
	LastWins Policy = iota
	// FirstWins keeps the first binding and ignores later registrations.
	FirstWins
)

// Option configures a Registry.
type Option func(*Registry)

// WithPolicy sets the override policy.
func WithPolicy(p Policy) Option {
	return func(r *Registry) {
		r.policy = p
	}
}

type binding struct {
	factory    Factory
	descriptor *domain.Descriptor
}

// Registry is the process-wide table of element bindings.
// It is safe for concurrent use; once populated it is only read.
type Registry struct {
	mu       sync.RWMutex
	policy   Policy
	bindings map[string]*binding
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		bindings: make(map[string]*binding),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds the binding produced by factory. The descriptor is obtained
// once from a fresh instance, validated and cached.
func (r *Registry) Register(factory Factory) error {
	if factory == nil {
		return zerr.Wrap(domain.ErrInvalidDescriptor, "factory is nil")
	}
	instance := factory()
	if instance == nil {
		return zerr.Wrap(domain.ErrInvalidDescriptor, "factory returned nil")
	}
	desc := instance.Describe()
	if err := validateDescriptor(desc); err != nil {
		return err
	}
	if _, isTask := instance.(ports.Task); isTask != (desc.Kind == domain.KindTask) {
		err := zerr.Wrap(domain.ErrInvalidDescriptor,
			fmt.Sprintf("element '%s' is described as a %s but does not match that kind", desc.Name, desc.Kind))
		return zerr.With(err, "element", desc.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bindings[desc.Name]; exists && r.policy == FirstWins {
		return nil
	}
	r.bindings[desc.Name] = &binding{factory: factory, descriptor: desc}
	return nil
}

// MustRegister is like Register but panics on an invalid descriptor.
func (r *Registry) MustRegister(factories ...Factory) {
	for _, f := range factories {
		if err := r.Register(f); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the descriptor bound to name.
func (r *Registry) Lookup(name string) (*domain.Descriptor, bool) {
	b, ok := r.binding(name)
	if !ok {
		return nil, false
	}
	return b.descriptor, true
}

// Names returns the registered element names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.bindings))
	for name := range r.bindings {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Registry) binding(name string) (*binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bindings[name]
	return b, ok
}

func validateDescriptor(desc *domain.Descriptor) error {
	if desc == nil {
		return zerr.Wrap(domain.ErrInvalidDescriptor, "descriptor is nil")
	}
	if desc.Name == "" {
		return zerr.Wrap(domain.ErrInvalidDescriptor, "descriptor has no element name")
	}

	invalid := func(format string, args ...any) error {
		err := zerr.Wrap(domain.ErrInvalidDescriptor, fmt.Sprintf("element '%s': ", desc.Name)+fmt.Sprintf(format, args...))
		return zerr.With(err, "element", desc.Name)
	}

	seen := make(map[string]struct{})
	for _, a := range desc.Attributes {
		if a.Name == "" {
			return invalid("attribute without a name")
		}
		if isReserved(desc.Kind, a.Name) {
			return invalid("attribute '%s' is reserved", a.Name)
		}
		if _, dup := seen[a.Name]; dup {
			return invalid("attribute '%s' is declared twice", a.Name)
		}
		if a.Bind == nil {
			return invalid("attribute '%s' has no binder", a.Name)
		}
		if a.Kind == domain.AttrEnum && len(a.Values) == 0 {
			return invalid("enum attribute '%s' has no values", a.Name)
		}
		seen[a.Name] = struct{}{}
	}

	children := make(map[string]struct{})
	for _, c := range desc.Children {
		if c.Name == "" {
			return invalid("child slot without a name")
		}
		if _, dup := children[c.Name]; dup {
			return invalid("child '%s' is declared twice", c.Name)
		}
		if c.Bind == nil {
			return invalid("child '%s' has no binder", c.Name)
		}
		children[c.Name] = struct{}{}
	}

	if desc.TextAttribute != "" {
		if _, ok := desc.Attribute(desc.TextAttribute); !ok {
			return invalid("text attribute '%s' is not declared", desc.TextAttribute)
		}
	}
	return nil
}
