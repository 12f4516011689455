package registry

import (
	"fmt"

	"go.trai.ch/emmet/internal/core/domain"
)

// AttrOption adjusts an attribute spec built by the typed helpers.
type AttrOption func(*domain.AttributeSpec)

// Required marks the attribute as mandatory.
func Required() AttrOption {
	return func(s *domain.AttributeSpec) {
		s.Required = true
	}
}

// Validate runs check on the coerced value before it is bound.
func Validate(check func(value any) error) AttrOption {
	return func(s *domain.AttributeSpec) {
		bind := s.Bind
		s.Bind = func(target, value any) error {
			if err := check(value); err != nil {
				return err
			}
			return bind(target, value)
		}
	}
}

// String declares a string attribute bound through set.
func String[T any](name string, set func(*T, string), opts ...AttrOption) domain.AttributeSpec {
	return attribute(name, domain.AttrString, nil, set, opts)
}

// Path declares a path attribute. The bound value is absolute.
func Path[T any](name string, set func(*T, string), opts ...AttrOption) domain.AttributeSpec {
	return attribute(name, domain.AttrPath, nil, set, opts)
}

// Enum declares an attribute accepting one of values, case-insensitively.
// The bound value is the matching entry of values.
func Enum[T any](name string, values []string, set func(*T, string), opts ...AttrOption) domain.AttributeSpec {
	return attribute(name, domain.AttrEnum, values, set, opts)
}

// Bool declares a boolean attribute.
func Bool[T any](name string, set func(*T, bool), opts ...AttrOption) domain.AttributeSpec {
	return attribute(name, domain.AttrBool, nil, set, opts)
}

// Int declares an integer attribute.
func Int[T any](name string, set func(*T, int), opts ...AttrOption) domain.AttributeSpec {
	return attribute(name, domain.AttrInt, nil, set, opts)
}

func attribute[T, V any](name string, kind domain.AttrKind, values []string, set func(*T, V), opts []AttrOption) domain.AttributeSpec {
	spec := domain.AttributeSpec{
		Name:   name,
		Kind:   kind,
		Values: values,
		Bind: func(target, value any) error {
			t, ok := target.(*T)
			if !ok {
				return fmt.Errorf("unexpected target %T", target)
			}
			v, ok := value.(V)
			if !ok {
				return fmt.Errorf("unexpected value %T", value)
			}
			set(t, v)
			return nil
		},
	}
	for _, opt := range opts {
		opt(&spec)
	}
	return spec
}

// ChildOption adjusts a child spec built by Child or Children.
type ChildOption func(*domain.ChildSpec)

// Nested backs the slot with a nested-only element that is not registered by name.
func Nested[C any](newFn func() *C) ChildOption {
	return func(s *domain.ChildSpec) {
		s.New = func() any { return newFn() }
	}
}

// As backs the slot with the registered element of the given name.
func As(element string) ChildOption {
	return func(s *domain.ChildSpec) {
		s.Element = element
	}
}

// Child declares a slot accepting at most one nested element.
func Child[T, C any](name string, set func(*T, C), opts ...ChildOption) domain.ChildSpec {
	return child(name, false, set, opts)
}

// Children declares a slot accepting any number of nested elements, bound in order.
func Children[T, C any](name string, add func(*T, C), opts ...ChildOption) domain.ChildSpec {
	return child(name, true, add, opts)
}

func child[T, C any](name string, repeated bool, set func(*T, C), opts []ChildOption) domain.ChildSpec {
	spec := domain.ChildSpec{
		Name:     name,
		Repeated: repeated,
		Bind: func(target, value any) error {
			t, ok := target.(*T)
			if !ok {
				return fmt.Errorf("unexpected target %T", target)
			}
			c, ok := value.(C)
			if !ok {
				return fmt.Errorf("unexpected element %T", value)
			}
			set(t, c)
			return nil
		},
	}
	for _, opt := range opts {
		opt(&spec)
	}
	return spec
}
