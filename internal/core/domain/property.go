package domain

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

var validPropertyName = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.\-]*$`)

// PropertyStore holds the properties of a single build run in a flat namespace.
// It is not safe for concurrent use; the engine only touches it from its
// execution goroutine.
type PropertyStore struct {
	values   map[string]string
	readOnly map[string]struct{}
}

// NewPropertyStore creates an empty PropertyStore.
func NewPropertyStore() *PropertyStore {
	return &PropertyStore{
		values:   make(map[string]string),
		readOnly: make(map[string]struct{}),
	}
}

// Get returns the value of the named property and whether it is defined.
func (s *PropertyStore) Get(name string) (string, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Contains reports whether the named property is defined.
func (s *PropertyStore) Contains(name string) bool {
	_, ok := s.values[name]
	return ok
}

// IsReadOnly reports whether the named property is read-only.
func (s *PropertyStore) IsReadOnly(name string) bool {
	_, ok := s.readOnly[name]
	return ok
}

// Set writes a property. Writes to a read-only property are ignored and the
// first value is retained. It fails only for invalid property names.
func (s *PropertyStore) Set(name, value string, readOnly bool) error {
	if err := ValidatePropertyName(name); err != nil {
		return err
	}
	if s.IsReadOnly(name) {
		return nil
	}
	s.write(name, value, readOnly)
	return nil
}

// Define writes a property like Set but rejects writes to read-only properties.
func (s *PropertyStore) Define(name, value string, readOnly bool) error {
	if err := ValidatePropertyName(name); err != nil {
		return err
	}
	if s.IsReadOnly(name) {
		err := zerr.Wrap(ErrReadOnlyProperty, fmt.Sprintf("property '%s' is read-only and cannot be overwritten", name))
		return zerr.With(err, "property", name)
	}
	s.write(name, value, readOnly)
	return nil
}

func (s *PropertyStore) write(name, value string, readOnly bool) {
	s.values[name] = value
	if readOnly {
		s.readOnly[name] = struct{}{}
	}
}

// Names returns the defined property names in sorted order.
func (s *PropertyStore) Names() []string {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Expand replaces every ${name} reference in text with the property value.
// Expansion is a single left-to-right pass: substituted values are not
// scanned again. "$${" yields a literal "${", and an unterminated or empty
// reference is kept as literal text.
//
// Expanding the result again is a no-op only when text holds no references
// and no escapes: an escaped "$${x}" becomes "${x}", which a second pass
// treats as a reference.
func (s *PropertyStore) Expand(text string) (string, error) {
	if !strings.Contains(text, "${") {
		return text, nil
	}

	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); {
		if strings.HasPrefix(text[i:], "$${") {
			b.WriteString("${")
			i += 3
			continue
		}
		if !strings.HasPrefix(text[i:], "${") {
			b.WriteByte(text[i])
			i++
			continue
		}

		end := strings.IndexByte(text[i+2:], '}')
		if end < 0 {
			b.WriteString(text[i:])
			break
		}

		name := strings.TrimSpace(text[i+2 : i+2+end])
		if name == "" {
			b.WriteString(text[i : i+3+end])
			i += 3 + end
			continue
		}

		value, ok := s.values[name]
		if !ok {
			err := zerr.Wrap(ErrUndefinedProperty, fmt.Sprintf("property '%s' has not been set", name))
			return "", zerr.With(err, "property", name)
		}
		b.WriteString(value)
		i += 3 + end
	}

	return b.String(), nil
}

// ValidatePropertyName checks that name is a valid property name.
func ValidatePropertyName(name string) error {
	if !validPropertyName.MatchString(name) {
		err := zerr.Wrap(ErrInvalidPropertyName, fmt.Sprintf("'%s' is not a valid property name", name))
		return zerr.With(err, "property", name)
	}
	return nil
}
