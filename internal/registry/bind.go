package registry

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/zerr"
)

// Attributes handled by the registry and the engine rather than the element.
const (
	AttrIf          = "if"
	AttrUnless      = "unless"
	AttrFailOnError = "failonerror"
	AttrID          = "id"
	AttrRefID       = "refid"
)

func isReserved(kind domain.ElementKind, name string) bool {
	switch name {
	case AttrIf, AttrUnless:
		return true
	case AttrFailOnError:
		return kind == domain.KindTask
	case AttrID, AttrRefID:
		return kind == domain.KindDataType
	default:
		return false
	}
}

// Create materializes el into a new instance of its registered type.
//
// Attribute values are expanded through the scope's property store, coerced
// and bound in the order they appear. Required attributes are checked next,
// then unknown attributes are rejected. Nested elements are materialized
// recursively, skipping those gated out by their own guard. The instance's
// Initialize hook, if any, runs last.
func (r *Registry) Create(el *domain.Element, scope *Scope) (ports.Element, error) {
	b, ok := r.binding(el.Name)
	if !ok {
		return nil, elementError(domain.ErrUnknownElement, el, "unknown element '%s'", el.Name)
	}
	return r.create(el, b.factory(), b.descriptor, scope)
}

func (r *Registry) create(el *domain.Element, instance ports.Element, desc *domain.Descriptor, scope *Scope) (ports.Element, error) {
	if desc.Kind == domain.KindDataType {
		if ref, ok, err := r.reference(el, desc, scope); ok || err != nil {
			return ref, err
		}
	}

	supplied := make(map[string]struct{}, len(el.Attributes))
	var unknown []domain.Attribute

	if el.HasText {
		if desc.TextAttribute == "" {
			return nil, elementError(domain.ErrInvalidAttribute, el, "element '%s' does not accept text content", el.Name)
		}
		if _, dup := el.Attr(desc.TextAttribute); dup {
			return nil, attributeError(domain.ErrInvalidAttribute, el, desc.TextAttribute,
				"attribute '%s' of '%s' is given both as text and as an attribute", desc.TextAttribute, el.Name)
		}
		spec, _ := desc.Attribute(desc.TextAttribute)
		if err := r.bindAttribute(el, instance, spec, el.Text, scope); err != nil {
			return nil, err
		}
		supplied[spec.Name] = struct{}{}
	}

	for _, attr := range el.Attributes {
		if isReserved(desc.Kind, attr.Name) {
			continue
		}
		spec, ok := desc.Attribute(attr.Name)
		if !ok {
			unknown = append(unknown, attr)
			continue
		}
		if _, dup := supplied[attr.Name]; dup {
			return nil, attributeError(domain.ErrInvalidAttribute, el, attr.Name,
				"attribute '%s' of '%s' is given more than once", attr.Name, el.Name)
		}
		if err := r.bindAttribute(el, instance, spec, attr.Value, scope); err != nil {
			return nil, err
		}
		supplied[attr.Name] = struct{}{}
	}

	for _, spec := range desc.Attributes {
		if _, ok := supplied[spec.Name]; spec.Required && !ok {
			return nil, attributeError(domain.ErrMissingRequiredAttribute, el, spec.Name,
				"'%s' requires attribute '%s'", el.Name, spec.Name)
		}
	}

	if len(unknown) > 0 {
		attr := unknown[0]
		err := attributeError(domain.ErrUnknownAttribute, el, attr.Name,
			"'%s' does not support attribute '%s'", el.Name, attr.Name)
		return nil, zerr.With(err, "location", attr.Location.String())
	}

	if err := r.bindChildren(el, instance, desc, scope); err != nil {
		return nil, err
	}

	if init, ok := instance.(ports.Initializer); ok {
		if err := init.Initialize(); err != nil {
			msg := fmt.Sprintf("invalid '%s' element", el.Name)
			if !el.Location.IsZero() {
				msg = el.Location.String() + ": " + msg
			}
			return nil, zerr.With(zerr.Wrap(err, msg), "element", el.Name)
		}
	}

	if desc.Kind == domain.KindDataType {
		if err := r.store(el, desc, instance, scope); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

func (r *Registry) bindAttribute(el *domain.Element, instance ports.Element, spec *domain.AttributeSpec, raw string, scope *Scope) error {
	expanded, err := scope.Properties.Expand(raw)
	if err != nil {
		msg := fmt.Sprintf("cannot expand attribute '%s' of '%s'", spec.Name, el.Name)
		if !el.Location.IsZero() {
			msg = el.Location.String() + ": " + msg
		}
		return zerr.With(zerr.Wrap(err, msg), "location", el.Location.String())
	}

	value, rule, ok := coerce(spec, expanded, scope.BaseDir)
	if !ok {
		err := attributeError(domain.ErrInvalidAttribute, el, spec.Name,
			"attribute '%s' of '%s' %s, got '%s'", spec.Name, el.Name, rule, expanded)
		return zerr.With(zerr.With(err, "value", expanded), "rule", rule)
	}

	if err := spec.Bind(instance, value); err != nil {
		wrapped := attributeError(domain.ErrInvalidAttribute, el, spec.Name,
			"attribute '%s' of '%s' is invalid: %s", spec.Name, el.Name, err.Error())
		return zerr.With(wrapped, "value", expanded)
	}
	return nil
}

// coerce converts the expanded text per the attribute kind. On failure it
// returns a description of the rule that was violated.
func coerce(spec *domain.AttributeSpec, value, baseDir string) (any, string, bool) {
	switch spec.Kind {
	case domain.AttrBool:
		b, ok := domain.ParseBool(value)
		if !ok {
			return nil, "must be 'true' or 'false'", false
		}
		return b, "", true
	case domain.AttrInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, "must be an integer", false
		}
		return n, "", true
	case domain.AttrEnum:
		for _, allowed := range spec.Values {
			if strings.EqualFold(strings.TrimSpace(value), allowed) {
				return allowed, "", true
			}
		}
		return nil, fmt.Sprintf("must be one of '%s'", strings.Join(spec.Values, "', '")), false
	case domain.AttrPath:
		if strings.TrimSpace(value) == "" {
			return nil, "must be a non-empty path", false
		}
		if !filepath.IsAbs(value) && baseDir != "" {
			value = filepath.Join(baseDir, value)
		}
		return filepath.Clean(value), "", true
	default:
		return value, "", true
	}
}

func (r *Registry) bindChildren(el *domain.Element, instance ports.Element, desc *domain.Descriptor, scope *Scope) error {
	bound := make(map[string]int, len(el.Children))

	for _, child := range el.Children {
		spec, ok := desc.Child(child.Name)
		if !ok {
			return elementError(domain.ErrInvalidNesting, child,
				"'%s' does not support nested element '%s'", el.Name, child.Name)
		}

		run, _, err := child.Guard().Evaluate(scope.Properties)
		if err != nil {
			return locate(err, child)
		}
		if !run {
			continue
		}

		if !spec.Repeated && bound[child.Name] > 0 {
			return elementError(domain.ErrInvalidNesting, child,
				"nested element '%s' may appear only once in '%s'", child.Name, el.Name)
		}

		value, err := r.createChild(child, spec, scope)
		if err != nil {
			return err
		}
		if err := spec.Bind(instance, value); err != nil {
			return elementError(domain.ErrInvalidNesting, child,
				"cannot bind nested element '%s' of '%s': %s", child.Name, el.Name, err.Error())
		}
		bound[child.Name]++
	}
	return nil
}

func (r *Registry) createChild(child *domain.Element, spec *domain.ChildSpec, scope *Scope) (ports.Element, error) {
	if spec.New != nil {
		instance, ok := spec.New().(ports.Element)
		if !ok {
			return nil, elementError(domain.ErrInvalidDescriptor, child,
				"nested element '%s' does not describe itself", child.Name)
		}
		desc := instance.Describe()
		if err := validateDescriptor(desc); err != nil {
			return nil, err
		}
		return r.create(child, instance, desc, scope)
	}

	name := spec.ElementName()
	b, ok := r.binding(name)
	if !ok {
		return nil, elementError(domain.ErrUnknownElement, child, "unknown element '%s'", name)
	}
	return r.create(child, b.factory(), b.descriptor, scope)
}

// reference resolves a refid. ok is false when el is a declaration rather than a reference.
func (r *Registry) reference(el *domain.Element, desc *domain.Descriptor, scope *Scope) (ports.Element, bool, error) {
	raw, ok := el.Attr(AttrRefID)
	if !ok {
		return nil, false, nil
	}
	for _, a := range el.Attributes {
		if a.Name != AttrRefID && a.Name != AttrIf && a.Name != AttrUnless {
			return nil, true, attributeError(domain.ErrInvalidAttribute, el, AttrRefID,
				"'%s' cannot be combined with other attributes on '%s'", AttrRefID, el.Name)
		}
	}
	if len(el.Children) > 0 || el.HasText {
		return nil, true, attributeError(domain.ErrInvalidAttribute, el, AttrRefID,
			"'%s' cannot be combined with nested elements on '%s'", AttrRefID, el.Name)
	}

	id, err := scope.Properties.Expand(raw)
	if err != nil {
		return nil, true, locate(err, el)
	}
	ref, ok := scope.lookup(id)
	if !ok {
		err := elementError(domain.ErrUnknownReference, el, "reference '%s' is not defined", id)
		return nil, true, zerr.With(err, "refid", id)
	}
	if ref.element != desc.Name {
		err := attributeError(domain.ErrInvalidAttribute, el, AttrRefID,
			"reference '%s' is a '%s', not a '%s'", id, ref.element, desc.Name)
		return nil, true, zerr.With(err, "refid", id)
	}
	return ref.value, true, nil
}

func (r *Registry) store(el *domain.Element, desc *domain.Descriptor, instance ports.Element, scope *Scope) error {
	raw, ok := el.Attr(AttrID)
	if !ok {
		return nil
	}
	id, err := scope.Properties.Expand(raw)
	if err != nil {
		return locate(err, el)
	}
	if strings.TrimSpace(id) == "" {
		return attributeError(domain.ErrInvalidAttribute, el, AttrID, "attribute '%s' of '%s' must not be empty", AttrID, el.Name)
	}
	scope.define(id, desc.Name, instance)
	return nil
}

func elementError(sentinel error, el *domain.Element, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if !el.Location.IsZero() {
		msg = el.Location.String() + ": " + msg
	}
	err := zerr.With(zerr.Wrap(sentinel, msg), "element", el.Name)
	return zerr.With(err, "location", el.Location.String())
}

func attributeError(sentinel error, el *domain.Element, attr, format string, args ...any) error {
	return zerr.With(elementError(sentinel, el, format, args...), "attribute", attr)
}

// locate prefixes err with the element's location.
func locate(err error, el *domain.Element) error {
	if el.Location.IsZero() {
		return err
	}
	return zerr.With(zerr.Wrap(err, el.Location.String()+": in '"+el.Name+"'"), "location", el.Location.String())
}
