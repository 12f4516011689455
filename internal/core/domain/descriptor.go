package domain

// ElementKind distinguishes elements with behavior from pure configuration.
type ElementKind int

const (
	// KindTask is an element that executes.
	KindTask ElementKind = iota
	// KindDataType is a value element that can be declared once and referenced by id.
	KindDataType
)

// String returns the name of the kind.
func (k ElementKind) String() string {
	if k == KindDataType {
		return "data type"
	}
	return "task"
}

// AttrKind is the coercion applied to an attribute value before binding.
type AttrKind int

const (
	// AttrString binds the expanded text as is.
	AttrString AttrKind = iota
	// AttrBool accepts true or false, case-insensitively.
	AttrBool
	// AttrInt accepts a base-10 integer.
	AttrInt
	// AttrEnum accepts one of a fixed token set, case-insensitively.
	AttrEnum
	// AttrPath accepts a non-empty path and resolves it against the base directory.
	AttrPath
)

// String returns the name of the attribute kind.
func (k AttrKind) String() string {
	switch k {
	case AttrBool:
		return "bool"
	case AttrInt:
		return "int"
	case AttrEnum:
		return "enum"
	case AttrPath:
		return "path"
	default:
		return "string"
	}
}

// AttributeSpec describes one recognized attribute.
type AttributeSpec struct {
	Name     string
	Kind     AttrKind
	Required bool
	// Values is the accepted token set of an AttrEnum attribute.
	Values []string
	// Bind stores the coerced value into the element instance. The value's
	// dynamic type is string, bool or int depending on Kind.
	Bind func(target, value any) error
}

// ChildSpec describes one recognized nested element slot.
type ChildSpec struct {
	Name     string
	Repeated bool
	// Element is the registered element name backing the slot. It defaults to Name.
	Element string
	// New constructs nested-only elements that are not registered by name.
	New func() any
	// Bind stores a materialized child into the element instance.
	Bind func(target, child any) error
}

// ElementName returns the registry name used to materialize the child.
func (c ChildSpec) ElementName() string {
	if c.Element != "" {
		return c.Element
	}
	return c.Name
}

// Descriptor is the binding metadata of an element type.
type Descriptor struct {
	Name       string
	Kind       ElementKind
	Attributes []AttributeSpec
	Children   []ChildSpec
	// TextAttribute names the attribute that receives scalar element text.
	TextAttribute string
}

// Attribute returns the spec of the named attribute.
func (d *Descriptor) Attribute(name string) (*AttributeSpec, bool) {
	for i := range d.Attributes {
		if d.Attributes[i].Name == name {
			return &d.Attributes[i], true
		}
	}
	return nil, false
}

// Child returns the spec of the named child slot.
func (d *Descriptor) Child(name string) (*ChildSpec, bool) {
	for i := range d.Children {
		if d.Children[i].Name == name {
			return &d.Children[i], true
		}
	}
	return nil, false
}
