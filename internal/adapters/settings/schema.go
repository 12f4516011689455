package settings

import "github.com/zclconf/go-cty/cty"

// File is the decoded settings file.
type File struct {
	DefaultFramework string           `hcl:"default_framework,optional"`
	Properties       cty.Value        `hcl:"properties,optional"`
	Frameworks       []FrameworkBlock `hcl:"framework,block"`
}

// FrameworkBlock is one framework declaration.
type FrameworkBlock struct {
	Name        string    `hcl:"name,label"`
	Description string    `hcl:"description,optional"`
	Properties  cty.Value `hcl:"properties,optional"`
}
