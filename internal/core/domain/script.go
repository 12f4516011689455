// Package domain contains the core domain models of the build engine: properties,
// the script model, the target graph, guards, events and element descriptors.
package domain

import (
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Location identifies a position in a build script.
type Location struct {
	File   string
	Line   int
	Column int
}

// String formats the location as file:line:column, omitting unknown parts.
func (l Location) String() string {
	switch {
	case l.File == "" && l.Line == 0:
		return ""
	case l.Line == 0:
		return l.File
	default:
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
}

// IsZero reports whether the location carries no information.
func (l Location) IsZero() bool {
	return l.File == "" && l.Line == 0
}

// Attribute is a raw name/value pair as written in the script.
type Attribute struct {
	Name     string
	Value    string
	Location Location
}

// Element is a declarative element: a task invocation, a data type declaration
// or a nested configuration element.
type Element struct {
	Name       string
	Attributes []Attribute
	Children   []*Element
	// Text holds scalar content given in place of an attribute mapping.
	Text     string
	HasText  bool
	Location Location
}

// Attr returns the raw value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Guard returns the if/unless guard declared on the element.
func (e *Element) Guard() Guard {
	var g Guard
	if v, ok := e.Attr("if"); ok {
		g.If = Condition{Expr: v, Set: true}
	}
	if v, ok := e.Attr("unless"); ok {
		g.Unless = Condition{Expr: v, Set: true}
	}
	return g
}

// Target is a named, dependency-ordered unit of work.
type Target struct {
	Name        string
	Description string
	Depends     []string
	Guard       Guard
	Tasks       []*Element
	Location    Location

	executed bool
}

// Executed reports whether the target already ran in the current build.
func (t *Target) Executed() bool {
	return t.executed
}

// MarkExecuted flags the target as executed.
func (t *Target) MarkExecuted() {
	t.executed = true
}

// Project is the in-memory representation of a build script.
type Project struct {
	Name        string
	Description string
	Default     string
	// BaseDir is the absolute directory relative paths resolve against.
	BaseDir string
	// File is the absolute path of the script the project was loaded from.
	File string
	// Properties are project-level property declarations, executed in order at build start.
	Properties []*Element
	// Types are project-level data type declarations.
	Types    []*Element
	Location Location

	targets []*Target
	index   map[string]*Target
}

// NewProject creates an empty project.
func NewProject(name string) *Project {
	return &Project{
		Name:  name,
		index: make(map[string]*Target),
	}
}

// AddTarget adds a target. Target names are unique within a project.
func (p *Project) AddTarget(t *Target) error {
	if existing, ok := p.index[t.Name]; ok {
		err := zerr.Wrap(ErrDuplicateTarget, fmt.Sprintf(
			"%s: target '%s' is already defined at %s", t.Location, t.Name, existing.Location))
		return zerr.With(zerr.With(err, "target", t.Name), "location", t.Location.String())
	}
	p.targets = append(p.targets, t)
	p.index[t.Name] = t
	return nil
}

// Target returns the target with the given name.
func (p *Project) Target(name string) (*Target, bool) {
	t, ok := p.index[name]
	return t, ok
}

// Targets returns the targets in declaration order.
func (p *Project) Targets() []*Target {
	return slices.Clone(p.targets)
}

// Graph builds the dependency graph over the project's targets.
func (p *Project) Graph() *Graph {
	g := NewGraph()
	for _, t := range p.targets {
		g.AddTarget(t.Name, t.Depends)
	}
	return g
}

// SplitNames splits a comma-separated list of names, trimming whitespace and
// dropping empty entries.
func SplitNames(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
