package tasks

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/emmet/internal/registry"
	"go.trai.ch/zerr"
)

// defaultExcludes are skipped by every fileset unless disabled.
var defaultExcludes = []string{
	"**/.git/**",
	"**/.svn/**",
	"**/.hg/**",
	"**/CVS/**",
	"**/*~",
	"**/#*#",
	"**/.DS_Store",
}

// Pattern is a nested include or exclude pattern of a fileset.
type Pattern struct {
	Name string
}

// Describe implements ports.Element.
func (p *Pattern) Describe() *domain.Descriptor {
	return &domain.Descriptor{
		Name:          "pattern",
		Kind:          domain.KindDataType,
		TextAttribute: "name",
		Attributes: []domain.AttributeSpec{
			registry.String("name", func(p *Pattern, v string) { p.Name = v }, registry.Required()),
		},
	}
}

// FileSet selects files below a base directory by include and exclude patterns.
// Patterns use '/' separators and doublestar syntax: '*', '?', '**' and
// '{a,b}' alternatives.
type FileSet struct {
	BaseDir         string
	DefaultExcludes bool
	FailOnEmpty     bool
	Includes        []string
	Excludes        []string

	resolver ports.FileResolver
}

// Describe implements ports.Element.
func (f *FileSet) Describe() *domain.Descriptor {
	newPattern := func() *Pattern { return &Pattern{} }
	return &domain.Descriptor{
		Name: "fileset",
		Kind: domain.KindDataType,
		Attributes: []domain.AttributeSpec{
			registry.Path("basedir", func(f *FileSet, v string) { f.BaseDir = v }),
			registry.Bool("defaultexcludes", func(f *FileSet, v bool) { f.DefaultExcludes = v }),
			registry.Bool("failonempty", func(f *FileSet, v bool) { f.FailOnEmpty = v }),
		},
		Children: []domain.ChildSpec{
			registry.Children("include", func(f *FileSet, p *Pattern) { f.Includes = append(f.Includes, p.Name) },
				registry.Nested(newPattern)),
			registry.Children("exclude", func(f *FileSet, p *Pattern) { f.Excludes = append(f.Excludes, p.Name) },
				registry.Nested(newPattern)),
		},
	}
}

// Initialize implements ports.Initializer.
func (f *FileSet) Initialize() error {
	for _, p := range append(append([]string(nil), f.Includes...), f.Excludes...) {
		if strings.TrimSpace(p) == "" {
			return zerr.New("fileset patterns must not be empty")
		}
	}
	return nil
}

// Dir returns the directory the patterns are relative to.
func (f *FileSet) Dir(defaultDir string) string {
	if f.BaseDir != "" {
		return f.BaseDir
	}
	return defaultDir
}

// Files returns the absolute paths of the selected files in sorted order.
func (f *FileSet) Files(defaultDir string) ([]string, error) {
	if len(f.Includes) == 0 {
		if f.FailOnEmpty {
			return nil, zerr.New("fileset has no include patterns")
		}
		return nil, nil
	}
	excludes := f.Excludes
	if f.DefaultExcludes {
		excludes = append(append([]string(nil), excludes...), defaultExcludes...)
	}

	dir := f.Dir(defaultDir)
	files, err := f.resolver.Resolve(dir, f.Includes, excludes)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 && f.FailOnEmpty {
		return nil, zerr.With(zerr.New("fileset matched no files"), "basedir", dir)
	}
	return files, nil
}

// EnvVar is an environment variable passed to an external process.
type EnvVar struct {
	Name  string
	Value string
	Path  string

	hasValue bool
}

// Describe implements ports.Element.
func (e *EnvVar) Describe() *domain.Descriptor {
	return &domain.Descriptor{
		Name: "env",
		Kind: domain.KindDataType,
		Attributes: []domain.AttributeSpec{
			registry.String("name", func(e *EnvVar, v string) { e.Name = v }, registry.Required()),
			registry.String("value", func(e *EnvVar, v string) { e.Value, e.hasValue = v, true }),
			registry.String("path", func(e *EnvVar, v string) { e.Path = v }),
		},
	}
}

// Initialize implements ports.Initializer.
func (e *EnvVar) Initialize() error {
	if e.hasValue && e.Path != "" {
		return zerr.New("'value' and 'path' cannot be combined")
	}
	if strings.ContainsAny(e.Name, "=\x00") || strings.TrimSpace(e.Name) == "" {
		return zerr.With(zerr.New("invalid environment variable name"), "name", e.Name)
	}
	return nil
}

// Resolve returns the variable value. Entries of a path value are resolved
// against baseDir and joined with the platform list separator.
func (e *EnvVar) Resolve(baseDir string) string {
	if e.Path == "" {
		return e.Value
	}
	parts := filepath.SplitList(e.Path)
	for i, p := range parts {
		if !filepath.IsAbs(p) {
			parts[i] = filepath.Join(baseDir, p)
		}
	}
	return strings.Join(parts, string(filepath.ListSeparator))
}

// Arg is a command line argument of an external process.
type Arg struct {
	Value string
	File  string
	Line  string

	set int
}

// Describe implements ports.Element.
func (a *Arg) Describe() *domain.Descriptor {
	return &domain.Descriptor{
		Name:          "arg",
		Kind:          domain.KindDataType,
		TextAttribute: "value",
		Attributes: []domain.AttributeSpec{
			registry.String("value", func(a *Arg, v string) { a.Value = v; a.set++ }),
			registry.Path("file", func(a *Arg, v string) { a.File = v; a.set++ }),
			registry.String("line", func(a *Arg, v string) { a.Line = v; a.set++ }),
		},
	}
}

// Initialize implements ports.Initializer.
func (a *Arg) Initialize() error {
	if a.set != 1 {
		return zerr.New(fmt.Sprintf("exactly one of 'value', 'file' or 'line' is required, got %d", a.set))
	}
	return nil
}

// Args returns the arguments the element contributes.
func (a *Arg) Args() []string {
	switch {
	case a.File != "":
		return []string{a.File}
	case a.Line != "":
		return strings.Fields(a.Line)
	default:
		return []string{a.Value}
	}
}
