// Package script loads YAML build scripts into the domain project model.
package script

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ScriptLoader = (*Loader)(nil)

// Top-level and target keys.
const (
	keyProject     = "project"
	keyDescription = "description"
	keyDefault     = "default"
	keyBaseDir     = "basedir"
	keyProperties  = "properties"
	keyTypes       = "types"
	keyTargets     = "targets"

	keyName    = "name"
	keyDepends = "depends"
	keyIf      = "if"
	keyUnless  = "unless"
	keyTasks   = "tasks"
)

// Loader implements ports.ScriptLoader for YAML documents.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads and parses the build script at path.
func (l *Loader) Load(path string) (*domain.Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, readError(path, err)
	}
	// #nosec G304 -- path is the build script selected by the user
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, readError(path, err)
	}

	p := &parser{file: path}
	project, err := p.parse(data)
	if err != nil {
		return nil, err
	}
	project.File = abs
	project.BaseDir = resolveBaseDir(abs, project.BaseDir)

	l.Logger.Debug(fmt.Sprintf("loaded build script %s with %d targets", path, len(project.Targets())))
	return project, nil
}

func readError(path string, err error) error {
	return zerr.With(zerr.Wrap(domain.ErrScriptReadFailed,
		fmt.Sprintf("failed to read build script '%s': %v", path, err)), "path", path)
}

// resolveBaseDir resolves the configured base directory against the
// directory of the script.
func resolveBaseDir(scriptPath, configured string) string {
	scriptDir := filepath.Dir(scriptPath)
	if configured == "" {
		return filepath.Clean(scriptDir)
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Clean(filepath.Join(scriptDir, configured))
}

// parser turns a yaml.Node tree into a project, keeping source locations.
type parser struct {
	file string
}

func (p *parser) loc(n *yaml.Node) domain.Location {
	return domain.Location{File: p.file, Line: n.Line, Column: n.Column}
}

func (p *parser) fail(n *yaml.Node, format string, args ...any) error {
	loc := p.loc(n)
	err := zerr.Wrap(domain.ErrScriptFormat, loc.String()+": "+fmt.Sprintf(format, args...))
	return zerr.With(err, "location", loc.String())
}

func (p *parser) parse(data []byte) (*domain.Project, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		msg := strings.TrimPrefix(err.Error(), "yaml: ")
		return nil, zerr.With(zerr.Wrap(domain.ErrScriptFormat, p.file+": "+msg), "location", p.file)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrScriptFormat, p.file+": build script is empty"), "location", p.file)
	}

	root := resolve(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, p.fail(root, "the build script must be a mapping")
	}

	project := domain.NewProject("")
	project.Location = p.loc(root)

	seen := make(map[string]bool)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], resolve(root.Content[i+1])
		if seen[key.Value] {
			return nil, p.fail(key, "duplicate key '%s'", key.Value)
		}
		seen[key.Value] = true

		if err := p.parseTopLevel(project, key, value); err != nil {
			return nil, err
		}
	}
	return project, nil
}

func (p *parser) parseTopLevel(project *domain.Project, key, value *yaml.Node) error {
	var err error
	switch key.Value {
	case keyProject:
		project.Name, err = p.scalar(key, value)
	case keyDescription:
		project.Description, err = p.scalar(key, value)
	case keyDefault:
		project.Default, err = p.scalar(key, value)
	case keyBaseDir:
		project.BaseDir, err = p.scalar(key, value)
	case keyProperties:
		project.Properties, err = p.parseProperties(value)
	case keyTypes:
		project.Types, err = p.parseInvocations(value)
	case keyTargets:
		err = p.parseTargets(project, value)
	default:
		err = p.fail(key, "unknown top-level element '%s'", key.Value)
	}
	return err
}

func (p *parser) scalar(key, value *yaml.Node) (string, error) {
	switch value.Kind {
	case yaml.ScalarNode:
		if isNull(value) {
			return "", nil
		}
		return value.Value, nil
	default:
		return "", p.fail(value, "'%s' must be a scalar value", key.Value)
	}
}

// parseProperties reads the project-level property declarations. Each item
// is the attribute mapping of a property element.
func (p *parser) parseProperties(n *yaml.Node) ([]*domain.Element, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, p.fail(n, "'%s' must be a list", keyProperties)
	}
	out := make([]*domain.Element, 0, len(n.Content))
	for _, item := range n.Content {
		item = resolve(item)
		if item.Kind != yaml.MappingNode {
			return nil, p.fail(item, "a property declaration must be a mapping")
		}
		el := &domain.Element{Name: "property", Location: p.loc(item)}
		for i := 0; i+1 < len(item.Content); i += 2 {
			k, v := item.Content[i], resolve(item.Content[i+1])
			if v.Kind != yaml.ScalarNode {
				return nil, p.fail(v, "attribute '%s' of a property must be a scalar value", k.Value)
			}
			el.Attributes = append(el.Attributes, domain.Attribute{Name: k.Value, Value: scalarValue(v), Location: p.loc(v)})
		}
		out = append(out, el)
	}
	return out, nil
}

func (p *parser) parseTargets(project *domain.Project, n *yaml.Node) error {
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		return p.fail(n, "'%s' must be a list", keyTargets)
	}
	for _, item := range n.Content {
		t, err := p.parseTarget(resolve(item))
		if err != nil {
			return err
		}
		if err := project.AddTarget(t); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parseTarget(n *yaml.Node) (*domain.Target, error) {
	if n.Kind != yaml.MappingNode {
		return nil, p.fail(n, "a target must be a mapping")
	}
	t := &domain.Target{Location: p.loc(n)}

	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], resolve(n.Content[i+1])
		var err error
		switch key.Value {
		case keyName:
			t.Name, err = p.scalar(key, value)
		case keyDescription:
			t.Description, err = p.scalar(key, value)
		case keyDepends:
			t.Depends, err = p.parseNames(key, value)
		case keyIf:
			var expr string
			expr, err = p.scalar(key, value)
			t.Guard.If = domain.Condition{Expr: expr, Set: true}
		case keyUnless:
			var expr string
			expr, err = p.scalar(key, value)
			t.Guard.Unless = domain.Condition{Expr: expr, Set: true}
		case keyTasks:
			t.Tasks, err = p.parseInvocations(value)
		default:
			err = p.fail(key, "unknown target element '%s'", key.Value)
		}
		if err != nil {
			return nil, err
		}
	}

	if strings.TrimSpace(t.Name) == "" {
		return nil, p.fail(n, "target has no name")
	}
	return t, nil
}

// parseNames accepts a list of scalars or a comma-separated scalar.
func (p *parser) parseNames(key, n *yaml.Node) ([]string, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return domain.SplitNames(scalarValue(n)), nil
	case yaml.SequenceNode:
		names := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			item = resolve(item)
			if item.Kind != yaml.ScalarNode {
				return nil, p.fail(item, "entries of '%s' must be target names", key.Value)
			}
			names = append(names, domain.SplitNames(item.Value)...)
		}
		return names, nil
	default:
		return nil, p.fail(n, "'%s' must be a list of target names", key.Value)
	}
}

// parseInvocations reads a list of single-key element mappings.
func (p *parser) parseInvocations(n *yaml.Node) ([]*domain.Element, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, p.fail(n, "expected a list of elements")
	}
	out := make([]*domain.Element, 0, len(n.Content))
	for _, item := range n.Content {
		item = resolve(item)
		if item.Kind != yaml.MappingNode || len(item.Content) != 2 {
			return nil, p.fail(item, "an element must be a mapping with exactly one key naming the element")
		}
		el := &domain.Element{Name: item.Content[0].Value, Location: p.loc(item.Content[0])}
		if err := p.parseBody(el, resolve(item.Content[1])); err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}

// parseBody fills el from its YAML body. Scalars become text, scalar
// mapping values become attributes, and nested mappings or lists become
// child elements.
func (p *parser) parseBody(el *domain.Element, body *yaml.Node) error {
	switch body.Kind {
	case yaml.ScalarNode:
		if isNull(body) {
			return nil
		}
		el.Text, el.HasText = body.Value, true
		return nil
	case yaml.MappingNode:
		seen := make(map[string]bool)
		for i := 0; i+1 < len(body.Content); i += 2 {
			key, value := body.Content[i], resolve(body.Content[i+1])
			if err := p.parseMember(el, key, value, seen); err != nil {
				return err
			}
		}
		return nil
	default:
		return p.fail(body, "the body of '%s' must be a scalar or a mapping", el.Name)
	}
}

func (p *parser) parseMember(el *domain.Element, key, value *yaml.Node, seen map[string]bool) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if seen[key.Value] {
			return p.fail(key, "duplicate attribute '%s' on '%s'", key.Value, el.Name)
		}
		seen[key.Value] = true
		el.Attributes = append(el.Attributes, domain.Attribute{
			Name: key.Value, Value: scalarValue(value), Location: p.loc(value),
		})
	case yaml.MappingNode:
		child := &domain.Element{Name: key.Value, Location: p.loc(key)}
		if err := p.parseBody(child, value); err != nil {
			return err
		}
		el.Children = append(el.Children, child)
	case yaml.SequenceNode:
		for _, item := range value.Content {
			item = resolve(item)
			child := &domain.Element{Name: key.Value, Location: p.loc(item)}
			if err := p.parseBody(child, item); err != nil {
				return err
			}
			el.Children = append(el.Children, child)
		}
	default:
		return p.fail(value, "unsupported value for '%s'", key.Value)
	}
	return nil
}

// resolve follows YAML aliases.
func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func scalarValue(n *yaml.Node) string {
	if isNull(n) {
		return ""
	}
	return n.Value
}
