package tasks

import (
	"context"
	"fmt"

	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/emmet/internal/registry"
)

// Property sets a property.
type Property struct {
	Name      string
	Value     string
	ReadOnly  bool
	Overwrite bool
}

// Describe implements ports.Element.
func (p *Property) Describe() *domain.Descriptor {
	return &domain.Descriptor{
		Name: "property",
		Kind: domain.KindTask,
		Attributes: []domain.AttributeSpec{
			registry.String("name", func(p *Property, v string) { p.Name = v },
				registry.Required(),
				registry.Validate(func(v any) error { return domain.ValidatePropertyName(v.(string)) })),
			registry.String("value", func(p *Property, v string) { p.Value = v }, registry.Required()),
			registry.Bool("readonly", func(p *Property, v bool) { p.ReadOnly = v }),
			registry.Bool("overwrite", func(p *Property, v bool) { p.Overwrite = v }),
		},
	}
}

// Execute implements ports.Task.
func (p *Property) Execute(_ context.Context, env ports.TaskEnv) error {
	props := env.Properties()

	if !p.Overwrite && props.Contains(p.Name) {
		env.Log(domain.LevelVerbose, fmt.Sprintf("property '%s' already set, keeping its value", p.Name))
		return nil
	}
	if props.IsReadOnly(p.Name) {
		env.Log(domain.LevelVerbose, fmt.Sprintf("read-only property '%s' cannot be overwritten", p.Name))
		return nil
	}
	return props.Set(p.Name, p.Value, p.ReadOnly)
}
