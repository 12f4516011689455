package tasks

import (
	"context"
	"fmt"

	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/emmet/internal/registry"
)

// Checksum stores the content hash of a file in a property.
type Checksum struct {
	File     string
	Property string

	hasher ports.Hasher
}

// Describe implements ports.Element.
func (c *Checksum) Describe() *domain.Descriptor {
	return &domain.Descriptor{
		Name: "checksum",
		Kind: domain.KindTask,
		Attributes: []domain.AttributeSpec{
			registry.Path("file", func(c *Checksum, v string) { c.File = v }, registry.Required()),
			registry.String("property", func(c *Checksum, v string) { c.Property = v },
				registry.Required(),
				registry.Validate(func(v any) error { return domain.ValidatePropertyName(v.(string)) })),
		},
	}
}

// Execute implements ports.Task.
func (c *Checksum) Execute(_ context.Context, env ports.TaskEnv) error {
	sum, err := c.hasher.ComputeFileHash(c.File)
	if err != nil {
		return err
	}
	value := fmt.Sprintf("%016x", sum)
	env.Log(domain.LevelVerbose, fmt.Sprintf("%s  %s", value, c.File))
	return env.Properties().Set(c.Property, value, false)
}
