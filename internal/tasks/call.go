package tasks

import (
	"context"

	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/emmet/internal/registry"
)

// Call runs another target and its dependencies. A target that already ran
// in the current build is not run again.
type Call struct {
	Target string
}

// Describe implements ports.Element.
func (c *Call) Describe() *domain.Descriptor {
	return &domain.Descriptor{
		Name: "call",
		Kind: domain.KindTask,
		Attributes: []domain.AttributeSpec{
			registry.String("target", func(c *Call, v string) { c.Target = v }, registry.Required()),
		},
	}
}

// Execute implements ports.Task.
func (c *Call) Execute(ctx context.Context, env ports.TaskEnv) error {
	return env.ExecuteTarget(ctx, c.Target)
}
