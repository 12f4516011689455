package tasks

import (
	"context"

	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/emmet/internal/registry"
	"go.trai.ch/zerr"
)

// Fail stops the build.
type Fail struct {
	Message string
}

// Describe implements ports.Element.
func (f *Fail) Describe() *domain.Descriptor {
	return &domain.Descriptor{
		Name:          "fail",
		Kind:          domain.KindTask,
		TextAttribute: "message",
		Attributes: []domain.AttributeSpec{
			registry.String("message", func(f *Fail, v string) { f.Message = v }),
		},
	}
}

// Execute implements ports.Task.
func (f *Fail) Execute(context.Context, ports.TaskEnv) error {
	if f.Message == "" {
		return zerr.New("no message")
	}
	return zerr.New(f.Message)
}
