package tasks

import (
	"context"
	"os"
	"path/filepath"

	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/emmet/internal/registry"
	"go.trai.ch/zerr"
)

// Echo writes a message to the build log or to a file.
type Echo struct {
	Message string
	Level   string
	File    string
	Append  bool
}

// Describe implements ports.Element.
func (e *Echo) Describe() *domain.Descriptor {
	return &domain.Descriptor{
		Name:          "echo",
		Kind:          domain.KindTask,
		TextAttribute: "message",
		Attributes: []domain.AttributeSpec{
			registry.String("message", func(e *Echo, v string) { e.Message = v }),
			registry.Enum("level", domain.LevelNames(), func(e *Echo, v string) { e.Level = v }),
			registry.Path("file", func(e *Echo, v string) { e.File = v }),
			registry.Bool("append", func(e *Echo, v bool) { e.Append = v }),
		},
	}
}

// Execute implements ports.Task.
func (e *Echo) Execute(_ context.Context, env ports.TaskEnv) error {
	if e.File == "" {
		level, _ := domain.ParseLevel(e.Level)
		env.Log(level, e.Message)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(e.File), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", filepath.Dir(e.File))
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if e.Append {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(e.File, flags, domain.FilePerm) //nolint:gosec // path comes from the build script
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open file"), "path", e.File)
	}
	if _, err := f.WriteString(e.Message + "\n"); err != nil {
		_ = f.Close()
		return zerr.With(zerr.Wrap(err, "failed to write file"), "path", e.File)
	}
	return f.Close()
}
