package runner

import (
	"context"
	"io"

	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports"
)

var _ ports.TaskEnv = (*taskEnv)(nil)

type taskEnv struct {
	*execution
	target string
	task   string
}

func (t *taskEnv) Project() *domain.Project {
	return t.project
}

func (t *taskEnv) Properties() *domain.PropertyStore {
	return t.props
}

func (t *taskEnv) BaseDir() string {
	return t.project.BaseDir
}

func (t *taskEnv) Log(level domain.Level, msg string) {
	t.message(level, t.target, t.task, msg)
}

func (t *taskEnv) Stdout() io.Writer {
	return t.stdout
}

func (t *taskEnv) Stderr() io.Writer {
	return t.stderr
}

func (t *taskEnv) ExecuteTarget(ctx context.Context, name string) error {
	return t.executeTargets(ctx, name)
}
