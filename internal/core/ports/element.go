package ports

import (
	"context"
	"io"

	"go.trai.ch/emmet/internal/core/domain"
)

// Element is implemented by every task and data type the registry can construct.
type Element interface {
	// Describe returns the binding descriptor of the element type.
	// It is called once per type and the result is cached.
	Describe() *domain.Descriptor
}

// Task is an element with behavior.
type Task interface {
	Element
	// Execute runs the task. A returned error fails the task.
	Execute(ctx context.Context, env TaskEnv) error
}

// Initializer is implemented by elements that need a hook after all of their
// attributes and children have been bound.
type Initializer interface {
	Initialize() error
}

// TaskEnv is the view of the running build handed to a task.
//
//go:generate mockgen -source=element.go -destination=mocks/mock_element.go -package=mocks
type TaskEnv interface {
	// Project returns the project being built.
	Project() *domain.Project
	// Properties returns the property store of the build run.
	Properties() *domain.PropertyStore
	// BaseDir returns the directory relative paths resolve against.
	BaseDir() string
	// Log publishes a message event attributed to the running task.
	Log(level domain.Level, msg string)
	// Stdout and Stderr receive process output produced by the task.
	Stdout() io.Writer
	Stderr() io.Writer
	// ExecuteTarget runs a target and its dependencies. Targets that already
	// ran in this build are not run again.
	ExecuteTarget(ctx context.Context, name string) error
}
