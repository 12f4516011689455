package domain

import (
	"errors"
	"fmt"
)

// TaskFailure wraps an error raised by a task's own logic with the task's identity.
// It matches ErrTaskFailed under errors.Is.
type TaskFailure struct {
	Task     string
	Location Location
	Err      error
}

// Message returns the failure description without its cause.
func (f *TaskFailure) Message() string {
	if f.Location.IsZero() {
		return fmt.Sprintf("task '%s' failed", f.Task)
	}
	return fmt.Sprintf("%s: task '%s' failed", f.Location, f.Task)
}

func (f *TaskFailure) Error() string {
	if f.Err == nil {
		return f.Message()
	}
	return f.Message() + ": " + f.Err.Error()
}

func (f *TaskFailure) Unwrap() error {
	return f.Err
}

// Is reports whether target is ErrTaskFailed.
func (f *TaskFailure) Is(target error) bool {
	return target == ErrTaskFailed
}

// IsTaskFailure reports whether err carries a TaskFailure.
func IsTaskFailure(err error) bool {
	var f *TaskFailure
	return errors.As(err, &f)
}

// scriptErrors are raised while interpreting the script rather than by a
// task's own logic.
var scriptErrors = []error{
	ErrScriptFormat,
	ErrDuplicateTarget,
	ErrUnknownTarget,
	ErrCircularDependency,
	ErrUnknownElement,
	ErrUnknownAttribute,
	ErrMissingRequiredAttribute,
	ErrInvalidAttribute,
	ErrInvalidNesting,
	ErrUnknownReference,
	ErrInvalidDescriptor,
	ErrInvalidGuard,
	ErrUndefinedProperty,
	ErrReadOnlyProperty,
	ErrInvalidPropertyName,
}

// IsScriptError reports whether err stems from the script itself. Such
// errors fail the build regardless of failonerror.
func IsScriptError(err error) bool {
	for _, target := range scriptErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
