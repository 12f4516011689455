package app

import (
	"context"
	"errors"

	"go.trai.ch/emmet/internal/core/domain"
)

// Exit codes returned by RunBuild.
const (
	ExitSuccess  = 0
	ExitFailure  = 1
	ExitInternal = 2
)

// Kind classifies a run failure.
type Kind int

const (
	// KindNone means the run succeeded.
	KindNone Kind = iota
	// KindUsage is a bad invocation.
	KindUsage
	// KindBuild covers script errors and task failures.
	KindBuild
	// KindInternal is anything the taxonomy does not anticipate.
	KindInternal
)

var usageErrors = []error{
	domain.ErrUsage,
	domain.ErrUnknownFramework,
}

var buildErrors = []error{
	domain.ErrScriptFormat,
	domain.ErrScriptNotFound,
	domain.ErrAmbiguousScript,
	domain.ErrScriptReadFailed,
	domain.ErrDuplicateTarget,
	domain.ErrUnknownTarget,
	domain.ErrCircularDependency,
	domain.ErrUnknownElement,
	domain.ErrUnknownAttribute,
	domain.ErrMissingRequiredAttribute,
	domain.ErrInvalidAttribute,
	domain.ErrInvalidNesting,
	domain.ErrUnknownReference,
	domain.ErrInvalidGuard,
	domain.ErrUndefinedProperty,
	domain.ErrReadOnlyProperty,
	domain.ErrInvalidPropertyName,
	domain.ErrSettingsParseFailed,
	domain.ErrTaskFailed,
	context.Canceled,
}

// Classify maps err onto the failure taxonomy.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case isAny(err, usageErrors):
		return KindUsage
	case isAny(err, buildErrors):
		return KindBuild
	default:
		return KindInternal
	}
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	switch Classify(err) {
	case KindNone:
		return ExitSuccess
	case KindUsage, KindBuild:
		return ExitFailure
	default:
		return ExitInternal
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
