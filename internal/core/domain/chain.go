package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

// Cause is one link of an error chain.
type Cause struct {
	Message  string
	Metadata map[string]any
	// Sentinel marks a bare taxonomy error such as ErrUnknownTarget.
	Sentinel bool
}

type messager interface {
	Message() string
}

var sentinels = map[error]struct{}{
	ErrUndefinedProperty:        {},
	ErrReadOnlyProperty:         {},
	ErrInvalidPropertyName:      {},
	ErrScriptFormat:             {},
	ErrScriptNotFound:           {},
	ErrAmbiguousScript:          {},
	ErrScriptReadFailed:         {},
	ErrDuplicateTarget:          {},
	ErrUnknownTarget:            {},
	ErrCircularDependency:       {},
	ErrUnknownElement:           {},
	ErrUnknownAttribute:         {},
	ErrMissingRequiredAttribute: {},
	ErrInvalidAttribute:         {},
	ErrInvalidNesting:           {},
	ErrUnknownReference:         {},
	ErrInvalidDescriptor:        {},
	ErrInvalidGuard:             {},
	ErrTaskFailed:               {},
	ErrTaskPanicked:             {},
	ErrUnknownFramework:         {},
	ErrSettingsParseFailed:      {},
	ErrUsage:                    {},
}

// Chain flattens err into its causes, outermost first. Errors that report
// their own message are unwrapped further; any other error ends the chain
// with its full text.
func Chain(err error) []Cause {
	var causes []Cause
	for cur := err; cur != nil; {
		m, ok := cur.(messager)
		if !ok {
			causes = append(causes, Cause{Message: cur.Error()})
			break
		}
		c := Cause{Message: m.Message()}
		if z, ok := cur.(*zerr.Error); ok {
			c.Metadata = z.Metadata()
			_, c.Sentinel = sentinels[cur]
		}
		causes = append(causes, c)
		cur = errors.Unwrap(cur)
	}
	return causes
}
