package domain

import "go.trai.ch/zerr"

var (
	// ErrUndefinedProperty is returned when a property reference names a property that has no value.
	ErrUndefinedProperty = zerr.New("undefined property")

	// ErrReadOnlyProperty is returned when a strict write targets a read-only property.
	ErrReadOnlyProperty = zerr.New("property is read-only")

	// ErrInvalidPropertyName is returned when a property name contains invalid characters.
	ErrInvalidPropertyName = zerr.New("invalid property name")

	// ErrScriptFormat is returned when a build script is malformed.
	ErrScriptFormat = zerr.New("invalid build script")

	// ErrScriptNotFound is returned when no build script can be located.
	ErrScriptNotFound = zerr.New("could not find a build script")

	// ErrAmbiguousScript is returned when more than one build script candidate exists in a directory.
	ErrAmbiguousScript = zerr.New("more than one build script found")

	// ErrScriptReadFailed is returned when the build script cannot be read.
	ErrScriptReadFailed = zerr.New("failed to read build script")

	// ErrDuplicateTarget is returned when two targets share the same name.
	ErrDuplicateTarget = zerr.New("duplicate target name")

	// ErrUnknownTarget is returned when a requested or depended-upon target does not exist.
	ErrUnknownTarget = zerr.New("unknown target")

	// ErrCircularDependency is returned when the target dependency graph contains a cycle.
	ErrCircularDependency = zerr.New("circular dependency")

	// ErrUnknownElement is returned when no binding is registered for an element name.
	ErrUnknownElement = zerr.New("unknown element")

	// ErrUnknownAttribute is returned when an element carries an attribute its descriptor does not declare.
	ErrUnknownAttribute = zerr.New("unknown attribute")

	// ErrMissingRequiredAttribute is returned when a required attribute was not supplied.
	ErrMissingRequiredAttribute = zerr.New("missing required attribute")

	// ErrInvalidAttribute is returned when an attribute value fails validation.
	ErrInvalidAttribute = zerr.New("invalid attribute value")

	// ErrInvalidNesting is returned when a nested element violates its declared arity.
	ErrInvalidNesting = zerr.New("invalid element nesting")

	// ErrUnknownReference is returned when a refid names a data type that was never declared.
	ErrUnknownReference = zerr.New("unknown reference")

	// ErrInvalidDescriptor is returned when an element implementation describes itself incorrectly.
	ErrInvalidDescriptor = zerr.New("invalid element descriptor")

	// ErrInvalidGuard is returned when an if/unless condition is not a boolean keyword.
	ErrInvalidGuard = zerr.New("invalid condition")

	// ErrTaskFailed is matched by every failure raised from a task's own logic.
	ErrTaskFailed = zerr.New("task failed")

	// ErrTaskPanicked is returned when a task panics. It is an internal error, never a task failure.
	ErrTaskPanicked = zerr.New("task panicked")

	// ErrUnknownFramework is returned when the framework selector names an unconfigured framework.
	ErrUnknownFramework = zerr.New("invalid framework")

	// ErrSettingsParseFailed is returned when the settings file cannot be parsed.
	ErrSettingsParseFailed = zerr.New("failed to parse settings file")

	// ErrUsage is returned for invalid command line invocations.
	ErrUsage = zerr.New("invalid usage")
)
