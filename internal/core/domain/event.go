package domain

import (
	"strings"
	"time"
)

// Level represents the severity of a build message.
type Level int

const (
	// LevelDebug is the most detailed level.
	LevelDebug Level = iota - 2
	// LevelVerbose carries detail useful when diagnosing a build.
	LevelVerbose
	// LevelInfo is the default level.
	LevelInfo
	// LevelWarning flags recoverable problems.
	LevelWarning
	// LevelError flags failures.
	LevelError
)

// String returns the lower-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// ParseLevel converts a level name to a Level.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "verbose":
		return LevelVerbose, true
	case "info":
		return LevelInfo, true
	case "warning", "warn":
		return LevelWarning, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// LevelNames lists the accepted level names.
func LevelNames() []string {
	return []string{"debug", "verbose", "info", "warning", "error"}
}

// EventKind identifies a lifecycle event.
type EventKind int

const (
	// BuildStarted is published once before anything executes.
	BuildStarted EventKind = iota
	// BuildFinished is published once when the run completes, successfully or not.
	BuildFinished
	// TargetStarted is published before the first task of a target runs.
	TargetStarted
	// TargetFinished is published after a target completes or fails.
	TargetFinished
	// TargetSkipped is published when a guard gates a target out.
	TargetSkipped
	// TaskStarted is published before a task executes.
	TaskStarted
	// TaskFinished is published after a task completes or fails.
	TaskFinished
	// Message carries a log line emitted by the engine or a task.
	Message
)

// String returns the name of the event kind.
func (k EventKind) String() string {
	switch k {
	case BuildStarted:
		return "BuildStarted"
	case BuildFinished:
		return "BuildFinished"
	case TargetStarted:
		return "TargetStarted"
	case TargetFinished:
		return "TargetFinished"
	case TargetSkipped:
		return "TargetSkipped"
	case TaskStarted:
		return "TaskStarted"
	case TaskFinished:
		return "TaskFinished"
	case Message:
		return "Message"
	default:
		return "Unknown"
	}
}

// Event is a build lifecycle notification. Which fields are populated depends on Kind.
type Event struct {
	Kind    EventKind
	Time    time.Time
	Project string
	Target  string
	// Task is the element name of the task.
	Task     string
	Location Location
	// Reason explains why a target was skipped.
	Reason  string
	Level   Level
	Message string
	// Err is the failure of a finished build, target or task. It is nil on success.
	Err error
}

// Succeeded reports whether a finished event represents success.
func (e Event) Succeeded() bool {
	return e.Err == nil
}
