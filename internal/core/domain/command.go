package domain

import "time"

// Command describes an external process launched by a task.
type Command struct {
	// Program is the executable name or path. Bare names are looked up in PATH.
	Program string
	Args    []string
	// Dir is the working directory of the process.
	Dir string
	// Env holds variables added on top of the inherited allow-listed environment.
	Env map[string]string
	// Timeout bounds the run time of the process. Zero means no limit.
	Timeout time.Duration
}
