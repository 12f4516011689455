package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/emmet/internal/registry"
	"go.trai.ch/zerr"
)

// Exec runs an external program.
type Exec struct {
	Program        string
	CommandLine    string
	WorkingDir     string
	Timeout        int
	ResultProperty string
	Output         string
	Append         bool
	Args           []*Arg
	Env            []*EnvVar

	executor ports.Executor
}

// Describe implements ports.Element.
func (e *Exec) Describe() *domain.Descriptor {
	return &domain.Descriptor{
		Name: "exec",
		Kind: domain.KindTask,
		Attributes: []domain.AttributeSpec{
			registry.String("program", func(e *Exec, v string) { e.Program = v }, registry.Required()),
			registry.String("commandline", func(e *Exec, v string) { e.CommandLine = v }),
			registry.Path("workingdir", func(e *Exec, v string) { e.WorkingDir = v }),
			registry.Int("timeout", func(e *Exec, v int) { e.Timeout = v },
				registry.Validate(func(v any) error {
					if v.(int) < 0 {
						return errors.New("timeout must not be negative")
					}
					return nil
				})),
			registry.String("resultproperty", func(e *Exec, v string) { e.ResultProperty = v },
				registry.Validate(func(v any) error { return domain.ValidatePropertyName(v.(string)) })),
			registry.Path("output", func(e *Exec, v string) { e.Output = v }),
			registry.Bool("append", func(e *Exec, v bool) { e.Append = v }),
		},
		Children: []domain.ChildSpec{
			registry.Children("arg", func(e *Exec, a *Arg) { e.Args = append(e.Args, a) }),
			registry.Children("env", func(e *Exec, v *EnvVar) { e.Env = append(e.Env, v) }),
		},
	}
}

// Initialize implements ports.Initializer.
func (e *Exec) Initialize() error {
	if strings.TrimSpace(e.Program) == "" {
		return zerr.New("'program' must not be empty")
	}
	return nil
}

// Command builds the process description.
func (e *Exec) Command(baseDir string) *domain.Command {
	cmd := &domain.Command{
		Program: e.Program,
		Args:    strings.Fields(e.CommandLine),
		Dir:     e.WorkingDir,
		Timeout: time.Duration(e.Timeout) * time.Millisecond,
	}
	if cmd.Dir == "" {
		cmd.Dir = baseDir
	}
	for _, a := range e.Args {
		cmd.Args = append(cmd.Args, a.Args()...)
	}
	if len(e.Env) > 0 {
		cmd.Env = make(map[string]string, len(e.Env))
		for _, v := range e.Env {
			cmd.Env[v.Name] = v.Resolve(baseDir)
		}
	}
	return cmd
}

// Execute implements ports.Task.
func (e *Exec) Execute(ctx context.Context, env ports.TaskEnv) error {
	cmd := e.Command(env.BaseDir())
	env.Log(domain.LevelVerbose, fmt.Sprintf("%s %s", cmd.Program, strings.Join(cmd.Args, " ")))

	stdout := env.Stdout()
	if e.Output != "" {
		f, err := e.openOutput()
		if err != nil {
			return err
		}
		defer f.Close() //nolint:errcheck // best effort close, write errors surface from the process copy
		stdout = io.MultiWriter(stdout, f)
	}

	err := e.executor.Execute(ctx, cmd, stdout, env.Stderr())

	if e.ResultProperty != "" {
		if setErr := env.Properties().Set(e.ResultProperty, strconv.Itoa(exitCode(err)), false); setErr != nil {
			return setErr
		}
	}
	return err
}

func (e *Exec) openOutput() (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(e.Output), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create directory"), "path", filepath.Dir(e.Output))
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if e.Append {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(e.Output, flags, domain.FilePerm) //nolint:gosec // path comes from the build script
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open output file"), "path", e.Output)
	}
	return f, nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
