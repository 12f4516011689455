// Package shell runs external programs for the exec task.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.Executor = (*Executor)(nil)

// waitDelay bounds how long output copying may outlive a killed process.
const waitDelay = 2 * time.Second

// Executor implements ports.Executor using os/exec with separate stdout and
// stderr pipes.
type Executor struct {
	logger   ports.Logger
	hermetic bool
	environ  func() []string
}

// Option configures an Executor.
type Option func(*Executor)

// WithHermetic restricts the inherited environment to an allow-list of
// system variables.
func WithHermetic(enable bool) Option {
	return func(e *Executor) {
		e.hermetic = enable
	}
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger, opts ...Option) *Executor {
	e := &Executor{
		logger:  logger,
		environ: os.Environ,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs cmd and waits for it and its output to complete.
func (e *Executor) Execute(ctx context.Context, cmd *domain.Command, stdout, stderr io.Writer) error {
	if cmd == nil || cmd.Program == "" {
		return zerr.New("no program to execute")
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	env := resolveEnvironment(e.environ(), cmd.Env, e.hermetic)
	executable := resolveExecutable(cmd.Program, cmd.Dir, env)

	c := exec.CommandContext(ctx, executable, cmd.Args...) //nolint:gosec // program comes from the build script
	c.Args[0] = cmd.Program
	c.Dir = cmd.Dir
	c.Env = env
	c.WaitDelay = waitDelay

	e.logger.Debug("running " + strings.Join(append([]string{cmd.Program}, cmd.Args...), " "))

	outPipe, err := c.StdoutPipe()
	if err != nil {
		return zerr.Wrap(err, "failed to open stdout pipe")
	}
	errPipe, err := c.StderrPipe()
	if err != nil {
		return zerr.Wrap(err, "failed to open stderr pipe")
	}

	if err := c.Start(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to start program"), "program", cmd.Program)
	}

	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(stdout, outPipe)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(stderr, errPipe)
		return err
	})
	copyErr := g.Wait()
	waitErr := c.Wait()

	if waitErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && cmd.Timeout > 0 {
			return zerr.With(zerr.Wrap(waitErr, "command timed out"), "timeout", cmd.Timeout.String())
		}
		return zerr.With(zerr.Wrap(waitErr, "command failed"), "exit_code", exitCode(waitErr))
	}
	if copyErr != nil {
		return zerr.Wrap(copyErr, "failed to copy command output")
	}
	return nil
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// allowListedEnvVars are the system variables a hermetic executor passes on.
var allowListedEnvVars = map[string]struct{}{
	"HOME": {},
	"TERM": {},
	"USER": {},
	"PATH": {},
}

// resolveEnvironment merges the system environment with the command's
// variables, which take precedence. The result is sorted.
func resolveEnvironment(sysEnv []string, cmdEnv map[string]string, hermetic bool) []string {
	envMap := make(map[string]string, len(sysEnv)+len(cmdEnv))
	if hermetic {
		envMap = filterSystemEnv(sysEnv)
	} else {
		for _, entry := range sysEnv {
			if k, v, ok := strings.Cut(entry, "="); ok {
				envMap[k] = v
			}
		}
	}

	for k, v := range cmdEnv {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

func filterSystemEnv(sysEnv []string) map[string]string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok {
			if _, allowed := allowListedEnvVars[k]; allowed {
				envMap[k] = v
			}
		}
	}
	return envMap
}

// resolveExecutable locates program the way a shell would, but against the
// PATH of the command's own environment. Relative paths with a separator are
// taken relative to the working directory.
func resolveExecutable(program, dir string, env []string) string {
	if filepath.IsAbs(program) {
		return program
	}
	if strings.ContainsRune(program, filepath.Separator) || strings.ContainsRune(program, '/') {
		if dir == "" {
			return program
		}
		return filepath.Join(dir, program)
	}
	if lp, err := lookPath(program, env); err == nil {
		return lp
	}
	return program
}

// lookPath searches for an executable in the directories named by PATH in env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
