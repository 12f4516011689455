// Package app implements the application layer for emmet.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/emmet/internal/adapters/linear"
	"go.trai.ch/emmet/internal/adapters/telemetry"
	"go.trai.ch/emmet/internal/adapters/telemetry/progrock"
	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/emmet/internal/engine/bus"
	"go.trai.ch/emmet/internal/engine/runner"
	"go.trai.ch/zerr"
)

// Logger is the logger the application configures for each run.
type Logger interface {
	ports.Logger
	SetLevel(level domain.Level)
	SetJSON(enable bool)
	SetOutput(w io.Writer)
}

// App represents the main application logic.
type App struct {
	runner   *runner.Runner
	scripts  ports.ScriptLoader
	settings ports.SettingsLoader
	logger   Logger
	hasher   ports.Hasher
	watchers ports.WatcherFactory

	stdout     io.Writer
	stderr     io.Writer
	environ    func() []string
	executable string
}

// New creates a new App instance.
func New(
	r *runner.Runner,
	scripts ports.ScriptLoader,
	settings ports.SettingsLoader,
	log Logger,
	hasher ports.Hasher,
	watchers ports.WatcherFactory,
) *App {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	return &App{
		runner:     r,
		scripts:    scripts,
		settings:   settings,
		logger:     log,
		hasher:     hasher,
		watchers:   watchers,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		environ:    os.Environ,
		executable: exe,
	}
}

// WithOutput redirects build output and reports.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithEnviron replaces the environment seeded as sys.env.* properties.
func (a *App) WithEnviron(environ func() []string) *App {
	a.environ = environ
	return a
}

// WithExecutable overrides the path reported as emmet.filename.
func (a *App) WithExecutable(path string) *App {
	a.executable = path
	return a
}

// RunBuild loads the build script, runs the requested targets and returns
// the process exit code. Failures are reported before returning.
func (a *App) RunBuild(ctx context.Context, opts RunOptions) int {
	stdout, stderr := a.stdout, a.stderr
	if opts.LogFile != "" {
		f, err := os.Create(opts.LogFile)
		if err != nil {
			err = zerr.With(usageError(fmt.Sprintf("cannot open log file '%s': %v", opts.LogFile, err)), "path", opts.LogFile)
			return a.fail(stderr, opts, err)
		}
		defer func() { _ = f.Close() }()
		stdout, stderr = f, f
	}

	a.logger.SetOutput(stderr)
	a.logger.SetJSON(opts.JSON)
	a.logger.SetLevel(opts.Level)

	var err error
	if opts.Watch {
		err = a.watch(ctx, opts, stdout, stderr)
	} else {
		err = a.build(ctx, opts, stdout, stderr)
	}
	return a.fail(stderr, opts, err)
}

// Fail reports err outside of a build run, e.g. a command line parsing
// error, and returns the exit code.
func (a *App) Fail(err error) int {
	return a.fail(a.stderr, RunOptions{}, err)
}

func (a *App) fail(w io.Writer, opts RunOptions, err error) int {
	if err == nil {
		return ExitSuccess
	}
	if opts.JSON {
		a.logger.Error(err)
	} else {
		Report(w, err, opts.Level)
	}
	return ExitCode(err)
}

// ShowTargets prints the project help of the build script.
func (a *App) ShowTargets(opts RunOptions) error {
	project, err := a.loadProject(opts)
	if err != nil {
		return err
	}
	return WriteProjectHelp(a.stdout, project)
}

// ShowFrameworks lists the frameworks of the settings file.
func (a *App) ShowFrameworks(opts RunOptions) error {
	project, err := a.loadProject(opts)
	if err != nil {
		return err
	}
	settings, err := a.loadSettings(project, opts)
	if err != nil {
		return err
	}
	return WriteFrameworks(a.stdout, settings)
}

func (a *App) build(ctx context.Context, opts RunOptions, stdout, stderr io.Writer) error {
	project, err := a.loadProject(opts)
	if err != nil {
		return err
	}
	settings, err := a.loadSettings(project, opts)
	if err != nil {
		return err
	}
	framework, err := settings.SelectFramework(opts.Framework)
	if err != nil {
		return err
	}
	props, err := a.seedProperties(project, settings, framework, opts.Properties)
	if err != nil {
		return err
	}

	eventBus := bus.New(a.logger)
	eventBus.Subscribe(linear.NewListener(stdout, opts.Level))

	if opts.Summary || opts.TraceFile != "" {
		provider, err := a.newTelemetry(ctx, opts, stdout)
		if err != nil {
			return err
		}
		defer func() {
			if err := provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
				a.logger.Warn("failed to flush telemetry: " + err.Error())
			}
		}()
		eventBus.Subscribe(telemetry.NewListener(provider.Tracer()))
	}

	return a.runner.Run(ctx, &runner.Build{
		Project:    project,
		Properties: props,
		Bus:        eventBus,
		Stdout:     stdout,
		Stderr:     stderr,
	}, opts.Targets)
}

func (a *App) newTelemetry(ctx context.Context, opts RunOptions, stdout io.Writer) (*telemetry.Provider, error) {
	var tOpts []telemetry.Option
	if opts.TraceFile != "" {
		tOpts = append(tOpts, telemetry.WithTraceFile(opts.TraceFile))
	}
	if opts.Summary {
		tOpts = append(tOpts, telemetry.WithRenderer(progrock.NewRecorder(progrock.NewSummary(stdout))))
	}
	return telemetry.NewProvider(ctx, tOpts...)
}

func (a *App) scriptPath(opts RunOptions) (string, error) {
	if opts.BuildFile != "" {
		return opts.BuildFile, nil
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	return a.scripts.Find(dir, opts.FindInParent)
}

func (a *App) loadProject(opts RunOptions) (*domain.Project, error) {
	path, err := a.scriptPath(opts)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("loading build script " + path)
	return a.scripts.Load(path)
}

func (a *App) loadSettings(project *domain.Project, opts RunOptions) (*domain.Settings, error) {
	path := opts.SettingsFile
	if path == "" {
		path = filepath.Join(filepath.Dir(project.File), domain.SettingsFileName)
	} else if _, err := os.Stat(path); err != nil {
		return nil, zerr.With(usageError(fmt.Sprintf("settings file '%s' does not exist", path)), "path", path)
	}
	return a.settings.Load(path)
}
