// Package runner implements the build execution engine.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/emmet/internal/engine/bus"
	"go.trai.ch/emmet/internal/registry"
	"go.trai.ch/zerr"
)

// Build is the transient context of one build run.
type Build struct {
	Project    *domain.Project
	Properties *domain.PropertyStore
	Bus        *bus.Bus
	// Stdout and Stderr receive output of external processes. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

// Runner drives target and task execution. A Runner holds no per-build
// state and may be shared between builds.
type Runner struct {
	registry *registry.Registry
	logger   ports.Logger
	now      func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock overrides the time source used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// New creates a Runner that materializes elements through reg.
func New(reg *registry.Registry, logger ports.Logger, opts ...Option) *Runner {
	r := &Runner{
		registry: reg,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the requested targets and their dependencies.
//
// With no targets requested the project's default target runs. Targets run
// strictly one after another in resolved order and each runs at most once.
// The first failing task aborts the build.
func (r *Runner) Run(ctx context.Context, b *Build, targets []string) error {
	run := r.newExecution(b)

	run.publish(domain.Event{Kind: domain.BuildStarted})

	err := run.main(ctx, targets)
	err = run.followUp(ctx, err)

	run.publish(domain.Event{Kind: domain.BuildFinished, Err: err})
	return err
}

func (r *Runner) newExecution(b *Build) *execution {
	stdout, stderr := b.Stdout, b.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	eventBus := b.Bus
	if eventBus == nil {
		eventBus = bus.New(r.logger)
	}
	return &execution{
		runner:  r,
		project: b.Project,
		props:   b.Properties,
		bus:     eventBus,
		scope:   registry.NewScope(b.Properties, b.Project.BaseDir),
		stdout:  stdout,
		stderr:  stderr,
	}
}

// execution is the mutable state of one build run. It is only touched from
// the goroutine that called Run.
type execution struct {
	runner  *Runner
	project *domain.Project
	props   *domain.PropertyStore
	bus     *bus.Bus
	scope   *registry.Scope
	stdout  io.Writer
	stderr  io.Writer
}

func (e *execution) main(ctx context.Context, targets []string) error {
	if err := e.initProject(ctx); err != nil {
		return err
	}

	if len(targets) == 0 {
		if e.project.Default == "" {
			e.message(domain.LevelWarning, "", "", "no target specified and the project defines no default target")
			return nil
		}
		targets = []string{e.project.Default}
	}

	return e.executeTargets(ctx, targets...)
}

// initProject runs the project-level property declarations and data types.
func (e *execution) initProject(ctx context.Context) error {
	for _, el := range e.project.Properties {
		if err := e.runTask(ctx, "", el); err != nil {
			return err
		}
	}
	for _, el := range e.project.Types {
		if err := e.runTask(ctx, "", el); err != nil {
			return err
		}
	}
	return nil
}

// followUp runs the targets named by the onsuccess or onfailure property.
func (e *execution) followUp(ctx context.Context, buildErr error) error {
	prop := domain.PropOnSuccess
	if buildErr != nil {
		prop = domain.PropOnFailure
	}
	value, ok := e.props.Get(prop)
	if !ok {
		return buildErr
	}
	names := domain.SplitNames(value)
	if len(names) == 0 {
		return buildErr
	}

	err := e.executeTargets(ctx, names...)
	if buildErr != nil {
		if err != nil {
			e.message(domain.LevelError, "", "", fmt.Sprintf("%s target failed: %v", prop, err))
		}
		return buildErr
	}
	return err
}

// executeTargets resolves names and runs every target of the order that has
// not run yet.
func (e *execution) executeTargets(ctx context.Context, names ...string) error {
	order, err := e.project.Graph().Resolve(names...)
	if err != nil {
		return err
	}
	e.runner.logger.Debug("execution order: " + strings.Join(order, ", "))

	for _, name := range order {
		t, _ := e.project.Target(name)
		if err := e.executeTarget(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (e *execution) executeTarget(ctx context.Context, t *domain.Target) error {
	if t.Executed() {
		return nil
	}

	run, reason, err := t.Guard.Evaluate(e.props)
	if err != nil {
		return targetError(t, locateTarget(err, t))
	}
	if !run {
		e.publish(domain.Event{Kind: domain.TargetSkipped, Target: t.Name, Location: t.Location, Reason: reason})
		return nil
	}

	t.MarkExecuted()
	e.publish(domain.Event{Kind: domain.TargetStarted, Target: t.Name, Location: t.Location})

	for _, el := range t.Tasks {
		if err := e.runTask(ctx, t.Name, el); err != nil {
			err = targetError(t, err)
			e.publish(domain.Event{Kind: domain.TargetFinished, Target: t.Name, Location: t.Location, Err: err})
			return err
		}
	}

	e.publish(domain.Event{Kind: domain.TargetFinished, Target: t.Name, Location: t.Location})
	return nil
}

func (e *execution) runTask(ctx context.Context, target string, el *domain.Element) error {
	run, reason, err := el.Guard().Evaluate(e.props)
	if err != nil {
		return locate(err, el)
	}
	if !run {
		e.message(domain.LevelVerbose, target, el.Name, fmt.Sprintf("skipping '%s': %s", el.Name, reason))
		return nil
	}

	failOnError, err := e.failOnError(el)
	if err != nil {
		return err
	}

	instance, err := e.runner.registry.Create(el, e.scope)
	if err != nil {
		return err
	}
	task, ok := instance.(ports.Task)
	if !ok {
		// Data type declaration, kept in the scope when it carries an id.
		return nil
	}

	e.publish(domain.Event{Kind: domain.TaskStarted, Target: target, Task: el.Name, Location: el.Location})

	env := &taskEnv{execution: e, target: target, task: el.Name}
	err = execute(ctx, task, env, el)

	e.publish(domain.Event{Kind: domain.TaskFinished, Target: target, Task: el.Name, Location: el.Location, Err: err})

	if err != nil && !failOnError && domain.IsTaskFailure(err) {
		e.message(domain.LevelWarning, target, el.Name, err.Error())
		return nil
	}
	return err
}

// execute runs the task, wrapping its failure with the task identity.
// A panic is reported as an internal error. Errors of targets the task ran
// through its environment keep their classification.
func execute(ctx context.Context, task ports.Task, env ports.TaskEnv, el *domain.Element) (err error) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("%s: task '%s' panicked: %v", el.Location, el.Name, r)
			err = zerr.With(zerr.Wrap(domain.ErrTaskPanicked, msg), "task", el.Name)
		}
	}()

	execErr := task.Execute(ctx, env)
	switch {
	case execErr == nil:
		return nil
	case domain.IsTaskFailure(execErr), domain.IsScriptError(execErr),
		errors.Is(execErr, domain.ErrTaskPanicked), errors.Is(execErr, context.Canceled):
		return execErr
	default:
		return &domain.TaskFailure{Task: el.Name, Location: el.Location, Err: execErr}
	}
}

func (e *execution) failOnError(el *domain.Element) (bool, error) {
	raw, ok := el.Attr(registry.AttrFailOnError)
	if !ok {
		return true, nil
	}
	expanded, err := e.props.Expand(raw)
	if err != nil {
		return false, locate(err, el)
	}
	v, ok := domain.ParseBool(expanded)
	if !ok {
		msg := fmt.Sprintf("attribute '%s' of '%s' must be 'true' or 'false', got '%s'", registry.AttrFailOnError, el.Name, expanded)
		if !el.Location.IsZero() {
			msg = el.Location.String() + ": " + msg
		}
		err := zerr.With(zerr.Wrap(domain.ErrInvalidAttribute, msg), "attribute", registry.AttrFailOnError)
		return false, zerr.With(err, "location", el.Location.String())
	}
	return v, nil
}

func (e *execution) publish(event domain.Event) {
	event.Time = e.runner.now()
	event.Project = e.project.Name
	e.bus.Publish(event)
}

func (e *execution) message(level domain.Level, target, task, msg string) {
	e.publish(domain.Event{Kind: domain.Message, Target: target, Task: task, Level: level, Message: msg})
}

func targetError(t *domain.Target, err error) error {
	return zerr.With(zerr.Wrap(err, fmt.Sprintf("target '%s' failed", t.Name)), "target", t.Name)
}

func locateTarget(err error, t *domain.Target) error {
	if t.Location.IsZero() {
		return err
	}
	return zerr.With(zerr.Wrap(err, fmt.Sprintf("%s: in target '%s'", t.Location, t.Name)), "location", t.Location.String())
}

func locate(err error, el *domain.Element) error {
	if el.Location.IsZero() {
		return err
	}
	return zerr.With(zerr.Wrap(err, fmt.Sprintf("%s: in '%s'", el.Location, el.Name)), "location", el.Location.String())
}
