package app

import (
	"context"
	"io"

	"go.trai.ch/emmet/internal/adapters/watcher"
	"go.trai.ch/zerr"
)

// watch runs the build, then reruns it whenever the content below the
// project base directory changes. It returns when ctx is done. Build
// failures are reported and do not end the loop.
func (a *App) watch(ctx context.Context, opts RunOptions, stdout, stderr io.Writer) error {
	path, err := a.scriptPath(opts)
	if err != nil {
		return err
	}
	opts.BuildFile = path

	project, err := a.scripts.Load(path)
	if err != nil {
		return err
	}
	root := project.BaseDir

	w, err := a.watchers()
	if err != nil {
		return zerr.Wrap(err, "failed to start watch mode")
	}
	if err := w.Start(ctx, root); err != nil {
		return zerr.Wrap(err, "failed to start watch mode")
	}
	defer func() { _ = w.Stop() }()

	trigger := make(chan struct{}, 1)
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func([]string) {
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	defer debouncer.Stop()

	go func() {
		for event := range w.Events() {
			debouncer.Add(event.Path)
		}
	}()

	last := a.rebuild(ctx, opts, stdout, stderr, root)
	for {
		a.logger.Info("watching " + root + " for changes")
		select {
		case <-ctx.Done():
			return nil
		case <-trigger:
		}

		current, err := a.hasher.ComputeTreeHash(root, watcher.SkipDirectories)
		if err != nil {
			a.logger.Warn("failed to fingerprint " + root + ": " + err.Error())
			continue
		}
		if current == last {
			continue
		}
		a.logger.Info("change detected, rebuilding")
		last = a.rebuild(ctx, opts, stdout, stderr, root)
	}
}

// rebuild runs one build and returns the fingerprint of root afterwards, so
// files written by the build itself do not trigger another run.
func (a *App) rebuild(ctx context.Context, opts RunOptions, stdout, stderr io.Writer, root string) string {
	if err := a.build(ctx, opts, stdout, stderr); err != nil {
		a.fail(stderr, opts, err)
	}
	hash, err := a.hasher.ComputeTreeHash(root, watcher.SkipDirectories)
	if err != nil {
		a.logger.Warn("failed to fingerprint " + root + ": " + err.Error())
	}
	return hash
}
