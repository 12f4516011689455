package shell_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/emmet/internal/adapters/shell"
	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func newExecutor(t *testing.T, opts ...shell.Option) *shell.Executor {
	t.Helper()
	log := mocks.NewMockLogger(gomock.NewController(t))
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	return shell.NewExecutor(log, opts...)
}

func TestExecutor_SeparatesStreams(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := newExecutor(t).Execute(context.Background(), &domain.Command{
		Program: "sh",
		Args:    []string{"-c", "echo out; echo err >&2; printf part1; sleep 0.1; echo part2"},
		Dir:     t.TempDir(),
	}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Equal(t, "out\npart1part2\n", stdout.String())
	assert.Equal(t, "err\n", stderr.String())
}

func TestExecutor_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	var stdout bytes.Buffer
	err = newExecutor(t).Execute(context.Background(), &domain.Command{
		Program: "pwd", Args: []string{"-P"}, Dir: dir,
	}, &stdout, io.Discard)

	require.NoError(t, err)
	assert.Equal(t, want+"\n", stdout.String())
}

func TestExecutor_EnvironmentVariables(t *testing.T) {
	var stdout bytes.Buffer
	err := newExecutor(t).Execute(context.Background(), &domain.Command{
		Program: "sh",
		Args:    []string{"-c", "echo $EMMET_TEST_VAR"},
		Env:     map[string]string{"EMMET_TEST_VAR": "hello"},
	}, &stdout, io.Discard)

	require.NoError(t, err)
	assert.Equal(t, "hello\n", stdout.String())
}

func TestExecutor_ExitCode(t *testing.T) {
	err := newExecutor(t).Execute(context.Background(), &domain.Command{
		Program: "sh", Args: []string{"-c", "exit 3"},
	}, io.Discard, io.Discard)

	require.Error(t, err)
	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode())

	var zErr *zerr.Error
	require.True(t, errors.As(err, &zErr))
	assert.Equal(t, 3, zErr.Metadata()["exit_code"])
}

func TestExecutor_Timeout(t *testing.T) {
	start := time.Now()
	err := newExecutor(t).Execute(context.Background(), &domain.Command{
		Program: "sleep", Args: []string{"5"}, Timeout: 100 * time.Millisecond,
	}, io.Discard, io.Discard)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "command timed out")
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestExecutor_ProgramNotFound(t *testing.T) {
	err := newExecutor(t).Execute(context.Background(), &domain.Command{
		Program: "emmet-no-such-program",
	}, io.Discard, io.Discard)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start program")
}

func TestExecutor_CommandPath(t *testing.T) {
	toolDir := t.TempDir()
	tool := filepath.Join(toolDir, "my-tool")
	//nolint:gosec // Test requires executable file
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\necho success\n"), 0o700))

	t.Run("PATH from the command environment", func(t *testing.T) {
		var stdout bytes.Buffer
		err := newExecutor(t).Execute(context.Background(), &domain.Command{
			Program: "my-tool",
			Env:     map[string]string{"PATH": toolDir},
		}, &stdout, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, "success\n", stdout.String())
	})

	t.Run("relative to the working directory", func(t *testing.T) {
		var stdout bytes.Buffer
		err := newExecutor(t).Execute(context.Background(), &domain.Command{
			Program: "./my-tool",
			Dir:     toolDir,
		}, &stdout, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, "success\n", stdout.String())
	})
}

func TestExecutor_Hermetic(t *testing.T) {
	environ := func() []string {
		return []string{"PATH=" + os.Getenv("PATH"), "SECRET=hidden", "HOME=/home/test"}
	}

	var stdout bytes.Buffer
	err := newExecutor(t, shell.WithHermetic(true), shell.WithEnviron(environ)).Execute(context.Background(),
		&domain.Command{Program: "sh", Args: []string{"-c", "echo \"[$SECRET][$HOME]\""}},
		&stdout, io.Discard)

	require.NoError(t, err)
	assert.Equal(t, "[][/home/test]\n", stdout.String())
}

func TestResolveEnvironment(t *testing.T) {
	sys := []string{"PATH=/bin", "HOME=/root", "GOFLAGS=-mod=mod"}

	assert.Equal(t,
		[]string{"GOFLAGS=-race", "HOME=/root", "PATH=/bin"},
		shell.ResolveEnvironment(sys, map[string]string{"GOFLAGS": "-race"}, false))

	assert.Equal(t,
		[]string{"HOME=/root", "PATH=/bin", "X=1"},
		shell.ResolveEnvironment(sys, map[string]string{"X": "1"}, true))
}

func TestLookPath(t *testing.T) {
	_, err := shell.LookPath("sh", nil)
	require.ErrorIs(t, err, exec.ErrNotFound)

	path, err := shell.LookPath("sh", []string{"PATH=/nonexistent:" + os.Getenv("PATH")})
	require.NoError(t, err)
	assert.Equal(t, "sh", filepath.Base(path))
}
