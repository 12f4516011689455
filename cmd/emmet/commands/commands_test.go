package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/emmet/cmd/emmet/commands"
	"go.trai.ch/emmet/internal/adapters/fs"
	"go.trai.ch/emmet/internal/adapters/logger"
	"go.trai.ch/emmet/internal/adapters/script"
	"go.trai.ch/emmet/internal/adapters/settings"
	"go.trai.ch/emmet/internal/adapters/shell"
	"go.trai.ch/emmet/internal/app"
	"go.trai.ch/emmet/internal/engine/runner"
	"go.trai.ch/emmet/internal/registry"
	"go.trai.ch/emmet/internal/tasks"
)

const buildScript = `project: demo
default: build
targets:
  - name: build
    description: Build it
    tasks:
      - echo: building ${flavor}
`

type harness struct {
	cli    *commands.CLI
	dir    string
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.yaml"), []byte(buildScript), 0o600))

	log := logger.New()
	walker := fs.NewWalker()
	hasher := fs.NewHasher(walker)
	reg := registry.New()
	require.NoError(t, tasks.NewLibrary(shell.NewExecutor(log), hasher, fs.NewResolver()).Register(reg))

	h := &harness{dir: dir, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	a := app.New(runner.New(reg, log), script.NewLoader(log), settings.NewLoader(log), log, hasher, nil).
		WithOutput(h.stdout, h.stderr).
		WithEnviron(func() []string { return nil })

	h.cli = commands.New(a)
	h.cli.SetOutput(h.stdout, h.stderr)
	return h
}

func (h *harness) execute(args ...string) int {
	h.cli.SetArgs(args)
	return h.cli.Execute(context.Background())
}

func (h *harness) buildFile() string {
	return filepath.Join(h.dir, "default.yaml")
}

func TestRun_Success(t *testing.T) {
	h := newHarness(t)

	code := h.execute("run", "-f", h.buildFile(), "-D", "flavor=vanilla")

	require.Equal(t, 0, code, h.stderr.String())
	assert.Contains(t, h.stdout.String(), "[echo] building vanilla")
	assert.Contains(t, h.stdout.String(), "BUILD SUCCEEDED")
}

func TestRun_Quiet(t *testing.T) {
	h := newHarness(t)

	code := h.execute("run", "--buildfile", h.buildFile(), "-q", "--define", "flavor=x")

	require.Equal(t, 0, code, h.stderr.String())
	assert.Empty(t, h.stdout.String())
}

func TestRun_UndefinedProperty(t *testing.T) {
	h := newHarness(t)

	code := h.execute("run", "-f", h.buildFile())

	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "BUILD FAILED")
	assert.Contains(t, h.stderr.String(), "property 'flavor' has not been set")
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "bad define", args: []string{"run", "-D", "novalue"}, want: "invalid property definition 'novalue'"},
		{name: "unknown flag", args: []string{"run", "--nope"}, want: "unknown flag: --nope"},
		{name: "exclusive levels", args: []string{"run", "-q", "-d"}, want: "none of the others can be"},
		{name: "unknown command", args: []string{"explode"}, want: "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			code := h.execute(tt.args...)

			assert.Equal(t, 1, code)
			assert.Contains(t, h.stderr.String(), tt.want)
			assert.Contains(t, h.stderr.String(), "Try 'emmet --help' for more information")
		})
	}
}

func TestTargets(t *testing.T) {
	h := newHarness(t)

	code := h.execute("targets", "-f", h.buildFile())

	require.Equal(t, 0, code, h.stderr.String())
	assert.Contains(t, h.stdout.String(), "Main Targets:")
	assert.Contains(t, h.stdout.String(), "Build it")
}

func TestFrameworks(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, ".emmet.hcl"), []byte(`
framework "go1.22" {
  description = "Go 1.22"
}
`), 0o600))

	code := h.execute("frameworks", "-f", h.buildFile())

	require.Equal(t, 0, code, h.stderr.String())
	assert.Contains(t, h.stdout.String(), "go1.22  Go 1.22")
}

func TestVersion(t *testing.T) {
	h := newHarness(t)

	code := h.execute("version")

	require.Equal(t, 0, code)
	assert.Equal(t, "emmet version dev (commit none, built unknown)\n", h.stdout.String())
}
