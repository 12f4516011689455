package tasks_test

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
	"go.trai.ch/emmet/internal/adapters/fs"
	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/emmet/internal/core/ports/mocks"
	"go.trai.ch/emmet/internal/registry"
	"go.trai.ch/emmet/internal/tasks"
	"go.uber.org/mock/gomock"
)

type logLine struct {
	level domain.Level
	msg   string
}

// fakeEnv is a minimal TaskEnv backed by a temporary project.
type fakeEnv struct {
	project *domain.Project
	props   *domain.PropertyStore
	stdout  bytes.Buffer
	logs    []logLine
	called  []string
}

func newEnv(t *testing.T) *fakeEnv {
	t.Helper()
	p := domain.NewProject("test")
	p.BaseDir = t.TempDir()
	return &fakeEnv{project: p, props: domain.NewPropertyStore()}
}

func (e *fakeEnv) Project() *domain.Project          { return e.project }
func (e *fakeEnv) Properties() *domain.PropertyStore { return e.props }
func (e *fakeEnv) BaseDir() string                   { return e.project.BaseDir }
func (e *fakeEnv) Stdout() io.Writer                 { return &e.stdout }
func (e *fakeEnv) Stderr() io.Writer                 { return io.Discard }

func (e *fakeEnv) Log(level domain.Level, msg string) {
	e.logs = append(e.logs, logLine{level: level, msg: msg})
}

func (e *fakeEnv) ExecuteTarget(_ context.Context, name string) error {
	e.called = append(e.called, name)
	return nil
}

type harness struct {
	reg      *registry.Registry
	executor *mocks.MockExecutor
	hasher   *mocks.MockHasher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := &harness{
		reg:      registry.New(),
		executor: mocks.NewMockExecutor(ctrl),
		hasher:   mocks.NewMockHasher(ctrl),
	}
	require.NoError(t, tasks.NewLibrary(h.executor, h.hasher, fs.NewResolver()).Register(h.reg))
	return h
}

func (h *harness) create(t *testing.T, env *fakeEnv, el *domain.Element) (ports.Element, error) {
	t.Helper()
	return h.reg.Create(el, registry.NewScope(env.props, env.BaseDir()))
}

func (h *harness) run(t *testing.T, env *fakeEnv, el *domain.Element) error {
	t.Helper()
	inst, err := h.create(t, env, el)
	if err != nil {
		return err
	}
	task, ok := inst.(ports.Task)
	require.True(t, ok, "%s is not a task", el.Name)
	return task.Execute(context.Background(), env)
}

func el(name string, kv ...string) *domain.Element {
	e := &domain.Element{Name: name}
	for i := 0; i+1 < len(kv); i += 2 {
		e.Attributes = append(e.Attributes, domain.Attribute{Name: kv[i], Value: kv[i+1]})
	}
	return e
}

func text(name, value string) *domain.Element {
	return &domain.Element{Name: name, Text: value, HasText: true}
}

func with(parent *domain.Element, children ...*domain.Element) *domain.Element {
	parent.Children = append(parent.Children, children...)
	return parent
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLibrary_RegistersBuiltins(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, []string{
		"arg", "call", "checksum", "copy", "delete", "echo", "env",
		"exec", "fail", "fileset", "mkdir", "property",
	}, h.reg.Names())
}

func TestEcho(t *testing.T) {
	h := newHarness(t)

	t.Run("Log", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		env := mocks.NewMockTaskEnv(ctrl)
		env.EXPECT().Log(domain.LevelWarning, "careful")

		inst, err := h.reg.Create(el("echo", "message", "careful", "level", "Warning"),
			registry.NewScope(domain.NewPropertyStore(), t.TempDir()))
		require.NoError(t, err)
		require.NoError(t, inst.(ports.Task).Execute(context.Background(), env))
	})

	t.Run("File", func(t *testing.T) {
		env := newEnv(t)
		require.NoError(t, h.run(t, env, el("echo", "message", "one", "file", "out/log.txt")))
		require.NoError(t, h.run(t, env, el("echo", "message", "two", "file", "out/log.txt", "append", "true")))

		data, err := os.ReadFile(filepath.Join(env.BaseDir(), "out", "log.txt"))
		require.NoError(t, err)
		assert.Equal(t, "one\ntwo\n", string(data))
	})
}

func TestProperty(t *testing.T) {
	h := newHarness(t)
	env := newEnv(t)

	require.NoError(t, h.run(t, env, el("property", "name", "a", "value", "1")))
	require.NoError(t, h.run(t, env, el("property", "name", "a", "value", "2", "overwrite", "false")))
	v, _ := env.props.Get("a")
	assert.Equal(t, "1", v)

	require.NoError(t, h.run(t, env, el("property", "name", "a", "value", "3", "readonly", "true")))
	require.NoError(t, h.run(t, env, el("property", "name", "a", "value", "4")))
	v, _ = env.props.Get("a")
	assert.Equal(t, "3", v)
	assert.True(t, env.props.IsReadOnly("a"))

	err := h.run(t, env, el("property", "name", "bad name", "value", "x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidAttribute))
}

func TestFail(t *testing.T) {
	h := newHarness(t)

	err := h.run(t, newEnv(t), text("fail", "stop here"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop here")
}

func TestCall(t *testing.T) {
	h := newHarness(t)
	env := newEnv(t)

	require.NoError(t, h.run(t, env, el("call", "target", "package")))
	assert.Equal(t, []string{"package"}, env.called)
}

func TestChecksum(t *testing.T) {
	h := newHarness(t)
	env := newEnv(t)
	path := filepath.Join(env.BaseDir(), "data.bin")

	h.hasher.EXPECT().ComputeFileHash(path).Return(uint64(0xbeef), nil)

	require.NoError(t, h.run(t, env, el("checksum", "file", "data.bin", "property", "data.sum")))
	v, ok := env.props.Get("data.sum")
	require.True(t, ok)
	assert.Equal(t, "000000000000beef", v)
}

func TestMkdirAndDelete(t *testing.T) {
	h := newHarness(t)
	env := newEnv(t)
	dir := filepath.Join(env.BaseDir(), "build", "obj")

	require.NoError(t, h.run(t, env, el("mkdir", "dir", "build/obj")))
	assert.DirExists(t, dir)

	writeFile(t, filepath.Join(dir, "a.o"), "a")
	writeFile(t, filepath.Join(env.BaseDir(), "keep.txt"), "k")
	writeFile(t, filepath.Join(env.BaseDir(), "junk.tmp"), "j")

	require.NoError(t, h.run(t, env, el("delete", "dir", "build")))
	assert.NoDirExists(t, filepath.Join(env.BaseDir(), "build"))

	require.NoError(t, h.run(t, env, with(el("delete"),
		with(el("fileset"), text("include", "*.tmp")))))
	assert.NoFileExists(t, filepath.Join(env.BaseDir(), "junk.tmp"))
	assert.FileExists(t, filepath.Join(env.BaseDir(), "keep.txt"))

	require.NoError(t, h.run(t, env, el("delete", "file", "missing.txt")))

	_, err := h.create(t, env, el("delete"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "one of 'file', 'dir' or a nested fileset is required")
}

func TestCopy(t *testing.T) {
	h := newHarness(t)
	env := newEnv(t)
	base := env.BaseDir()

	writeFile(t, filepath.Join(base, "src", "main.go"), "package main")
	writeFile(t, filepath.Join(base, "src", "pkg", "lib.go"), "package pkg")
	writeFile(t, filepath.Join(base, "src", "pkg", "lib_test.go"), "package pkg")
	writeFile(t, filepath.Join(base, "README"), "readme")

	t.Run("SingleFile", func(t *testing.T) {
		require.NoError(t, h.run(t, env, el("copy", "file", "README", "tofile", "out/README.txt")))
		data, err := os.ReadFile(filepath.Join(base, "out", "README.txt"))
		require.NoError(t, err)
		assert.Equal(t, "readme", string(data))
	})

	t.Run("FileSet", func(t *testing.T) {
		require.NoError(t, h.run(t, env, with(el("copy", "todir", "dist"),
			with(el("fileset", "basedir", "src"),
				text("include", "**/*.go"),
				text("exclude", "**/*_test.go")))))

		assert.FileExists(t, filepath.Join(base, "dist", "main.go"))
		assert.FileExists(t, filepath.Join(base, "dist", "pkg", "lib.go"))
		assert.NoFileExists(t, filepath.Join(base, "dist", "pkg", "lib_test.go"))
	})

	t.Run("Flatten", func(t *testing.T) {
		require.NoError(t, h.run(t, env, with(el("copy", "todir", "flat", "flatten", "true"),
			with(el("fileset", "basedir", "src"), text("include", "**/*.go")))))

		assert.FileExists(t, filepath.Join(base, "flat", "lib.go"))
		assert.FileExists(t, filepath.Join(base, "flat", "lib_test.go"))
	})

	t.Run("KeepsNewerDestination", func(t *testing.T) {
		dst := filepath.Join(base, "out", "kept.txt")
		writeFile(t, dst, "newer")
		future := time.Now().Add(time.Hour)
		require.NoError(t, os.Chtimes(dst, future, future))

		require.NoError(t, h.run(t, env, el("copy", "file", "README", "tofile", "out/kept.txt")))
		data, _ := os.ReadFile(dst)
		assert.Equal(t, "newer", string(data))

		require.NoError(t, h.run(t, env, el("copy", "file", "README", "tofile", "out/kept.txt", "overwrite", "true")))
		data, _ = os.ReadFile(dst)
		assert.Equal(t, "readme", string(data))
	})

	t.Run("InvalidCombination", func(t *testing.T) {
		_, err := h.create(t, env, el("copy", "file", "README", "tofile", "a", "todir", "b"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be combined")
	})
}

func TestFileSet_References(t *testing.T) {
	h := newHarness(t)
	env := newEnv(t)
	writeFile(t, filepath.Join(env.BaseDir(), "docs", "a.md"), "a")
	scope := registry.NewScope(env.props, env.BaseDir())

	_, err := h.reg.Create(with(el("fileset", "id", "docs", "basedir", "docs"), text("include", "*.md")), scope)
	require.NoError(t, err)

	inst, err := h.reg.Create(with(el("copy", "todir", "site"), el("fileset", "refid", "docs")), scope)
	require.NoError(t, err)
	require.NoError(t, inst.(ports.Task).Execute(context.Background(), env))

	assert.FileExists(t, filepath.Join(env.BaseDir(), "site", "a.md"))
}

func TestFileSet_DelegatesToResolver(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockFileResolver(ctrl)
	reg := registry.New()
	require.NoError(t, tasks.NewLibrary(mocks.NewMockExecutor(ctrl), mocks.NewMockHasher(ctrl), resolver).Register(reg))

	env := newEnv(t)
	src := filepath.Join(env.BaseDir(), "src")
	stale := filepath.Join(src, "stale.go")
	writeFile(t, stale, "package stale")

	resolver.EXPECT().Resolve(src, []string{"**/*.{go,mod}"}, gomock.Any()).
		DoAndReturn(func(_ string, _, excludes []string) ([]string, error) {
			assert.Contains(t, excludes, "vendor/**")
			assert.Greater(t, len(excludes), 1, "default excludes are appended")
			return []string{stale}, nil
		})
	resolver.EXPECT().Resolve(src, []string{"*.txt"}, gomock.Nil()).Return(nil, errors.New("walk failed"))

	scope := registry.NewScope(env.props, env.BaseDir())
	inst, err := reg.Create(with(el("delete"),
		with(el("fileset", "basedir", "src"), text("include", "**/*.{go,mod}"), text("exclude", "vendor/**"))), scope)
	require.NoError(t, err)
	require.NoError(t, inst.(ports.Task).Execute(context.Background(), env))
	assert.NoFileExists(t, stale)

	inst, err = reg.Create(with(el("delete"),
		with(el("fileset", "basedir", "src", "defaultexcludes", "false"), text("include", "*.txt"))), scope)
	require.NoError(t, err)
	err = inst.(ports.Task).Execute(context.Background(), env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "walk failed")
}

func TestFileSet_FailOnEmpty(t *testing.T) {
	h := newHarness(t)
	env := newEnv(t)

	err := h.run(t, env, with(el("delete"),
		with(el("fileset", "failonempty", "true"), text("include", "*.none"))))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matched no files")
}

func TestExec(t *testing.T) {
	h := newHarness(t)
	env := newEnv(t)
	require.NoError(t, env.props.Set("pkg", "./...", false))

	h.executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd *domain.Command, stdout, _ io.Writer) error {
			assert.Equal(t, "go", cmd.Program)
			assert.Equal(t, []string{"test", "-race", "-run", "TestX", "./..."}, cmd.Args)
			assert.Equal(t, env.BaseDir(), cmd.Dir)
			assert.Equal(t, map[string]string{"CGO_ENABLED": "1"}, cmd.Env)
			assert.Equal(t, 1500*time.Millisecond, cmd.Timeout)
			_, err := io.WriteString(stdout, "ok\n")
			return err
		})

	task := with(el("exec", "program", "go", "commandline", "test -race", "timeout", "1500", "output", "test.log"),
		el("arg", "line", "-run TestX"),
		text("arg", "${pkg}"),
		el("env", "name", "CGO_ENABLED", "value", "1"),
	)
	require.NoError(t, h.run(t, env, task))

	assert.Equal(t, "ok\n", env.stdout.String())
	data, err := os.ReadFile(filepath.Join(env.BaseDir(), "test.log"))
	require.NoError(t, err)
	assert.Equal(t, "ok\n", string(data))
}

func TestExec_ResultProperty(t *testing.T) {
	h := newHarness(t)
	env := newEnv(t)

	exitErr := exec.Command("sh", "-c", "exit 3").Run()
	require.Error(t, exitErr)

	h.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(exitErr)

	err := h.run(t, env, el("exec", "program", "sh", "resultproperty", "rc"))
	require.Error(t, err)

	rc, ok := env.props.Get("rc")
	require.True(t, ok)
	assert.Equal(t, "3", rc)
}

func TestArg_RequiresExactlyOneSource(t *testing.T) {
	h := newHarness(t)
	env := newEnv(t)

	_, err := h.create(t, env, el("arg", "value", "a", "line", "b c"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of")

	_, err = h.create(t, env, el("arg"))
	require.Error(t, err)
}

func TestEnvVar_Path(t *testing.T) {
	v := &tasks.EnvVar{Name: "GOPATH", Path: "a" + string(filepath.ListSeparator) + "/abs"}
	require.NoError(t, v.Initialize())
	assert.Equal(t, filepath.Join("/base", "a")+string(filepath.ListSeparator)+"/abs", v.Resolve("/base"))
}
