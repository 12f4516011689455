package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/zerr"
)

func newGraph(deps map[string][]string) *domain.Graph {
	g := domain.NewGraph()
	for name, d := range deps {
		g.AddTarget(name, d)
	}
	return g
}

func indexOf(order []string, name string) int {
	for i, n := range order {
		if n == name {
			return i
		}
	}
	return -1
}

func TestGraph_Resolve_Diamond(t *testing.T) {
	g := newGraph(map[string][]string{
		"A": nil,
		"B": {"A"},
		"C": {"A"},
		"D": {"B", "C"},
	})

	order, err := g.Resolve("D")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D"}, order)
}

func TestGraph_Resolve_PreservesDeclarationOrder(t *testing.T) {
	g := newGraph(map[string][]string{
		"init":    nil,
		"zeta":    {"init"},
		"alpha":   {"init"},
		"package": {"zeta", "alpha"},
	})

	order, err := g.Resolve("package")
	require.NoError(t, err)
	assert.Equal(t, []string{"init", "zeta", "alpha", "package"}, order)
}

func TestGraph_Resolve_MultipleRequested(t *testing.T) {
	g := newGraph(map[string][]string{
		"clean": nil,
		"init":  nil,
		"build": {"init"},
		"test":  {"build"},
	})

	order, err := g.Resolve("test", "clean", "build")
	require.NoError(t, err)
	assert.Equal(t, []string{"init", "build", "test", "clean"}, order)
}

func TestGraph_Resolve_DependenciesPrecedeDependents(t *testing.T) {
	deps := map[string][]string{
		"a": nil,
		"b": {"a"},
		"c": {"b", "a"},
		"d": {"c"},
		"e": {"d", "b"},
		"f": {"e", "c", "a"},
		"g": nil,
	}
	g := newGraph(deps)

	for name := range deps {
		order, err := g.Resolve(name)
		require.NoError(t, err)

		seen := make(map[string]int)
		for _, n := range order {
			seen[n]++
		}
		for n, count := range seen {
			assert.Equal(t, 1, count, "target %s appears more than once", n)
		}
		for _, n := range order {
			for _, dep := range deps[n] {
				assert.Less(t, indexOf(order, dep), indexOf(order, n), "%s must precede %s", dep, n)
			}
		}
		assert.Equal(t, name, order[len(order)-1])
	}
}

func TestGraph_Resolve_Cycle(t *testing.T) {
	g := newGraph(map[string][]string{
		"A": {"B"},
		"B": {"A"},
	})

	for _, requested := range []string{"A", "B"} {
		t.Run(requested, func(t *testing.T) {
			_, err := g.Resolve(requested)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrCircularDependency))

			zErr, ok := err.(*zerr.Error)
			require.True(t, ok, "expected *zerr.Error, got %T", err)
			cycle, ok := zErr.Metadata()["cycle"].(string)
			require.True(t, ok)
			assert.Contains(t, cycle, "A")
			assert.Contains(t, cycle, "B")
		})
	}
}

func TestGraph_Resolve_CyclePath(t *testing.T) {
	g := newGraph(map[string][]string{
		"root": {"A"},
		"A":    {"B"},
		"B":    {"C"},
		"C":    {"A"},
	})

	_, err := g.Resolve("root")
	require.Error(t, err)

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, "A -> B -> C -> A", zErr.Metadata()["cycle"])
}

func TestGraph_Resolve_SelfDependency(t *testing.T) {
	g := newGraph(map[string][]string{"A": {"A"}})

	_, err := g.Resolve("A")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCircularDependency))
}

func TestGraph_Resolve_UnknownTarget(t *testing.T) {
	g := newGraph(map[string][]string{"build": {"missing"}})

	t.Run("requested", func(t *testing.T) {
		_, err := g.Resolve("nope")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrUnknownTarget))

		zErr, ok := err.(*zerr.Error)
		require.True(t, ok)
		assert.Equal(t, "nope", zErr.Metadata()["target"])
	})

	t.Run("dependency", func(t *testing.T) {
		_, err := g.Resolve("build")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrUnknownTarget))

		zErr, ok := err.(*zerr.Error)
		require.True(t, ok)
		assert.Equal(t, "missing", zErr.Metadata()["target"])
		assert.Equal(t, "build", zErr.Metadata()["required_by"])
	})
}

func TestProject_AddTarget_Duplicate(t *testing.T) {
	p := domain.NewProject("demo")
	require.NoError(t, p.AddTarget(&domain.Target{Name: "build"}))

	err := p.AddTarget(&domain.Target{Name: "build", Location: domain.Location{File: "b.yaml", Line: 9, Column: 5}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicateTarget))

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, "build", zErr.Metadata()["target"])
	assert.Equal(t, "b.yaml:9:5", zErr.Metadata()["location"])
}

func TestProject_Graph(t *testing.T) {
	p := domain.NewProject("demo")
	require.NoError(t, p.AddTarget(&domain.Target{Name: "init"}))
	require.NoError(t, p.AddTarget(&domain.Target{Name: "build", Depends: []string{"init"}}))

	order, err := p.Graph().Resolve("build")
	require.NoError(t, err)
	assert.Equal(t, []string{"init", "build"}, order)

	names := make([]string, 0)
	for _, target := range p.Targets() {
		names = append(names, target.Name)
	}
	assert.Equal(t, []string{"init", "build"}, names)
}
