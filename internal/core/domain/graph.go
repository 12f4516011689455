package domain

import (
	"fmt"
	"strings"

	"go.trai.ch/zerr"
)

// visit states of the depth-first traversal.
const (
	unvisited = iota
	visiting
	visited
)

// Graph represents the dependency graph of targets.
type Graph struct {
	deps map[string][]string
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		deps: make(map[string][]string),
	}
}

// AddTarget adds a target and the names of its dependencies, in declaration order.
func (g *Graph) AddTarget(name string, dependencies []string) {
	g.deps[name] = dependencies
}

// Has reports whether the graph contains the named target.
func (g *Graph) Has(name string) bool {
	_, ok := g.deps[name]
	return ok
}

// Resolve returns the execution order for the requested targets: every requested
// target plus its transitive dependencies, each exactly once, with every target
// placed after all of its dependencies. Sibling dependencies keep their
// declaration order and requested targets are processed in the order given.
func (g *Graph) Resolve(requested ...string) ([]string, error) {
	order := make([]string, 0, len(g.deps))
	state := make(map[string]int, len(g.deps))
	var path []string

	var visit func(name, requiredBy string) error
	visit = func(name, requiredBy string) error {
		deps, exists := g.deps[name]
		if !exists {
			return unknownTargetError(name, requiredBy)
		}

		state[name] = visiting
		path = append(path, name)

		for _, dep := range deps {
			switch state[dep] {
			case visiting:
				return g.buildCycleError(path, dep)
			case unvisited:
				if err := visit(dep, name); err != nil {
					return err
				}
			}
		}

		state[name] = visited
		path = path[:len(path)-1]
		order = append(order, name)
		return nil
	}

	for _, name := range requested {
		if state[name] == visited {
			continue
		}
		if err := visit(name, ""); err != nil {
			return nil, err
		}
	}

	return order, nil
}

func unknownTargetError(name, requiredBy string) error {
	msg := fmt.Sprintf("target '%s' does not exist in this project", name)
	if requiredBy != "" {
		msg = fmt.Sprintf("target '%s' does not exist in this project; it is used by target '%s'", name, requiredBy)
	}
	err := zerr.With(zerr.Wrap(ErrUnknownTarget, msg), "target", name)
	if requiredBy != "" {
		err = zerr.With(err, "required_by", requiredBy)
	}
	return err
}

// buildCycleError constructs an error with cycle path metadata.
func (g *Graph) buildCycleError(path []string, dep string) error {
	startIdx := 0
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	cycle := append(append([]string{}, path[startIdx:]...), dep)
	cyclePath := strings.Join(cycle, " -> ")
	err := zerr.Wrap(ErrCircularDependency, "circular dependency: "+cyclePath)
	return zerr.With(err, "cycle", cyclePath)
}
