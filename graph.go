package inject

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/junioryono/inject/internal/graph"
	"github.com/junioryono/inject/internal/reflection"
)

// GraphFormat selects the output of Injector.WriteGraph.
type GraphFormat int

const (
	// GraphText lists the keys grouped by depth, leaves first.
	GraphText GraphFormat = iota

	// GraphDOT writes Graphviz DOT.
	GraphDOT
)

// WriteGraph writes the static dependency graph of the explicit bindings.
// Keys reached from them that would be constructed just in time are
// included, keys that cannot be provided are shown as missing. Providers
// bound with ToProvider are opaque: their dependencies are only known at
// resolution time.
func (inj *Injector) WriteGraph(w io.Writer, format GraphFormat) error {
	if inj == nil {
		return ErrNilInjector
	}

	g, _ := inj.dependencyGraph()
	v := graph.NewVisualizer(g)

	switch format {
	case GraphText:
		return v.WriteText(w)
	case GraphDOT:
		return v.WriteDOT(w)
	default:
		return fmt.Errorf("unknown graph format %d", format)
	}
}

// Validate checks the static dependency graph for cycles and returns a
// CircularDependencyError for the first one found. Resolution reports cycles
// on its own; Validate finds them without constructing anything.
func (inj *Injector) Validate() error {
	if inj == nil {
		return ErrNilInjector
	}

	g, keys := inj.dependencyGraph()

	var cycle *graph.CycleError
	if err := g.DetectCycles(); errors.As(err, &cycle) {
		path := make([]Key, len(cycle.Path))
		for i, id := range cycle.Path {
			path[i] = keys[id.(keyID)]
		}
		return CircularDependencyError{Path: path}
	}

	return nil
}

// dependencyGraph builds the graph from the explicit bindings, following
// dependencies through just-in-time types. The returned map holds the key of
// every node.
func (inj *Injector) dependencyGraph() (*graph.DependencyGraph, map[keyID]Key) {
	r := inj.resolver
	g := graph.NewDependencyGraph()
	keys := make(map[keyID]Key)

	var add func(key Key) keyID
	add = func(key Key) keyID {
		key = r.normalize(key)
		id := key.id()
		if _, seen := keys[id]; seen {
			return id
		}
		keys[id] = key

		node := g.AddNode(id, key.String())

		binding, ok := r.registry.lookup(key)
		if !ok {
			if !r.jit || r.ineligible(key) != "" {
				node.Kind = "missing"
				return id
			}
			binding = r.synthesize(key, JustInTimeBinding, None, "just-in-time")
		}

		node.Kind = binding.kind.String()
		node.Scope = binding.scope.String()

		for _, dep := range inj.dependencies(binding) {
			depID := add(dep)
			_ = g.AddDependency(id, depID)
		}
		return id
	}

	for _, b := range r.registry.all() {
		add(b.key)
	}

	return g, keys
}

// dependencies returns the keys a binding resolves, as far as they can be
// known without running it.
func (inj *Injector) dependencies(b *Binding) []Key {
	switch p := b.unscoped.(type) {
	case linkedProvider:
		return []Key{p.target}
	case constructorProvider:
		return append(parameterKeys(p.info.Parameters), inj.fieldKeys(p.info.Out)...)
	case structProvider:
		return inj.fieldKeys(p.typ)
	case *factoryProvider:
		return append(parameterKeys(p.factory.ctor.Parameters), inj.fieldKeys(p.factory.ctor.Out)...)
	default:
		return nil
	}
}

func parameterKeys(params []reflection.ParameterInfo) []Key {
	var keys []Key
	for _, p := range params {
		if p.Assisted {
			continue
		}
		keys = append(keys, parameterKey(p))
	}
	return keys
}

func (inj *Injector) fieldKeys(t reflect.Type) []Key {
	fields, err := inj.resolver.analyzer.Fields(t)
	if err != nil {
		return nil
	}
	return parameterKeys(fields)
}
