package inject

import (
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/junioryono/inject/internal/reflection"
)

// registry maps keys to bindings. Explicit bindings are written only while
// the injector is being configured; just-in-time bindings are added lazily
// and concurrently, so both maps are guarded by mu.
type registry struct {
	mu           sync.RWMutex
	bindings     map[keyID]*Binding
	order        []*Binding
	jit          map[keyID]*Binding
	constructors map[reflect.Type][]*reflection.ConstructorInfo
}

func newRegistry() *registry {
	return &registry{
		bindings:     make(map[keyID]*Binding),
		jit:          make(map[keyID]*Binding),
		constructors: make(map[reflect.Type][]*reflection.ConstructorInfo),
	}
}

// register adds an explicit binding. A key that is already bound is left
// untouched and a DuplicateBindingError is returned.
func (r *registry) register(b *Binding) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := b.key.id()
	if existing, ok := r.bindings[id]; ok {
		return DuplicateBindingError{Key: b.key, Existing: existing.source}
	}

	r.bindings[id] = b
	r.order = append(r.order, b)
	return nil
}

// lookup returns the explicit or already synthesized binding for key.
func (r *registry) lookup(key Key) (*Binding, bool) {
	id := key.id()

	r.mu.RLock()
	defer r.mu.RUnlock()

	if b, ok := r.bindings[id]; ok {
		return b, true
	}

	b, ok := r.jit[id]
	return b, ok
}

// explicit reports whether key has a registered binding.
func (r *registry) explicit(key Key) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.bindings[key.id()]
	return ok
}

// getOrSynthesize returns the cached just-in-time binding for key, creating
// it with synthesize on first use. Creation holds the write lock, so
// concurrent first lookups observe the same *Binding. synthesize must not
// call back into the registry.
func (r *registry) getOrSynthesize(key Key, synthesize func() (*Binding, error)) (*Binding, error) {
	id := key.id()

	r.mu.RLock()
	b, ok := r.jit[id]
	r.mu.RUnlock()
	if ok {
		return b, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.jit[id]; ok {
		return b, nil
	}

	b, err := synthesize()
	if err != nil {
		return nil, err
	}

	r.jit[id] = b
	return b, nil
}

// declareConstructor records the constructor to use when t is synthesized
// just in time.
func (r *registry) declareConstructor(t reflect.Type, info *reflection.ConstructorInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.constructors[t] = append(r.constructors[t], info)
}

func (r *registry) declaredConstructors(t reflect.Type) []*reflection.ConstructorInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.constructors[t]
}

// all returns the explicit bindings sorted by key.
func (r *registry) all() []*Binding {
	r.mu.RLock()
	bindings := slices.Clone(r.order)
	r.mu.RUnlock()

	slices.SortStableFunc(bindings, func(a, b *Binding) int {
		return strings.Compare(a.key.String(), b.key.String())
	})
	return bindings
}

// keys returns the keys of all explicit bindings in registration order.
func (r *registry) keys() []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]Key, len(r.order))
	for i, b := range r.order {
		keys[i] = b.key
	}
	return keys
}
