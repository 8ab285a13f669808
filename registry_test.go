package inject

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instanceBinding(key Key, v any) *Binding {
	return newBinding(key, InstanceBinding, instanceProvider{instance: v}, None, "test")
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	t.Run("lookup by equal key", func(t *testing.T) {
		t.Parallel()

		r := newRegistry()
		b := instanceBinding(KeyOf[*TService](Named("a")), &TService{})
		require.NoError(t, r.register(b))

		got, ok := r.lookup(KeyOf[*TService](Named("a")))
		require.True(t, ok)
		assert.Same(t, b, got)

		_, ok = r.lookup(KeyOf[*TService]())
		assert.False(t, ok)
		assert.True(t, r.explicit(KeyOf[*TService](Named("a"))))
	})

	t.Run("duplicate leaves the first binding", func(t *testing.T) {
		t.Parallel()

		r := newRegistry()
		first := instanceBinding(KeyOf[*TService](), &TService{ID: "first"})
		require.NoError(t, r.register(first))

		err := r.register(instanceBinding(KeyOf[*TService](), &TService{ID: "second"}))
		var dup DuplicateBindingError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "test", dup.Existing)

		got, _ := r.lookup(KeyOf[*TService]())
		assert.Same(t, first, got)
		assert.Len(t, r.keys(), 1)
	})

	t.Run("registries are isolated", func(t *testing.T) {
		t.Parallel()

		a, b := newRegistry(), newRegistry()
		require.NoError(t, a.register(instanceBinding(KeyOf[*TService](), &TService{})))

		_, ok := b.lookup(KeyOf[*TService]())
		assert.False(t, ok)
	})

	t.Run("all is sorted by key", func(t *testing.T) {
		t.Parallel()

		r := newRegistry()
		require.NoError(t, r.register(instanceBinding(KeyOf[*TService](), nil)))
		require.NoError(t, r.register(instanceBinding(KeyOf[*TDependency](), nil)))

		all := r.all()
		require.Len(t, all, 2)
		assert.Equal(t, "*TDependency", all[0].Key().String())
		assert.Equal(t, "*TService", all[1].Key().String())

		keys := r.keys()
		assert.Equal(t, "*TService", keys[0].String())
	})
}

func TestRegistry_GetOrSynthesize(t *testing.T) {
	t.Parallel()

	t.Run("concurrent first lookups share one binding", func(t *testing.T) {
		t.Parallel()

		r := newRegistry()
		key := KeyOf[*TService]()

		var (
			mu    sync.Mutex
			calls int
			wg    sync.WaitGroup
		)
		results := make([]*Binding, 32)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				b, err := r.getOrSynthesize(key, func() (*Binding, error) {
					mu.Lock()
					calls++
					mu.Unlock()
					return instanceBinding(key, nil), nil
				})
				assert.NoError(t, err)
				results[i] = b
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 1, calls)
		for _, b := range results {
			assert.Same(t, results[0], b)
		}

		got, ok := r.lookup(key)
		assert.True(t, ok)
		assert.Same(t, results[0], got)
		assert.False(t, r.explicit(key))
	})

	t.Run("failures are not cached", func(t *testing.T) {
		t.Parallel()

		r := newRegistry()
		key := KeyOf[*TService]()

		_, err := r.getOrSynthesize(key, func() (*Binding, error) { return nil, errTest })
		assert.ErrorIs(t, err, errTest)

		_, ok := r.lookup(key)
		assert.False(t, ok)
	})
}

func TestRegistry_Constructors(t *testing.T) {
	t.Parallel()

	r := newRegistry()
	typ := reflect.TypeOf(&TService{})
	assert.Empty(t, r.declaredConstructors(typ))

	r.declareConstructor(typ, nil)
	r.declareConstructor(typ, nil)
	assert.Len(t, r.declaredConstructors(typ), 2)
}
