package inject

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_Validate(t *testing.T) {
	t.Parallel()

	t.Run("acyclic", func(t *testing.T) {
		t.Parallel()

		inj := newInjector(t, func(b *Binder) {
			Bind[*TServiceWithDeps](b).ToConstructor(NewTServiceWithDeps)
			Bind[TInterface](b).To(KeyOf[*TService]())
		})
		assert.NoError(t, inj.Validate())
	})

	t.Run("cycle through just-in-time types", func(t *testing.T) {
		t.Parallel()

		inj := newInjector(t, func(b *Binder) {
			Bind[*TCycleA](b)
		})

		err := inj.Validate()
		var cycle CircularDependencyError
		require.ErrorAs(t, err, &cycle)
		require.Len(t, cycle.Path, 3)
		assert.Equal(t, "*TCycleA", cycle.Path[0].String())
		assert.Equal(t, "*TCycleB", cycle.Path[1].String())
		assert.Equal(t, "*TCycleA", cycle.Path[2].String())
	})

	t.Run("cycle through linked bindings", func(t *testing.T) {
		t.Parallel()

		type loop struct {
			Self TInterface `inject:""`
		}

		inj := newInjector(t, func(b *Binder) {
			Bind[TInterface](b).To(KeyOf[*TService]())
			Bind[*TService](b).ToConstructor(func(l *loop) *TService { return &TService{} })
		})
		assert.True(t, IsCircularDependency(inj.Validate()))
	})

	t.Run("nothing is constructed", func(t *testing.T) {
		t.Parallel()

		inj := newInjector(t, func(b *Binder) {
			Bind[*TService](b).ToConstructor(func() *TService {
				t.Error("validate must not call constructors")
				return nil
			}).In(Singleton)
		})
		assert.NoError(t, inj.Validate())
	})

	t.Run("nil injector", func(t *testing.T) {
		t.Parallel()

		var inj *Injector
		assert.ErrorIs(t, inj.Validate(), ErrNilInjector)
	})
}

func TestGraph_Write(t *testing.T) {
	t.Parallel()

	inj := newInjector(t, func(b *Binder) {
		Bind[*TServiceWithDeps](b).ToConstructor(NewTServiceWithDeps).In(Singleton)
		Bind[*TMissingDeps](b)
		Bind[*TService](b, Named("primary")).ToInstance(&TService{})
	})

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, inj.WriteGraph(&buf, GraphText))

		out := buf.String()
		assert.Contains(t, out, "*TServiceWithDeps")
		assert.Contains(t, out, "Kind: just-in-time")
		assert.Contains(t, out, "Kind: missing")
		assert.Contains(t, out, "Scope: Singleton")
		assert.Contains(t, out, "Cycles: None")
	})

	t.Run("dot", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, inj.WriteGraph(&buf, GraphDOT))

		out := buf.String()
		assert.Contains(t, out, "digraph dependencies {")
		assert.Contains(t, out, `@Named(\"primary\") *TService`)
		assert.Contains(t, out, "lightpink")
		assert.Contains(t, out, "lightblue")
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		assert.Error(t, inj.WriteGraph(&buf, GraphFormat(9)))
	})
}
