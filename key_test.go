package inject

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type tList[T any] struct {
	Items []T
}

func TestKey_Equality(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		a, b  Key
		equal bool
	}{
		{"same type unqualified", KeyOf[*TService](), KeyOf[*TService](), true},
		{"pointer and value differ", KeyOf[*TService](), KeyOf[TService](), false},
		{"same name", KeyOf[*TService](Named("a")), KeyOf[*TService](Named("a")), true},
		{"different names", KeyOf[*TService](Named("a")), KeyOf[*TService](Named("b")), false},
		{"qualified vs unqualified", KeyOf[*TService](Named("a")), KeyOf[*TService](), false},
		{"empty name is a qualifier", KeyOf[*TService](Named("")), KeyOf[*TService](), false},
		{"generic instantiations differ", KeyOf[tList[string]](), KeyOf[tList[int]](), false},
		{"reflect type and generic agree", NewKey(reflect.TypeOf(&TService{})), KeyOf[*TService](), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
			assert.Equal(t, tt.equal, tt.b.Equal(tt.a))
			assert.Equal(t, tt.equal, tt.a.id() == tt.b.id())
		})
	}
}

func TestKey_Accessors(t *testing.T) {
	t.Parallel()

	t.Run("interface key", func(t *testing.T) {
		t.Parallel()

		k := KeyOf[TInterface]()
		assert.Equal(t, reflect.Interface, k.Type().Kind())
		assert.False(t, k.IsQualified())
		assert.True(t, k.Qualifier().IsZero())
		assert.False(t, k.IsZero())
	})

	t.Run("without qualifier", func(t *testing.T) {
		t.Parallel()

		k := KeyOf[*TService](Named("x"))
		assert.True(t, k.IsQualified())
		assert.True(t, k.WithoutQualifier().Equal(KeyOf[*TService]()))
	})

	t.Run("zero key", func(t *testing.T) {
		t.Parallel()

		assert.True(t, Key{}.IsZero())
	})

	t.Run("extra qualifiers are ignored", func(t *testing.T) {
		t.Parallel()

		k := KeyOf[*TService](Named("a"), Named("b"))
		assert.True(t, k.Equal(KeyOf[*TService](Named("a"))))
	})
}

func TestKey_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "*TService", KeyOf[*TService]().String())
	assert.Equal(t, `@Named("primary") *TService`, KeyOf[*TService](Named("primary")).String())
	assert.Equal(t, "string", KeyOf[string]().String())
}

func TestKey_MapUsage(t *testing.T) {
	t.Parallel()

	m := map[keyID]string{
		KeyOf[*TService]().id():              "plain",
		KeyOf[*TService](Named("a")).id():    "a",
		KeyOf[*TDependency](Named("a")).id(): "dep",
	}

	assert.Equal(t, "plain", m[KeyOf[*TService]().id()])
	assert.Equal(t, "a", m[KeyOf[*TService](Named("a")).id()])
	assert.Equal(t, "dep", m[KeyOf[*TDependency](Named("a")).id()])
	assert.Len(t, m, 3)
}
