package reflection_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junioryono/inject/internal/reflection"
)

type consoleLogger struct{}

func (consoleLogger) Log(string) {}

// values resolves parameters from a fixed map keyed by type and name.
func values(m map[string]any) reflection.DependencyResolver {
	return reflection.DependencyResolverFunc(func(p reflection.ParameterInfo) (reflect.Value, bool) {
		v, ok := m[p.Type.String()+p.Name]
		if !ok {
			return reflect.Value{}, false
		}
		if v == nil {
			return reflect.Value{}, true
		}
		return reflect.ValueOf(v), true
	})
}

func TestConstructorInfo_Arguments(t *testing.T) {
	t.Parallel()

	db := &Database{ConnectionString: "primary"}

	t.Run("positional", func(t *testing.T) {
		t.Parallel()

		info, err := reflection.New().Analyze(NewUserService)
		require.NoError(t, err)

		args, ok := info.Arguments(values(map[string]any{
			"*reflection_test.Database": db,
			"reflection_test.Logger":    consoleLogger{},
		}))
		require.True(t, ok)

		out, err := info.Call(args)
		require.NoError(t, err)

		svc := out.Interface().(*UserService)
		assert.Same(t, db, svc.DB)
		assert.IsType(t, consoleLogger{}, svc.Logger)
	})

	t.Run("every parameter is attempted", func(t *testing.T) {
		t.Parallel()

		info, err := reflection.New().Analyze(NewUserService)
		require.NoError(t, err)

		var asked []string
		args, ok := info.Arguments(reflection.DependencyResolverFunc(func(p reflection.ParameterInfo) (reflect.Value, bool) {
			asked = append(asked, p.Type.String())
			return reflect.Value{}, false
		}))

		assert.False(t, ok)
		assert.Len(t, asked, 2)
		require.Len(t, args, 2)
		assert.True(t, args[0].IsNil())
	})

	t.Run("untyped nil becomes the zero value", func(t *testing.T) {
		t.Parallel()

		info, err := reflection.New().Analyze(NewUserService)
		require.NoError(t, err)

		args, ok := info.Arguments(values(map[string]any{
			"*reflection_test.Database": nil,
			"reflection_test.Logger":    nil,
		}))
		require.True(t, ok)

		out, err := info.Call(args)
		require.NoError(t, err)
		assert.Nil(t, out.Interface().(*UserService).DB)
	})

	t.Run("parameter object", func(t *testing.T) {
		t.Parallel()

		var got ServiceParams
		info, err := reflection.New().Analyze(func(p ServiceParams) *UserService {
			got = p
			return &UserService{DB: p.DB}
		})
		require.NoError(t, err)

		cache := &Database{ConnectionString: "cache"}
		args, ok := info.Arguments(values(map[string]any{
			"*reflection_test.Database":      db,
			"*reflection_test.Databasecache": cache,
			"int64":                          int64(42),
		}))
		require.True(t, ok)

		_, err = info.Call(args)
		require.NoError(t, err)
		assert.Same(t, db, got.DB)
		assert.Same(t, cache, got.Cache)
		assert.Equal(t, int64(42), got.Amount)
		assert.Nil(t, got.Skipped)
	})
}

func TestConstructorInfo_Call(t *testing.T) {
	t.Parallel()

	t.Run("error result", func(t *testing.T) {
		t.Parallel()

		errBoom := errors.New("boom")
		info, err := reflection.New().Analyze(func() (*Database, error) { return nil, errBoom })
		require.NoError(t, err)

		_, err = info.Call(nil)
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("panic is recovered", func(t *testing.T) {
		t.Parallel()

		info, err := reflection.New().Analyze(func() *Database { panic("kaboom") })
		require.NoError(t, err)

		_, err = info.Call(nil)
		var panicErr *reflection.PanicError
		require.ErrorAs(t, err, &panicErr)
		assert.Equal(t, "kaboom", panicErr.Value)
		assert.NotEmpty(t, panicErr.Stack)
		assert.Equal(t, "panic: kaboom", panicErr.Error())
	})
}

func TestInjectFields(t *testing.T) {
	t.Parallel()

	fields, err := reflection.New().Fields(reflect.TypeOf(Handler{}))
	require.NoError(t, err)

	db := &Database{}

	t.Run("assigns resolved fields", func(t *testing.T) {
		t.Parallel()

		h := &Handler{}
		ok := reflection.InjectFields(reflect.ValueOf(h), fields, values(map[string]any{
			"*reflection_test.Database":        db,
			"*reflection_test.Databasereplica": nil,
		}))

		require.True(t, ok)
		assert.Same(t, db, h.DB)
		assert.Nil(t, h.Replica)
		assert.Nil(t, h.Plain)
	})

	t.Run("keeps going after a failure", func(t *testing.T) {
		t.Parallel()

		replica := &Database{}
		h := &Handler{}
		ok := reflection.InjectFields(reflect.ValueOf(h), fields, values(map[string]any{
			"*reflection_test.Databasereplica": replica,
		}))

		assert.False(t, ok)
		assert.Nil(t, h.DB)
		assert.Same(t, replica, h.Replica)
	})

	t.Run("interface holding a pointer", func(t *testing.T) {
		t.Parallel()

		var target any = &Handler{}
		v := reflect.ValueOf(&target).Elem()
		ok := reflection.InjectFields(v, fields, values(map[string]any{
			"*reflection_test.Database":        db,
			"*reflection_test.Databasereplica": db,
		}))

		require.True(t, ok)
		assert.Same(t, db, target.(*Handler).DB)
	})

	t.Run("nil and non-addressable targets are ignored", func(t *testing.T) {
		t.Parallel()

		never := reflection.DependencyResolverFunc(func(reflection.ParameterInfo) (reflect.Value, bool) {
			t.Error("resolver must not be called")
			return reflect.Value{}, false
		})

		assert.True(t, reflection.InjectFields(reflect.ValueOf((*Handler)(nil)), fields, never))
		assert.True(t, reflection.InjectFields(reflect.ValueOf(Handler{}), fields, never))
	})
}
