package inject

import (
	"fmt"
	"reflect"

	"go.uber.org/dig"
	"go.uber.org/multierr"
)

// ExportTo provides every explicit binding of the injector to a dig
// container. Each key becomes a dig constructor that resolves the key
// through the injector, so scopes and error aggregation still apply. Keys
// qualified with Named use the name as the dig name; other qualifiers use
// their string form. A key dig rejects does not stop the export; all
// failures are returned combined.
//
// Example:
//
//	c := dig.New()
//	if err := inj.ExportTo(c); err != nil {
//	    return err
//	}
//
//	err := c.Invoke(func(db *sql.DB) { ... })
func (inj *Injector) ExportTo(c *dig.Container) error {
	if inj == nil {
		return ErrNilInjector
	}

	var errs error
	for _, b := range inj.Bindings() {
		if err := inj.export(c, b.key); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to export %s to dig: %w", b.key, err))
		}
	}

	return errs
}

func (inj *Injector) export(c *dig.Container, key Key) error {
	fnType := reflect.FuncOf(nil, []reflect.Type{key.typ, errorType}, false)

	fn := reflect.MakeFunc(fnType, func([]reflect.Value) []reflect.Value {
		instance, err := inj.GetInstance(key)
		if err != nil {
			return []reflect.Value{reflect.Zero(key.typ), reflect.ValueOf(&err).Elem()}
		}

		result := reflect.New(key.typ).Elem()
		if instance != nil {
			result.Set(reflect.ValueOf(instance))
		}
		return []reflect.Value{result, reflect.Zero(errorType)}
	})

	var opts []dig.ProvideOption
	if name := digName(key.qualifier); name != "" {
		opts = append(opts, dig.Name(name))
	}

	return c.Provide(fn.Interface(), opts...)
}

func digName(q Qualifier) string {
	if q.IsZero() {
		return ""
	}

	if q.kind == namedKind {
		if v, ok := q.Value("value"); ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}

	return q.String()
}
