package reflection

import (
	"fmt"
	"reflect"
	"runtime/debug"
)

// DependencyResolver supplies the value of one injection point. It returns
// false when the point could not be resolved; reporting the failure is the
// resolver's job.
type DependencyResolver interface {
	ResolveParameter(p ParameterInfo) (reflect.Value, bool)
}

// DependencyResolverFunc adapts a function to DependencyResolver.
type DependencyResolverFunc func(p ParameterInfo) (reflect.Value, bool)

func (f DependencyResolverFunc) ResolveParameter(p ParameterInfo) (reflect.Value, bool) {
	return f(p)
}

// PanicError captures a panic raised by a constructor.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Arguments resolves every parameter of the constructor. All parameters are
// attempted even after a failure so that independent problems surface
// together; ok is false if any of them failed.
func (info *ConstructorInfo) Arguments(r DependencyResolver) (args []reflect.Value, ok bool) {
	ok = true

	if info.IsParamObject {
		structType := info.ParamType
		if structType.Kind() == reflect.Pointer {
			structType = structType.Elem()
		}

		structPtr := reflect.New(structType)
		for _, p := range info.Parameters {
			v, resolved := r.ResolveParameter(p)
			if !resolved {
				ok = false
				continue
			}
			setValue(structPtr.Elem().Field(p.Index), v)
		}

		if info.ParamType.Kind() == reflect.Pointer {
			return []reflect.Value{structPtr}, ok
		}
		return []reflect.Value{structPtr.Elem()}, ok
	}

	args = make([]reflect.Value, len(info.Parameters))
	for i, p := range info.Parameters {
		v, resolved := r.ResolveParameter(p)
		if !resolved {
			ok = false
			args[i] = reflect.Zero(p.Type)
			continue
		}
		args[i] = coerce(v, p.Type)
	}

	return args, ok
}

// Call invokes the constructor. A panic is recovered into a *PanicError and a
// non-nil error result is returned as is.
func (info *ConstructorInfo) Call(args []reflect.Value) (result reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	out := info.Value.Call(args)
	if info.HasErrorReturn && !out[1].IsNil() {
		return reflect.Value{}, out[1].Interface().(error)
	}

	return out[0], nil
}

// InjectFields assigns every injectable field of the struct target points to.
// It returns false if any field failed to resolve; the remaining fields are
// still assigned.
func InjectFields(target reflect.Value, fields []ParameterInfo, r DependencyResolver) bool {
	for target.Kind() == reflect.Pointer || target.Kind() == reflect.Interface {
		if target.IsNil() {
			return true
		}
		target = target.Elem()
	}

	if target.Kind() != reflect.Struct || !target.CanAddr() {
		return true
	}

	ok := true
	for _, f := range fields {
		v, resolved := r.ResolveParameter(f)
		if !resolved {
			ok = false
			continue
		}
		setValue(target.Field(f.Index), v)
	}

	return ok
}

func setValue(field reflect.Value, v reflect.Value) {
	if !field.CanSet() || !v.IsValid() {
		return
	}
	field.Set(coerce(v, field.Type()))
}

// coerce turns an invalid value (an untyped nil instance) into the zero value
// of t and converts interface-held values to t.
func coerce(v reflect.Value, t reflect.Type) reflect.Value {
	if !v.IsValid() {
		return reflect.Zero(t)
	}

	if v.Type() != t && v.Type().AssignableTo(t) {
		out := reflect.New(t).Elem()
		out.Set(v)
		return out
	}

	return v
}
