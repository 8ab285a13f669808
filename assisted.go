package inject

import (
	"fmt"
	"reflect"

	"github.com/junioryono/inject/internal/reflection"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// factoryBinding describes an assisted factory: a func type whose arguments
// supply the assisted parameters of a constructor, while every other
// parameter comes from the injector.
type factoryBinding struct {
	fnType  reflect.Type // F
	out     reflect.Type // first result of F
	withErr bool         // F returns (T, error)
	ctor    *reflection.ConstructorInfo
	args    []Key // key of each argument of F, before normalization
}

func newFactoryBinding(analyzer *reflection.Analyzer, fnType reflect.Type, ctor any, params []Qualifier) (*factoryBinding, error) {
	if fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("assisted factory %v must be a function type", fnType)
	}

	if fnType.IsVariadic() {
		return nil, fmt.Errorf("assisted factory %v cannot be variadic", fnType)
	}

	f := &factoryBinding{fnType: fnType}
	switch fnType.NumOut() {
	case 1:
	case 2:
		if fnType.Out(1) != errorType {
			return nil, fmt.Errorf("second result of assisted factory %v must be error", fnType)
		}
		f.withErr = true
	default:
		return nil, fmt.Errorf("assisted factory %v must return T or (T, error)", fnType)
	}
	f.out = fnType.Out(0)

	if len(params) > fnType.NumIn() {
		return nil, fmt.Errorf("assisted factory %v takes %d arguments, got %d qualifiers",
			fnType, fnType.NumIn(), len(params))
	}

	info, err := analyzer.Analyze(ctor)
	if err != nil {
		return nil, err
	}

	if !info.Out.AssignableTo(f.out) {
		return nil, TypeMismatchError{Expected: f.out, Actual: info.Out, Context: "assisted factory"}
	}
	f.ctor = info

	f.args = make([]Key, fnType.NumIn())
	for i := range f.args {
		var q Qualifier
		if i < len(params) {
			q = params[i]
		}
		f.args[i] = NewKey(fnType.In(i), q)
	}

	return f, nil
}

// validate checks that the factory arguments and the assisted parameters of
// the constructor match one to one. Every mismatch is attached to ctx.
func (f *factoryBinding) validate(ctx *Context, r *resolver) bool {
	assisted := make(map[keyID]Key)
	for _, p := range f.ctor.Parameters {
		if p.Assisted {
			k := r.normalize(parameterKey(p))
			assisted[k.id()] = k
		}
	}

	ok := true
	mismatch := func(key Key, reason string) {
		ctx.errs.Attach(AssistedBindingError{Factory: f.fnType, Target: f.ctor.Out, Key: key, Reason: reason})
		ok = false
	}

	seen := make(map[keyID]struct{}, len(f.args))
	for _, arg := range f.args {
		k := r.normalize(arg)
		if _, dup := seen[k.id()]; dup {
			mismatch(k, "duplicate argument")
			continue
		}
		seen[k.id()] = struct{}{}

		if _, found := assisted[k.id()]; !found {
			mismatch(k, "unmatched argument")
		}
	}

	for _, p := range f.ctor.Parameters {
		if !p.Assisted {
			continue
		}
		k := r.normalize(parameterKey(p))
		if _, found := seen[k.id()]; !found {
			mismatch(k, "no argument for assisted parameter")
		}
	}

	return ok
}

// factoryProvider yields the generated factory function for F.
type factoryProvider struct {
	key     Key
	factory *factoryBinding
}

func (p *factoryProvider) Get(ctx *Context) (any, error) {
	inj := ctx.injector
	if !p.factory.validate(ctx, inj.resolver) {
		return nil, errDependencyFailed
	}

	fn := reflect.MakeFunc(p.factory.fnType, func(args []reflect.Value) []reflect.Value {
		return p.factory.call(inj, args)
	})
	return fn.Interface(), nil
}

// call runs one factory invocation in a fresh request: the assisted values
// come from args, everything else from the injector.
func (f *factoryBinding) call(inj *Injector, args []reflect.Value) []reflect.Value {
	r := inj.resolver
	ctx := newContext(inj)

	assisted := make(map[keyID]reflect.Value, len(args))
	for i, arg := range args {
		assisted[r.normalize(f.args[i]).id()] = arg
	}

	key := NewKey(f.out)
	binding := newBinding(key, ConstructorBinding, ProviderFunc(func(ctx *Context) (any, error) {
		return r.construct(ctx, key, f.ctor, assisted)
	}), None, "assisted factory "+formatType(f.fnType))

	release := ctx.enter(key)
	instance, _ := r.provision(ctx, key, binding)
	release()

	err := ctx.report(key)

	result := reflect.Zero(f.out)
	if err == nil && instance != nil {
		result = reflect.New(f.out).Elem()
		result.Set(reflect.ValueOf(instance))
	}

	if !f.withErr {
		if err != nil {
			panic(err)
		}
		return []reflect.Value{result}
	}

	errValue := reflect.Zero(errorType)
	if err != nil {
		errValue = reflect.ValueOf(&err).Elem()
	}
	return []reflect.Value{result, errValue}
}
