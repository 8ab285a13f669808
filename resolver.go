package inject

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/junioryono/inject/internal/reflection"
)

// resolver is the resolution engine. It walks a key to a fully constructed
// instance, recursing into dependencies through the request's Context.
type resolver struct {
	registry *registry
	analyzer *reflection.Analyzer
	logger   *zap.Logger
	policy   QualifierPolicy
	jit      bool
}

// normalize applies the qualifier policy to key.
func (r *resolver) normalize(key Key) Key {
	if r.policy == QualifierDefaultsAsUnqualified && key.qualifier.OnlyDefaults() {
		return key.WithoutQualifier()
	}
	return key
}

// resolve produces the instance for key. Every failure is attached to ctx
// and reported to the caller as errDependencyFailed, so sibling dependencies
// keep resolving and the request reports all problems at once.
func (r *resolver) resolve(ctx *Context, key Key) (any, error) {
	key = r.normalize(key)

	// A key that already failed in this request has been reported
	if ctx.hasFailed(key) {
		return nil, errDependencyFailed
	}

	// The cycle check runs before the binding's scope is entered, so a
	// singleton never waits on its own construction lock.
	if path, ok := ctx.cycle(key); ok {
		ctx.errs.Attach(CircularDependencyError{Path: path})
		return nil, errDependencyFailed
	}

	release := ctx.enter(key)
	defer release()

	binding, err := r.binding(ctx, key)
	if err != nil {
		ctx.errs.Attach(err)
		ctx.markFailed(key)
		return nil, errDependencyFailed
	}

	return r.provision(ctx, key, binding)
}

// provision runs the scoped provider of binding. The caller has already
// pushed key on the chain.
func (r *resolver) provision(ctx *Context, key Key, binding *Binding) (any, error) {
	instance, err := binding.scoped.Get(ctx)
	if err != nil {
		if !errors.Is(err, errDependencyFailed) {
			ctx.errs.Attach(BindingError{Key: key, Cause: err})
		}
		ctx.markFailed(key)
		return nil, errDependencyFailed
	}

	if instance != nil && !reflect.TypeOf(instance).AssignableTo(key.typ) {
		ctx.errs.Attach(TypeMismatchError{
			Expected: key.typ,
			Actual:   reflect.TypeOf(instance),
			Context:  fmt.Sprintf("%s binding for %s", binding.kind, key),
		})
		ctx.markFailed(key)
		return nil, errDependencyFailed
	}

	return instance, nil
}

// binding finds the registered binding for key or synthesizes one.
func (r *resolver) binding(ctx *Context, key Key) (*Binding, error) {
	if b, ok := r.registry.lookup(key); ok {
		return b, nil
	}

	missing := func(reason string) error {
		chain := ctx.Chain()
		return MissingBindingError{
			Key:       key,
			Reason:    reason,
			Chain:     chain[:len(chain)-1],
			Available: findSimilarKeys(key, r.registry.keys()),
		}
	}

	if !r.jit {
		return nil, missing("just-in-time bindings are disabled")
	}

	if reason := r.ineligible(key); reason != "" {
		return nil, missing(reason)
	}

	// Constructors are read before the registry lock is taken.
	ctors := r.registry.declaredConstructors(key.typ)

	return r.registry.getOrSynthesize(key, func() (*Binding, error) {
		b := synthesizeWith(key, ctors, JustInTimeBinding, None, "just-in-time")
		r.logger.Debug("just-in-time binding created", zap.Stringer("key", key))
		return b, nil
	})
}

// ineligible explains why key cannot get a just-in-time binding, or returns
// the empty string when it can.
func (r *resolver) ineligible(key Key) string {
	if key.IsQualified() {
		return "qualified keys require an explicit binding"
	}

	return r.unconstructable(key.typ)
}

// unconstructable explains why t has no implicit constructor.
func (r *resolver) unconstructable(t reflect.Type) string {
	switch ctors := r.registry.declaredConstructors(t); len(ctors) {
	case 0:
	case 1:
		return ""
	default:
		return fmt.Sprintf("%d constructors are declared for %s", len(ctors), formatType(t))
	}

	switch {
	case t.Kind() == reflect.Struct:
		return ""
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		return ""
	case t.Kind() == reflect.Interface:
		return "interface types require an explicit binding"
	default:
		return fmt.Sprintf("%s values cannot be constructed implicitly", t.Kind())
	}
}

// synthesize builds a binding from the implicit constructor of key's type.
// The caller has checked that the type is constructable.
func (r *resolver) synthesize(key Key, kind BindingKind, scope Scope, source string) *Binding {
	return synthesizeWith(key, r.registry.declaredConstructors(key.typ), kind, scope, source)
}

// synthesizeWith builds the binding from ctors, the constructors declared for
// key's type. It does not touch the registry.
func synthesizeWith(key Key, ctors []*reflection.ConstructorInfo, kind BindingKind, scope Scope, source string) *Binding {
	var unscoped Provider
	if len(ctors) == 1 {
		unscoped = constructorProvider{key: key, info: ctors[0]}
	} else {
		unscoped = structProvider{key: key, typ: key.typ}
	}

	return newBinding(key, kind, unscoped, scope, source)
}

// canProvide reports whether key has a binding or could get one just in time.
func (r *resolver) canProvide(key Key) bool {
	key = r.normalize(key)
	if _, ok := r.registry.lookup(key); ok {
		return true
	}
	return r.jit && r.ineligible(key) == ""
}

// construct resolves the arguments of a constructor, calls it and injects the
// fields of the result. Assisted parameters take their value from assisted.
func (r *resolver) construct(ctx *Context, key Key, info *reflection.ConstructorInfo, assisted map[keyID]reflect.Value) (any, error) {
	args, ok := info.Arguments(reflection.DependencyResolverFunc(func(p reflection.ParameterInfo) (reflect.Value, bool) {
		if p.Assisted {
			pk := r.normalize(parameterKey(p))
			if v, found := assisted[pk.id()]; found {
				return v, true
			}
			ctx.errs.Attach(AssistedBindingError{
				Target: info.Out,
				Key:    pk,
				Reason: "no factory argument for assisted parameter",
			})
			return reflect.Value{}, false
		}
		return r.resolveParameter(ctx, p)
	}))
	if !ok {
		return nil, errDependencyFailed
	}

	result, err := info.Call(args)
	if err != nil {
		var panicErr *reflection.PanicError
		if errors.As(err, &panicErr) {
			ctx.errs.Attach(ConstructorPanicError{Key: key, Panic: panicErr.Value, Stack: panicErr.Stack})
		} else {
			ctx.errs.Attach(BindingError{Key: key, Cause: err})
		}
		return nil, errDependencyFailed
	}

	if !r.injectMembers(ctx, key, result) {
		return nil, errDependencyFailed
	}

	if !result.IsValid() {
		return nil, nil
	}
	return result.Interface(), nil
}

// injectMembers resolves and assigns the inject-tagged fields of the struct
// target points to. Values that are not pointers to structs are left alone.
func (r *resolver) injectMembers(ctx *Context, key Key, target reflect.Value) bool {
	if target.IsValid() && target.Kind() == reflect.Interface && !target.IsNil() {
		target = target.Elem()
	}

	if !target.IsValid() || target.Kind() != reflect.Pointer || target.IsNil() {
		return true
	}

	fields, err := r.analyzer.Fields(target.Type())
	if err != nil {
		ctx.errs.Attach(BindingError{Key: key, Cause: err})
		return false
	}

	if len(fields) == 0 {
		return true
	}

	return reflection.InjectFields(target, fields, reflection.DependencyResolverFunc(func(p reflection.ParameterInfo) (reflect.Value, bool) {
		return r.resolveParameter(ctx, p)
	}))
}

// resolveParameter resolves one injection point. Optional points whose key
// cannot be provided resolve to the zero value.
func (r *resolver) resolveParameter(ctx *Context, p reflection.ParameterInfo) (reflect.Value, bool) {
	key := parameterKey(p)

	if p.Optional && !r.canProvide(key) {
		return reflect.Value{}, true
	}

	instance, err := r.resolve(ctx, key)
	if err != nil {
		return reflect.Value{}, false
	}

	if instance == nil {
		return reflect.Value{}, true
	}
	return reflect.ValueOf(instance), true
}

// parameterKey builds the key of an injection point from its type and name tag.
func parameterKey(p reflection.ParameterInfo) Key {
	if p.Name != "" {
		return NewKey(p.Type, Named(p.Name))
	}
	return NewKey(p.Type)
}
