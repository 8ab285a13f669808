package inject

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/junioryono/inject/internal/reflection"
)

// Binder collects bindings while modules are applied. A Binder only lives
// for the duration of New; it records problems instead of failing fast so
// that every configuration error is reported together.
type Binder struct {
	analyzer     *reflection.Analyzer
	builders     []*BindingBuilder
	constructors []*reflection.ConstructorInfo
	errs         ErrorList
	modules      []string
}

func newBinder(analyzer *reflection.Analyzer) *Binder {
	return &Binder{analyzer: analyzer}
}

// Bind starts a binding for key. The binding is registered when the
// injector is created, whether or not a target is chosen; a binding without
// a target is constructed like a just-in-time binding but keeps its scope.
func (b *Binder) Bind(key Key) *BindingBuilder {
	builder := &BindingBuilder{
		binder:  b,
		key:     key,
		scope:   None,
		modules: append([]string(nil), b.modules...),
	}

	if key.typ == nil {
		builder.fail(ErrKeyTypeNil)
		return builder
	}

	b.builders = append(b.builders, builder)
	return builder
}

// Bind starts a binding for T.
//
// Example:
//
//	inject.Bind[Cache](b, inject.Named("redis")).To(inject.KeyOf[*RedisCache]())
func Bind[T any](b *Binder, q ...Qualifier) *BindingBuilder {
	return b.Bind(KeyOf[T](q...))
}

// Constructor declares fn as the constructor of its result type. Just-in-time
// and untargeted bindings of that type call it instead of allocating a zero
// value. Declaring two constructors for one type makes the type ambiguous.
func (b *Binder) Constructor(fn any) {
	info, err := b.analyzer.Analyze(fn)
	if err != nil {
		b.AddError(err)
		return
	}

	if err := rejectAssisted(info); err != nil {
		b.AddError(err)
		return
	}

	b.constructors = append(b.constructors, info)
}

// Install applies modules to the binder.
func (b *Binder) Install(modules ...Module) {
	for _, m := range modules {
		if m == nil {
			continue
		}
		m(b)
	}
}

// AddError records a configuration error. Errors raised inside a named
// module are wrapped in a ModuleError for each enclosing module.
func (b *Binder) AddError(err error) {
	if err == nil {
		return
	}
	b.errs.Attach(wrapModules(b.modules, err))
}

func wrapModules(modules []string, err error) error {
	for i := len(modules) - 1; i >= 0; i-- {
		err = ModuleError{Module: modules[i], Cause: err}
	}
	return err
}

// BindingBuilder configures one binding. Choose at most one target.
type BindingBuilder struct {
	binder  *Binder
	key     Key
	scope   Scope
	modules []string
	failed  bool

	kind     BindingKind
	targeted bool
	instance any
	provider Provider
	info     *reflection.ConstructorInfo
	target   Key
	factory  *factoryBinding
}

// To links the key to another key, typically an interface to its
// implementation. The target's own binding and scope apply.
func (bb *BindingBuilder) To(target Key) *BindingBuilder {
	if !bb.setTarget(LinkedBinding) {
		return bb
	}

	if target.typ == nil {
		bb.fail(ErrKeyTypeNil)
		return bb
	}

	if !target.typ.AssignableTo(bb.key.typ) {
		bb.fail(TypeMismatchError{Expected: bb.key.typ, Actual: target.typ, Context: "linked binding"})
		return bb
	}

	bb.target = target
	return bb
}

// ToInstance binds the key to a fixed value.
func (bb *BindingBuilder) ToInstance(v any) *BindingBuilder {
	if !bb.setTarget(InstanceBinding) {
		return bb
	}

	if v == nil {
		if !nillable(bb.key.typ) {
			bb.fail(TypeMismatchError{Expected: bb.key.typ, Actual: nil, Context: "instance binding"})
		}
		return bb
	}

	if t := reflect.TypeOf(v); !t.AssignableTo(bb.key.typ) {
		bb.fail(TypeMismatchError{Expected: bb.key.typ, Actual: t, Context: "instance binding"})
		return bb
	}

	bb.instance = v
	return bb
}

// ToProvider binds the key to a custom provider.
func (bb *BindingBuilder) ToProvider(p Provider) *BindingBuilder {
	if !bb.setTarget(ProviderBinding) {
		return bb
	}

	if p == nil {
		bb.fail(ErrProviderNil)
		return bb
	}

	bb.provider = p
	return bb
}

// ToProviderFunc binds the key to a provider function.
func (bb *BindingBuilder) ToProviderFunc(fn func(ctx *Context) (any, error)) *BindingBuilder {
	if fn == nil {
		if bb.setTarget(ProviderBinding) {
			bb.fail(ErrProviderNil)
		}
		return bb
	}
	return bb.ToProvider(ProviderFunc(fn))
}

// ToConstructor binds the key to a constructor function returning T or
// (T, error). Parameters are resolved by type and tags; the fields of the
// result tagged with inject are injected after construction.
func (bb *BindingBuilder) ToConstructor(fn any) *BindingBuilder {
	if !bb.setTarget(ConstructorBinding) {
		return bb
	}

	info, err := bb.binder.analyzer.Analyze(fn)
	if err != nil {
		bb.fail(err)
		return bb
	}

	if !info.Out.AssignableTo(bb.key.typ) {
		bb.fail(TypeMismatchError{Expected: bb.key.typ, Actual: info.Out, Context: "constructor binding"})
		return bb
	}

	if err := rejectAssisted(info); err != nil {
		bb.fail(err)
		return bb
	}

	bb.info = info
	return bb
}

// ToFactory binds a func type F to an assisted factory for ctor. The key's
// type must be a function returning T or (T, error), where T is the result
// of ctor. The i-th argument of F supplies the assisted parameter keyed by
// the argument's type and params[i]; missing params mean unqualified.
//
// Example:
//
//	type PaymentFactory func(amount int64) *Payment
//
//	inject.Bind[PaymentFactory](b).ToFactory(NewPayment)
func (bb *BindingBuilder) ToFactory(ctor any, params ...Qualifier) *BindingBuilder {
	if !bb.setTarget(FactoryBinding) {
		return bb
	}

	f, err := newFactoryBinding(bb.binder.analyzer, bb.key.typ, ctor, params)
	if err != nil {
		bb.fail(err)
		return bb
	}

	bb.factory = f
	return bb
}

// In sets the scope of the binding. The default is None.
func (bb *BindingBuilder) In(scope Scope) *BindingBuilder {
	if scope == nil {
		bb.fail(ErrScopeNil)
		return bb
	}

	bb.scope = scope
	return bb
}

// AsSingleton is shorthand for In(Singleton).
func (bb *BindingBuilder) AsSingleton() *BindingBuilder {
	return bb.In(Singleton)
}

func (bb *BindingBuilder) setTarget(kind BindingKind) bool {
	if bb.targeted {
		bb.fail(fmt.Errorf("binding for %s already has a %s target", bb.key, bb.kind))
		return false
	}

	bb.kind = kind
	bb.targeted = true
	return true
}

func (bb *BindingBuilder) fail(err error) {
	bb.failed = true
	bb.binder.errs.Attach(wrapModules(bb.modules, err))
}

func (bb *BindingBuilder) source() string {
	if len(bb.modules) == 0 {
		return "binder"
	}
	return "module " + strings.Join(bb.modules, "/")
}

// build turns the builder into a binding. The key is normalized by the
// resolver's qualifier policy before the binding is created.
func (bb *BindingBuilder) build(r *resolver) (*Binding, error) {
	key := r.normalize(bb.key)
	source := bb.source()

	if !bb.targeted {
		if reason := r.unconstructable(key.typ); reason != "" {
			return nil, fmt.Errorf("%w: %s: %s", ErrBindingIncomplete, key, reason)
		}
		return r.synthesize(key, ConstructorBinding, bb.scope, source), nil
	}

	var unscoped Provider
	switch bb.kind {
	case InstanceBinding:
		unscoped = instanceProvider{instance: bb.instance}
	case ProviderBinding:
		unscoped = bb.provider
	case ConstructorBinding:
		unscoped = constructorProvider{key: key, info: bb.info}
	case LinkedBinding:
		unscoped = linkedProvider{target: bb.target}
	case FactoryBinding:
		unscoped = &factoryProvider{key: key, factory: bb.factory}
	default:
		return nil, fmt.Errorf("unknown binding kind %s", bb.kind)
	}

	binding := newBinding(key, bb.kind, unscoped, bb.scope, source)
	if bb.kind == LinkedBinding {
		binding.target = bb.target
	}
	return binding, nil
}

func rejectAssisted(info *reflection.ConstructorInfo) error {
	for _, p := range info.Parameters {
		if p.Assisted {
			return fmt.Errorf("constructor %v has assisted parameter %s and can only be bound with ToFactory", info.Type, p.Field)
		}
	}
	return nil
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}
