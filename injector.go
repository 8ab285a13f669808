package inject

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/junioryono/inject/internal/reflection"
)

// InjectorOptions configures an Injector. A nil *InjectorOptions means the
// defaults.
type InjectorOptions struct {
	// Logger receives debug records for registration, just-in-time synthesis,
	// singleton construction and failed requests. Defaults to a no-op logger.
	Logger *zap.Logger

	// QualifierPolicy controls whether qualifiers that carry only default
	// attribute values distinguish keys. Defaults to QualifierStrict.
	QualifierPolicy QualifierPolicy

	// DisableJustInTime turns off just-in-time bindings: every key must be
	// bound explicitly.
	DisableJustInTime bool

	// EagerSingletons resolves every explicitly bound singleton while the
	// injector is created. All failures are reported together.
	EagerSingletons bool
}

// Injector resolves keys to instances. It is immutable after New returns,
// apart from its just-in-time bindings and singleton caches, and is safe for
// concurrent use.
type Injector struct {
	id       string
	logger   *zap.Logger
	resolver *resolver
}

// New creates an injector from modules with default options.
//
// Example:
//
//	inj, err := inject.New(func(b *inject.Binder) {
//	    inject.Bind[Logger](b).To(inject.KeyOf[*ConsoleLogger]())
//	    inject.Bind[*sql.DB](b).ToConstructor(OpenDatabase).In(inject.Singleton)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	db, err := inject.Get[*sql.DB](inj)
func New(modules ...Module) (*Injector, error) {
	return NewWithOptions(nil, modules...)
}

// NewWithOptions creates an injector from modules. Configuration problems are
// collected and returned as one *ConfigurationError, except a duplicate
// binding, which is returned as soon as it is found.
func NewWithOptions(options *InjectorOptions, modules ...Module) (*Injector, error) {
	if options == nil {
		options = &InjectorOptions{}
	}

	if !options.QualifierPolicy.IsValid() {
		return nil, fmt.Errorf("invalid qualifier policy %s", options.QualifierPolicy)
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	analyzer := reflection.New()
	inj := &Injector{
		id:     uuid.NewString(),
		logger: logger,
	}
	inj.resolver = &resolver{
		registry: newRegistry(),
		analyzer: analyzer,
		logger:   logger,
		policy:   options.QualifierPolicy,
		jit:      !options.DisableJustInTime,
	}

	binder := newBinder(analyzer)
	binder.Install(modules...)

	if err := inj.configure(binder); err != nil {
		return nil, err
	}

	logger.Debug("injector created",
		zap.String("injector", inj.id),
		zap.Int("bindings", len(binder.builders)+1))

	if options.EagerSingletons {
		if err := inj.createSingletons(); err != nil {
			return nil, err
		}
	}

	return inj, nil
}

// configure registers everything the binder collected.
func (inj *Injector) configure(binder *Binder) error {
	reg := inj.resolver.registry

	for _, info := range binder.constructors {
		reg.declareConstructor(info.Out, info)
	}

	self := newBinding(KeyOf[*Injector](), InstanceBinding, instanceProvider{instance: inj}, None, "injector")
	if err := reg.register(self); err != nil {
		return err
	}

	errs := &binder.errs
	for _, bb := range binder.builders {
		if bb.failed {
			continue
		}

		b, err := bb.build(inj.resolver)
		if err != nil {
			errs.Attach(wrapModules(bb.modules, err))
			continue
		}

		if err := reg.register(b); err != nil {
			return err
		}

		inj.logger.Debug("binding registered",
			zap.String("injector", inj.id),
			zap.Stringer("key", b.key),
			zap.Stringer("kind", b.kind),
			zap.Stringer("scope", b.scope))
	}

	if errs.HasErrors() {
		return &ConfigurationError{
			Messages: errs.ErrorMessages(),
			Causes:   errs.Errors(),
		}
	}

	return nil
}

// createSingletons resolves every explicit singleton binding in one request
// so that all failures are reported together.
func (inj *Injector) createSingletons() error {
	ctx := newContext(inj)

	var first Key
	for _, b := range inj.resolver.registry.all() {
		if b.scope != Singleton {
			continue
		}
		if first.IsZero() {
			first = b.key
		}
		_, _ = inj.resolver.resolve(ctx, b.key)
	}

	if err := ctx.report(first); err != nil {
		return &ConfigurationError{
			Messages: ctx.errs.ErrorMessages(),
			Causes:   []error{err},
		}
	}
	return nil
}

// ID returns the unique identifier of the injector.
func (inj *Injector) ID() string {
	return inj.id
}

// GetInstance resolves key. All problems found while resolving the graph are
// returned as a single ProvisionError.
func (inj *Injector) GetInstance(key Key) (any, error) {
	if inj == nil {
		return nil, ErrNilInjector
	}

	if key.typ == nil {
		return nil, ErrKeyTypeNil
	}

	ctx := newContext(inj)
	instance, _ := inj.resolver.resolve(ctx, key)
	if err := ctx.report(key); err != nil {
		return nil, err
	}

	return instance, nil
}

// InjectMembers injects the inject-tagged fields of the struct target points
// to, resolving them as a single request.
func (inj *Injector) InjectMembers(target any) error {
	if inj == nil {
		return ErrNilInjector
	}

	v := reflect.ValueOf(target)
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrTargetNotPointer
	}

	key := NewKey(v.Type())
	ctx := newContext(inj)
	release := ctx.enter(key)
	inj.resolver.injectMembers(ctx, key, v)
	release()

	return ctx.report(key)
}

// Bindings returns the explicit bindings sorted by key.
func (inj *Injector) Bindings() []*Binding {
	return inj.resolver.registry.all()
}

// Binding returns the explicit or just-in-time binding for key, if one exists.
func (inj *Injector) Binding(key Key) (*Binding, bool) {
	return inj.resolver.registry.lookup(inj.resolver.normalize(key))
}

// Get resolves T with an optional qualifier.
//
// Example:
//
//	cache, err := inject.Get[Cache](inj, inject.Named("redis"))
func Get[T any](inj *Injector, q ...Qualifier) (T, error) {
	var zero T

	if inj == nil {
		return zero, ErrNilInjector
	}

	instance, err := inj.GetInstance(KeyOf[T](q...))
	if err != nil {
		return zero, err
	}

	if instance == nil {
		return zero, nil
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, TypeMismatchError{
			Expected: reflect.TypeOf(&zero).Elem(),
			Actual:   reflect.TypeOf(instance),
			Context:  "type assertion",
		}
	}

	return typed, nil
}

// MustGet resolves T and panics if resolution fails.
func MustGet[T any](inj *Injector, q ...Qualifier) T {
	v, err := Get[T](inj, q...)
	if err != nil {
		panic(err)
	}
	return v
}

// IsProvisionError reports whether err is a resolution failure.
func IsProvisionError(err error) bool {
	var target ProvisionError
	return errors.As(err, &target)
}
