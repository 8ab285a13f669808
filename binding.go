package inject

import (
	"fmt"
	"reflect"

	"github.com/junioryono/inject/internal/reflection"
)

// BindingKind tells how a binding produces its instances.
type BindingKind int

const (
	// InstanceBinding always yields the same pre-built value.
	InstanceBinding BindingKind = iota

	// ProviderBinding delegates to a user supplied Provider.
	ProviderBinding

	// ConstructorBinding calls a constructor function with resolved arguments.
	ConstructorBinding

	// LinkedBinding resolves another key, e.g. an interface to its implementation.
	LinkedBinding

	// FactoryBinding yields an assisted factory function.
	FactoryBinding

	// JustInTimeBinding was synthesized for a concrete type on first use.
	JustInTimeBinding
)

func (k BindingKind) String() string {
	switch k {
	case InstanceBinding:
		return "instance"
	case ProviderBinding:
		return "provider"
	case ConstructorBinding:
		return "constructor"
	case LinkedBinding:
		return "linked"
	case FactoryBinding:
		return "factory"
	case JustInTimeBinding:
		return "just-in-time"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Binding is a recipe for producing instances of a Key. Bindings are
// immutable once registered. The scope is applied once, when the binding is
// created, and the scoped provider is reused for every request.
type Binding struct {
	key      Key
	kind     BindingKind
	scope    Scope
	unscoped Provider
	scoped   Provider
	source   string

	// linked target, for LinkedBinding
	target Key
}

func newBinding(key Key, kind BindingKind, unscoped Provider, scope Scope, source string) *Binding {
	if scope == nil {
		scope = None
	}

	return &Binding{
		key:      key,
		kind:     kind,
		scope:    scope,
		unscoped: unscoped,
		scoped:   scope.Scope(key, unscoped),
		source:   source,
	}
}

// Key returns the key the binding is registered under.
func (b *Binding) Key() Key {
	return b.key
}

// Kind returns how the binding produces instances.
func (b *Binding) Kind() BindingKind {
	return b.kind
}

// Scope returns the scope applied to the binding.
func (b *Binding) Scope() Scope {
	return b.scope
}

// Source describes where the binding was declared, for diagnostics.
func (b *Binding) Source() string {
	return b.source
}

// Target returns the linked key of a LinkedBinding.
func (b *Binding) Target() (Key, bool) {
	return b.target, b.kind == LinkedBinding
}

func (b *Binding) String() string {
	return fmt.Sprintf("%s -> %s binding in %s scope", b.key, b.kind, b.scope)
}

// instanceProvider returns a fixed value.
type instanceProvider struct {
	instance any
}

func (p instanceProvider) Get(*Context) (any, error) {
	return p.instance, nil
}

// linkedProvider resolves another key through the engine.
type linkedProvider struct {
	target Key
}

func (p linkedProvider) Get(ctx *Context) (any, error) {
	return ctx.Get(p.target)
}

// constructorProvider invokes a constructor and injects the fields of its
// result.
type constructorProvider struct {
	key  Key
	info *reflection.ConstructorInfo
}

func (p constructorProvider) Get(ctx *Context) (any, error) {
	return ctx.injector.resolver.construct(ctx, p.key, p.info, nil)
}

// structProvider allocates the zero value of a struct type and injects its
// tagged fields. It is the implicit constructor of just-in-time bindings.
type structProvider struct {
	key Key
	typ reflect.Type // struct or pointer to struct
}

func (p structProvider) Get(ctx *Context) (any, error) {
	elem := p.typ
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}

	ptr := reflect.New(elem)
	if !ctx.injector.resolver.injectMembers(ctx, p.key, ptr) {
		return nil, errDependencyFailed
	}

	if p.typ.Kind() == reflect.Pointer {
		return ptr.Interface(), nil
	}
	return ptr.Elem().Interface(), nil
}
