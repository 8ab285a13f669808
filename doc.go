// Package inject provides a reflection-based dependency injection container
// with qualified keys, scopes, just-in-time bindings and assisted factories.
//
// # Overview
//
// An Injector maps keys to instances. A Key is a type plus an optional
// Qualifier; bindings declared in modules tell the injector how to produce
// the instance for each key:
//   - ToInstance: a fixed value
//   - ToConstructor: a function whose parameters are resolved from the injector
//   - ToProvider: custom code receiving the resolution Context
//   - To: another key, typically an interface bound to an implementation
//   - ToFactory: a function type whose arguments fill assisted parameters
//
// Concrete struct types that are never bound are constructed just in time.
//
// # Basic Usage
//
//	inj, err := inject.New(func(b *inject.Binder) {
//	    inject.Bind[Logger](b).To(inject.KeyOf[*ConsoleLogger]())
//	    inject.Bind[*Database](b).ToConstructor(NewDatabase).In(inject.Singleton)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	svc, err := inject.Get[*UserService](inj)
//
// # Qualifiers
//
// Several bindings of one type are told apart with qualifiers. Named covers
// the common case; NewQualifierKind declares kinds with defaulted attributes:
//
//	var Storage = inject.NewQualifierKind("Storage", inject.Attr("tier", "hot"))
//
//	inject.Bind[Bucket](b, Storage.New(inject.Attr("tier", "cold"))).ToInstance(archive)
//	inject.Bind[Cache](b, inject.Named("redis")).ToConstructor(NewRedisCache)
//
// Whether Storage.New() (all attributes at their defaults) is the same key as
// the unqualified Bucket is decided by InjectorOptions.QualifierPolicy.
//
// # Injection Points
//
// Constructors either take their dependencies positionally or as a single
// parameter object embedding In (dig.In is accepted as well). Struct fields
// tagged with inject are filled after construction:
//
//	type ServiceParams struct {
//	    inject.In
//
//	    DB     *Database
//	    Cache  Cache  `name:"redis"`
//	    Tracer Tracer `optional:"true"`
//	}
//
//	type Handler struct {
//	    Logger Logger `inject:""`
//	}
//
// # Scopes
//
//   - None: the provider runs on every request (default)
//   - Singleton: one instance per binding, created on first use
//
// Failed constructions are never cached, so a later request retries.
//
// # Errors
//
// A request walks the whole graph before failing and returns one
// ProvisionError listing every problem found: missing bindings, cycles,
// constructor errors and panics. errors.As works on the individual causes:
//
//	_, err := inject.Get[*App](inj)
//	var missing inject.MissingBindingError
//	if errors.As(err, &missing) {
//	    log.Printf("bind %s", missing.Key)
//	}
//
// Configuration problems found by New are returned together as a
// *ConfigurationError, except duplicate bindings which abort immediately.
//
// # Assisted Injection
//
// A factory mixes caller supplied arguments with injected dependencies:
//
//	type GreeterParams struct {
//	    inject.In
//
//	    Name   string `assisted:"true"`
//	    Logger Logger
//	}
//
//	type GreeterFactory func(name string) *Greeter
//
//	inject.Bind[GreeterFactory](b).ToFactory(NewGreeter)
//
//	greeter := inject.MustGet[GreeterFactory](inj)("Ada")
//
// # dig Interop
//
// Injector.ExportTo provides every explicit binding to a go.uber.org/dig
// container, for applications that mix both.
package inject
