package inject

import (
	"sync"
	"sync/atomic"
)

// Provider produces instances for a binding. Providers receive the
// resolution Context of the request they serve and may resolve further
// dependencies through it.
type Provider interface {
	Get(ctx *Context) (any, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx *Context) (any, error)

// Get calls f(ctx).
func (f ProviderFunc) Get(ctx *Context) (any, error) {
	return f(ctx)
}

// Scope decides how often a binding's unscoped provider runs. A Scope is a
// stateless strategy: any cache belongs to the provider it returns.
type Scope interface {
	// Scope wraps the unscoped provider of the binding for key.
	Scope(key Key, unscoped Provider) Provider

	String() string
}

// Built-in scopes.
var (
	// Singleton constructs at most one instance per binding and returns it
	// to every later request.
	Singleton Scope = singletonScope{}

	// None calls the unscoped provider on every request.
	None Scope = noScope{}
)

type noScope struct{}

func (noScope) Scope(_ Key, unscoped Provider) Provider {
	return unscoped
}

func (noScope) String() string {
	return "None"
}

type singletonScope struct{}

func (singletonScope) Scope(key Key, unscoped Provider) Provider {
	return &singletonProvider{key: key, unscoped: unscoped}
}

func (singletonScope) String() string {
	return "Singleton"
}

// singletonProvider caches the first successfully constructed instance.
// Construction is guarded by double-checked locking: reads after
// construction take no lock, concurrent first calls serialize on mu and only
// one of them reaches the unscoped provider.
type singletonProvider struct {
	key      Key
	unscoped Provider

	mu       sync.Mutex
	done     atomic.Bool
	instance any
}

func (p *singletonProvider) Get(ctx *Context) (any, error) {
	if p.done.Load() {
		return p.instance, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done.Load() {
		return p.instance, nil
	}

	instance, err := p.unscoped.Get(ctx)
	if err != nil {
		return nil, err
	}

	p.instance = instance
	p.done.Store(true)
	ctx.injector.logger.Debug("singleton constructed", ctx.fields(p.key)...)

	return instance, nil
}
