package inject

import (
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context is the state of one top-level resolution request: the chain of
// keys currently being resolved and the errors found so far. A Context is
// owned by the request that created it and must not be shared between
// goroutines.
//
// Providers receive the Context of the request they serve and resolve their
// own dependencies through Get, so that cycles and failures are tracked
// across the whole graph.
type Context struct {
	injector *Injector
	id       string
	chain    []Key
	errs     ErrorList
	failed   map[keyID]struct{}
}

func newContext(injector *Injector) *Context {
	return &Context{
		injector: injector,
		id:       uuid.NewString(),
		failed:   make(map[keyID]struct{}),
	}
}

// ID returns the unique identifier of the request.
func (c *Context) ID() string {
	return c.id
}

// Injector returns the injector serving the request.
func (c *Context) Injector() *Injector {
	return c.injector
}

// Get resolves key within this request. When resolution fails the problem is
// already recorded on the Context; providers should return the error
// unchanged so that it is not reported twice.
func (c *Context) Get(key Key) (any, error) {
	return c.injector.resolver.resolve(c, key)
}

// Chain returns a copy of the keys currently being resolved, outermost first.
func (c *Context) Chain() []Key {
	return slices.Clone(c.chain)
}

// Errors returns the errors attached so far.
func (c *Context) Errors() ErrorAttachable {
	return &c.errs
}

// enter pushes key on the chain. The returned function pops it and must be
// called on every exit path.
func (c *Context) enter(key Key) func() {
	c.chain = append(c.chain, key)
	depth := len(c.chain)

	return func() {
		c.chain = c.chain[:depth-1]
	}
}

// cycle returns the cycle path if key is already being resolved.
func (c *Context) cycle(key Key) ([]Key, bool) {
	id := key.id()
	for i, k := range c.chain {
		if k.id() == id {
			path := make([]Key, 0, len(c.chain)-i+1)
			path = append(path, c.chain[i:]...)
			return append(path, key), true
		}
	}
	return nil, false
}

func (c *Context) markFailed(key Key) {
	c.failed[key.id()] = struct{}{}
}

func (c *Context) hasFailed(key Key) bool {
	_, ok := c.failed[key.id()]
	return ok
}

// report turns the attached errors into the failure of the request for key.
// It returns nil when nothing was attached.
func (c *Context) report(key Key) error {
	if !c.errs.HasErrors() {
		return nil
	}

	c.injector.logger.Debug("resolution failed",
		append(c.fields(key), zap.Int("errors", c.errs.Len()))...)

	return ProvisionError{
		Key:      key,
		Messages: c.errs.ErrorMessages(),
		Causes:   c.errs.Errors(),
	}
}

func (c *Context) fields(key Key) []zap.Field {
	return []zap.Field{
		zap.String("injector", c.injector.id),
		zap.String("request", c.id),
		zap.Stringer("key", key),
	}
}
