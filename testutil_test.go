package inject

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// ============================================================================
// Shared Test Types
// ============================================================================

var errTest = errors.New("test error")

// TService is a basic service for testing.
type TService struct {
	ID    string
	Value int
}

func (s *TService) GetID() string { return s.ID }

// TDependency is a basic dependency for testing.
type TDependency struct {
	Name string
}

// TServiceWithDeps demonstrates constructor injection.
type TServiceWithDeps struct {
	Svc *TService
	Dep *TDependency
}

func NewTServiceWithDeps(svc *TService, dep *TDependency) *TServiceWithDeps {
	return &TServiceWithDeps{Svc: svc, Dep: dep}
}

// TInterface is a basic interface for testing.
type TInterface interface {
	GetID() string
}

// TFieldInjected demonstrates field injection.
type TFieldInjected struct {
	Svc      *TService  `inject:""`
	Named    *TService  `inject:"" name:"primary"`
	Optional TInterface `inject:"" optional:"true"`
	Skipped  *TService  `inject:"-"`
	Plain    *TService
}

// Cycle participants: TCycleA -> TCycleB -> TCycleA.
type TCycleA struct {
	B *TCycleB `inject:""`
}

type TCycleB struct {
	A *TCycleA `inject:""`
}

// TMissingDeps needs two interfaces that are never bound.
type TMissingDeps struct {
	First  TInterface   `inject:""`
	Second TUnboundPort `inject:""`
}

type TUnboundPort interface {
	Port() int
}

// TGraphRoot and TGraphLeaf have no bindings and resolve just in time.
type TGraphRoot struct {
	Leaf *TGraphLeaf `inject:""`
}

type TGraphLeaf struct {
	Dep *TDependency `inject:""`
}

// ============================================================================
// Helpers
// ============================================================================

// within fails the test if fn does not return before d elapses.
func within(t *testing.T, d time.Duration, fn func()) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()

	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("did not return within %s", d)
	}
}

// counter returns a constructor for *TService that counts its calls.
func counter(calls *atomic.Int32) func() *TService {
	return func() *TService {
		n := calls.Add(1)
		return &TService{ID: "svc", Value: int(n)}
	}
}

// newInjector creates an injector and fails the test on error.
func newInjector(t *testing.T, modules ...Module) *Injector {
	t.Helper()
	inj, err := New(modules...)
	require.NoError(t, err)
	return inj
}

// newObservedInjector creates an injector whose debug logs are captured.
func newObservedInjector(t *testing.T, options *InjectorOptions, modules ...Module) (*Injector, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	if options == nil {
		options = &InjectorOptions{}
	}
	options.Logger = zap.New(core)

	inj, err := NewWithOptions(options, modules...)
	require.NoError(t, err)
	return inj, logs
}
