package inject

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================

var (
	ErrNilInjector       = errors.New("injector cannot be nil")
	ErrKeyTypeNil        = errors.New("key type cannot be nil")
	ErrProviderNil       = errors.New("provider cannot be nil")
	ErrScopeNil          = errors.New("scope cannot be nil")
	ErrTargetNotPointer  = errors.New("target must be a non-nil pointer to a struct")
	ErrBindingIncomplete = errors.New("binding has no target")

	// errDependencyFailed is returned by providers whose failure has already
	// been attached to the request's error list.
	errDependencyFailed = errors.New("dependency resolution failed")
)

var (
	_ error = DuplicateBindingError{}
	_ error = MissingBindingError{}
	_ error = CircularDependencyError{}
	_ error = AssistedBindingError{}
	_ error = ConstructorPanicError{}
	_ error = ProvisionError{}
	_ error = (*ConfigurationError)(nil)
	_ error = ModuleError{}
	_ error = TypeMismatchError{}
	_ error = BindingError{}
)

// ========================================
// Typed Errors for Rich Context
// ========================================

// DuplicateBindingError is returned when a key is bound twice. It is a
// configuration bug and aborts injector construction immediately.
type DuplicateBindingError struct {
	Key      Key
	Existing string // source of the binding already registered
}

func (e DuplicateBindingError) Error() string {
	if e.Existing != "" {
		return fmt.Sprintf("a binding for %s was already configured (%s)", e.Key, e.Existing)
	}
	return fmt.Sprintf("a binding for %s was already configured", e.Key)
}

// MissingBindingError indicates no binding exists for a key and none could be
// synthesized just in time.
type MissingBindingError struct {
	Key       Key
	Reason    string // why just-in-time synthesis was not possible
	Chain     []Key  // keys being resolved when the miss occurred, outermost first
	Available []Key  // registered keys that look similar, for suggestions
}

func (e MissingBindingError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("no binding for %s", e.Key))
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}

	if len(e.Chain) > 0 {
		b.WriteString("\n  while resolving ")
		for i, k := range e.Chain {
			if i > 0 {
				b.WriteString(" -> ")
			}
			b.WriteString(k.String())
		}
	}

	if len(e.Available) > 0 {
		b.WriteString("\n\nDid you mean one of these?\n")
		for _, k := range e.Available {
			b.WriteString(fmt.Sprintf("  • %s\n", k))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// CircularDependencyError reports a key that depends on itself. Path starts
// and ends with the same key, e.g. [A, B, A].
type CircularDependencyError struct {
	Path []Key
}

func (e CircularDependencyError) Error() string {
	var b strings.Builder
	b.WriteString("circular dependency detected:\n\n")

	for i, k := range e.Path {
		b.WriteString(fmt.Sprintf("    %s", k))
		if i == len(e.Path)-1 && i > 0 {
			b.WriteString(" (cycle)")
		}
		b.WriteString("\n")
		if i < len(e.Path)-1 {
			b.WriteString("      ↓\n")
		}
	}

	b.WriteString("\nTo resolve this:\n")
	b.WriteString("  • Bind an interface to break the dependency\n")
	b.WriteString("  • Depend on a factory or provider for lazy construction\n")
	b.WriteString("  • Restructure to remove the circular relationship")

	return b.String()
}

// AssistedBindingError indicates a factory whose arguments do not line up with
// the assisted parameters of its target constructor.
type AssistedBindingError struct {
	Factory reflect.Type
	Target  reflect.Type
	Key     Key    // the offending parameter or argument key
	Reason  string // "no argument", "unmatched argument", "duplicate argument"
}

func (e AssistedBindingError) Error() string {
	return fmt.Sprintf("assisted factory %s for %s: %s %s",
		formatType(e.Factory), formatType(e.Target), e.Reason, e.Key)
}

// ConstructorPanicError indicates a constructor panicked during invocation.
// It captures the panic value and stack trace for debugging.
type ConstructorPanicError struct {
	Key   Key
	Panic any
	Stack []byte
}

func (e ConstructorPanicError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("constructor for %s panicked: %v", e.Key, e.Panic))

	if len(e.Stack) > 0 {
		b.WriteString("\n\nStack trace:\n")
		b.Write(e.Stack)
	}

	return strings.TrimRight(b.String(), "\n")
}

// BindingError wraps an error returned by a provider or constructor.
type BindingError struct {
	Key   Key
	Cause error
}

func (e BindingError) Error() string {
	return fmt.Sprintf("error in provider for %s: %v", e.Key, e.Cause)
}

func (e BindingError) Unwrap() error {
	return e.Cause
}

// ProvisionError is the single failure returned by a resolution request. It
// lists every problem found while walking the graph, in discovery order.
type ProvisionError struct {
	Key      Key
	Messages []string
	Causes   []error
}

func (e ProvisionError) Error() string {
	return fmt.Sprintf("unable to provision %s, %s\n\n%s",
		e.Key, pluralErrors(len(e.Messages)), formatMessages(e.Messages))
}

// Unwrap exposes every collected cause to errors.Is and errors.As.
func (e ProvisionError) Unwrap() []error {
	return e.Causes
}

// ConfigurationError collects the problems found while applying modules.
type ConfigurationError struct {
	Messages []string
	Causes   []error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unable to create injector, %s\n\n%s",
		pluralErrors(len(e.Messages)), formatMessages(e.Messages))
}

func (e *ConfigurationError) Unwrap() []error {
	return e.Causes
}

// ModuleError wraps errors from module installation.
type ModuleError struct {
	Module string
	Cause  error
}

func (e ModuleError) Error() string {
	return fmt.Sprintf("module %q: %v", e.Module, e.Cause)
}

func (e ModuleError) Unwrap() error {
	return e.Cause
}

// TypeMismatchError indicates a value or constructor that is not assignable
// to the type it is bound to.
type TypeMismatchError struct {
	Expected reflect.Type
	Actual   reflect.Type
	Context  string // "instance binding", "linked binding", "type assertion", etc.
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Context, formatType(e.Expected), formatType(e.Actual))
}

// IsMissingBinding reports whether err contains a MissingBindingError.
func IsMissingBinding(err error) bool {
	var target MissingBindingError
	return errors.As(err, &target)
}

// IsCircularDependency reports whether err contains a CircularDependencyError.
func IsCircularDependency(err error) bool {
	var target CircularDependencyError
	return errors.As(err, &target)
}

func pluralErrors(n int) string {
	if n == 1 {
		return "1 error"
	}
	return fmt.Sprintf("%d errors", n)
}

// formatType formats a reflect.Type for error messages.
func formatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "*" + elem.Name()
		}
		return t.String()
	case reflect.Slice:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "[]" + elem.Name()
		}
		return t.String()
	case reflect.Func:
		return t.String()
	default:
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	}
}

// findSimilarKeys finds registered keys that are probably what the caller
// meant: the same type under another qualifier, or a type with the same name.
func findSimilarKeys(target Key, available []Key) []Key {
	if target.typ == nil || len(available) == 0 {
		return nil
	}

	targetName := strings.ToLower(shortName(target.typ))

	var similar []Key
	for _, k := range available {
		if k.Equal(target) {
			continue
		}

		if k.typ == target.typ || strings.ToLower(shortName(k.typ)) == targetName {
			similar = append(similar, k)
		}

		// Limit suggestions
		if len(similar) >= 5 {
			break
		}
	}

	return similar
}

func shortName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
