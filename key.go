package inject

import (
	"reflect"
)

// Key identifies a resolvable dependency: a type plus an optional qualifier.
// Keys are immutable values. Two keys are equal when their types are
// identical and their qualifiers are equal.
//
// The type is a reflect.Type, so generic instantiations are distinct keys:
//
//	inject.KeyOf[List[string]]() != inject.KeyOf[List[int]]()
type Key struct {
	typ       reflect.Type
	qualifier Qualifier
}

// keyID is the comparable identity of a Key, used as a map key.
type keyID struct {
	typ       reflect.Type
	qualifier string
}

// NewKey creates a key for the given type. At most one qualifier may be
// supplied; additional qualifiers are ignored.
func NewKey(t reflect.Type, q ...Qualifier) Key {
	k := Key{typ: t}
	if len(q) > 0 {
		k.qualifier = q[0]
	}
	return k
}

// KeyOf creates a key for T.
//
// Example:
//
//	inject.KeyOf[*Database]()
//	inject.KeyOf[Cache](inject.Named("redis"))
func KeyOf[T any](q ...Qualifier) Key {
	return NewKey(reflect.TypeOf((*T)(nil)).Elem(), q...)
}

// Type returns the type of the key.
func (k Key) Type() reflect.Type {
	return k.typ
}

// Qualifier returns the qualifier of the key, or the zero Qualifier.
func (k Key) Qualifier() Qualifier {
	return k.qualifier
}

// IsQualified reports whether the key carries a qualifier.
func (k Key) IsQualified() bool {
	return !k.qualifier.IsZero()
}

// WithoutQualifier returns the unqualified key for the same type.
func (k Key) WithoutQualifier() Key {
	return Key{typ: k.typ}
}

// Equal reports whether both keys identify the same dependency.
func (k Key) Equal(other Key) bool {
	return k.id() == other.id()
}

// IsZero reports whether the key has no type.
func (k Key) IsZero() bool {
	return k.typ == nil
}

func (k Key) String() string {
	if k.IsQualified() {
		return k.qualifier.String() + " " + formatType(k.typ)
	}
	return formatType(k.typ)
}

func (k Key) id() keyID {
	return keyID{typ: k.typ, qualifier: k.qualifier.canonical}
}
