package inject

import (
	"fmt"
	"slices"
	"strings"
)

// QualifierKind describes a family of qualifiers, the Go counterpart of a
// qualifying annotation type. It carries the kind's name and the default
// value of each attribute that has one.
//
// Kinds are identified by name: two kinds with the same name produce equal
// qualifiers for equal attribute values.
type QualifierKind struct {
	name     string
	defaults map[string]any
}

// Attribute is a single name/value pair of a qualifier.
type Attribute struct {
	Name  string
	Value any
}

// Attr is shorthand for Attribute{Name: name, Value: value}.
func Attr(name string, value any) Attribute {
	return Attribute{Name: name, Value: value}
}

// NewQualifierKind declares a qualifier kind. Each attribute passed here is
// an attribute with a default value.
//
// Example:
//
//	var Storage = inject.NewQualifierKind("Storage", inject.Attr("tier", "hot"))
//
//	hot := Storage.New()                           // @Storage(tier = "hot")
//	cold := Storage.New(inject.Attr("tier", "cold")) // @Storage(tier = "cold")
func NewQualifierKind(name string, defaults ...Attribute) *QualifierKind {
	k := &QualifierKind{
		name:     name,
		defaults: make(map[string]any, len(defaults)),
	}
	for _, d := range defaults {
		k.defaults[d.Name] = d.Value
	}
	return k
}

// Name returns the name of the kind.
func (k *QualifierKind) Name() string {
	return k.name
}

// Default returns the declared default value of an attribute.
func (k *QualifierKind) Default(attribute string) (any, bool) {
	v, ok := k.defaults[attribute]
	return v, ok
}

// New creates a qualifier of this kind. Attributes that are not supplied take
// their declared default value; a later attribute with the same name replaces
// an earlier one.
func (k *QualifierKind) New(attrs ...Attribute) Qualifier {
	values := make(map[string]any, len(k.defaults)+len(attrs))
	for name, v := range k.defaults {
		values[name] = v
	}
	for _, a := range attrs {
		values[a.Name] = a.Value
	}

	q := Qualifier{kind: k, attrs: make([]Attribute, 0, len(values))}
	for name, v := range values {
		q.attrs = append(q.attrs, Attribute{Name: name, Value: v})
	}
	slices.SortFunc(q.attrs, func(a, b Attribute) int {
		return strings.Compare(a.Name, b.Name)
	})

	var b strings.Builder
	b.WriteString(k.name)
	b.WriteByte('(')
	for i, a := range q.attrs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(canonicalAttribute(a))
	}
	b.WriteByte(')')
	q.canonical = b.String()

	return q
}

var namedKind = NewQualifierKind("Named")

// Named returns the qualifier used for named bindings and for the name:"..."
// struct tag. An empty name is a valid, distinct qualifier.
func Named(name string) Qualifier {
	return namedKind.New(Attr("value", name))
}

// Qualifier disambiguates several bindings of the same type. It is an
// immutable value; the zero Qualifier means "unqualified".
type Qualifier struct {
	kind      *QualifierKind
	attrs     []Attribute // ordered by name
	canonical string
}

// IsZero reports whether q is the absent qualifier.
func (q Qualifier) IsZero() bool {
	return q.kind == nil
}

// Kind returns the kind of the qualifier, or nil for the zero Qualifier.
func (q Qualifier) Kind() *QualifierKind {
	return q.kind
}

// Value returns the value of the named attribute.
func (q Qualifier) Value(name string) (any, bool) {
	for _, a := range q.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// Attributes returns a copy of the attributes ordered by name.
func (q Qualifier) Attributes() []Attribute {
	return slices.Clone(q.attrs)
}

// Equal reports whether both qualifiers have the same kind and the same
// attribute values, regardless of the order they were supplied in.
func (q Qualifier) Equal(other Qualifier) bool {
	return q.canonical == other.canonical
}

// OnlyDefaults reports whether every attribute of q has a declared default and
// carries exactly that value. Qualifiers without attributes never qualify:
// a marker qualifier is always meaningful.
func (q Qualifier) OnlyDefaults() bool {
	if q.kind == nil || len(q.attrs) == 0 {
		return false
	}

	for _, a := range q.attrs {
		def, ok := q.kind.defaults[a.Name]
		if !ok {
			return false
		}
		if canonicalAttribute(Attribute{Name: a.Name, Value: def}) != canonicalAttribute(a) {
			return false
		}
	}

	return true
}

// String renders the qualifier in annotation form:
//
//	@Named("redis")
//	@Storage(region = "eu", tier = "hot")
func (q Qualifier) String() string {
	if q.kind == nil {
		return ""
	}

	var b strings.Builder
	b.WriteByte('@')
	b.WriteString(q.kind.name)
	b.WriteByte('(')
	for i, a := range q.attrs {
		// A lone value attribute doesn't need its name
		if a.Name != "value" || len(q.attrs) != 1 {
			b.WriteString(a.Name)
			b.WriteString(" = ")
		}
		if s, ok := a.Value.(string); ok {
			b.WriteString(fmt.Sprintf("%q", s))
		} else {
			b.WriteString(fmt.Sprint(a.Value))
		}
		if i < len(q.attrs)-1 {
			b.WriteString(", ")
		}
	}
	b.WriteByte(')')
	return b.String()
}

func canonicalAttribute(a Attribute) string {
	return fmt.Sprintf("%s=%T:%#v", a.Name, a.Value, a.Value)
}
