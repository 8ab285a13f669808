package reflection

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/dig"
)

// In marks a struct as a parameter object. Constructors taking a single
// struct that embeds In (or dig.In) receive one injection point per exported
// field instead of a single struct-typed dependency.
type In struct{}

var (
	inType    = reflect.TypeOf(In{})
	digInType = reflect.TypeOf(dig.In{})
	errType   = reflect.TypeOf((*error)(nil)).Elem()
)

// ErrNotFunc is returned when a constructor is not a function value.
var ErrNotFunc = errors.New("constructor must be a function")

// Analyzer performs reflection-based analysis of constructors and struct
// fields. Results are cached; an Analyzer is safe for concurrent use.
type Analyzer struct {
	mu           sync.RWMutex
	constructors map[uintptr]*ConstructorInfo
	fields       map[reflect.Type][]ParameterInfo
}

// ConstructorInfo contains analyzed information about a constructor function.
type ConstructorInfo struct {
	Type           reflect.Type
	Value          reflect.Value
	Out            reflect.Type
	Parameters     []ParameterInfo
	IsParamObject  bool
	ParamType      reflect.Type // the parameter object type when IsParamObject
	HasErrorReturn bool
}

// ParameterInfo describes one injection point: a constructor parameter, a
// field of a parameter object or an injectable struct field.
type ParameterInfo struct {
	Type     reflect.Type
	Field    string // field name, empty for positional parameters
	Index    int    // parameter index or field index
	Name     string // from name:"..." tag
	Optional bool   // from optional:"true" tag
	Assisted bool   // from assisted:"true" tag
}

// TagInfo contains parsed struct tag information.
type TagInfo struct {
	Inject   bool
	Ignore   bool
	Name     string
	Optional bool
	Assisted bool
}

// New creates a new Analyzer.
func New() *Analyzer {
	return &Analyzer{
		constructors: make(map[uintptr]*ConstructorInfo),
		fields:       make(map[reflect.Type][]ParameterInfo),
	}
}

// Analyze analyzes a constructor function and extracts its injection points.
// A constructor returns exactly one value, optionally followed by an error.
func (a *Analyzer) Analyze(constructor any) (*ConstructorInfo, error) {
	if constructor == nil {
		return nil, ErrNotFunc
	}

	val := reflect.ValueOf(constructor)
	if val.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w, got %T", ErrNotFunc, constructor)
	}

	if val.IsNil() {
		return nil, fmt.Errorf("%w, got nil %T", ErrNotFunc, constructor)
	}

	// Closures share a code pointer, so the cached analysis never carries the
	// function value itself.
	cacheKey := val.Pointer()

	a.mu.RLock()
	if cached, ok := a.constructors[cacheKey]; ok && cached.Type == val.Type() {
		a.mu.RUnlock()
		info := *cached
		info.Value = val
		return &info, nil
	}
	a.mu.RUnlock()

	fnType := val.Type()
	info := &ConstructorInfo{
		Type:  fnType,
		Value: val,
	}

	switch fnType.NumOut() {
	case 1:
		if fnType.Out(0) == errType {
			return nil, fmt.Errorf("constructor %v only returns error", fnType)
		}
	case 2:
		if fnType.Out(1) != errType {
			return nil, fmt.Errorf("second result of constructor %v must be error", fnType)
		}
		info.HasErrorReturn = true
	default:
		return nil, fmt.Errorf("constructor %v must return T or (T, error)", fnType)
	}
	info.Out = fnType.Out(0)

	if fnType.IsVariadic() {
		return nil, fmt.Errorf("constructor %v cannot be variadic", fnType)
	}

	if err := a.analyzeParameters(info); err != nil {
		return nil, fmt.Errorf("failed to analyze parameters of %v: %w", fnType, err)
	}

	cached := *info
	cached.Value = reflect.Value{}

	a.mu.Lock()
	a.constructors[cacheKey] = &cached
	a.mu.Unlock()

	return info, nil
}

// analyzeParameters analyzes function parameters or In struct fields.
func (a *Analyzer) analyzeParameters(info *ConstructorInfo) error {
	fnType := info.Type

	if fnType.NumIn() == 1 && IsParamObject(fnType.In(0)) {
		info.IsParamObject = true
		info.ParamType = fnType.In(0)
		return a.analyzeParamObject(info, fnType.In(0))
	}

	info.Parameters = make([]ParameterInfo, fnType.NumIn())
	for i := 0; i < fnType.NumIn(); i++ {
		info.Parameters[i] = ParameterInfo{
			Type:  fnType.In(i),
			Index: i,
		}
	}

	return nil
}

// analyzeParamObject analyzes an In struct's fields.
func (a *Analyzer) analyzeParamObject(info *ConstructorInfo, paramType reflect.Type) error {
	structType := paramType
	if structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}

	params := make([]ParameterInfo, 0, structType.NumField())
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if field.Anonymous && isInType(field.Type) {
			continue
		}

		tagInfo := ParseTags(field.Tag)
		if tagInfo.Ignore {
			continue
		}

		if !field.IsExported() {
			return fmt.Errorf("field %s of parameter object %v is unexported", field.Name, structType)
		}

		params = append(params, ParameterInfo{
			Type:     field.Type,
			Field:    field.Name,
			Index:    i,
			Name:     tagInfo.Name,
			Optional: tagInfo.Optional,
			Assisted: tagInfo.Assisted,
		})
	}

	info.Parameters = params
	return nil
}

// Fields returns the injectable fields of a struct type: every field tagged
// with inject (other than inject:"-"). Pointer types are dereferenced.
func (a *Analyzer) Fields(t reflect.Type) ([]ParameterInfo, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return nil, nil
	}

	a.mu.RLock()
	if cached, ok := a.fields[t]; ok {
		a.mu.RUnlock()
		return cached, nil
	}
	a.mu.RUnlock()

	var fields []ParameterInfo
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		tagInfo := ParseTags(field.Tag)
		if !tagInfo.Inject || tagInfo.Ignore {
			continue
		}

		if !field.IsExported() {
			return nil, fmt.Errorf("field %s of %v is tagged for injection but unexported", field.Name, t)
		}

		fields = append(fields, ParameterInfo{
			Type:     field.Type,
			Field:    field.Name,
			Index:    i,
			Name:     tagInfo.Name,
			Optional: tagInfo.Optional,
		})
	}

	a.mu.Lock()
	a.fields[t] = fields
	a.mu.Unlock()

	return fields, nil
}

// ParseTags parses struct field tags for injection annotations.
func ParseTags(tag reflect.StructTag) TagInfo {
	info := TagInfo{}

	if val, ok := tag.Lookup("inject"); ok {
		info.Inject = true
		info.Ignore = val == "-"
	}

	if val, ok := tag.Lookup("name"); ok {
		info.Name = val
	}

	if val, ok := tag.Lookup("optional"); ok {
		info.Optional = val == "true"
	}

	if val, ok := tag.Lookup("assisted"); ok {
		info.Assisted = val == "true"
	}

	return info
}

// IsParamObject reports whether t is a struct (or pointer to struct) that
// embeds In or dig.In.
func IsParamObject(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return false
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous && isInType(field.Type) {
			return true
		}
	}

	return false
}

func isInType(t reflect.Type) bool {
	return t == inType || t == digInType
}

// CacheSize returns the number of cached analyses.
func (a *Analyzer) CacheSize() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.constructors) + len(a.fields)
}
