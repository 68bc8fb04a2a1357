package calldep

import (
	"context"
	"fmt"
	"reflect"
)

// Args holds the resolved values for one invocation, keyed by parameter name.
type Args map[string]any

// Arg returns the named argument as type T. The solver has already applied
// any configured validation by the time a function body sees its Args, so a
// type mismatch here is a registration error and panics.
func Arg[T any](args Args, name string) T {
	value, ok := args[name]
	if !ok {
		panic(fmt.Sprintf("argument %q was not resolved", name))
	}
	if value == nil {
		var zero T
		return zero
	}
	typed, ok := value.(T)
	if !ok {
		panic(fmt.Sprintf("argument %q has type %T, not %v", name, value, reflect.TypeOf((*T)(nil)).Elem()))
	}
	return typed
}

// Param describes one declared parameter of a Func: its name, its declared
// type, and what occupies its default position. The engine never inspects a
// function at call time; everything it needs is captured here at
// registration.
type Param struct {
	// Name is the parameter name, unique within the function.
	Name string

	// Type is the declared type of the parameter. It drives validation and
	// the factory lookup for markers with no explicit target. It may be nil,
	// in which case validation is skipped for the parameter.
	Type reflect.Type

	// Marker occupies the default position when the parameter is a
	// dependency. It is honored only if its type is in the context's
	// recognized marker shape set; otherwise the parameter falls back to
	// supplied values and Default.
	Marker any

	// Default is the static default value, used when no marker applies and
	// no value was supplied for the call. Only meaningful with HasDefault.
	Default any

	// HasDefault distinguishes an absent default from a default of nil.
	HasDefault bool
}

// ParamOf returns a required parameter of type T.
func ParamOf[T any](name string) Param {
	return Param{Name: name, Type: typeOf[T]()}
}

// ParamDefault returns a parameter of type T with a static default value.
func ParamDefault[T any](name string, def T) Param {
	return Param{Name: name, Type: typeOf[T](), Default: def, HasDefault: true}
}

// ParamMarker returns a parameter of type T whose default position holds a
// dependency marker.
func ParamMarker[T any](name string, marker any) Param {
	return Param{Name: name, Type: typeOf[T](), Marker: marker}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Func is a callable registered with the resolution engine. Its identity (the
// pointer) is what the memo, the in-flight set, and the substitution table
// key on. Construct one with NewFunc; the zero value is not usable.
type Func struct {
	name   string
	params []Param
	body   func(ctx context.Context, args Args) (any, error)
}

// NewFunc registers a callable with its parameter descriptors. The body
// receives the context of the call and the solved arguments. It may return a
// plain value, a *Resource to participate in teardown, or a *Deferred to be
// awaited in place. This function panics if the declaration is malformed, as
// that is a programming error rather than a runtime condition.
func NewFunc(name string, body func(ctx context.Context, args Args) (any, error), params ...Param) *Func {
	if name == "" {
		panic("function must have a name")
	}
	if body == nil {
		panic(fmt.Sprintf("function %q must have a body", name))
	}
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if p.Name == "" {
			panic(fmt.Sprintf("function %q has a parameter with no name", name))
		}
		if seen[p.Name] {
			panic(fmt.Sprintf("function %q declares parameter %q more than once", name, p.Name))
		}
		seen[p.Name] = true
	}
	return &Func{
		name:   name,
		params: params,
		body:   body,
	}
}

// Name returns the name the function was registered with.
func (f *Func) Name() string {
	return f.name
}

// Params returns a copy of the function's parameter descriptors.
func (f *Func) Params() []Param {
	out := make([]Param, len(f.params))
	copy(out, f.params)
	return out
}
