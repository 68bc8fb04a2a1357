package calldep

import (
	"reflect"
)

// Context is the immutable configuration a call resolves against: values
// supplied by parameter name, a substitution table for swapping one function
// for another, an optional Validator, the set of recognized dependency marker
// shapes, and a factory table mapping declared parameter types to the
// functions that construct them.
//
// A Context never carries resolution state. The memo, the in-flight set, and
// the teardown ledger are created fresh for every top-level Call (or once per
// Scope) and discarded when it finishes, so a Context can be shared freely
// across goroutines and reused across calls.
//
// Composition via With is a pure merge: the receiver is never modified.
type Context struct {
	values        map[string]any
	substitutions map[*Func]*Func
	factories     map[reflect.Type]*Func
	validator     Validator
	markerShapes  []reflect.Type
}

// ContextFunc is the self-reference entry seeded into every resolution's
// memo. A parameter of type *Context with an inferring marker resolves to the
// Context the call is running against. It has no body; invoking it directly
// (for example with caching disabled) is an invalid dependency.
var ContextFunc = &Func{name: "calldep.Context"}

// New creates an empty Context, optionally applying composition options. The
// fresh Context recognizes the Depends and Security marker shapes and has a
// factory entry wiring *Context to ContextFunc for self-injection.
func New(opts ...Option) *Context {
	base := &Context{
		values:        map[string]any{},
		substitutions: map[*Func]*Func{},
		factories: map[reflect.Type]*Func{
			reflect.TypeOf((*Context)(nil)): ContextFunc,
		},
		markerShapes: defaultMarkerShapes,
	}
	if len(opts) == 0 {
		return base
	}
	return base.With(opts...)
}

// composeState accumulates the overrides of one With call. Each field tracks
// whether its option was present so that "not provided" and "provided as nil"
// stay distinguishable for the replacing fields.
type composeState struct {
	values          map[string]any
	substitutions   map[*Func]*Func
	factories       map[reflect.Type]*Func
	validator       Validator
	validatorSet    bool
	markerShapes    []reflect.Type
	markerShapesSet bool
}

// Option configures a composed Context. Options are accepted by New, With,
// Call, and NewScope.
type Option func(*composeState)

// WithValue supplies a value for the named parameter. Supplied values are
// used for parameters that carry no recognized dependency marker, and they
// take precedence over static defaults.
func WithValue(name string, value any) Option {
	return func(st *composeState) {
		if st.values == nil {
			st.values = map[string]any{}
		}
		st.values[name] = value
	}
}

// WithValues supplies several named values at once.
func WithValues(values map[string]any) Option {
	return func(st *composeState) {
		if st.values == nil {
			st.values = make(map[string]any, len(values))
		}
		for name, value := range values {
			st.values[name] = value
		}
	}
}

// WithSubstitution replaces every resolution of original with replacement.
// The substitution applies before the memo is consulted, so the replacement's
// identity is also the cache key. Substitutions merge with the base table,
// with the override winning on collision. The primary use is swapping real
// dependencies for test doubles.
func WithSubstitution(original, replacement *Func) Option {
	if original == nil || replacement == nil {
		panic("substitution requires both an original and a replacement function")
	}
	return func(st *composeState) {
		if st.substitutions == nil {
			st.substitutions = map[*Func]*Func{}
		}
		st.substitutions[original] = replacement
	}
}

// WithValidator sets the Validator applied to every resolved parameter value.
// Passing nil explicitly clears any inherited validator; omitting the option
// keeps the base context's validator.
func WithValidator(v Validator) Option {
	return func(st *composeState) {
		st.validator = v
		st.validatorSet = true
	}
}

// WithMarkerShapes replaces the set of recognized dependency marker shapes
// with the concrete types of the given examples. Each example must satisfy
// the DependencyMarker capability; this panics otherwise since an
// unrecognizable shape is a registration error. Calling with no arguments
// empties the set, after which no parameter is treated as a dependency.
func WithMarkerShapes(examples ...any) Option {
	shapes := make([]reflect.Type, 0, len(examples))
	for _, example := range examples {
		if _, ok := example.(DependencyMarker); !ok {
			panic("marker shape examples must implement DependencyMarker")
		}
		shapes = append(shapes, reflect.TypeOf(example))
	}
	return func(st *composeState) {
		st.markerShapes = shapes
		st.markerShapesSet = true
	}
}

// WithFactory registers fn as the constructor for parameters of declared type
// T whose marker has no explicit target. Factory entries merge with the base
// table, override winning on collision.
func WithFactory[T any](fn *Func) Option {
	if fn == nil {
		panic("factory registration requires a function")
	}
	target := typeOf[T]()
	return func(st *composeState) {
		if st.factories == nil {
			st.factories = map[reflect.Type]*Func{}
		}
		st.factories[target] = fn
	}
}

// With composes a new Context from the receiver and the given options. Named
// values, substitutions, and factories merge with overrides winning on key
// collision; the validator and the marker shape set are replaced only when
// their option is present, even when the provided value is nil or empty. The
// receiver is observably unchanged afterward.
func (c *Context) With(opts ...Option) *Context {
	st := &composeState{}
	for _, opt := range opts {
		opt(st)
	}

	next := &Context{
		values:        mergeMap(c.values, st.values),
		substitutions: mergeMap(c.substitutions, st.substitutions),
		factories:     mergeMap(c.factories, st.factories),
		validator:     c.validator,
		markerShapes:  c.markerShapes,
	}
	if st.validatorSet {
		next.validator = st.validator
	}
	if st.markerShapesSet {
		next.markerShapes = st.markerShapes
	}
	return next
}

func mergeMap[K comparable, V any](base, overrides map[K]V) map[K]V {
	merged := make(map[K]V, len(base)+len(overrides))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}
