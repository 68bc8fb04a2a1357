package calldep

import (
	"reflect"
)

// DependencyMarker is the capability a value must satisfy to act as a
// dependency marker on a parameter. Any type with the right shape can be a
// marker, which allows marker types declared by unrelated frameworks to be
// used with this engine as long as their concrete type is registered with
// WithMarkerShapes.
type DependencyMarker interface {
	// DependencyTarget returns the function to invoke for this dependency.
	// A nil target means the function should be looked up from the
	// parameter's declared type via the context's factory table.
	DependencyTarget() *Func

	// CacheResult reports whether the resolved value may be memoized for
	// the remainder of the call tree.
	CacheResult() bool
}

// Depends marks a parameter as resolved by invoking another function rather
// than supplied directly. The zero value (via Infer) defers target selection
// to the parameter's declared type.
type Depends struct {
	// Target is the function to invoke. Nil means infer from the declared
	// parameter type.
	Target *Func

	// DisableCache turns off per-call memoization for this one resolution.
	// Results are cached by default.
	DisableCache bool
}

// Dep returns a marker that resolves the parameter by invoking target. The
// result is memoized for the rest of the call tree.
func Dep(target *Func) *Depends {
	return &Depends{Target: target}
}

// DepUncached returns a marker that resolves the parameter by invoking target
// on every reference, bypassing the per-call memo.
func DepUncached(target *Func) *Depends {
	return &Depends{Target: target, DisableCache: true}
}

// Infer returns a marker with no explicit target. The function to invoke is
// looked up from the parameter's declared type in the context's factory
// table. Resolution fails with an invalid dependency error if no factory is
// registered for the type.
func Infer() *Depends {
	return &Depends{}
}

func (d *Depends) DependencyTarget() *Func {
	return d.Target
}

func (d *Depends) CacheResult() bool {
	return !d.DisableCache
}

// Security is a Depends variant that additionally carries scope metadata. The
// scopes are not interpreted by the engine; they exist for interoperability
// with declaration systems that attach authorization scopes to dependencies.
type Security struct {
	Depends
	Scopes []string
}

// Secure returns a Security marker targeting the given function with the
// given scopes.
func Secure(target *Func, scopes ...string) *Security {
	return &Security{
		Depends: Depends{Target: target},
		Scopes:  scopes,
	}
}

// defaultMarkerShapes is the marker set a fresh Context recognizes.
var defaultMarkerShapes = []reflect.Type{
	reflect.TypeOf(&Depends{}),
	reflect.TypeOf(&Security{}),
}

// recognizeMarker checks a parameter's marker slot against the recognized
// shape set. A candidate is accepted when its concrete type matches one of
// the shapes (or implements a shape that is an interface type) and it
// satisfies the DependencyMarker capability.
func recognizeMarker(shapes []reflect.Type, candidate any) (DependencyMarker, bool) {
	if candidate == nil {
		return nil, false
	}
	candidateType := reflect.TypeOf(candidate)
	for _, shape := range shapes {
		if candidateType == shape || (shape.Kind() == reflect.Interface && candidateType.Implements(shape)) {
			marker, ok := candidate.(DependencyMarker)
			return marker, ok
		}
	}
	return nil, false
}
