package calldep

import (
	"context"
	"fmt"
)

// solveParam produces the value for one parameter. Precedence: a recognized
// dependency marker wins outright (a marked parameter never sees supplied
// values or its static default), then a value supplied by name, then the
// static default. A parameter with none of these is a missing value. Whatever
// path produced the value, the configured Validator gets the final word; its
// failures propagate uninterpreted.
func (st *resolution) solveParam(ctx context.Context, p Param) (any, error) {
	scope := st.scope

	var value any
	if marker, ok := recognizeMarker(scope.markerShapes, p.Marker); ok {
		target := marker.DependencyTarget()
		if target == nil && p.Type != nil {
			target = scope.factories[p.Type]
		}
		if target == nil {
			return nil, &DependencyError{
				Kind:    KindInvalidDependency,
				Message: fmt.Sprintf("marker on parameter %q has no target and no factory is registered for %v", p.Name, p.Type),
			}
		}
		resolved, err := st.resolveFunc(ctx, target, marker.CacheResult())
		if err != nil {
			return nil, err
		}
		value = resolved
	} else if supplied, ok := scope.values[p.Name]; ok {
		value = supplied
	} else if p.HasDefault {
		value = p.Default
	} else {
		return nil, &DependencyError{
			Kind:    KindMissingValue,
			Message: fmt.Sprintf("no value provided for required parameter %q", p.Name),
		}
	}

	if scope.validator != nil {
		return scope.validator.Validate(p.Type, value)
	}
	return value, nil
}
