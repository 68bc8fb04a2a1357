package calldep

import (
	"context"
	"fmt"
	"reflect"
)

// TimingMode selects how much timing instrumentation the resolver records.
type TimingMode int

const (
	// TimingDisable will disable timing for all calls.
	TimingDisable TimingMode = iota

	// TimingCalls will start a timing context around each top-level call.
	TimingCalls

	// TimingProviders will start a timing context for each function that is
	// invoked during resolution. This is useful to see where all time of
	// execution is being spent, and to see the exact stack of the dependency
	// resolution.
	TimingProviders
)

// EnableTiming controls timing instrumentation globally.
var EnableTiming = TimingDisable

// Default is an empty, ready-to-use Context. It recognizes the Depends and
// Security marker shapes, supports *Context self-injection, and carries no
// values, substitutions, or validator.
var Default = New()

// CallFor behaves like Context.Call but returns the result as type T. A
// result that cannot be used as T is reported as an invalid dependency.
func CallFor[T any](ctx context.Context, c *Context, fn *Func, opts ...Option) (T, error) {
	var zero T
	value, err := c.Call(ctx, fn, opts...)
	if err != nil {
		return zero, err
	}
	if value == nil {
		return zero, nil
	}
	typed, ok := value.(T)
	if !ok {
		return zero, &DependencyError{
			Kind:     KindInvalidDependency,
			Message:  fmt.Sprintf("result of type %T cannot be used as %v", value, reflect.TypeOf((*T)(nil)).Elem()),
			FuncName: fn.Name(),
		}
	}
	return typed, nil
}

// MustCall behaves like CallFor except it panics on error. The typical
// behavior for a failed resolution is returning an error or panicking on the
// caller's side, so this presents a simplified interface for call sites that
// treat failure as fatal.
func MustCall[T any](ctx context.Context, c *Context, fn *Func, opts ...Option) T {
	value, err := CallFor[T](ctx, c, fn, opts...)
	if err != nil {
		panic(err)
	}
	return value
}
