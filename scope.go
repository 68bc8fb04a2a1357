package calldep

import (
	"context"
)

// Scope extends one resolution's lifetime across multiple calls. Calls on a
// Scope share a single memo and a single teardown ledger, so a request
// handler can resolve several entry points against the same set of opened
// resources and release them together. Close must be called when the scope's
// work is done; it runs the full teardown with the same reverse-order and
// failure-chaining behavior as Context.Call.
//
// A Scope is a single logical call tree and is not safe for concurrent use.
type Scope struct {
	state  *resolution
	closed bool
}

// NewScope composes a scoped Context from the receiver and the options and
// opens a Scope against it.
func (c *Context) NewScope(opts ...Option) *Scope {
	scoped := c.With(opts...)
	return &Scope{state: newResolution(scoped)}
}

// Call resolves fn within the scope. Results memoized by earlier calls on
// the same scope are reused; resources opened here stay open until Close.
func (s *Scope) Call(ctx context.Context, fn *Func) (any, error) {
	if s.closed {
		panic("Call on a closed Scope")
	}
	if fn == nil {
		panic("Call requires a function")
	}
	return s.state.resolveFunc(ctx, fn, true)
}

// Close finalizes every resource the scope acquired, in reverse order of
// acquisition, and returns the chained teardown failure if any finalizer
// failed. Closing an already-closed scope is a no-op.
func (s *Scope) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.state.finalize(ctx, nil)
}
