package calldep

import (
	"context"
	"fmt"
)

// Resource is returned by a function body that opens something needing
// cleanup. The Value is used as the resolved dependency immediately; the
// Finalize closure is recorded on the call's teardown ledger and invoked
// exactly once, in reverse order of acquisition, when the call finishes. This
// is the two-phase acquire/release contract: there is no way to produce more
// than one value from a single Resource.
type Resource struct {
	Value    any
	Finalize func(ctx context.Context) error
}

// NewResource pairs a value with its finalizer. A nil finalizer is allowed
// and simply skips the teardown registration.
func NewResource(value any, finalize func(ctx context.Context) error) *Resource {
	return &Resource{Value: value, Finalize: finalize}
}

// Deferred represents an in-flight asynchronous computation. When a function
// body returns one, the resolver awaits it in place before handing the value
// to dependents; this is the engine's only suspension point.
type Deferred struct {
	done  chan struct{}
	value any
	err   error
}

// Go starts fn on a new goroutine and returns a Deferred for its result. A
// panic in fn is recovered and surfaced as the Deferred's error; letting it
// escape would take down the process from a goroutine no caller can guard.
func Go(fn func() (any, error)) *Deferred {
	d := &Deferred{done: make(chan struct{})}
	go func() {
		defer close(d.done)
		defer func() {
			if p := recover(); p != nil {
				d.err = fmt.Errorf("panic in deferred computation: %v", p)
			}
		}()
		d.value, d.err = fn()
	}()
	return d
}

// Await blocks until the computation completes or the context is done,
// whichever comes first. It is safe to call more than once; the result is
// stable after completion.
func (d *Deferred) Await(ctx context.Context) (any, error) {
	select {
	case <-d.done:
		return d.value, d.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
