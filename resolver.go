package calldep

import (
	"context"

	"github.com/gburgyan/go-timing"
)

// resolution is the private state of one top-level call: the per-tree memo,
// the in-flight stack used for cycle detection, and the teardown ledger. It
// is created fresh at entry and discarded after teardown completes; it is
// never shared between independent calls.
type resolution struct {
	scope    *Context
	memo     map[*Func]any
	inFlight []*Func
	teardown []*Resource
}

func newResolution(scope *Context) *resolution {
	r := &resolution{
		scope: scope,
		memo:  map[*Func]any{},
	}
	// Seed the self-reference entry so the scoped Context itself can be
	// injected through an inferring marker on a *Context parameter.
	r.memo[ContextFunc] = scope
	return r
}

// Call resolves fn's parameters, invokes it, and returns its result. The
// options compose a scoped Context for this call only; the receiver is
// unchanged. Teardown of every resource acquired during resolution runs
// before Call returns, on success and on failure alike. If a finalizer fails,
// that failure is surfaced instead of a successful result, chained onto any
// resolution failure that aborted the call.
func (c *Context) Call(ctx context.Context, fn *Func, opts ...Option) (any, error) {
	if fn == nil {
		panic("Call requires a function")
	}
	scoped := c.With(opts...)

	if EnableTiming == TimingCalls {
		tCtx, complete := timing.Start(ctx, "calldep:"+fn.name)
		defer complete()
		ctx = tCtx
	}

	state := newResolution(scoped)
	value, err := state.resolveFunc(ctx, fn, true)
	if err = state.finalize(ctx, err); err != nil {
		return nil, err
	}
	return value, nil
}

// resolveFunc is the memoized resolution path. The substitution table is
// consulted first, so the replacement's identity is what gets cached. The
// memo key is the function itself, never its arguments: a function's
// dependencies are assumed to be fully determined by the current Context.
func (st *resolution) resolveFunc(ctx context.Context, fn *Func, useCache bool) (any, error) {
	if replacement, ok := st.scope.substitutions[fn]; ok {
		fn = replacement
	}
	if useCache {
		if value, ok := st.memo[fn]; ok {
			return value, nil
		}
	}
	value, err := st.invokeFunc(ctx, fn)
	if err != nil {
		return nil, err
	}
	if useCache {
		st.memo[fn] = value
	}
	return value, nil
}
