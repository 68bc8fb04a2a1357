package calldep

import (
	"context"
	"strings"

	"github.com/gburgyan/go-timing"
)

// invokeFunc solves fn's parameters in declaration order, invokes the body,
// and classifies the result. The function is on the in-flight stack for the
// whole of that, parameter solving included, so a cycle anywhere in the
// subtree is caught before the body runs a second time.
func (st *resolution) invokeFunc(ctx context.Context, fn *Func) (any, error) {
	for _, active := range st.inFlight {
		if active == fn {
			return nil, &DependencyError{
				Kind:     KindCircularDependency,
				Message:  "already being resolved: " + st.flightChain(fn),
				FuncName: fn.name,
			}
		}
	}
	st.inFlight = append(st.inFlight, fn)
	defer func() {
		st.inFlight = st.inFlight[:len(st.inFlight)-1]
	}()

	if fn.body == nil {
		return nil, &DependencyError{
			Kind:     KindInvalidDependency,
			Message:  "function has no body to invoke",
			FuncName: fn.name,
		}
	}

	args := make(Args, len(fn.params))
	for _, p := range fn.params {
		value, err := st.solveParam(ctx, p)
		if err != nil {
			return nil, err
		}
		args[p.Name] = value
	}

	if EnableTiming == TimingProviders {
		tCtx, complete := timing.Start(ctx, fn.name)
		defer complete()
		ctx = tCtx
	}

	result, err := fn.body(ctx, args)
	if err != nil {
		return nil, err
	}
	return st.settle(ctx, result)
}

// settle normalizes an invocation result into a value available now plus an
// optional pending finalizer. A Resource contributes its value and joins the
// teardown ledger; a Deferred is awaited in place and its result settled
// again, so an asynchronous computation may itself produce a Resource.
func (st *resolution) settle(ctx context.Context, result any) (any, error) {
	switch r := result.(type) {
	case *Resource:
		if r == nil {
			return nil, nil
		}
		if r.Finalize != nil {
			st.teardown = append(st.teardown, r)
		}
		return r.Value, nil
	case *Deferred:
		if r == nil {
			return nil, nil
		}
		value, err := r.Await(ctx)
		if err != nil {
			return nil, err
		}
		return st.settle(ctx, value)
	default:
		return result, nil
	}
}

// flightChain renders the in-flight stack plus the repeated function, for the
// circular dependency message.
func (st *resolution) flightChain(repeat *Func) string {
	names := make([]string, 0, len(st.inFlight)+1)
	for _, fn := range st.inFlight {
		names = append(names, fn.name)
	}
	names = append(names, repeat.name)
	return strings.Join(names, " -> ")
}
