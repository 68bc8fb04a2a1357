package calldep

import (
	"context"
)

// finalize runs the teardown ledger in strict reverse order of acquisition.
// Every finalizer runs exactly once; a failure does not stop the remaining
// entries. Each new failure is wrapped in a TeardownError that links whatever
// failure was already recorded, starting from prior, the resolution failure
// that aborted the call, if there was one.
//
// The return value is what the caller should surface: prior itself when no
// finalizer failed (which may be nil), otherwise the head of the teardown
// chain.
func (st *resolution) finalize(ctx context.Context, prior error) error {
	pending := prior
	failed := false
	for i := len(st.teardown) - 1; i >= 0; i-- {
		res := st.teardown[i]
		if err := res.Finalize(ctx); err != nil {
			pending = &TeardownError{Err: err, Previous: pending}
			failed = true
		}
	}
	st.teardown = nil
	if failed {
		return pending
	}
	return prior
}
