// Package calldep resolves a function's declared dependencies at call time.
// A function is registered as a Func with an explicit list of parameters; each
// parameter is satisfied by a dependency marker pointing at another Func, by a
// value supplied for the call, or by a static default. Resolution walks the
// parameter tree depth-first, memoizes each function's result within the call,
// detects cycles, and tears down any resources opened along the way in reverse
// order of acquisition.
//
// Registration starts with NewFunc; Context documents composition and
// Context.Call documents the resolution lifecycle, including teardown. The
// generic helpers CallFor and MustCall return typed results for call sites
// that know what they expect.
package calldep
