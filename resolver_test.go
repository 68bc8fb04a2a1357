package calldep

import (
	"context"
	"fmt"
	"testing"

	"github.com/gburgyan/go-timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constFunc returns a function with no parameters that yields a fixed value.
func constFunc(name string, value any) *Func {
	return NewFunc(name, func(ctx context.Context, args Args) (any, error) {
		return value, nil
	})
}

// counterFunc returns a function that yields 1, 2, 3, ... on successive
// invocations.
func counterFunc(name string) *Func {
	count := 0
	return NewFunc(name, func(ctx context.Context, args Args) (any, error) {
		count++
		return count, nil
	})
}

func Test_BasicDepends(t *testing.T) {
	getValue := constFunc("get_value", 42)
	double := NewFunc("double", func(ctx context.Context, args Args) (any, error) {
		return Arg[int](args, "value") * 2, nil
	}, ParamMarker[int]("value", Dep(getValue)))

	result, err := New().Call(context.Background(), double)
	require.NoError(t, err)
	assert.Equal(t, 84, result)
}

func Test_DependsCachedByDefault(t *testing.T) {
	callCount := 0
	getValue := NewFunc("get_value", func(ctx context.Context, args Args) (any, error) {
		callCount++
		return 42, nil
	})
	fn1 := NewFunc("fn1", func(ctx context.Context, args Args) (any, error) {
		return Arg[int](args, "v"), nil
	}, ParamMarker[int]("v", Dep(getValue)))
	fn2 := NewFunc("fn2", func(ctx context.Context, args Args) (any, error) {
		return Arg[int](args, "v"), nil
	}, ParamMarker[int]("v", Dep(getValue)))
	total := NewFunc("total", func(ctx context.Context, args Args) (any, error) {
		return Arg[int](args, "a") + Arg[int](args, "b"), nil
	}, ParamMarker[int]("a", Dep(fn1)), ParamMarker[int]("b", Dep(fn2)))

	result, err := New().Call(context.Background(), total)
	require.NoError(t, err)
	assert.Equal(t, 84, result)
	assert.Equal(t, 1, callCount)
}

func Test_DependsUncached(t *testing.T) {
	counter := counterFunc("counter")
	pair := NewFunc("pair", func(ctx context.Context, args Args) (any, error) {
		return []int{Arg[int](args, "a"), Arg[int](args, "b")}, nil
	}, ParamMarker[int]("a", DepUncached(counter)), ParamMarker[int]("b", DepUncached(counter)))

	result, err := New().Call(context.Background(), pair)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, result)
}

func Test_NoCrossCallMemoization(t *testing.T) {
	getA := constFunc("get_a", 10)
	getB := counterFunc("get_b")
	total := NewFunc("total", func(ctx context.Context, args Args) (any, error) {
		// Both c and a reference get_a; caching collapses them to one call.
		return Arg[int](args, "a") + Arg[int](args, "b") + Arg[int](args, "c"), nil
	},
		ParamMarker[int]("a", Dep(getA)),
		ParamMarker[int]("b", DepUncached(getB)),
		ParamMarker[int]("c", Dep(getA)),
	)

	c := New()
	first, err := c.Call(context.Background(), total)
	require.NoError(t, err)
	second, err := c.Call(context.Background(), total)
	require.NoError(t, err)

	assert.Equal(t, 21, first)
	assert.Equal(t, 22, second)
}

func Test_SubstitutionThroughNestedDependents(t *testing.T) {
	realDB := constFunc("real_db", "real database")
	mockDB := constFunc("mock_db", "mock database")
	getUser := NewFunc("get_user", func(ctx context.Context, args Args) (any, error) {
		return "user from " + Arg[string](args, "db"), nil
	}, ParamMarker[string]("db", Dep(realDB)))
	handler := NewFunc("handler", func(ctx context.Context, args Args) (any, error) {
		return Arg[string](args, "user"), nil
	}, ParamMarker[string]("user", Dep(getUser)))

	result, err := New().Call(context.Background(), handler, WithSubstitution(realDB, mockDB))
	require.NoError(t, err)
	assert.Equal(t, "user from mock database", result)

	// Without the substitution the real function is used.
	result, err = New().Call(context.Background(), handler)
	require.NoError(t, err)
	assert.Equal(t, "user from real database", result)
}

func Test_CircularDependency(t *testing.T) {
	aInvoked := 0
	bInvoked := 0

	markerToB := &Depends{}
	funcA := NewFunc("circular_a", func(ctx context.Context, args Args) (any, error) {
		aInvoked++
		return args["b"], nil
	}, ParamMarker[any]("b", markerToB))
	funcB := NewFunc("circular_b", func(ctx context.Context, args Args) (any, error) {
		bInvoked++
		return args["a"], nil
	}, ParamMarker[any]("a", Dep(funcA)))
	markerToB.Target = funcB

	_, err := New().Call(context.Background(), funcB)
	require.Error(t, err)

	var depErr *DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, KindCircularDependency, depErr.Kind)
	assert.Equal(t, "circular_b", depErr.FuncName)
	assert.Contains(t, depErr.Message, "circular_b -> circular_a -> circular_b")

	// Neither body completed even once.
	assert.Equal(t, 0, aInvoked)
	assert.Equal(t, 0, bInvoked)
}

func Test_ValueInjection(t *testing.T) {
	fn := NewFunc("format_request", func(ctx context.Context, args Args) (any, error) {
		return fmt.Sprintf("Request %d", Arg[int](args, "request_id")), nil
	}, ParamOf[int]("request_id"))

	result, err := New().Call(context.Background(), fn, WithValue("request_id", 123))
	require.NoError(t, err)
	assert.Equal(t, "Request 123", result)
}

func Test_ValueInjectionThroughDependency(t *testing.T) {
	getUser := NewFunc("get_user", func(ctx context.Context, args Args) (any, error) {
		return fmt.Sprintf("User for request %d", Arg[int](args, "request_id")), nil
	}, ParamOf[int]("request_id"))
	fn := NewFunc("handler", func(ctx context.Context, args Args) (any, error) {
		return Arg[string](args, "user"), nil
	}, ParamMarker[string]("user", Dep(getUser)))

	c := New(WithValue("request_id", 456))
	result, err := c.Call(context.Background(), fn)
	require.NoError(t, err)
	assert.Equal(t, "User for request 456", result)
}

func Test_CallFor(t *testing.T) {
	getValue := constFunc("get_value", 42)

	value, err := CallFor[int](context.Background(), New(), getValue)
	require.NoError(t, err)
	assert.Equal(t, 42, value)

	_, err = CallFor[string](context.Background(), New(), getValue)
	require.Error(t, err)
	var depErr *DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, KindInvalidDependency, depErr.Kind)
}

func Test_MustCall(t *testing.T) {
	getValue := constFunc("get_value", 42)
	assert.Equal(t, 42, MustCall[int](context.Background(), New(), getValue))

	needy := NewFunc("needy", func(ctx context.Context, args Args) (any, error) {
		return args["missing"], nil
	}, ParamOf[int]("missing"))
	assert.Panics(t, func() {
		MustCall[any](context.Background(), New(), needy)
	})
}

func Test_BodyErrorPropagates(t *testing.T) {
	boom := fmt.Errorf("connection refused")
	failing := NewFunc("failing", func(ctx context.Context, args Args) (any, error) {
		return nil, boom
	})
	dependent := NewFunc("dependent", func(ctx context.Context, args Args) (any, error) {
		return args["v"], nil
	}, ParamMarker[any]("v", Dep(failing)))

	_, err := New().Call(context.Background(), dependent)
	require.ErrorIs(t, err, boom)
}

func Test_TimingCalls(t *testing.T) {
	EnableTiming = TimingCalls
	defer func() { EnableTiming = TimingDisable }()

	timingCtx := timing.Root(context.Background())

	result, err := New().Call(timingCtx, constFunc("get_value", 42))
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Contains(t, timingCtx.String(), "calldep:get_value")
}

func Test_TimingProviders(t *testing.T) {
	EnableTiming = TimingProviders
	defer func() { EnableTiming = TimingDisable }()

	timingCtx := timing.Root(context.Background())

	getValue := constFunc("get_value", 42)
	double := NewFunc("double", func(ctx context.Context, args Args) (any, error) {
		return Arg[int](args, "value") * 2, nil
	}, ParamMarker[int]("value", Dep(getValue)))

	result, err := New().Call(timingCtx, double)
	require.NoError(t, err)
	assert.Equal(t, 84, result)
}
