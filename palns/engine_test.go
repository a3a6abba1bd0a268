package palns

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterSolution is a minimal Solution wrapping a mutable-by-replacement
// float64 objective, used across the scenario tests in §8 of the spec.
type counterSolution struct {
	value float64
}

func (c *counterSolution) Objective() float64 { return c.value }
func (c *counterSolution) Clone() Solution     { return &counterSolution{value: c.value} }

func identityDestroy(ctx context.Context, s Solution) (Solution, error) { return s, nil }

func decrementIfPositiveRepair(ctx context.Context, s Solution) (Solution, error) {
	c := s.(*counterSolution)
	if c.value > 0 {
		return &counterSolution{value: c.value - 1}, nil
	}
	return &counterSolution{value: c.value}, nil
}

func countingAbort(n *int, limit int) AbortFunc {
	return func(best Solution) bool {
		*n++
		return *n >= limit
	}
}

// TestTrivialMonotone is spec §8 scenario 1: D=1, R=1, destroy=identity,
// repair=decrement-if-positive, single worker, 100 iterations.
func TestTrivialMonotone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialTemperature = 1
	cfg.Alpha = 0.99
	cfg.NumWorkers = 1
	cfg.RandomSeed = 1

	engine, err := NewEngine(cfg, []DestroyFunc{identityDestroy}, []RepairFunc{decrementIfPositiveRepair})
	require.NoError(t, err)

	build := func(ctx context.Context) (Solution, error) { return &counterSolution{value: 150}, nil }

	iterations := 0
	abort := countingAbort(&iterations, 100)

	best, err := engine.Solve(context.Background(), build, abort)
	require.NoError(t, err)
	assert.InDelta(t, math.Max(0, 150-100), best.Objective(), 1e-9)
}

// TestAlwaysRejectAtLowTemperature is spec §8 scenario 2.
func TestAlwaysRejectAtLowTemperature(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialTemperature = 1e-9
	cfg.NumWorkers = 1
	cfg.RandomSeed = 2

	worsen := func(ctx context.Context, s Solution) (Solution, error) {
		c := s.(*counterSolution)
		return &counterSolution{value: c.value + 10}, nil
	}
	noop := func(ctx context.Context, s Solution) (Solution, error) { return s, nil }

	engine, err := NewEngine(cfg, []DestroyFunc{worsen}, []RepairFunc{noop})
	require.NoError(t, err)

	build := func(ctx context.Context) (Solution, error) { return &counterSolution{value: 0}, nil }

	iterations := 0
	abort := countingAbort(&iterations, 50)

	best, err := engine.Solve(context.Background(), build, abort)
	require.NoError(t, err)
	assert.Equal(t, 0.0, best.Objective())

	w, _ := engine.weights.snapshot()
	assert.InDelta(t, cfg.WReject, w[0], 1e-3)
}

// TestAlwaysAcceptAtHighTemperature is spec §8 scenario 3.
func TestAlwaysAcceptAtHighTemperature(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialTemperature = 1e9
	cfg.NumWorkers = 1
	cfg.RandomSeed = 3

	worsen := func(ctx context.Context, s Solution) (Solution, error) {
		c := s.(*counterSolution)
		return &counterSolution{value: c.value + 10}, nil
	}
	noop := func(ctx context.Context, s Solution) (Solution, error) { return s, nil }

	engine, err := NewEngine(cfg, []DestroyFunc{worsen}, []RepairFunc{noop})
	require.NoError(t, err)

	build := func(ctx context.Context) (Solution, error) { return &counterSolution{value: 0}, nil }

	iterations := 0
	abort := countingAbort(&iterations, 200)

	_, err = engine.Solve(context.Background(), build, abort)
	require.NoError(t, err)

	w, _ := engine.weights.snapshot()
	assert.InDelta(t, cfg.WAccept, w[0], 1.0)
}

// TestParallelSafety is spec §8 scenario 5: N=8 workers racing against
// shared state with randomized sleeps inside the operators. The
// assertion is on outcome, not on race-detector output (that requires
// `go test -race`, which this repo relies on CI to run) — x* must never
// regress.
func TestParallelSafety(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumWorkers = 8
	cfg.RandomSeed = 5

	var mu sync.Mutex
	rngSeed := int64(100)

	destroy := func(ctx context.Context, s Solution) (Solution, error) {
		mu.Lock()
		rngSeed++
		d := time.Duration(rngSeed%5) * time.Microsecond
		mu.Unlock()
		time.Sleep(d)
		return s, nil
	}
	repair := func(ctx context.Context, s Solution) (Solution, error) {
		c := s.(*counterSolution)
		if c.value > 0 {
			return &counterSolution{value: c.value - 0.1}, nil
		}
		return &counterSolution{value: c.value}, nil
	}

	engine, err := NewEngine(cfg, []DestroyFunc{destroy}, []RepairFunc{repair})
	require.NoError(t, err)

	build := func(ctx context.Context) (Solution, error) { return &counterSolution{value: 50}, nil }

	var iterations int
	var imu sync.Mutex
	abort := func(best Solution) bool {
		imu.Lock()
		iterations++
		n := iterations
		imu.Unlock()
		return n >= 300
	}

	x0 := &counterSolution{value: 50}
	best, err := engine.Solve(context.Background(), build, abort)
	require.NoError(t, err)
	assert.LessOrEqual(t, best.Objective(), x0.Objective())
}

// TestPrecisionTolerance is spec §8 scenario 6.
func TestPrecisionTolerance(t *testing.T) {
	bs := newBestState(&counterSolution{value: 100})

	replaced := bs.reconsider(&counterSolution{value: 100 - 1e-9}, 1e-6)
	assert.False(t, replaced)
	assert.Equal(t, 100.0, bs.get().Objective())

	replaced = bs.reconsider(&counterSolution{value: 100 - 1e-3}, 1e-6)
	assert.True(t, replaced)
	assert.InDelta(t, 100-1e-3, bs.get().Objective(), 1e-9)
}

// TestSingleThreadedEquivalence is the spec's single-threaded
// equivalence law: N=1 with a fixed seed reproduces the same result.
func TestSingleThreadedEquivalence(t *testing.T) {
	run := func() float64 {
		cfg := DefaultConfig()
		cfg.NumWorkers = 1
		cfg.RandomSeed = 7

		destroy := func(ctx context.Context, s Solution) (Solution, error) { return s, nil }
		repair := func(ctx context.Context, s Solution) (Solution, error) {
			c := s.(*counterSolution)
			return &counterSolution{value: c.value - 1}, nil
		}
		engine, err := NewEngine(cfg, []DestroyFunc{destroy}, []RepairFunc{repair})
		require.NoError(t, err)

		build := func(ctx context.Context) (Solution, error) { return &counterSolution{value: 1000}, nil }
		iterations := 0
		abort := countingAbort(&iterations, 50)

		best, err := engine.Solve(context.Background(), build, abort)
		require.NoError(t, err)
		return best.Objective()
	}

	assert.Equal(t, run(), run())
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	noop := func(ctx context.Context, s Solution) (Solution, error) { return s, nil }

	cases := []Config{
		func() Config { c := DefaultConfig(); c.InitialTemperature = 0; return c }(),
		func() Config { c := DefaultConfig(); c.Alpha = 1; return c }(),
		func() Config { c := DefaultConfig(); c.InitialWeight = 0; return c }(),
		func() Config { c := DefaultConfig(); c.Decay = 1.5; return c }(),
		func() Config { c := DefaultConfig(); c.Precision = -1; return c }(),
	}
	for _, cfg := range cases {
		_, err := NewEngine(cfg, []DestroyFunc{noop}, []RepairFunc{noop})
		require.Error(t, err)
		var cerr *ConfigError
		assert.ErrorAs(t, err, &cerr)
	}
}

func TestNewEngineRequiresAtLeastOnePair(t *testing.T) {
	_, err := NewEngine(DefaultConfig(), nil, nil)
	require.Error(t, err)
}

func TestSolvePropagatesOperatorError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumWorkers = 2
	cfg.RandomSeed = 9

	boom := errors.New("boom")
	failing := func(ctx context.Context, s Solution) (Solution, error) { return nil, boom }
	noop := func(ctx context.Context, s Solution) (Solution, error) { return s, nil }

	engine, err := NewEngine(cfg, []DestroyFunc{failing}, []RepairFunc{noop})
	require.NoError(t, err)

	build := func(ctx context.Context) (Solution, error) { return &counterSolution{value: 5}, nil }
	abort := func(best Solution) bool { return false }

	_, err = engine.Solve(context.Background(), build, abort)
	require.Error(t, err)
	var operr *OperatorError
	require.ErrorAs(t, err, &operr)
	assert.ErrorIs(t, err, boom)
}

func TestSolvePropagatesBuildError(t *testing.T) {
	noop := func(ctx context.Context, s Solution) (Solution, error) { return s, nil }
	engine, err := NewEngine(DefaultConfig(), []DestroyFunc{noop}, []RepairFunc{noop})
	require.NoError(t, err)

	boom := errors.New("build failed")
	build := func(ctx context.Context) (Solution, error) { return nil, boom }
	abort := func(best Solution) bool { return true }

	_, err = engine.Solve(context.Background(), build, abort)
	require.Error(t, err)
	var berr *BuildError
	require.ErrorAs(t, err, &berr)
}

func TestSolvePropagatesAbortPanicAsError(t *testing.T) {
	noop := func(ctx context.Context, s Solution) (Solution, error) { return s, nil }
	cfg := DefaultConfig()
	cfg.NumWorkers = 1
	engine, err := NewEngine(cfg, []DestroyFunc{noop}, []RepairFunc{noop})
	require.NoError(t, err)

	build := func(ctx context.Context) (Solution, error) { return &counterSolution{value: 1}, nil }
	abort := func(best Solution) bool { panic("boom") }

	_, err = engine.Solve(context.Background(), build, abort)
	require.Error(t, err)
	var aerr *AbortError
	assert.ErrorAs(t, err, &aerr)
}

func TestBestSolutionBeforeSolveReturnsNil(t *testing.T) {
	noop := func(ctx context.Context, s Solution) (Solution, error) { return s, nil }
	engine, err := NewEngine(DefaultConfig(), []DestroyFunc{noop}, []RepairFunc{noop})
	require.NoError(t, err)
	assert.Nil(t, engine.BestSolution())
}

func TestWeightLogRendersAllPairs(t *testing.T) {
	noop := func(ctx context.Context, s Solution) (Solution, error) { return s, nil }
	cfg := DefaultConfig()
	engine, err := NewEngine(cfg, []DestroyFunc{noop, noop}, []RepairFunc{noop, noop, noop})
	require.NoError(t, err)

	stats := engine.WeightStats()
	assert.Len(t, stats, 6)
	out := WeightLog(stats)
	assert.Contains(t, out, "pair")
}
