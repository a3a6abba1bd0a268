package palns

import (
	"context"
	"sync"
	"time"
)

// Engine is the PALNS coordinator: it owns the weight table, the shared
// current and best solutions, and the pool of workers that race to
// improve them. Construct one with NewEngine and drive a search with
// Solve; an Engine is not reusable across concurrent Solve calls.
type Engine struct {
	cfg        Config
	destroy    []DestroyFunc
	repair     []RepairFunc
	numRepair  int
	numPairs   int
	numWorkers int

	rng     *lockedRand
	weights *weightState

	incumbent *incumbentState
	best      *bestState

	progress    ProgressFunc
	metrics     *Metrics
	broadcaster *Broadcaster

	errOnce  sync.Once
	firstErr error
	cancel   context.CancelFunc
}

// Option customizes an Engine at construction time.
type Option func(*Engine)

// WithProgress attaches a callback invoked with the current best solution
// after every iteration of every worker.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) { e.progress = fn }
}

// WithMetrics attaches a Metrics recorder (see metrics.go) that exports
// iteration counters and weight gauges to Prometheus.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithBroadcaster attaches a Broadcaster (see progress.go) that streams
// best-solution snapshots to connected WebSocket viewers.
func WithBroadcaster(b *Broadcaster) Option {
	return func(e *Engine) { e.broadcaster = b }
}

// NewEngine validates cfg against the supplied operator library and
// constructs an Engine. Configuration errors (see errors.go) are
// returned, never panicked, and are the only way NewEngine can fail.
func NewEngine(cfg Config, destroy []DestroyFunc, repair []RepairFunc, opts ...Option) (*Engine, error) {
	numPairs := len(destroy) * len(repair)
	if err := cfg.validate(numPairs); err != nil {
		return nil, err
	}

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := newLockedRand(seed)

	e := &Engine{
		cfg:        cfg,
		destroy:    destroy,
		repair:     repair,
		numRepair:  len(repair),
		numPairs:   numPairs,
		numWorkers: cfg.resolvedWorkers(),
		rng:        rng,
		weights:    newWeightState(numPairs, cfg.InitialWeight, rng),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Solve runs the construction heuristic once on the caller's goroutine,
// seeds x = x* = x0, spawns NumWorkers workers, blocks until all of them
// terminate (either because abort fired or a failure was surfaced), and
// returns x*. After workers start, only they may write x and x*, and only
// under their respective locks — Solve itself never writes incumbent or
// best state again once spawning completes; it only reads x* to return it.
func (e *Engine) Solve(ctx context.Context, build BuildFunc, abort AbortFunc) (Solution, error) {
	x0, err := build(ctx)
	if err != nil {
		return nil, &BuildError{Err: err}
	}

	e.incumbent = newIncumbentState(x0, e.rng)
	e.best = newBestState(x0)

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	e.cancel = cancel

	var wg sync.WaitGroup
	wg.Add(e.numWorkers)
	for i := 0; i < e.numWorkers; i++ {
		go func() {
			defer wg.Done()
			e.runWorker(workCtx, abort)
		}()
	}
	wg.Wait()

	if e.firstErr != nil {
		return nil, e.firstErr
	}
	return e.best.get(), nil
}

// BestSolution returns the current best solution observed so far. Safe to
// call concurrently with an in-flight Solve.
func (e *Engine) BestSolution() Solution {
	if e.best == nil {
		return nil
	}
	return e.best.get()
}

// fail records the first failure across all workers and cancels the
// shared context so siblings stop promptly; later failures are dropped,
// matching §7's "first failing worker" propagation policy.
func (e *Engine) fail(err error) {
	e.errOnce.Do(func() {
		e.firstErr = err
		if e.cancel != nil {
			e.cancel()
		}
	})
}
