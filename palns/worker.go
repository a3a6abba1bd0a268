package palns

import (
	"context"
	"fmt"
)

// runWorker executes the seven-stage pipeline of §4.4 until the context
// is cancelled (a sibling worker failed, or Solve's caller cancelled) or
// the abort predicate returns true. Temperature is local to this call —
// each worker anneals on its own independent schedule, per §3/§9.
func (e *Engine) runWorker(ctx context.Context, abort AbortFunc) {
	temperature := e.cfg.InitialTemperature

	for {
		if ctx.Err() != nil {
			return
		}

		// Stage 1: select pair, under the weight lock.
		k := e.weights.pick()
		destroyIdx, repairIdx := splitPairIndex(k, e.numRepair)

		// Stage 2: snapshot the incumbent, under the clone lock. With a
		// single worker there is no concurrent mutator to race, so the
		// clone is elided per §4.4's optimization note.
		var cand Solution
		if e.numWorkers == 1 {
			cand = e.incumbent.peek()
		} else {
			cand = e.incumbent.snapshot()
		}

		// Stage 3: transform, outside all locks.
		var err error
		cand, err = e.destroy[destroyIdx](ctx, cand)
		if err != nil {
			e.fail(&OperatorError{Stage: "destroy", Pair: k, Err: err})
			return
		}
		cand, err = e.repair[repairIdx](ctx, cand)
		if err != nil {
			e.fail(&OperatorError{Stage: "repair", Pair: k, Err: err})
			return
		}

		// Stage 4: reconsider the incumbent, under the clone lock.
		classification := e.incumbent.reconsider(cand, temperature, e.cfg.Precision)

		// Stage 5: reconsider the best, under the best lock.
		if e.best.reconsider(cand, e.cfg.Precision) {
			classification = NewGlobalBest
		}

		// Stage 6: update weights, under the weight lock.
		e.weights.update(e.cfg, k, classification)

		e.observe(classification, temperature)

		// Stage 7: cool and report.
		temperature *= e.cfg.Alpha
		best := e.best.get()
		if e.progress != nil {
			e.progress(best)
		}
		if e.broadcaster != nil {
			e.broadcaster.publish(best)
		}

		aborted, abortErr := invokeAbort(abort, best)
		if abortErr != nil {
			e.fail(&AbortError{Err: abortErr})
			return
		}
		if aborted {
			return
		}
	}
}

// invokeAbort calls the caller-supplied abort predicate, converting a
// panic into an AbortError per §7 rather than letting it take down the
// worker goroutine silently.
func invokeAbort(abort AbortFunc, best Solution) (aborted bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in abort predicate: %v", r)
		}
	}()
	return abort(best), nil
}
