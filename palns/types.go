// Package palns implements the core of a Parallel Adaptive Large
// Neighborhood Search metaheuristic: an iteration loop and simulated
// annealing acceptance rule, a roulette-wheel operator selector with
// online weight updates, and the parallel coordination of workers around
// a shared current solution, best solution, and weight vector.
//
// The concrete solution representation, the destroy and repair operators,
// and the construction heuristic are external collaborators supplied by
// the caller; palns only knows the interfaces below.
package palns

import (
	"context"
	"fmt"
)

// Solution is the opaque type the engine searches over. Implementations
// must make Clone produce a deep copy whose later mutation never affects
// the original — the engine relies on this to snapshot the incumbent
// under the clone lock and hand the snapshot to a destroy/repair pair
// outside any lock.
type Solution interface {
	Objective() float64
	Clone() Solution
}

// BuildFunc constructs the initial solution. It runs once, on the
// coordinator's goroutine, before any worker starts.
type BuildFunc func(ctx context.Context) (Solution, error)

// DestroyFunc partially dismantles a solution. RepairFunc reconstructs a
// feasible solution from a partially-destroyed one. Both may suspend
// (network calls, heavy computation) and must treat their input as the
// only state they touch — they must never reach into engine state.
type DestroyFunc func(ctx context.Context, s Solution) (Solution, error)
type RepairFunc func(ctx context.Context, s Solution) (Solution, error)

// AbortFunc is evaluated at the end of every iteration of every worker
// and must be safe to call concurrently from multiple goroutines. It
// receives the current best solution observed so far.
type AbortFunc func(best Solution) bool

// ProgressFunc is an optional callback invoked with the current best
// solution after each iteration. It must not block for long, since it
// runs inline in the worker goroutine that just finished the iteration.
type ProgressFunc func(best Solution)

// Classification is the enumerated outcome of one iteration, ordered by
// merit: Rejected < Accepted < BetterThanCurrent < NewGlobalBest.
type Classification int

const (
	Rejected Classification = iota
	Accepted
	BetterThanCurrent
	NewGlobalBest
)

func (c Classification) String() string {
	switch c {
	case Rejected:
		return "Rejected"
	case Accepted:
		return "Accepted"
	case BetterThanCurrent:
		return "BetterThanCurrent"
	case NewGlobalBest:
		return "NewGlobalBest"
	default:
		panic(fmt.Sprintf("palns: invalid classification tag %d", int(c)))
	}
}

// pairIndex linearizes the destroy x repair Cartesian product: pair k
// corresponds to destroy k/R and repair k mod R, where R is the number of
// repair operators.
func pairIndex(destroyIdx, repairIdx, numRepair int) int {
	return destroyIdx*numRepair + repairIdx
}

func splitPairIndex(k, numRepair int) (destroyIdx, repairIdx int) {
	return k / numRepair, k % numRepair
}
