// Package demo is a toy destroy/repair operator set used only by
// cmd/palns-demo to give the engine's external interfaces (build,
// destroy, repair, abort, progress) something concrete to run against.
// Per the core's own scope, concrete operators and solution
// representations are external collaborators — this package is never
// imported by palns itself.
package demo

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/go-palns/palns-engine/palns"
)

// Item is one candidate item for the knapsack.
type Item struct {
	Name   string
	Weight float64
	Value  float64
}

// Knapsack is the demo palns.Solution: a fixed item catalog and a
// per-item inclusion flag. Objective is minimized, so it reports the
// negative of the packed value, with a steep penalty for exceeding
// capacity — the same "penalize infeasibility rather than forbid it"
// approach the teacher's parallelgeneticalgorithm fitness functions use
// for constraint handling.
type Knapsack struct {
	Items    []Item
	Capacity float64
	Included []bool
	rng      *rand.Rand
}

// NewKnapsack builds a Knapsack with every item excluded.
func NewKnapsack(items []Item, capacity float64, rng *rand.Rand) *Knapsack {
	return &Knapsack{
		Items:    items,
		Capacity: capacity,
		Included: make([]bool, len(items)),
		rng:      rng,
	}
}

func (k *Knapsack) totalWeight() float64 {
	w := 0.0
	for i, in := range k.Included {
		if in {
			w += k.Items[i].Weight
		}
	}
	return w
}

func (k *Knapsack) totalValue() float64 {
	v := 0.0
	for i, in := range k.Included {
		if in {
			v += k.Items[i].Value
		}
	}
	return v
}

// Objective implements palns.Solution. Smaller is better, so a fully
// empty knapsack (value 0) is worse than any feasible packed one.
func (k *Knapsack) Objective() float64 {
	overshoot := k.totalWeight() - k.Capacity
	if overshoot > 0 {
		return overshoot * 1000
	}
	return -k.totalValue()
}

// Clone implements palns.Solution with a deep copy of Included. The item
// catalog is immutable and safe to alias, but rng is not: the engine
// calls Clone under its clone lock (Stage 2), then hands the clone to a
// destroy/repair pair that runs concurrently with every other worker's
// own clone, outside all locks (Stage 3) — math/rand.Rand is documented
// as unsafe for concurrent use, so sharing one *rand.Rand pointer across
// clones would race the moment NumWorkers > 1. Each clone instead gets
// its own generator, seeded from a draw on the parent's rng — safe
// because that draw happens here, under the clone lock, exactly the way
// parallelsimulatedannealing seeds each chain's rand.Rand from a
// per-chain seed rather than sharing one generator across chains.
func (k *Knapsack) Clone() palns.Solution {
	included := make([]bool, len(k.Included))
	copy(included, k.Included)
	return &Knapsack{
		Items:    k.Items,
		Capacity: k.Capacity,
		Included: included,
		rng:      rand.New(rand.NewSource(k.rng.Int63())),
	}
}

func (k *Knapsack) String() string {
	return fmt.Sprintf("Knapsack{weight=%.2f/%.2f value=%.2f}", k.totalWeight(), k.Capacity, k.totalValue())
}

func asKnapsack(s palns.Solution) *Knapsack {
	k, ok := s.(*Knapsack)
	if !ok {
		panic(fmt.Sprintf("demo: expected *Knapsack, got %T", s))
	}
	return k
}

// RandomRemoval builds a destroy operator that excludes a random
// fraction of the currently-included items, opening room for a repair
// operator to reconsider.
func RandomRemoval(fraction float64) palns.DestroyFunc {
	return func(ctx context.Context, sol palns.Solution) (palns.Solution, error) {
		s := asKnapsack(sol)
		included := make([]bool, len(s.Included))
		copy(included, s.Included)
		for i, in := range included {
			if in && s.rng.Float64() < fraction {
				included[i] = false
			}
		}
		return &Knapsack{Items: s.Items, Capacity: s.Capacity, Included: included, rng: s.rng}, nil
	}
}

// WorstRemoval builds a destroy operator that excludes the n currently-
// included items with the worst value-to-weight ratio.
func WorstRemoval(n int) palns.DestroyFunc {
	return func(ctx context.Context, sol palns.Solution) (palns.Solution, error) {
		s := asKnapsack(sol)
		included := make([]bool, len(s.Included))
		copy(included, s.Included)

		type ratioIdx struct {
			idx   int
			ratio float64
		}
		var candidates []ratioIdx
		for i, in := range included {
			if in {
				candidates = append(candidates, ratioIdx{i, s.Items[i].Value / s.Items[i].Weight})
			}
		}
		sort.Slice(candidates, func(a, b int) bool { return candidates[a].ratio < candidates[b].ratio })
		for i := 0; i < n && i < len(candidates); i++ {
			included[candidates[i].idx] = false
		}
		return &Knapsack{Items: s.Items, Capacity: s.Capacity, Included: included, rng: s.rng}, nil
	}
}

// GreedyRepair re-adds excluded items in decreasing value-to-weight
// order while capacity allows.
func GreedyRepair(ctx context.Context, sol palns.Solution) (palns.Solution, error) {
	s := asKnapsack(sol)
	included := make([]bool, len(s.Included))
	copy(included, s.Included)

	order := make([]int, len(s.Items))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ra := s.Items[order[a]].Value / s.Items[order[a]].Weight
		rb := s.Items[order[b]].Value / s.Items[order[b]].Weight
		return ra > rb
	})

	weight := 0.0
	for i, in := range included {
		if in {
			weight += s.Items[i].Weight
		}
	}
	for _, idx := range order {
		if included[idx] {
			continue
		}
		if weight+s.Items[idx].Weight <= s.Capacity {
			included[idx] = true
			weight += s.Items[idx].Weight
		}
	}
	return &Knapsack{Items: s.Items, Capacity: s.Capacity, Included: included, rng: s.rng}, nil
}

// RandomRepair shuffles the excluded items and re-adds whichever fit, in
// random order rather than by ratio — a cheaper, more diversifying
// alternative to GreedyRepair.
func RandomRepair(ctx context.Context, sol palns.Solution) (palns.Solution, error) {
	s := asKnapsack(sol)
	included := make([]bool, len(s.Included))
	copy(included, s.Included)

	order := s.rng.Perm(len(s.Items))
	weight := 0.0
	for i, in := range included {
		if in {
			weight += s.Items[i].Weight
		}
	}
	for _, idx := range order {
		if included[idx] {
			continue
		}
		if weight+s.Items[idx].Weight <= s.Capacity {
			included[idx] = true
			weight += s.Items[idx].Weight
		}
	}
	return &Knapsack{Items: s.Items, Capacity: s.Capacity, Included: included, rng: s.rng}, nil
}

// RandomCatalog generates n random items for the CLI demo, grounded in
// the same rng the engine's random source would otherwise own — the
// demo keeps its own generator since item generation happens once,
// before NewEngine, and is unrelated to the engine's internal draws.
func RandomCatalog(n int, rng *rand.Rand) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{
			Name:   fmt.Sprintf("item-%d", i),
			Weight: 1 + rng.Float64()*20,
			Value:  1 + rng.Float64()*50,
		}
	}
	return items
}
