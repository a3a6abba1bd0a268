package palns

import (
	"fmt"
	"strings"
)

// PairStat is one row of a weight-log snapshot: a pair's raw weight, its
// share of the total (the probability the selector assigns it), and its
// position in the cumulative distribution.
type PairStat struct {
	Pair        int
	DestroyIdx  int
	RepairIdx   int
	Weight      float64
	Probability float64
	Cumulative  float64
}

// WeightLog is a pure function of a weight snapshot, per §6: it renders a
// human-readable table of pair weights, sums, and implied selection
// probabilities. It is diagnostic tooling, not part of the search
// contract, and never reads live engine state — callers pull a snapshot
// via Engine.WeightStats first.
func WeightLog(stats []PairStat) string {
	var b strings.Builder
	b.WriteString("pair  destroy  repair  weight      probability  cumulative\n")
	for _, s := range stats {
		fmt.Fprintf(&b, "%4d  %7d  %6d  %10.4f  %11.4f  %10.4f\n",
			s.Pair, s.DestroyIdx, s.RepairIdx, s.Weight, s.Probability, s.Cumulative)
	}
	return b.String()
}

// WeightStats snapshots the current weight table under the weight lock
// and derives the PairStat rows WeightLog formats.
func (e *Engine) WeightStats() []PairStat {
	w, c := e.weights.snapshot()
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	stats := make([]PairStat, len(w))
	for i, v := range w {
		d, r := splitPairIndex(i, e.numRepair)
		prob := 0.0
		if sum > 0 {
			prob = v / sum
		}
		stats[i] = PairStat{
			Pair:        i,
			DestroyIdx:  d,
			RepairIdx:   r,
			Weight:      v,
			Probability: prob,
			Cumulative:  c[i],
		}
	}
	return stats
}
