package palns

import "sync"

// weightTable holds the per-operator-pair weight vector W and its derived
// cumulative distribution C. Every mutation of W recomputes C atomically,
// so a reader that takes the weight lock (weightState.mu) always observes
// a C consistent with W.
//
// P (the number of pairs) is small in practice — the number of destroy x
// repair combinations — so a linear scan for both the cumulative sum and
// the inverse-CDF lookup is sufficient; no Fenwick tree is needed at this
// scale.
type weightTable struct {
	w []float64
	c []float64
}

func newWeightTable(numPairs int, initial float64) *weightTable {
	w := make([]float64, numPairs)
	for i := range w {
		w[i] = initial
	}
	t := &weightTable{w: w, c: make([]float64, numPairs)}
	t.recompute()
	return t
}

// recompute rebuilds C from W. Caller must hold the weight lock.
func (t *weightTable) recompute() {
	sum := 0.0
	for _, v := range t.w {
		sum += v
	}
	acc := 0.0
	for i, v := range t.w {
		acc += v
		t.c[i] = acc / sum
	}
	// Guard against floating-point drift: the last entry must read as
	// exactly 1 so the selector's fallback branch is reachable only on
	// rounding, never because the distribution is short.
	t.c[len(t.c)-1] = 1
}

// selectPair returns the smallest index i such that C[i] > u, falling back
// to the last index if none qualifies (u == 1 after rounding). Caller must
// hold the weight lock so C is read consistently with the W it was derived
// from.
func (t *weightTable) selectPair(u float64) int {
	for i, cum := range t.c {
		if cum > u {
			return i
		}
	}
	return len(t.c) - 1
}

// reward returns the configured reward value for a classification.
func reward(cfg Config, c Classification) float64 {
	switch c {
	case Rejected:
		return cfg.WReject
	case Accepted:
		return cfg.WAccept
	case BetterThanCurrent:
		return cfg.WBetter
	case NewGlobalBest:
		return cfg.WBest
	default:
		panic("palns: invalid classification tag in reward table")
	}
}

// apply updates W[k] by exponential smoothing toward the reward for c,
// then recomputes C. Caller must hold the weight lock.
func (t *weightTable) apply(cfg Config, k int, c Classification) {
	t.w[k] = cfg.Decay*t.w[k] + (1-cfg.Decay)*reward(cfg, c)
	t.recompute()
}

// snapshot copies W and C out from under the lock, for the weight-log
// formatter and for tests that sample the distribution.
func (t *weightTable) snapshot() (w, c []float64) {
	w = make([]float64, len(t.w))
	c = make([]float64, len(t.c))
	copy(w, t.w)
	copy(c, t.c)
	return w, c
}

// weightState bundles the weight table with the weight lock and the
// shared random source used for operator-selection draws, per §5: the
// weight lock guards W, C, and the draws used to pick an operator pair.
type weightState struct {
	mu    sync.Mutex
	table *weightTable
	rng   *lockedRand
}

func newWeightState(numPairs int, initial float64, rng *lockedRand) *weightState {
	return &weightState{table: newWeightTable(numPairs, initial), rng: rng}
}

// pick draws u and selects a pair index under the weight lock (Stage 1).
func (s *weightState) pick() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.rng.Float64()
	return s.table.selectPair(u)
}

// update applies the weight update for pair k under the weight lock
// (Stage 6).
func (s *weightState) update(cfg Config, k int, c Classification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table.apply(cfg, k, c)
}

// snapshot copies the current weights and cumulative distribution under
// the weight lock.
func (s *weightState) snapshot() (w, c []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.snapshot()
}
