package palns

import (
	"math/rand"
	"sync"
)

// lockedRand is the thread-safe uniform [0,1) sampler required by §9: a
// single pooled generator shared by all workers, serialized by its own
// mutex. Operator-selection draws take this lock inside the weight lock's
// critical section (Open Question (c)), and acceptance draws take it
// inside the clone lock's; this mutex is what serializes the two paths.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newLockedRand(seed int64) *lockedRand {
	return &lockedRand{rng: rand.New(rand.NewSource(seed))}
}

// Float64 returns a uniform draw in [0, 1).
func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}
