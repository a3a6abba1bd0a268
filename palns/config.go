package palns

import (
	"runtime"
	"time"
)

// Config holds every tunable of the search. Validation happens once, at
// NewEngine, and is fatal — see errors.go for the ConfigError taxonomy.
type Config struct {
	// InitialTemperature is the per-worker starting annealing temperature T0.
	InitialTemperature float64
	// Alpha is the per-iteration cooling factor, T <- Alpha*T.
	Alpha float64
	// InitialWeight seeds every operator pair's entry in the weight vector.
	InitialWeight float64
	// WBest, WBetter, WAccept, WReject are the reward constants applied by
	// the weight updater for each classification. Typically
	// WBest >= WBetter >= WAccept >= WReject >= 0.
	WBest   float64
	WBetter float64
	WAccept float64
	WReject float64
	// Decay is the exponential smoothing factor applied to weights on
	// every update; Decay=1 freezes weights, Decay=0 is memoryless.
	Decay float64
	// Precision is the objective-comparison tolerance epsilon.
	Precision float64
	// NumWorkers is the number of parallel workers. Zero selects the
	// default heuristic (half the available CPUs, minimum 1).
	NumWorkers int
	// RandomSeed seeds the shared random source. Zero derives a seed from
	// the current time.
	RandomSeed int64
}

// DefaultConfig returns a conservative starting configuration, following
// the project's convention of a DefaultXConfig companion to every config
// type: sane temperature/cooling defaults, rewards ordered to favor
// better classifications, and NumWorkers left at zero so NewEngine applies
// the core-count heuristic.
func DefaultConfig() Config {
	return Config{
		InitialTemperature: 100.0,
		Alpha:              0.995,
		InitialWeight:      1.0,
		WBest:              10.0,
		WBetter:            5.0,
		WAccept:            2.0,
		WReject:            0.5,
		Decay:              0.8,
		Precision:          1e-9,
		NumWorkers:         0,
		RandomSeed:         time.Now().UnixNano(),
	}
}

func (c Config) validate(numPairs int) error {
	if c.InitialTemperature <= 0 {
		return &ConfigError{Field: "InitialTemperature", Reason: "must be > 0"}
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return &ConfigError{Field: "Alpha", Reason: "must be in (0, 1)"}
	}
	if c.InitialWeight <= 0 {
		return &ConfigError{Field: "InitialWeight", Reason: "must be > 0"}
	}
	if c.Decay < 0 || c.Decay > 1 {
		return &ConfigError{Field: "Decay", Reason: "must be in [0, 1]"}
	}
	if c.Precision < 0 {
		return &ConfigError{Field: "Precision", Reason: "must be >= 0"}
	}
	if numPairs <= 0 {
		return &ConfigError{Field: "operators", Reason: "at least one destroy and one repair operator are required"}
	}
	return nil
}

// resolvedWorkers returns the effective worker count, applying the
// half-the-hardware-concurrency default when NumWorkers is unset.
func (c Config) resolvedWorkers() int {
	if c.NumWorkers > 0 {
		return c.NumWorkers
	}
	n := runtime.NumCPU() / 2
	if n < 1 {
		n = 1
	}
	return n
}
