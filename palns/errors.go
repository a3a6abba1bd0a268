package palns

import "fmt"

// ConfigError reports an invalid configuration parameter, surfaced at
// construction time and fatal — the engine never starts with it.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("palns: invalid config field %s: %s", e.Field, e.Reason)
}

// OperatorError wraps a failure raised by a destroy or repair operator.
// The policy is to surface it to the caller of Solve and terminate all
// workers; the search never retries an individual operator call.
type OperatorError struct {
	Stage string // "destroy" or "repair"
	Pair  int
	Err   error
}

func (e *OperatorError) Error() string {
	return fmt.Sprintf("palns: %s operator failed for pair %d: %v", e.Stage, e.Pair, e.Err)
}

func (e *OperatorError) Unwrap() error { return e.Err }

// AbortError wraps a failure raised by the abort predicate, propagated to
// the caller identically to an OperatorError.
type AbortError struct {
	Err error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("palns: abort predicate failed: %v", e.Err)
}

func (e *AbortError) Unwrap() error { return e.Err }

// BuildError wraps a failure raised by the construction heuristic.
type BuildError struct {
	Err error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("palns: construction heuristic failed: %v", e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
