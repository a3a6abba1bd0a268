package palns

import "math"

// classify implements the acceptance oracle of §4.2. curr is the
// incumbent, cand the candidate produced by one destroy+repair pass, T
// the caller's local temperature, precision the epsilon tolerance, and u
// a uniform draw in [0,1).
//
// The epsilon tolerance guards against operators that return numerically
// equivalent solutions being misread as an improvement due to float
// noise (Open Question (a): the epsilon-tolerant form is the specified
// behavior, not a plain strict less-than).
func classify(curr, cand Solution, temperature, precision, u float64) Classification {
	if curr.Objective()-cand.Objective() > precision {
		return BetterThanCurrent
	}
	delta := cand.Objective() - curr.Objective()
	p := math.Exp(-delta / temperature)
	if u <= p {
		return Accepted
	}
	return Rejected
}
