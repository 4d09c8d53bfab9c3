// Package converge decides when an iterative clustering run stops.
package converge

import (
	"errors"
	"fmt"
	"math"
)

// Policy selects how a change in the objective value is interpreted.
type Policy int

const (
	// NonStrict stops as soon as prev-cur < threshold. An increase of the
	// objective therefore stops the run without an error.
	NonStrict Policy = iota
	// Strict stops when |prev-cur| < threshold and reports an increase
	// larger than the threshold as an error.
	Strict
)

func (p Policy) String() string {
	switch p {
	case NonStrict:
		return "non-strict"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// ErrObjectiveIncreased is returned by Check under the Strict policy.
var ErrObjectiveIncreased = errors.New("objective increased")

// IncreaseError carries the iteration at which the objective went up.
type IncreaseError struct {
	Iteration int
	Previous  float64
	Current   float64
}

func (e *IncreaseError) Error() string {
	return fmt.Sprintf("objective increased at iteration %d: %g -> %g", e.Iteration, e.Previous, e.Current)
}

func (e *IncreaseError) Unwrap() error { return ErrObjectiveIncreased }

// Status is the outcome of a single Check.
type Status int

const (
	// Continue means another iteration is required.
	Continue Status = iota
	// Converged means the objective change fell below the threshold.
	Converged
	// Increased means the run stopped on an objective increase (NonStrict only).
	Increased
	// Exhausted means the iteration cap was reached.
	Exhausted
)

// Criterion bundles the stop rule of one run.
type Criterion struct {
	Threshold     float64
	MaxIterations int
	Policy        Policy
}

// Check evaluates the stop rule after iteration iter (1-based). prev is the
// objective of the previous iteration, +Inf before the first one.
func (c Criterion) Check(iter int, prev, cur float64) (Status, error) {
	delta := prev - cur

	switch c.Policy {
	case Strict:
		if !math.IsInf(prev, 1) && -delta > c.Threshold {
			return Increased, &IncreaseError{Iteration: iter, Previous: prev, Current: cur}
		}
		if math.Abs(delta) < c.Threshold {
			return Converged, nil
		}
	default:
		if delta < c.Threshold {
			if delta < 0 {
				return Increased, nil
			}
			return Converged, nil
		}
	}

	if c.MaxIterations > 0 && iter >= c.MaxIterations {
		return Exhausted, nil
	}
	return Continue, nil
}
