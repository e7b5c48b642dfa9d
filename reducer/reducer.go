package reducer

import (
	"fmt"
	"math"
)

// Reducer computes the target number of live points for the next
// iteration from the current evidence state. Implementations never return
// more than currentN; the sampler additionally clamps to its minimum.
type Reducer interface {
	UpdateNobjects(currentN int, logEvidence, logMeanLiveEvidence float64) int
}

// Constant keeps the live population fixed.
type Constant struct{}

// UpdateNobjects returns currentN unchanged.
func (Constant) UpdateNobjects(currentN int, _, _ float64) int { return currentN }

// Feroz shrinks the population linearly in the log of the
// remainder-to-evidence ratio (Feroz & Hobson 2008): no reduction while
// the ratio stays above the tolerance, full reduction to the minimum by
// the time the ratio has fallen to tolerance squared.
type Feroz struct {
	initialNlive int
	minNlive     int
	logTolerance float64
}

// NewFeroz creates the Feroz reduction rule. The tolerance must lie in
// (0, 1).
func NewFeroz(initialNlive, minNlive int, tolerance float64) (*Feroz, error) {
	if err := validateBounds(initialNlive, minNlive, tolerance); err != nil {
		return nil, err
	}

	return &Feroz{
		initialNlive: initialNlive,
		minNlive:     minNlive,
		logTolerance: math.Log(tolerance),
	}, nil
}

// UpdateNobjects returns the target population for the next iteration.
func (r *Feroz) UpdateNobjects(currentN int, logEvidence, logMeanLiveEvidence float64) int {
	logRatio := logMeanLiveEvidence - logEvidence
	if logRatio >= r.logTolerance {
		return currentN
	}

	// Fraction of the way from tolerance down to tolerance^2, in log
	// space: 0 at onset, 1 at full shrinkage.
	frac := (logRatio - r.logTolerance) / r.logTolerance
	target := r.initialNlive - int(math.Round(frac*float64(r.initialNlive-r.minNlive)))

	if target < r.minNlive {
		target = r.minNlive
	}
	if target > currentN {
		target = currentN
	}
	return target
}

// Exponential shrinks the population geometrically once the
// remainder-to-evidence ratio falls below the tolerance.
type Exponential struct {
	minNlive     int
	logTolerance float64
	rate         float64
}

// NewExponential creates the geometric reduction rule. The tolerance must
// lie in (0, 1) and the rate in (0, 1].
func NewExponential(initialNlive, minNlive int, tolerance, rate float64) (*Exponential, error) {
	if err := validateBounds(initialNlive, minNlive, tolerance); err != nil {
		return nil, err
	}
	if rate <= 0 || rate > 1 {
		return nil, fmt.Errorf("reducer: rate must be in (0, 1], got %g", rate)
	}

	return &Exponential{
		minNlive:     minNlive,
		logTolerance: math.Log(tolerance),
		rate:         rate,
	}, nil
}

// UpdateNobjects returns the target population for the next iteration.
func (r *Exponential) UpdateNobjects(currentN int, logEvidence, logMeanLiveEvidence float64) int {
	if logMeanLiveEvidence-logEvidence >= r.logTolerance {
		return currentN
	}

	target := int(float64(currentN) * r.rate)
	if target < r.minNlive {
		target = r.minNlive
	}
	if target > currentN {
		target = currentN
	}
	return target
}

func validateBounds(initialNlive, minNlive int, tolerance float64) error {
	if initialNlive < 1 {
		return fmt.Errorf("reducer: initial live points must be positive, got %d", initialNlive)
	}
	if minNlive < 1 || minNlive > initialNlive {
		return fmt.Errorf("reducer: minimum live points %d outside [1, %d]", minNlive, initialNlive)
	}
	if tolerance <= 0 || tolerance >= 1 {
		return fmt.Errorf("reducer: tolerance must be in (0, 1), got %g", tolerance)
	}
	return nil
}
