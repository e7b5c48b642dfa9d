package nestgo

import (
	"errors"
)

var (
	// ErrDrawFailed indicates that the constrained draw exhausted its
	// attempts without finding a point above the likelihood constraint.
	// Run recovers from it by finalizing the posterior gathered so far.
	ErrDrawFailed = errors.New("nestgo: constrained draw attempts exhausted")

	// ErrNumericalPathology indicates a NaN from the likelihood or in an
	// evidence accumulator. It aborts the run.
	ErrNumericalPathology = errors.New("nestgo: non-finite value in likelihood or accumulator")

	// ErrNoPriors is returned when the sampler is configured without
	// prior distributions.
	ErrNoPriors = errors.New("nestgo: no priors configured")

	// ErrAlreadyRun is returned when Run is invoked twice on the same
	// sampler.
	ErrAlreadyRun = errors.New("nestgo: sampler has already been run")
)
