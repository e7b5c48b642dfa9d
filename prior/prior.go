package prior

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/hupe1980/nestgo/ellipsoid"
)

var (
	// ErrMisconfigured is matched by every configuration error of this
	// package (mismatched lengths, empty support, min >= max). Use the
	// concrete types below to access the offending values.
	ErrMisconfigured = errors.New("prior: misconfigured")

	// ErrConstrainedDrawExhausted is returned when a constrained redraw
	// cannot place a point inside the prior support.
	ErrConstrainedDrawExhausted = errors.New("prior: constrained draw attempts exhausted")
)

// ErrLengthMismatch indicates parameter slices of inconsistent lengths,
// or an empty parameterization.
//
// Matches ErrMisconfigured via errors.Is.
type ErrLengthMismatch struct {
	Nfirst  int
	Nsecond int
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("prior: parameter slices have mismatched lengths %d and %d", e.Nfirst, e.Nsecond)
}

func (e *ErrLengthMismatch) Unwrap() error { return ErrMisconfigured }

// ErrInvalidBounds indicates a coordinate with an empty support.
//
// Matches ErrMisconfigured via errors.Is.
type ErrInvalidBounds struct {
	Coordinate int
	Min        float64
	Max        float64
}

func (e *ErrInvalidBounds) Error() string {
	return fmt.Sprintf("prior: coordinate %d has min %g >= max %g", e.Coordinate, e.Min, e.Max)
}

func (e *ErrInvalidBounds) Unwrap() error { return ErrMisconfigured }

// ErrInvalidStdDev indicates a coordinate with a non-positive standard
// deviation.
//
// Matches ErrMisconfigured via errors.Is.
type ErrInvalidStdDev struct {
	Coordinate int
	StdDev     float64
}

func (e *ErrInvalidStdDev) Error() string {
	return fmt.Sprintf("prior: coordinate %d has non-positive standard deviation %g", e.Coordinate, e.StdDev)
}

func (e *ErrInvalidStdDev) Unwrap() error { return ErrMisconfigured }

// maxConstrainedDrawAttempts bounds the rejection loop of
// DrawWithConstraint implementations.
const maxConstrainedDrawAttempts = 100000

// Prior is a black-box sampler governing a contiguous block of coordinates
// of the parameter space. The sampler composes multiple priors by
// concatenating their blocks in insertion order.
type Prior interface {
	// Ndimensions returns the number of coordinates this prior governs.
	Ndimensions() int

	// Draw fills the block [start, start+Ndimensions) of every point in
	// dst with an independent sample from the prior.
	Draw(rng *rand.Rand, dst [][]float64, start int)

	// LogDensity evaluates the log prior density of a coordinate block x
	// of length Ndimensions. It returns -Inf outside the support.
	LogDensity(x []float64) float64

	// DrawWithConstraint redraws the block [start, start+Ndimensions) of
	// point from the interior of the given ellipsoid, rejecting draws
	// whose block falls outside the prior support.
	DrawWithConstraint(rng *rand.Rand, point []float64, start int, e *ellipsoid.Ellipsoid) error
}
