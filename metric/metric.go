package metric

import (
	"math"

	"github.com/viterin/vek"
)

// Metric computes the distance between two points of the parameter space.
// Implementations must be symmetric and return zero iff x == y.
// Vectors are assumed to have the same length (caller's responsibility).
type Metric interface {
	Distance(x, y []float64) float64
}

// Euclidean is the canonical L2 metric.
// Uses SIMD acceleration when available.
type Euclidean struct{}

// Distance returns the L2 norm of x - y.
func (Euclidean) Distance(x, y []float64) float64 {
	return vek.Distance(x, y)
}

// Manhattan is the L1 metric.
type Manhattan struct{}

// Distance returns the sum of absolute coordinate differences.
func (Manhattan) Distance(x, y []float64) float64 {
	var sum float64
	for i := range x {
		sum += math.Abs(x[i] - y[i])
	}
	return sum
}

// Fractional is the L_p metric with a fractional exponent 0 < p < 1.
// Fractional norms weigh coordinate differences more evenly than L2 in
// high-dimensional spaces.
type Fractional struct {
	// Exponent is the fractional power p. Values outside (0, 1) are
	// accepted but defeat the purpose of the metric.
	Exponent float64
}

// Distance returns (sum_i |x_i - y_i|^p)^(1/p).
func (f Fractional) Distance(x, y []float64) float64 {
	var sum float64
	for i := range x {
		sum += math.Pow(math.Abs(x[i]-y[i]), f.Exponent)
	}
	return math.Pow(sum, 1/f.Exponent)
}
