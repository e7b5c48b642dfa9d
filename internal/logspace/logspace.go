// Package logspace provides numerically stable arithmetic on values stored
// as natural logarithms. All evidence and prior-mass bookkeeping in the
// sampler goes through these helpers; raw exponentiation before summing is
// never safe at the magnitudes nested sampling produces.
package logspace

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// AddExp returns log(exp(a) + exp(b)) without overflow or underflow.
// Either argument may be -Inf, representing a zero term.
func AddExp(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}
	if a < b {
		a, b = b, a
	}
	return a + math.Log1p(math.Exp(b-a))
}

// SumExp returns log(sum_i exp(x[i])) for a non-empty slice.
func SumExp(x []float64) float64 {
	return floats.LogSumExp(x)
}

// Log1mExp returns log(1 - exp(a)) for a <= 0. It returns -Inf when the
// difference underflows to zero or below.
func Log1mExp(a float64) float64 {
	if a >= 0 {
		return math.Inf(-1)
	}
	// Split at log(2) for accuracy, cf. Maechler (2012).
	if a > -math.Ln2 {
		return math.Log(-math.Expm1(a))
	}
	return math.Log1p(-math.Exp(a))
}
