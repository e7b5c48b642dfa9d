package prior

import (
	"math"
	"math/rand"

	"github.com/hupe1980/nestgo/ellipsoid"
)

// Uniform is a separable uniform prior over an axis-aligned box.
type Uniform struct {
	minima, maxima []float64
	logDensity     float64
}

// NewUniform creates a uniform prior over [minima[j], maxima[j]] for each
// coordinate j.
func NewUniform(minima, maxima []float64) (*Uniform, error) {
	if len(minima) == 0 || len(minima) != len(maxima) {
		return nil, &ErrLengthMismatch{Nfirst: len(minima), Nsecond: len(maxima)}
	}

	var logDensity float64
	for j := range minima {
		if !(minima[j] < maxima[j]) {
			return nil, &ErrInvalidBounds{Coordinate: j, Min: minima[j], Max: maxima[j]}
		}
		logDensity -= math.Log(maxima[j] - minima[j])
	}

	return &Uniform{
		minima:     append([]float64(nil), minima...),
		maxima:     append([]float64(nil), maxima...),
		logDensity: logDensity,
	}, nil
}

// Ndimensions returns the number of coordinates the prior governs.
func (u *Uniform) Ndimensions() int { return len(u.minima) }

// Minima returns the lower bounds of the support.
func (u *Uniform) Minima() []float64 { return u.minima }

// Maxima returns the upper bounds of the support.
func (u *Uniform) Maxima() []float64 { return u.maxima }

// Draw fills the block [start, start+Ndimensions) of every point in dst.
func (u *Uniform) Draw(rng *rand.Rand, dst [][]float64, start int) {
	for _, p := range dst {
		for j := range u.minima {
			p[start+j] = u.minima[j] + rng.Float64()*(u.maxima[j]-u.minima[j])
		}
	}
}

// LogDensity returns the constant log density inside the box and -Inf
// outside.
func (u *Uniform) LogDensity(x []float64) float64 {
	for j, v := range x {
		if v < u.minima[j] || v > u.maxima[j] {
			return math.Inf(-1)
		}
	}
	return u.logDensity
}

// DrawWithConstraint redraws the prior's block of point from the ellipsoid
// interior until the block falls inside the box.
func (u *Uniform) DrawWithConstraint(rng *rand.Rand, point []float64, start int, e *ellipsoid.Ellipsoid) error {
	for attempt := 0; attempt < maxConstrainedDrawAttempts; attempt++ {
		x, err := e.DrawInterior(rng)
		if err != nil {
			return err
		}
		if !math.IsInf(u.LogDensity(x[start:start+len(u.minima)]), -1) {
			copy(point[start:start+len(u.minima)], x[start:start+len(u.minima)])
			return nil
		}
	}
	return ErrConstrainedDrawExhausted
}
