package prior

import (
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/hupe1980/nestgo/ellipsoid"
)

// Normal is a separable Gaussian prior.
type Normal struct {
	dists []distuv.Normal
}

// NewNormal creates a normal prior with the given per-coordinate means and
// standard deviations.
func NewNormal(means, stdDevs []float64) (*Normal, error) {
	if len(means) == 0 || len(means) != len(stdDevs) {
		return nil, &ErrLengthMismatch{Nfirst: len(means), Nsecond: len(stdDevs)}
	}

	dists := make([]distuv.Normal, len(means))
	for j := range means {
		if stdDevs[j] <= 0 {
			return nil, &ErrInvalidStdDev{Coordinate: j, StdDev: stdDevs[j]}
		}
		dists[j] = distuv.Normal{Mu: means[j], Sigma: stdDevs[j]}
	}

	return &Normal{dists: dists}, nil
}

// Ndimensions returns the number of coordinates the prior governs.
func (n *Normal) Ndimensions() int { return len(n.dists) }

// Draw fills the block [start, start+Ndimensions) of every point in dst.
// Deviates come from the caller's generator so that runs stay reproducible
// under a fixed seed.
func (n *Normal) Draw(rng *rand.Rand, dst [][]float64, start int) {
	for _, p := range dst {
		for j, d := range n.dists {
			p[start+j] = d.Mu + d.Sigma*rng.NormFloat64()
		}
	}
}

// LogDensity returns the sum of the per-coordinate Gaussian log densities.
// The support is unbounded, so the result is always finite.
func (n *Normal) LogDensity(x []float64) float64 {
	var sum float64
	for j, d := range n.dists {
		sum += d.LogProb(x[j])
	}
	return sum
}

// DrawWithConstraint redraws the prior's block of point from the ellipsoid
// interior. A Gaussian support is unbounded, so the first draw is taken.
func (n *Normal) DrawWithConstraint(rng *rand.Rand, point []float64, start int, e *ellipsoid.Ellipsoid) error {
	x, err := e.DrawInterior(rng)
	if err != nil {
		return err
	}
	copy(point[start:start+len(n.dists)], x[start:start+len(n.dists)])
	return nil
}
