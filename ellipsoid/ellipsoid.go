package ellipsoid

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrIllEllipsoid is returned when the sample covariance cannot be
	// decomposed into finite eigenvalues.
	ErrIllEllipsoid = errors.New("ellipsoid: ill-conditioned sample covariance")

	// ErrNotBuilt is returned when an operation requires Build to have
	// been called first.
	ErrNotBuilt = errors.New("ellipsoid: not built")
)

// degenerateVariance is the isotropic variance assigned to a single-point
// cluster, for which a sample covariance is undefined.
const degenerateVariance = 1e-12

// Ellipsoid bounds a cluster of live points. Build derives the centroid,
// the unbiased sample covariance and its eigen-decomposition; the
// containment region is the covariance ellipsoid with every semi-axis
// scaled by sqrt(1+f), where f is the enlargement factor.
type Ellipsoid struct {
	sample      [][]float64 // private copy, one point per row
	ndimensions int
	nobjects    int

	center      []float64
	covariance  *mat.SymDense
	eigenvalues []float64
	eigenvecs   *mat.Dense

	enlargement float64
	hyperVolume float64
	built       bool
}

// New creates an ellipsoid over a copy of the given sample. The sample
// must be non-empty and rectangular.
func New(sample [][]float64) (*Ellipsoid, error) {
	if len(sample) == 0 {
		return nil, fmt.Errorf("ellipsoid: empty sample")
	}

	ndims := len(sample[0])
	if ndims == 0 {
		return nil, fmt.Errorf("ellipsoid: zero-dimensional sample")
	}

	owned := make([][]float64, len(sample))
	for i, p := range sample {
		if len(p) != ndims {
			return nil, fmt.Errorf("ellipsoid: ragged sample: point %d has %d dimensions, want %d", i, len(p), ndims)
		}
		owned[i] = append([]float64(nil), p...)
	}

	return &Ellipsoid{
		sample:      owned,
		ndimensions: ndims,
		nobjects:    len(owned),
	}, nil
}

// Build computes the centroid, covariance, eigen-decomposition and
// hyper-volume for the given enlargement factor f >= 0. It may be called
// repeatedly with different enlargement factors.
func (e *Ellipsoid) Build(enlargement float64) error {
	if enlargement < 0 {
		return fmt.Errorf("ellipsoid: negative enlargement factor %g", enlargement)
	}

	e.center = make([]float64, e.ndimensions)
	for _, p := range e.sample {
		for j, v := range p {
			e.center[j] += v
		}
	}
	for j := range e.center {
		e.center[j] /= float64(e.nobjects)
	}

	e.covariance = mat.NewSymDense(e.ndimensions, nil)
	if e.nobjects == 1 {
		// A lone point has no sample covariance; fall back to a
		// vanishingly small sphere around it.
		for j := 0; j < e.ndimensions; j++ {
			e.covariance.SetSym(j, j, degenerateVariance)
		}
	} else {
		for j := 0; j < e.ndimensions; j++ {
			for k := j; k < e.ndimensions; k++ {
				var sum float64
				for _, p := range e.sample {
					sum += (p[j] - e.center[j]) * (p[k] - e.center[k])
				}
				e.covariance.SetSym(j, k, sum/float64(e.nobjects-1))
			}
		}
	}

	var es mat.EigenSym
	if ok := es.Factorize(e.covariance, true); !ok {
		return ErrIllEllipsoid
	}

	e.eigenvalues = es.Values(nil)
	e.eigenvecs = mat.NewDense(e.ndimensions, e.ndimensions, nil)
	es.VectorsTo(e.eigenvecs)

	// Roundoff can push a semidefinite spectrum slightly negative; floor
	// those at a scale-relative epsilon. Anything non-finite means the
	// input sample itself was pathological.
	var maxEig float64
	for _, v := range e.eigenvalues {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrIllEllipsoid
		}
		if v > maxEig {
			maxEig = v
		}
	}
	floor := degenerateVariance * math.Max(maxEig, 1)
	for i, v := range e.eigenvalues {
		if v < floor {
			e.eigenvalues[i] = floor
		}
	}

	e.enlargement = enlargement
	e.hyperVolume = unitBallVolume(e.ndimensions)
	for _, v := range e.eigenvalues {
		e.hyperVolume *= math.Sqrt((1 + enlargement) * v)
	}
	e.built = true

	return nil
}

// Contains reports whether x lies inside the enlarged containment region,
// i.e. whether (x-c)' Cov^-1 (x-c) <= 1+f.
func (e *Ellipsoid) Contains(x []float64) bool {
	if !e.built {
		return false
	}

	var d2 float64
	for k := 0; k < e.ndimensions; k++ {
		var proj float64
		for i := 0; i < e.ndimensions; i++ {
			proj += e.eigenvecs.At(i, k) * (x[i] - e.center[i])
		}
		d2 += proj * proj / e.eigenvalues[k]
	}

	return d2 <= 1+e.enlargement
}

// DrawInterior returns a point drawn uniformly from the interior of the
// enlarged ellipsoid: a uniform unit-ball deviate is scaled along each
// principal axis by sqrt((1+f) lambda_k), rotated into parameter space and
// translated to the centroid.
func (e *Ellipsoid) DrawInterior(rng *rand.Rand) ([]float64, error) {
	if !e.built {
		return nil, ErrNotBuilt
	}

	// Uniform direction on the sphere via normalized Gaussians, then a
	// radius r = U^(1/D) to make the ball draw uniform in volume.
	g := make([]float64, e.ndimensions)
	var norm float64
	for {
		norm = 0
		for i := range g {
			g[i] = rng.NormFloat64()
			norm += g[i] * g[i]
		}
		if norm > 0 {
			break
		}
	}
	norm = math.Sqrt(norm)
	r := math.Pow(rng.Float64(), 1/float64(e.ndimensions))
	for i := range g {
		g[i] = g[i] / norm * r * math.Sqrt((1+e.enlargement)*e.eigenvalues[i])
	}

	x := make([]float64, e.ndimensions)
	for i := 0; i < e.ndimensions; i++ {
		x[i] = e.center[i]
		for k := 0; k < e.ndimensions; k++ {
			x[i] += e.eigenvecs.At(i, k) * g[k]
		}
	}

	return x, nil
}

// HyperVolume returns the volume of the enlarged ellipsoid.
func (e *Ellipsoid) HyperVolume() float64 { return e.hyperVolume }

// Center returns the cluster centroid. The returned slice is owned by the
// ellipsoid and must not be modified.
func (e *Ellipsoid) Center() []float64 { return e.center }

// Eigenvalues returns the eigenvalues of the sample covariance in
// ascending order. The returned slice is owned by the ellipsoid.
func (e *Ellipsoid) Eigenvalues() []float64 { return e.eigenvalues }

// CovarianceMatrix returns the unbiased sample covariance.
func (e *Ellipsoid) CovarianceMatrix() *mat.SymDense { return e.covariance }

// EnlargementFactor returns the factor f the ellipsoid was built with.
func (e *Ellipsoid) EnlargementFactor() float64 { return e.enlargement }

// Nobjects returns the number of sample points the ellipsoid bounds.
func (e *Ellipsoid) Nobjects() int { return e.nobjects }

// Ndimensions returns the dimensionality of the parameter space.
func (e *Ellipsoid) Ndimensions() int { return e.ndimensions }

// unitBallVolume returns the volume of the unit ball in d dimensions,
// pi^(d/2) / Gamma(d/2 + 1).
func unitBallVolume(d int) float64 {
	return math.Pow(math.Pi, float64(d)/2) / math.Gamma(float64(d)/2+1)
}
