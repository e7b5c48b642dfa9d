package nestgo

import (
	"fmt"
	"math"

	"github.com/hupe1980/nestgo/ellipsoid"
)

// rebuildEllipsoids wraps each cluster of the live sample in a bounding
// ellipsoid enlarged by f = alpha0 * X^beta, where X is the remaining
// prior mass at the time of the rebuild. The previous ellipsoid set is
// discarded.
func (s *NestedSampler) rebuildEllipsoids(indices []int, nclusters int) error {
	enlargement := s.enlargementFraction * math.Exp(s.shrinkingRate*s.logRemainingPriorMass)

	groups := make([][][]float64, nclusters)
	for i, idx := range indices {
		groups[idx] = append(groups[idx], s.live[i])
	}

	s.ellipsoids = s.ellipsoids[:0]
	s.totalVolume = 0

	for _, group := range groups {
		if len(group) == 0 {
			continue
		}

		e, err := ellipsoid.New(group)
		if err != nil {
			return err
		}
		if err := e.Build(enlargement); err != nil {
			return fmt.Errorf("building cluster ellipsoid: %w", err)
		}

		s.ellipsoids = append(s.ellipsoids, e)
		s.totalVolume += e.HyperVolume()
	}

	if len(s.ellipsoids) == 0 {
		return fmt.Errorf("nestgo: no ellipsoids could be built")
	}

	return nil
}

// drawWithConstraint samples a new live point uniformly from the union of
// the current ellipsoids, subject to the likelihood constraint
// L(x) > worstLogLikelihood, and stores it in drawnPoint. On entry
// drawnPoint holds the starting point of the drawing algorithm; it is
// only overwritten once a better point is found. Uniformity over
// overlapping ellipsoids is restored by accepting a candidate contained
// in n ellipsoids with probability 1/n.
func (s *NestedSampler) drawWithConstraint(drawnPoint []float64, worstLogLikelihood float64, maxAttempts int) (float64, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		e := s.pickEllipsoidByVolume()

		x, err := e.DrawInterior(s.rng)
		if err != nil {
			return 0, err
		}

		noverlap := 0
		for _, other := range s.ellipsoids {
			if other.Contains(x) {
				noverlap++
			}
		}
		if noverlap == 0 {
			// Roundoff at the boundary; the drawing ellipsoid owns it.
			noverlap = 1
		}
		if noverlap > 1 && s.rng.Float64() > 1/float64(noverlap) {
			continue
		}

		if !s.insideSupport(x) {
			continue
		}

		logLike := s.like.LogValue(x)
		if math.IsNaN(logLike) {
			return 0, ErrNumericalPathology
		}
		if logLike > worstLogLikelihood {
			copy(drawnPoint, x)
			return logLike, nil
		}
	}

	return 0, ErrDrawFailed
}

// pickEllipsoidByVolume selects an ellipsoid with probability proportional
// to its hyper-volume.
func (s *NestedSampler) pickEllipsoidByVolume() *ellipsoid.Ellipsoid {
	if len(s.ellipsoids) == 1 || s.totalVolume <= 0 {
		return s.ellipsoids[0]
	}

	target := s.rng.Float64() * s.totalVolume
	var cum float64
	for _, e := range s.ellipsoids {
		cum += e.HyperVolume()
		if target <= cum {
			return e
		}
	}
	return s.ellipsoids[len(s.ellipsoids)-1]
}

// insideSupport reports whether every prior's coordinate block of x lies
// inside that prior's support.
func (s *NestedSampler) insideSupport(x []float64) bool {
	for i, p := range s.priors {
		start := s.priorOffsets[i]
		if math.IsInf(p.LogDensity(x[start:start+p.Ndimensions()]), -1) {
			return false
		}
	}
	return true
}
