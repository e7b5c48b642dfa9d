package cluster

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/hupe1980/nestgo/metric"
)

// Clusterer partitions a sample of points into clusters. It returns the
// per-point cluster index in [0, nclusters) and the per-cluster sizes,
// which sum to len(sample).
type Clusterer interface {
	Cluster(sample [][]float64) (indices []int, sizes []int, err error)
}

// maxLloydIterations bounds a single Lloyd refinement. Convergence on the
// relative tolerance is normally reached long before this.
const maxLloydIterations = 200

// KMeans clusters with Lloyd's algorithm over a pluggable metric, seeded
// by k-means++. For each candidate k in [MinNclusters, MaxNclusters] it
// keeps the best of Ntrials restarts and selects k by a BIC-like
// criterion, ties broken by the smallest k.
type KMeans struct {
	metric       metric.Metric
	rng          *rand.Rand
	minNclusters int
	maxNclusters int
	ntrials      int
	relTolerance float64
}

// NewKMeans creates a k-means clusterer. Centroid movement below
// relTolerance, relative to the largest coordinate range of the sample,
// counts as converged.
func NewKMeans(m metric.Metric, rng *rand.Rand, minNclusters, maxNclusters, ntrials int, relTolerance float64) (*KMeans, error) {
	if m == nil {
		return nil, fmt.Errorf("cluster: nil metric")
	}
	if rng == nil {
		return nil, fmt.Errorf("cluster: nil random source")
	}
	if minNclusters < 1 || maxNclusters < minNclusters {
		return nil, fmt.Errorf("cluster: invalid cluster range [%d, %d]", minNclusters, maxNclusters)
	}
	if ntrials < 1 {
		return nil, fmt.Errorf("cluster: ntrials must be positive, got %d", ntrials)
	}
	if relTolerance <= 0 {
		return nil, fmt.Errorf("cluster: relTolerance must be positive, got %g", relTolerance)
	}

	return &KMeans{
		metric:       m,
		rng:          rng,
		minNclusters: minNclusters,
		maxNclusters: maxNclusters,
		ntrials:      ntrials,
		relTolerance: relTolerance,
	}, nil
}

// Cluster partitions the sample. If every trial at every candidate k
// degenerates, it falls back to a single cluster containing all points.
func (km *KMeans) Cluster(sample [][]float64) ([]int, []int, error) {
	n := len(sample)
	if n == 0 {
		return nil, nil, fmt.Errorf("cluster: empty sample")
	}
	ndims := len(sample[0])
	if ndims == 0 {
		return nil, nil, fmt.Errorf("cluster: zero-dimensional sample")
	}

	// The convergence threshold is relative to the spread of the sample.
	span := coordinateRange(sample)
	threshold := km.relTolerance * span

	var (
		bestBIC     = math.Inf(1)
		bestIndices []int
		bestSizes   []int
	)

	for k := km.minNclusters; k <= km.maxNclusters && k <= n; k++ {
		indices, distortion, ok := km.bestOfTrials(sample, k, threshold)
		if !ok {
			continue
		}

		// BIC(k) = N log(W/N) + k D log(N). W may be zero for a
		// perfectly tight partition; -Inf then wins outright.
		bic := float64(n)*math.Log(distortion/float64(n)) + float64(k)*float64(ndims)*math.Log(float64(n))
		if bic < bestBIC {
			bestBIC = bic
			bestIndices = indices
			bestSizes = countSizes(indices, k)
		}
	}

	if bestIndices == nil {
		// Every trial degenerated: recover with one cluster.
		bestIndices = make([]int, n)
		bestSizes = []int{n}
	}

	return bestIndices, bestSizes, nil
}

// bestOfTrials runs Ntrials k-means++ restarts at a fixed k and returns
// the assignment with the lowest within-cluster sum of squared distances.
// Trials that produce an empty cluster are discarded.
func (km *KMeans) bestOfTrials(sample [][]float64, k int, threshold float64) ([]int, float64, bool) {
	var (
		bestDistortion = math.Inf(1)
		bestIndices    []int
		found          bool
	)

	for trial := 0; trial < km.ntrials; trial++ {
		indices, distortion, ok := km.runLloyd(sample, k, threshold)
		if !ok {
			continue
		}
		if !found || distortion < bestDistortion {
			found = true
			bestDistortion = distortion
			bestIndices = indices
		}
	}

	return bestIndices, bestDistortion, found
}

// runLloyd seeds centroids with k-means++ and iterates assignment/update
// until the largest centroid movement falls below threshold. It reports
// failure if any cluster runs empty.
func (km *KMeans) runLloyd(sample [][]float64, k int, threshold float64) ([]int, float64, bool) {
	n := len(sample)
	ndims := len(sample[0])

	centroids := km.seedPlusPlus(sample, k)
	indices := make([]int, n)
	counts := make([]int, k)
	next := make([][]float64, k)
	for j := range next {
		next[j] = make([]float64, ndims)
	}

	for iter := 0; iter < maxLloydIterations; iter++ {
		for j := range counts {
			counts[j] = 0
			for d := range next[j] {
				next[j][d] = 0
			}
		}

		// Assignment step.
		for i, p := range sample {
			best := 0
			bestDist := km.metric.Distance(p, centroids[0])
			for j := 1; j < k; j++ {
				if d := km.metric.Distance(p, centroids[j]); d < bestDist {
					bestDist = d
					best = j
				}
			}
			indices[i] = best
			counts[best]++
			for d, v := range p {
				next[best][d] += v
			}
		}

		for j, c := range counts {
			if c == 0 {
				return nil, 0, false
			}
			for d := range next[j] {
				next[j][d] /= float64(c)
			}
		}

		// Update step, tracking the largest centroid movement.
		var maxShift float64
		for j := range centroids {
			if shift := km.metric.Distance(centroids[j], next[j]); shift > maxShift {
				maxShift = shift
			}
			copy(centroids[j], next[j])
		}

		if maxShift < threshold {
			break
		}
	}

	var distortion float64
	for i, p := range sample {
		d := km.metric.Distance(p, centroids[indices[i]])
		distortion += d * d
	}

	return indices, distortion, true
}

// seedPlusPlus picks k initial centroids: the first uniformly at random,
// each next one with probability proportional to the squared distance to
// the nearest centroid chosen so far (Arthur & Vassilvitskii 2007).
func (km *KMeans) seedPlusPlus(sample [][]float64, k int) [][]float64 {
	n := len(sample)
	ndims := len(sample[0])

	centroids := make([][]float64, k)
	for j := range centroids {
		centroids[j] = make([]float64, ndims)
	}
	copy(centroids[0], sample[km.rng.Intn(n)])

	minDist2 := make([]float64, n)
	for i, p := range sample {
		d := km.metric.Distance(p, centroids[0])
		minDist2[i] = d * d
	}

	for j := 1; j < k; j++ {
		var total float64
		for _, d2 := range minDist2 {
			total += d2
		}

		var chosen int
		if total > 0 {
			target := km.rng.Float64() * total
			var cum float64
			for i, d2 := range minDist2 {
				cum += d2
				if cum >= target {
					chosen = i
					break
				}
			}
		} else {
			// All points coincide with a centroid already.
			chosen = km.rng.Intn(n)
		}
		copy(centroids[j], sample[chosen])

		for i, p := range sample {
			d := km.metric.Distance(p, centroids[j])
			if d2 := d * d; d2 < minDist2[i] {
				minDist2[i] = d2
			}
		}
	}

	return centroids
}

func coordinateRange(sample [][]float64) float64 {
	ndims := len(sample[0])
	var span float64
	for d := 0; d < ndims; d++ {
		lo, hi := sample[0][d], sample[0][d]
		for _, p := range sample[1:] {
			if p[d] < lo {
				lo = p[d]
			}
			if p[d] > hi {
				hi = p[d]
			}
		}
		if hi-lo > span {
			span = hi - lo
		}
	}
	return span
}

func countSizes(indices []int, k int) []int {
	sizes := make([]int, k)
	for _, idx := range indices {
		sizes[idx]++
	}
	return sizes
}
