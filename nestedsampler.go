package nestgo

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/nestgo/cluster"
	"github.com/hupe1980/nestgo/ellipsoid"
	"github.com/hupe1980/nestgo/internal/logspace"
	"github.com/hupe1980/nestgo/likelihood"
	"github.com/hupe1980/nestgo/metric"
	"github.com/hupe1980/nestgo/prior"
	"github.com/hupe1980/nestgo/reducer"
)

// Config holds the problem definition and the sampling parameters of a
// NestedSampler.
type Config struct {
	// Priors partition the coordinates of the parameter space; their
	// dimensions are concatenated in insertion order.
	Priors []prior.Prior

	// Likelihood evaluates the log likelihood of a parameter vector.
	Likelihood likelihood.Likelihood

	// Metric measures distances between live points during clustering.
	// Defaults to metric.Euclidean.
	Metric metric.Metric

	// Clusterer partitions the live sample. Defaults to a k-means
	// clusterer over Metric with k in [MinNclusters, MaxNclusters],
	// 10 trials and a relative tolerance of 0.01, driven by the
	// sampler's own random generator. A custom Clusterer must bring its
	// own randomness, which breaks seed reproducibility unless it is
	// deterministic.
	Clusterer cluster.Clusterer

	// MinNclusters and MaxNclusters bound the candidate cluster counts
	// of the default clusterer. Zero values default to 1 and 10.
	MinNclusters int
	MaxNclusters int

	// InitialNlive is the starting number of live points.
	InitialNlive int

	// MinNlive is the smallest population a reducer may shrink to.
	MinNlive int

	// InitialEnlargementFraction is alpha0 >= 0, the ellipsoid
	// enlargement at full remaining prior mass.
	InitialEnlargementFraction float64

	// ShrinkingRate is beta in (0, 1); enlargement follows
	// alpha0 * X^beta as the remaining prior mass X shrinks, so smaller
	// values slow the deflation of the ellipsoids.
	ShrinkingRate float64
}

// NestedSampler drives the nested sampling loop: it owns the live
// population, replaces the worst live point each iteration with a
// constrained draw from the multi-ellipsoidal bound, and accumulates
// evidence, prior mass and information in the log domain.
type NestedSampler struct {
	priors       []prior.Prior
	priorOffsets []int
	like         likelihood.Likelihood
	clusterer    cluster.Clusterer

	initialNlive        int
	minNlive            int
	enlargementFraction float64
	shrinkingRate       float64

	rng    *rand.Rand
	seed   int64
	logger *Logger
	runID  string

	ndimensions   int
	live          [][]float64
	logLikelihood []float64

	posteriorSample    [][]float64
	posteriorLogLike   []float64
	posteriorLogWeight []float64

	logWidthInPriorMass   float64
	logCumulatedPriorMass float64
	logRemainingPriorMass float64

	logEvidence         float64
	logEvidenceError    float64
	informationGain     float64
	logMeanLiveEvidence float64

	ellipsoids  []*ellipsoid.Ellipsoid
	totalVolume float64

	niterations   int
	nclusters     int
	prematureStop bool
	elapsed       time.Duration
	done          bool
}

// New creates a nested sampler for the given problem.
func New(cfg Config, optFns ...Option) (*NestedSampler, error) {
	if len(cfg.Priors) == 0 {
		return nil, ErrNoPriors
	}
	if cfg.Likelihood == nil {
		return nil, fmt.Errorf("nestgo: nil likelihood")
	}
	if cfg.InitialNlive < 1 {
		return nil, fmt.Errorf("nestgo: initial live points must be positive, got %d", cfg.InitialNlive)
	}
	if cfg.MinNlive < 1 || cfg.MinNlive > cfg.InitialNlive {
		return nil, fmt.Errorf("nestgo: minimum live points %d outside [1, %d]", cfg.MinNlive, cfg.InitialNlive)
	}
	if cfg.InitialEnlargementFraction < 0 {
		return nil, fmt.Errorf("nestgo: initial enlargement fraction must be non-negative, got %g", cfg.InitialEnlargementFraction)
	}
	if cfg.ShrinkingRate <= 0 || cfg.ShrinkingRate >= 1 {
		return nil, fmt.Errorf("nestgo: shrinking rate must be in (0, 1), got %g", cfg.ShrinkingRate)
	}

	ndimensions := 0
	offsets := make([]int, len(cfg.Priors))
	for i, p := range cfg.Priors {
		if p == nil {
			return nil, fmt.Errorf("nestgo: nil prior at position %d", i)
		}
		offsets[i] = ndimensions
		ndimensions += p.Ndimensions()
	}
	if ndimensions == 0 {
		return nil, fmt.Errorf("nestgo: priors cover zero dimensions")
	}

	o := applyOptions(optFns)

	seed := o.seed
	if !o.hasSeed {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	met := cfg.Metric
	if met == nil {
		met = metric.Euclidean{}
	}

	clusterer := cfg.Clusterer
	if clusterer == nil {
		minNclusters := cfg.MinNclusters
		if minNclusters == 0 {
			minNclusters = 1
		}
		maxNclusters := cfg.MaxNclusters
		if maxNclusters == 0 {
			maxNclusters = 10
		}

		km, err := cluster.NewKMeans(met, rng, minNclusters, maxNclusters, 10, 0.01)
		if err != nil {
			return nil, err
		}
		clusterer = km
	}

	runID := uuid.NewString()

	return &NestedSampler{
		priors:              cfg.Priors,
		priorOffsets:        offsets,
		like:                cfg.Likelihood,
		clusterer:           clusterer,
		initialNlive:        cfg.InitialNlive,
		minNlive:            cfg.MinNlive,
		enlargementFraction: cfg.InitialEnlargementFraction,
		shrinkingRate:       cfg.ShrinkingRate,
		rng:                 rng,
		seed:                seed,
		logger:              o.logger.WithRunID(runID).WithDimension(ndimensions),
		runID:               runID,
		ndimensions:         ndimensions,
	}, nil
}

// Run executes the nested sampling loop until the remainder-to-evidence
// ratio falls below terminationFactor.
//
// red adapts the live population between iterations; pass nil to keep it
// constant. No clustering happens during the first
// ninitialIterationsWithoutClustering iterations (the sample still looks
// like the prior there, so any structure found would be noise), and a new
// clustering only happens every niterationsWithSameClustering iterations.
// maxDrawAttempts bounds each constrained draw; exhausting it ends the
// loop prematurely but still finalizes the posterior, observable through
// PrematureStop.
func (s *NestedSampler) Run(red reducer.Reducer, ninitialIterationsWithoutClustering, niterationsWithSameClustering, maxDrawAttempts int, terminationFactor float64) error {
	if s.done {
		return ErrAlreadyRun
	}
	if niterationsWithSameClustering < 1 {
		return fmt.Errorf("nestgo: clustering cadence must be positive, got %d", niterationsWithSameClustering)
	}
	if maxDrawAttempts < 1 {
		return fmt.Errorf("nestgo: max draw attempts must be positive, got %d", maxDrawAttempts)
	}
	if terminationFactor <= 0 {
		return fmt.Errorf("nestgo: termination factor must be positive, got %g", terminationFactor)
	}
	if red == nil {
		red = reducer.Constant{}
	}

	start := time.Now()
	defer func() {
		s.elapsed = time.Since(start)
		s.done = true
	}()

	if err := s.initialize(); err != nil {
		return err
	}

	// One scratch vector holds the in/out point of the constrained draw.
	drawnPoint := make([]float64, s.ndimensions)

	s.nclusters = 1

	for {
		n := len(s.live)

		// Locate the worst live point; its likelihood becomes the
		// constraint for the replacement draw.
		iworst := 0
		for i, ll := range s.logLikelihood {
			if ll < s.logLikelihood[iworst] {
				iworst = i
			}
		}
		worstLogLikelihood := s.logLikelihood[iworst]
		logWeight := s.logWidthInPriorMass + worstLogLikelihood

		// Evidence and information gain, Skilling's log-domain
		// recurrence. The pre-update evidence enters the second term;
		// empty (-Inf) terms contribute nothing and are skipped so that
		// zero-likelihood points pass through without poisoning the
		// accumulators.
		if logEvidenceNew := logspace.AddExp(s.logEvidence, logWeight); !math.IsInf(logEvidenceNew, -1) {
			var gain float64
			if !math.IsInf(logWeight, -1) {
				gain += math.Exp(logWeight-logEvidenceNew) * worstLogLikelihood
			}
			if !math.IsInf(s.logEvidence, -1) {
				gain += math.Exp(s.logEvidence-logEvidenceNew) * (s.informationGain + s.logEvidence)
			}
			s.informationGain = gain - logEvidenceNew
			s.logEvidence = logEvidenceNew
		}

		if math.IsNaN(s.logEvidence) || math.IsNaN(s.informationGain) {
			return ErrNumericalPathology
		}

		s.appendToPosterior(s.live[iworst], worstLogLikelihood, logWeight)

		// Mean live evidence of the current population (Keeton 2011)
		// and the remainder-to-evidence ratio driving termination.
		logMeanLiveLikelihood := logspace.SumExp(s.logLikelihood) - math.Log(float64(n))
		s.logMeanLiveEvidence = logMeanLiveLikelihood + float64(s.niterations)*(math.Log(float64(n))-math.Log(float64(n+1)))

		ratio := math.Inf(1)
		if !math.IsInf(s.logEvidence, -1) {
			ratio = math.Exp(s.logMeanLiveEvidence - s.logEvidence)
		}

		// Clustering cadence. Early iterations are forced into a single
		// cluster; afterwards the clusterer decides.
		if s.niterations%niterationsWithSameClustering == 0 {
			var indices []int
			if s.niterations < ninitialIterationsWithoutClustering {
				indices = make([]int, n)
				s.nclusters = 1
			} else {
				var err error
				var sizes []int
				indices, sizes, err = s.clusterer.Cluster(s.live)
				if err != nil {
					return fmt.Errorf("nestgo: clustering failed: %w", err)
				}
				s.nclusters = len(sizes)
			}

			if err := s.rebuildEllipsoids(indices, s.nclusters); err != nil {
				return err
			}
		}

		if s.niterations%50 == 0 {
			s.logger.LogIteration(s.niterations, s.nclusters, n, ratio, s.logEvidence, s.informationGain)
		}

		// The drawing algorithm may use a starting point; take a random
		// live point other than the worst one.
		istart := iworst
		if n > 1 {
			for istart == iworst {
				istart = s.rng.Intn(n)
			}
		}
		copy(drawnPoint, s.live[istart])

		newLogLikelihood, err := s.drawWithConstraint(drawnPoint, worstLogLikelihood, maxDrawAttempts)
		if err != nil {
			if err == ErrDrawFailed {
				s.prematureStop = true
				s.logger.LogDrawFailure(s.niterations, maxDrawAttempts, worstLogLikelihood)
				break
			}
			return err
		}

		copy(s.live[iworst], drawnPoint)
		s.logLikelihood[iworst] = newLogLikelihood

		s.niterations++

		shouldContinue := ratio > terminationFactor

		// Shrink the prior-mass shell and update the cumulated and
		// remaining masses for the next rebuild.
		s.logWidthInPriorMass -= 1 / float64(n)
		s.logCumulatedPriorMass = logspace.AddExp(s.logCumulatedPriorMass, s.logWidthInPriorMass)
		s.logRemainingPriorMass = logspace.Log1mExp(s.logCumulatedPriorMass)

		if target := red.UpdateNobjects(n, s.logEvidence, s.logMeanLiveEvidence); target < n {
			if target < s.minNlive {
				target = s.minNlive
			}
			if target < n {
				s.reduceLivePoints(target)
			}
		}

		if !shouldContinue {
			break
		}
	}

	s.finalize(start)

	return nil
}

// initialize draws the starting population from the combined prior and
// evaluates the likelihood on every point.
func (s *NestedSampler) initialize() error {
	n := s.initialNlive

	s.live = make([][]float64, n)
	for i := range s.live {
		s.live[i] = make([]float64, s.ndimensions)
	}
	for i, p := range s.priors {
		p.Draw(s.rng, s.live, s.priorOffsets[i])
	}

	s.logLikelihood = make([]float64, n)
	for i, point := range s.live {
		ll := s.like.LogValue(point)
		if math.IsNaN(ll) {
			return ErrNumericalPathology
		}
		s.logLikelihood[i] = ll
	}

	// First shell width is 1 - e^(-1/N) of the prior mass; everything
	// starts in the log domain with an empty evidence accumulator.
	s.logWidthInPriorMass = math.Log(-math.Expm1(-1 / float64(n)))
	s.logCumulatedPriorMass = s.logWidthInPriorMass
	s.logRemainingPriorMass = 0
	s.logEvidence = math.Inf(-1)
	s.informationGain = 0
	s.niterations = 0

	return nil
}

// appendToPosterior records a discarded live point.
func (s *NestedSampler) appendToPosterior(point []float64, logLike, logWeight float64) {
	s.posteriorSample = append(s.posteriorSample, append([]float64(nil), point...))
	s.posteriorLogLike = append(s.posteriorLogLike, logLike)
	s.posteriorLogWeight = append(s.posteriorLogWeight, logWeight)
}

// reduceLivePoints drops the worst live points until target remain. The
// dropped points are posted to the posterior record first, in ascending
// likelihood order, so the record stays sorted.
func (s *NestedSampler) reduceLivePoints(target int) {
	n := len(s.live)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return s.logLikelihood[order[a]] < s.logLikelihood[order[b]]
	})

	removed := make(map[int]bool, n-target)
	for _, i := range order[:n-target] {
		s.appendToPosterior(s.live[i], s.logLikelihood[i], s.logWidthInPriorMass+s.logLikelihood[i])
		removed[i] = true
	}

	live := s.live[:0]
	logLike := s.logLikelihood[:0]
	for i := 0; i < n; i++ {
		if !removed[i] {
			live = append(live, s.live[i])
			logLike = append(logLike, s.logLikelihood[i])
		}
	}
	s.live = live
	s.logLikelihood = logLike
}

// finalize folds the remaining live points into the posterior and the
// evidence, and computes Skilling's error estimate.
func (s *NestedSampler) finalize(start time.Time) {
	for i, point := range s.live {
		s.appendToPosterior(point, s.logLikelihood[i], s.logWidthInPriorMass+s.logLikelihood[i])
	}

	s.logEvidenceError = math.Sqrt(math.Abs(s.informationGain) / float64(len(s.live)))
	s.logEvidence = logspace.AddExp(s.logMeanLiveEvidence, s.logEvidence)

	s.logger.LogRunCompleted(s.niterations, s.logEvidence, s.logEvidenceError, s.informationGain, time.Since(start))
}

// LogEvidence returns the natural logarithm of the Skilling evidence.
func (s *NestedSampler) LogEvidence() float64 { return s.logEvidence }

// LogEvidenceError returns Skilling's error estimate sqrt(|H|/N) on the
// log evidence.
func (s *NestedSampler) LogEvidenceError() float64 { return s.logEvidenceError }

// InformationGain returns the Kullback-Leibler divergence H from prior to
// posterior accumulated by the run.
func (s *NestedSampler) InformationGain() float64 { return s.informationGain }

// LogMeanLiveEvidence returns the Keeton (2011) estimate of the evidence
// still held by the live population.
func (s *NestedSampler) LogMeanLiveEvidence() float64 { return s.logMeanLiveEvidence }

// Niterations returns the number of completed nested iterations.
func (s *NestedSampler) Niterations() int { return s.niterations }

// Ndimensions returns the dimensionality of the parameter space.
func (s *NestedSampler) Ndimensions() int { return s.ndimensions }

// Nobjects returns the current number of live points. Before Run has
// drawn the population it returns the configured initial count.
func (s *NestedSampler) Nobjects() int {
	if s.live == nil {
		return s.initialNlive
	}
	return len(s.live)
}

// Nclusters returns the number of clusters of the last clustering event.
func (s *NestedSampler) Nclusters() int { return s.nclusters }

// PosteriorSample returns the discarded points, one row per point. The
// returned slices are owned by the sampler and must not be modified.
func (s *NestedSampler) PosteriorSample() [][]float64 { return s.posteriorSample }

// LogLikelihoodOfPosteriorSample returns the log likelihoods of the
// posterior sample, in insertion order.
func (s *NestedSampler) LogLikelihoodOfPosteriorSample() []float64 { return s.posteriorLogLike }

// LogWeightOfPosteriorSample returns the log weights (shell width plus
// log likelihood) of the posterior sample.
func (s *NestedSampler) LogWeightOfPosteriorSample() []float64 { return s.posteriorLogWeight }

// LogCumulatedPriorMass returns the log of the prior mass already
// integrated over.
func (s *NestedSampler) LogCumulatedPriorMass() float64 { return s.logCumulatedPriorMass }

// LogRemainingPriorMass returns the log of the prior mass not yet
// integrated over.
func (s *NestedSampler) LogRemainingPriorMass() float64 { return s.logRemainingPriorMass }

// PrematureStop reports whether the run ended because a constrained draw
// exhausted its attempts. The posterior gathered up to that point is
// still valid.
func (s *NestedSampler) PrematureStop() bool { return s.prematureStop }

// ComputationalTime returns the wall-clock duration of Run.
func (s *NestedSampler) ComputationalTime() time.Duration { return s.elapsed }

// Seed returns the seed of the sampler's random generator.
func (s *NestedSampler) Seed() int64 { return s.seed }

// RunID returns the identifier attached to the run's log records.
func (s *NestedSampler) RunID() string { return s.runID }
