package nestgo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/nestgo"
	"github.com/hupe1980/nestgo/likelihood"
	"github.com/hupe1980/nestgo/prior"
	"github.com/hupe1980/nestgo/reducer"
)

// gaussianLikelihood is a normalized 2D Gaussian centered at the origin.
func gaussianLikelihood(x []float64) float64 {
	return -0.5*(x[0]*x[0]+x[1]*x[1]) - math.Log(2*math.Pi)
}

// twoBumpsLikelihood has two well-separated Gaussian modes of width 0.3
// at (-3, 0) and (3, 0).
func twoBumpsLikelihood(x []float64) float64 {
	const sigma2 = 0.09
	d1 := (x[0]+3)*(x[0]+3) + x[1]*x[1]
	d2 := (x[0]-3)*(x[0]-3) + x[1]*x[1]
	if d1 < d2 {
		d1, d2 = d2, d1
	}
	// log(e^-d1/2s + e^-d2/2s) with the larger term factored out.
	return -d2/(2*sigma2) + math.Log1p(math.Exp((d2-d1)/(2*sigma2)))
}

func newGaussianSampler(t *testing.T, nlive int, seed int64) *nestgo.NestedSampler {
	t.Helper()

	uniform, err := prior.NewUniform([]float64{-5, -5}, []float64{5, 5})
	require.NoError(t, err)

	sampler, err := nestgo.New(nestgo.Config{
		Priors:                     []prior.Prior{uniform},
		Likelihood:                 likelihood.Func(gaussianLikelihood),
		InitialNlive:               nlive,
		MinNlive:                   nlive,
		InitialEnlargementFraction: 1.5,
		ShrinkingRate:              0.2,
		MaxNclusters:               3,
	}, nestgo.WithSeed(seed))
	require.NoError(t, err)

	return sampler
}

func TestNewValidation(t *testing.T) {
	uniform, err := prior.NewUniform([]float64{0}, []float64{1})
	require.NoError(t, err)

	valid := nestgo.Config{
		Priors:                     []prior.Prior{uniform},
		Likelihood:                 likelihood.Func(func([]float64) float64 { return 0 }),
		InitialNlive:               10,
		MinNlive:                   10,
		InitialEnlargementFraction: 1,
		ShrinkingRate:              0.5,
	}

	t.Run("Valid", func(t *testing.T) {
		_, err := nestgo.New(valid)
		assert.NoError(t, err)
	})

	t.Run("NoPriors", func(t *testing.T) {
		cfg := valid
		cfg.Priors = nil
		_, err := nestgo.New(cfg)
		assert.ErrorIs(t, err, nestgo.ErrNoPriors)
	})

	t.Run("NilLikelihood", func(t *testing.T) {
		cfg := valid
		cfg.Likelihood = nil
		_, err := nestgo.New(cfg)
		assert.Error(t, err)
	})

	t.Run("ZeroNlive", func(t *testing.T) {
		cfg := valid
		cfg.InitialNlive = 0
		_, err := nestgo.New(cfg)
		assert.Error(t, err)
	})

	t.Run("MinAboveInitial", func(t *testing.T) {
		cfg := valid
		cfg.MinNlive = 20
		_, err := nestgo.New(cfg)
		assert.Error(t, err)
	})

	t.Run("NegativeEnlargement", func(t *testing.T) {
		cfg := valid
		cfg.InitialEnlargementFraction = -1
		_, err := nestgo.New(cfg)
		assert.Error(t, err)
	})

	t.Run("ShrinkingRateOutOfRange", func(t *testing.T) {
		cfg := valid
		cfg.ShrinkingRate = 1
		_, err := nestgo.New(cfg)
		assert.Error(t, err)
	})
}

func TestRunArgumentValidation(t *testing.T) {
	sampler := newGaussianSampler(t, 20, 1)

	assert.Error(t, sampler.Run(nil, 0, 0, 100, 0.5))
	assert.Error(t, sampler.Run(nil, 0, 10, 0, 0.5))
	assert.Error(t, sampler.Run(nil, 0, 10, 100, 0))
}

func TestRunGaussianEvidence(t *testing.T) {
	sampler := newGaussianSampler(t, 300, 7)

	require.NoError(t, sampler.Run(nil, 100, 50, 10000, 0.01))
	assert.False(t, sampler.PrematureStop())

	// The prior box has volume 100 and contains virtually all of the
	// normalized Gaussian mass, so log(Z) = -log(100).
	assert.InDelta(t, -math.Log(100), sampler.LogEvidence(), 0.5)
	assert.Greater(t, sampler.LogEvidenceError(), 0.0)
	assert.Greater(t, sampler.InformationGain(), 0.0)
	assert.Positive(t, sampler.Niterations())
	assert.Positive(t, sampler.ComputationalTime())
}

func TestRunPriorMassIdentity(t *testing.T) {
	sampler := newGaussianSampler(t, 100, 3)

	require.NoError(t, sampler.Run(nil, 50, 20, 10000, 0.05))

	cumulated := math.Exp(sampler.LogCumulatedPriorMass())
	remaining := math.Exp(sampler.LogRemainingPriorMass())
	assert.InDelta(t, 1, cumulated+remaining, 1e-10)
}

func TestRunPosteriorOrdering(t *testing.T) {
	sampler := newGaussianSampler(t, 100, 11)

	require.NoError(t, sampler.Run(nil, 50, 20, 10000, 0.05))

	logLikes := sampler.LogLikelihoodOfPosteriorSample()
	nrecorded := len(logLikes) - sampler.Nobjects()
	require.Greater(t, nrecorded, 1)

	// Insertion order tracks the non-decreasing worst likelihood, up to
	// the final live batch.
	for i := 1; i < nrecorded; i++ {
		assert.GreaterOrEqual(t, logLikes[i], logLikes[i-1], "posterior record out of order at %d", i)
	}
}

func TestRunPosteriorNormalization(t *testing.T) {
	sampler := newGaussianSampler(t, 200, 13)

	require.NoError(t, sampler.Run(nil, 100, 20, 10000, 0.01))

	// The log weights already include the log likelihood.
	logWeights := sampler.LogWeightOfPosteriorSample()

	var sum float64
	for i := range logWeights {
		sum += math.Exp(logWeights[i] - sampler.LogEvidence())
	}

	assert.InDelta(t, 0, math.Abs(math.Log(sum)), sampler.LogEvidenceError()+0.05)
}

func TestRunLiveLikelihoodsMatch(t *testing.T) {
	sampler := newGaussianSampler(t, 100, 17)

	require.NoError(t, sampler.Run(nil, 50, 20, 10000, 0.05))

	// After finalization the live points sit at the tail of the
	// posterior; their recorded likelihoods must match a re-evaluation.
	points := sampler.PosteriorSample()
	logLikes := sampler.LogLikelihoodOfPosteriorSample()
	for i := len(points) - sampler.Nobjects(); i < len(points); i++ {
		assert.InDelta(t, gaussianLikelihood(points[i]), logLikes[i], 1e-12)
	}
}

func TestRunDeterminism(t *testing.T) {
	first := newGaussianSampler(t, 100, 42)
	second := newGaussianSampler(t, 100, 42)

	require.NoError(t, first.Run(nil, 50, 20, 10000, 0.05))
	require.NoError(t, second.Run(nil, 50, 20, 10000, 0.05))

	assert.Equal(t, first.LogEvidence(), second.LogEvidence())
	assert.Equal(t, first.InformationGain(), second.InformationGain())
	assert.Equal(t, first.Niterations(), second.Niterations())
	assert.Equal(t, first.PosteriorSample(), second.PosteriorSample())
}

func TestRunConstantLikelihood(t *testing.T) {
	uniform, err := prior.NewUniform([]float64{0}, []float64{1})
	require.NoError(t, err)

	sampler, err := nestgo.New(nestgo.Config{
		Priors:                     []prior.Prior{uniform},
		Likelihood:                 likelihood.Func(func([]float64) float64 { return 0 }),
		InitialNlive:               500,
		MinNlive:                   500,
		InitialEnlargementFraction: 1,
		ShrinkingRate:              0.5,
	}, nestgo.WithSeed(5))
	require.NoError(t, err)

	// A constant surface offers no strictly better point, so the run
	// ends on draw exhaustion; the evidence of a unit likelihood over a
	// unit prior is still recovered.
	require.NoError(t, sampler.Run(nil, 10, 10, 50, 0.05))
	assert.True(t, sampler.PrematureStop())
	assert.InDelta(t, 0, sampler.LogEvidence(), 3*sampler.LogEvidenceError())
}

func TestRunSingleLivePoint(t *testing.T) {
	uniform, err := prior.NewUniform([]float64{-5, -5}, []float64{5, 5})
	require.NoError(t, err)

	sampler, err := nestgo.New(nestgo.Config{
		Priors:                     []prior.Prior{uniform},
		Likelihood:                 likelihood.Func(gaussianLikelihood),
		InitialNlive:               1,
		MinNlive:                   1,
		InitialEnlargementFraction: 2,
		ShrinkingRate:              0.2,
	}, nestgo.WithSeed(29))
	require.NoError(t, err)

	// With one live point the loop degenerates to a random walk; it must
	// still terminate one way or the other.
	err = sampler.Run(nil, 5, 5, 200, 0.5)
	require.NoError(t, err)
	assert.NotEmpty(t, sampler.PosteriorSample())
}

func TestRunTruncation(t *testing.T) {
	sampler := newGaussianSampler(t, 100, 19)

	// A single draw attempt per iteration exhausts quickly on a peaked
	// likelihood; the run must end cleanly with a short posterior. The
	// aborting iteration posts its worst point without being counted in
	// Niterations, hence the extra record.
	require.NoError(t, sampler.Run(nil, 50, 20, 1, 0.0001))
	assert.True(t, sampler.PrematureStop())
	assert.Len(t, sampler.PosteriorSample(), sampler.Niterations()+1+sampler.Nobjects())
}

func TestRunNaNLikelihoodIsFatal(t *testing.T) {
	uniform, err := prior.NewUniform([]float64{0}, []float64{1})
	require.NoError(t, err)

	sampler, err := nestgo.New(nestgo.Config{
		Priors:                     []prior.Prior{uniform},
		Likelihood:                 likelihood.Func(func([]float64) float64 { return math.NaN() }),
		InitialNlive:               10,
		MinNlive:                   10,
		InitialEnlargementFraction: 1,
		ShrinkingRate:              0.5,
	}, nestgo.WithSeed(1))
	require.NoError(t, err)

	err = sampler.Run(nil, 5, 5, 100, 0.05)
	assert.ErrorIs(t, err, nestgo.ErrNumericalPathology)
}

func TestRunMinusInfLikelihoodRegion(t *testing.T) {
	uniform, err := prior.NewUniform([]float64{-5, -5}, []float64{5, 5})
	require.NoError(t, err)

	// Zero likelihood on the left half-plane; the sampler must simply
	// retry until it lands on the right half.
	halfGaussian := func(x []float64) float64 {
		if x[0] < 0 {
			return math.Inf(-1)
		}
		return gaussianLikelihood(x)
	}

	sampler, err := nestgo.New(nestgo.Config{
		Priors:                     []prior.Prior{uniform},
		Likelihood:                 likelihood.Func(halfGaussian),
		InitialNlive:               200,
		MinNlive:                   200,
		InitialEnlargementFraction: 1.5,
		ShrinkingRate:              0.2,
		MaxNclusters:               3,
	}, nestgo.WithSeed(23))
	require.NoError(t, err)

	require.NoError(t, sampler.Run(nil, 100, 20, 10000, 0.05))

	// Half the Gaussian mass over the half box: log(0.5/50... the box
	// half has volume 50 and holds mass 1/2, so log(Z) = log(0.5/100).
	assert.InDelta(t, math.Log(0.5)-math.Log(100), sampler.LogEvidence(), 0.6)
}

func TestRunFerozReducerShrinksPopulation(t *testing.T) {
	uniform, err := prior.NewUniform([]float64{-5, -5}, []float64{5, 5})
	require.NoError(t, err)

	const (
		initialNlive = 200
		minNlive     = 50
	)

	sampler, err := nestgo.New(nestgo.Config{
		Priors:                     []prior.Prior{uniform},
		Likelihood:                 likelihood.Func(gaussianLikelihood),
		InitialNlive:               initialNlive,
		MinNlive:                   minNlive,
		InitialEnlargementFraction: 1.5,
		ShrinkingRate:              0.2,
		MaxNclusters:               3,
	}, nestgo.WithSeed(31))
	require.NoError(t, err)

	feroz, err := reducer.NewFeroz(initialNlive, minNlive, 0.5)
	require.NoError(t, err)

	require.NoError(t, sampler.Run(feroz, 50, 20, 10000, 0.001))

	assert.LessOrEqual(t, sampler.Nobjects(), initialNlive/2)
	assert.GreaterOrEqual(t, sampler.Nobjects(), minNlive)
}

func TestRunMultimodalFindsClusters(t *testing.T) {
	uniform, err := prior.NewUniform([]float64{-5, -5}, []float64{5, 5})
	require.NoError(t, err)

	sampler, err := nestgo.New(nestgo.Config{
		Priors:                     []prior.Prior{uniform},
		Likelihood:                 likelihood.Func(twoBumpsLikelihood),
		InitialNlive:               300,
		MinNlive:                   300,
		InitialEnlargementFraction: 1.5,
		ShrinkingRate:              0.2,
		MaxNclusters:               4,
	}, nestgo.WithSeed(37))
	require.NoError(t, err)

	require.NoError(t, sampler.Run(nil, 100, 25, 10000, 0.01))

	// Two well-separated modes: the live points split into at least two
	// islands once the run has zoomed in.
	assert.GreaterOrEqual(t, sampler.Nclusters(), 2)

	// Each mode carries 2 pi sigma^2 of likelihood volume over the
	// 10 x 10 prior box.
	expected := math.Log(2*2*math.Pi*0.09) - math.Log(100)
	assert.InDelta(t, expected, sampler.LogEvidence(), 0.8)
}

func TestRunTwiceFails(t *testing.T) {
	sampler := newGaussianSampler(t, 50, 3)

	require.NoError(t, sampler.Run(nil, 20, 10, 10000, 0.1))
	assert.ErrorIs(t, sampler.Run(nil, 20, 10, 10000, 0.1), nestgo.ErrAlreadyRun)
}

func TestSamplerMetadata(t *testing.T) {
	sampler := newGaussianSampler(t, 20, 57)

	assert.Equal(t, int64(57), sampler.Seed())
	assert.NotEmpty(t, sampler.RunID())
	assert.Equal(t, 2, sampler.Ndimensions())
	assert.Equal(t, 20, sampler.Nobjects())
}
