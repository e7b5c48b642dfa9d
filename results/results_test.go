package results

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/nestgo"
	"github.com/hupe1980/nestgo/likelihood"
	"github.com/hupe1980/nestgo/prior"
)

func runGaussian(t *testing.T) *nestgo.NestedSampler {
	t.Helper()

	uniform, err := prior.NewUniform([]float64{-5, -5}, []float64{5, 5})
	require.NoError(t, err)

	sampler, err := nestgo.New(nestgo.Config{
		Priors: []prior.Prior{uniform},
		Likelihood: likelihood.Func(func(x []float64) float64 {
			return -0.5*(x[0]*x[0]+x[1]*x[1]) - math.Log(2*math.Pi)
		}),
		InitialNlive:               150,
		MinNlive:                   150,
		InitialEnlargementFraction: 1.5,
		ShrinkingRate:              0.2,
		MaxNclusters:               3,
	}, nestgo.WithSeed(101))
	require.NoError(t, err)

	require.NoError(t, sampler.Run(nil, 50, 25, 10000, 0.05))

	return sampler
}

func TestPosteriorProbabilitySumsToOne(t *testing.T) {
	r := New(runGaussian(t))

	probabilities := r.PosteriorProbability()
	require.NotEmpty(t, probabilities)

	var sum float64
	for _, p := range probabilities {
		assert.GreaterOrEqual(t, p, 0.0)
		sum += p
	}
	assert.InDelta(t, 1, sum, 1e-12)
}

func TestParameterEstimates(t *testing.T) {
	r := New(runGaussian(t))

	estimates := r.ParameterEstimates()
	require.Len(t, estimates, 2)

	// The likelihood is centered at the origin, so every marginal
	// statistic should sit near zero with unit-ish spread.
	for _, e := range estimates {
		assert.InDelta(t, 0, e.Mean, 0.3)
		assert.InDelta(t, 0, e.Median, 0.4)
		assert.InDelta(t, 1, e.SecondMoment, 0.5)
	}
}

func TestWriteFiles(t *testing.T) {
	r := New(runGaussian(t))
	dir := t.TempDir()

	require.NoError(t, r.WriteParametersToFiles(filepath.Join(dir, "parameter")))
	require.NoError(t, r.WriteLogLikelihoodToFile(filepath.Join(dir, "likelihood.txt")))
	require.NoError(t, r.WritePosteriorProbabilityToFile(filepath.Join(dir, "posterior.txt")))
	require.NoError(t, r.WriteEvidenceInformationToFile(filepath.Join(dir, "evidence.txt")))
	require.NoError(t, r.WriteParameterEstimationToFile(filepath.Join(dir, "estimates.txt")))

	for _, name := range []string{"parameter000.txt", "parameter001.txt"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	}

	evidence, err := os.ReadFile(filepath.Join(dir, "evidence.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(evidence), "# Evidence results"))

	likelihoodTrace, err := os.ReadFile(filepath.Join(dir, "likelihood.txt"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(likelihoodTrace)), "\n")
	var rows int
	for _, line := range lines {
		if !strings.HasPrefix(line, "#") {
			rows++
		}
	}
	assert.Equal(t, len(r.PosteriorProbability()), rows)
}
