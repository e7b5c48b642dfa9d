package main

import (
	"math"

	"github.com/spf13/cobra"

	"github.com/hupe1980/nestgo/likelihood"
	"github.com/hupe1980/nestgo/prior"
)

// twoCirclesLogLikelihood concentrates the likelihood on two
// well-separated rings of radius 1.5 centered at (-3.5, 0) and (3.5, 0).
func twoCirclesLogLikelihood(x []float64) float64 {
	const (
		radius = 1.5
		sigma  = 0.1
	)

	r1 := math.Hypot(x[0]+3.5, x[1]) - radius
	r2 := math.Hypot(x[0]-3.5, x[1]) - radius

	a := -r1 * r1 / (2 * sigma * sigma)
	b := -r2 * r2 / (2 * sigma * sigma)
	if a < b {
		a, b = b, a
	}
	return a + math.Log1p(math.Exp(b-a))
}

func newTwoCirclesCmd(opts *demoOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "twocircles",
		Short: "Two well-separated 2D ring likelihoods",
		RunE: func(cmd *cobra.Command, args []string) error {
			uniform, err := prior.NewUniform(
				[]float64{-7, -6},
				[]float64{7, 6},
			)
			if err != nil {
				return err
			}

			return runDemo(demoProblem{
				name:       "twocircles",
				priors:     []prior.Prior{uniform},
				likelihood: likelihood.Func(twoCirclesLogLikelihood),

				initialNlive:               10000,
				minNlive:                   500,
				initialEnlargementFraction: 3.0,
				shrinkingRate:              0.3,

				minNclusters: 1,
				maxNclusters: 5,

				ninitialIterationsWithoutClustering: 500,
				niterationsWithSameClustering:       50,
				maxNdrawAttempts:                    10000,
				terminationFactor:                   0.001,
				reducerTolerance:                    0.1,
			}, opts)
		},
	}
}
