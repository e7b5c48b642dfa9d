package main

import (
	"math"

	"github.com/spf13/cobra"

	"github.com/hupe1980/nestgo/likelihood"
	"github.com/hupe1980/nestgo/prior"
)

// eggboxLogLikelihood is the classic eggbox surface: a grid of identical
// sharp modes, (2 + cos(x/2) cos(y/2))^5 over [0, 10 pi]^2.
func eggboxLogLikelihood(x []float64) float64 {
	c := 2 + math.Cos(x[0]/2)*math.Cos(x[1]/2)
	return c * c * c * c * c
}

func newEggboxCmd(opts *demoOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "eggbox",
		Short: "2D eggbox likelihood with 18 identical modes",
		RunE: func(cmd *cobra.Command, args []string) error {
			uniform, err := prior.NewUniform(
				[]float64{0, 0},
				[]float64{10 * math.Pi, 10 * math.Pi},
			)
			if err != nil {
				return err
			}

			return runDemo(demoProblem{
				name:       "eggbox",
				priors:     []prior.Prior{uniform},
				likelihood: likelihood.Func(eggboxLogLikelihood),

				initialNlive:               2000,
				minNlive:                   2000,
				initialEnlargementFraction: 1.5,
				shrinkingRate:              0.2,

				minNclusters: 4,
				maxNclusters: 20,

				ninitialIterationsWithoutClustering: 1000,
				niterationsWithSameClustering:       100,
				maxNdrawAttempts:                    10000,
				terminationFactor:                   0.05,
				reducerTolerance:                    0.01,
			}, opts)
		},
	}
}
