package main

import (
	"math"

	"github.com/spf13/cobra"

	"github.com/hupe1980/nestgo/likelihood"
	"github.com/hupe1980/nestgo/prior"
)

func newGaussianCmd(opts *demoOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "gaussian",
		Short: "Unimodal 2D Gaussian with known evidence",
		Long: `A normalized 2D Gaussian over a [-5, 5]^2 uniform prior. The
analytical log evidence is -log(100), which makes this problem a quick
sanity check of the whole pipeline.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			uniform, err := prior.NewUniform(
				[]float64{-5, -5},
				[]float64{5, 5},
			)
			if err != nil {
				return err
			}

			gaussian := func(x []float64) float64 {
				return -0.5*(x[0]*x[0]+x[1]*x[1]) - math.Log(2*math.Pi)
			}

			return runDemo(demoProblem{
				name:       "gaussian",
				priors:     []prior.Prior{uniform},
				likelihood: likelihood.Func(gaussian),

				initialNlive:               500,
				minNlive:                   500,
				initialEnlargementFraction: 1.5,
				shrinkingRate:              0.2,

				minNclusters: 1,
				maxNclusters: 3,

				ninitialIterationsWithoutClustering: 200,
				niterationsWithSameClustering:       50,
				maxNdrawAttempts:                    10000,
				terminationFactor:                   0.01,
				reducerTolerance:                    0.05,
			}, opts)
		},
	}
}
