package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/nestgo"
	"github.com/hupe1980/nestgo/likelihood"
	"github.com/hupe1980/nestgo/prior"
	"github.com/hupe1980/nestgo/reducer"
	"github.com/hupe1980/nestgo/results"
)

// demoOptions are the knobs shared by all demo problems.
type demoOptions struct {
	seed      int64
	outputDir string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &demoOptions{}

	cmd := &cobra.Command{
		Use:   "nestgo",
		Short: "Nested sampling demo problems",
		Long: `Runs the built-in nested sampling demo problems and writes their
posterior samples, parameter estimates and evidence summaries as plain
ASCII files.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().Int64Var(&opts.seed, "seed", 0, "random seed (0 means wall clock)")
	cmd.PersistentFlags().StringVarP(&opts.outputDir, "output", "o", ".", "directory for the output files")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every 50th iteration")

	cmd.AddCommand(newEggboxCmd(opts))
	cmd.AddCommand(newTwoCirclesCmd(opts))
	cmd.AddCommand(newGaussianCmd(opts))

	return cmd
}

// demoProblem bundles everything a demo run needs.
type demoProblem struct {
	name       string
	priors     []prior.Prior
	likelihood likelihood.Likelihood

	initialNlive               int
	minNlive                   int
	initialEnlargementFraction float64
	shrinkingRate              float64

	minNclusters int
	maxNclusters int

	ninitialIterationsWithoutClustering int
	niterationsWithSameClustering       int
	maxNdrawAttempts                    int
	terminationFactor                   float64
	reducerTolerance                    float64
}

func runDemo(p demoProblem, opts *demoOptions) error {
	var samplerOpts []nestgo.Option
	if opts.seed != 0 {
		samplerOpts = append(samplerOpts, nestgo.WithSeed(opts.seed))
	}
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	samplerOpts = append(samplerOpts, nestgo.WithLogLevel(level))

	sampler, err := nestgo.New(nestgo.Config{
		Priors:                     p.priors,
		Likelihood:                 p.likelihood,
		InitialNlive:               p.initialNlive,
		MinNlive:                   p.minNlive,
		InitialEnlargementFraction: p.initialEnlargementFraction,
		ShrinkingRate:              p.shrinkingRate,
		MinNclusters:               p.minNclusters,
		MaxNclusters:               p.maxNclusters,
	}, samplerOpts...)
	if err != nil {
		return err
	}

	feroz, err := reducer.NewFeroz(p.initialNlive, p.minNlive, p.reducerTolerance)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := sampler.Run(feroz, p.ninitialIterationsWithoutClustering, p.niterationsWithSameClustering, p.maxNdrawAttempts, p.terminationFactor); err != nil {
		return err
	}

	res := results.New(sampler)
	prefix := filepath.Join(opts.outputDir, p.name+"_")

	if err := res.WriteParametersToFiles(prefix + "Parameter"); err != nil {
		return err
	}
	if err := res.WriteLogLikelihoodToFile(prefix + "LikelihoodDistribution.txt"); err != nil {
		return err
	}
	if err := res.WriteEvidenceInformationToFile(prefix + "EvidenceInformation.txt"); err != nil {
		return err
	}
	if err := res.WritePosteriorProbabilityToFile(prefix + "PosteriorDistribution.txt"); err != nil {
		return err
	}
	if err := res.WriteParameterEstimationToFile(prefix + "ParameterEstimation.txt"); err != nil {
		return err
	}

	fmt.Printf("log(Z) = %.6f +/- %.6f\n", sampler.LogEvidence(), sampler.LogEvidenceError())
	fmt.Printf("H = %.6f\n", sampler.InformationGain())
	fmt.Printf("Niterations = %d, Nclusters = %d, Nlive = %d\n", sampler.Niterations(), sampler.Nclusters(), sampler.Nobjects())
	fmt.Printf("Elapsed = %s\n", time.Since(start).Round(time.Millisecond))

	return nil
}
