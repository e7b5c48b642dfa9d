package results

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/hupe1980/nestgo"
)

// ParameterEstimate summarizes the marginal posterior of one free
// parameter.
type ParameterEstimate struct {
	Mean         float64
	Median       float64
	Mode         float64
	SecondMoment float64
}

// Results post-processes a finished nested sampling run: it derives
// normalized posterior probabilities, marginal parameter estimates, and
// writes plain-ASCII output files.
type Results struct {
	sampler *nestgo.NestedSampler
}

// New wraps a sampler whose Run has completed.
func New(sampler *nestgo.NestedSampler) *Results {
	return &Results{sampler: sampler}
}

// PosteriorProbability applies Bayes' theorem in the log domain to the
// posterior sample and normalizes so the probabilities sum to one. The
// normalization absorbs the small deviation caused by the approximate
// evidence.
func (r *Results) PosteriorProbability() []float64 {
	// Each log weight already holds shell width plus log likelihood.
	logWeights := r.sampler.LogWeightOfPosteriorSample()
	logEvidence := r.sampler.LogEvidence()

	probabilities := make([]float64, len(logWeights))
	var sum float64
	for i := range probabilities {
		probabilities[i] = math.Exp(logWeights[i] - logEvidence)
		sum += probabilities[i]
	}
	for i := range probabilities {
		probabilities[i] /= sum
	}

	return probabilities
}

// ParameterEstimates computes the expectation, median, mode and second
// moment of each parameter's marginal posterior.
func (r *Results) ParameterEstimates() []ParameterEstimate {
	sample := r.sampler.PosteriorSample()
	probabilities := r.PosteriorProbability()
	ndimensions := r.sampler.Ndimensions()

	estimates := make([]ParameterEstimate, ndimensions)

	for dim := 0; dim < ndimensions; dim++ {
		values := make([]float64, len(sample))
		marginal := make([]float64, len(sample))
		for i, point := range sample {
			values[i] = point[dim]
			marginal[i] = probabilities[i]
		}

		// Sort the parameter values and carry the marginal along.
		order := make([]int, len(values))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

		sortedValues := make([]float64, len(values))
		sortedMarginal := make([]float64, len(values))
		for i, idx := range order {
			sortedValues[i] = values[idx]
			sortedMarginal[i] = marginal[idx]
		}

		var mean float64
		for i := range sortedValues {
			mean += sortedValues[i] * sortedMarginal[i]
		}

		var secondMoment float64
		for i := range sortedValues {
			d := sortedValues[i] - mean
			secondMoment += d * d * sortedMarginal[i]
		}

		median := sortedValues[0]
		var total float64
		for i := range sortedValues {
			median = sortedValues[i]
			total += sortedMarginal[i]
			if total >= 0.5 {
				break
			}
		}

		mode := sortedValues[0]
		best := sortedMarginal[0]
		for i := 1; i < len(sortedValues); i++ {
			if sortedMarginal[i] > best {
				best = sortedMarginal[i]
				mode = sortedValues[i]
			}
		}

		estimates[dim] = ParameterEstimate{
			Mean:         mean,
			Median:       median,
			Mode:         mode,
			SecondMoment: secondMoment,
		}
	}

	return estimates
}

// WriteParametersToFiles writes one ASCII file per parameter, named
// <pathPrefix>NNN.txt, containing that parameter's posterior trace as a
// single column.
func (r *Results) WriteParametersToFiles(pathPrefix string) error {
	sample := r.sampler.PosteriorSample()

	for dim := 0; dim < r.sampler.Ndimensions(); dim++ {
		path := fmt.Sprintf("%s%03d.txt", pathPrefix, dim)

		values := make([]float64, len(sample))
		for i, point := range sample {
			values[i] = point[dim]
		}

		if err := writeColumns(path, nil, values); err != nil {
			return err
		}
	}

	return nil
}

// WriteLogLikelihoodToFile writes the posterior log-likelihood trace.
func (r *Results) WriteLogLikelihoodToFile(path string) error {
	header := []string{
		"Posterior sample from nested sampling",
		"log(Likelihood)",
	}
	return writeColumns(path, header, r.sampler.LogLikelihoodOfPosteriorSample())
}

// WritePosteriorProbabilityToFile writes the normalized posterior
// probabilities.
func (r *Results) WritePosteriorProbabilityToFile(path string) error {
	header := []string{
		"Posterior probability distribution from nested sampling",
	}
	return writeColumns(path, header, r.PosteriorProbability())
}

// WriteEvidenceInformationToFile writes the evidence summary: log
// evidence, its error estimate and the information gain.
func (r *Results) WriteEvidenceInformationToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "# Evidence results from nested sampling")
	fmt.Fprintf(w, "# Niterations: %d\n", r.sampler.Niterations())
	fmt.Fprintf(w, "# Computational time: %s\n", r.sampler.ComputationalTime().Round(time.Millisecond))
	fmt.Fprintln(w, "# log(Evidence)    Error of log(Evidence)    Information Gain")
	fmt.Fprintf(w, "%.12e    %.12e    %.12e\n",
		r.sampler.LogEvidence(), r.sampler.LogEvidenceError(), r.sampler.InformationGain())

	return w.Flush()
}

// WriteParameterEstimationToFile writes one row per parameter with its
// mean, median, mode and second moment.
func (r *Results) WriteParameterEstimationToFile(path string) error {
	estimates := r.ParameterEstimates()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "# Parameter estimates from the marginal posterior distributions")
	fmt.Fprintln(w, "# Mean    Median    Mode    Second Moment")
	for _, e := range estimates {
		fmt.Fprintf(w, "%.12e    %.12e    %.12e    %.12e\n", e.Mean, e.Median, e.Mode, e.SecondMoment)
	}

	return w.Flush()
}

func writeColumns(path string, header []string, values []float64) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, line := range header {
		fmt.Fprintf(w, "# %s\n", line)
	}
	for _, v := range values {
		fmt.Fprintf(w, "%.12e\n", v)
	}

	return w.Flush()
}
