// Package nestgo implements Bayesian evidence computation and posterior
// sampling via nested sampling with multi-ellipsoidal constrained prior
// sampling.
//
// The user supplies a log-likelihood over a D-dimensional parameter
// space, one or more priors partitioning the D coordinates, and
// termination and clustering controls; a run returns the log of the
// marginal likelihood (the evidence), an estimate of its statistical
// error, the information gain, and a weighted sample of the posterior.
// Strongly multimodal likelihood surfaces are handled by clustering the
// live points and bounding each cluster with an enlarged ellipsoid, then
// drawing uniformly from the union of ellipsoids.
//
// # Quick Start
//
//	uniform, _ := prior.NewUniform([]float64{0, 0}, []float64{1, 1})
//
//	sampler, _ := nestgo.New(nestgo.Config{
//	    Priors: []prior.Prior{uniform},
//	    Likelihood: likelihood.Func(func(x []float64) float64 {
//	        return -0.5 * (x[0]*x[0] + x[1]*x[1])
//	    }),
//	    InitialNlive:               500,
//	    MinNlive:                   500,
//	    InitialEnlargementFraction: 1.5,
//	    ShrinkingRate:              0.2,
//	}, nestgo.WithSeed(42))
//
//	if err := sampler.Run(nil, 100, 20, 5000, 0.05); err != nil {
//	    panic(err)
//	}
//	fmt.Println(sampler.LogEvidence(), sampler.LogEvidenceError())
//
// # Capabilities
//
// Prior, Likelihood, Metric, Clusterer and Reducer are small interfaces
// consumed by the sampler; swap in your own implementations to change the
// behavior of a run. The engine is single-threaded by contract: Run is a
// blocking call and all randomness flows through one private generator,
// so a fixed seed reproduces a run bit for bit.
package nestgo
