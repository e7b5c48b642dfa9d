// Package prior provides the prior distributions consumed by the nested
// sampler. A prior governs a contiguous block of coordinates; the sampler
// concatenates blocks of several priors to span the full parameter space.
package prior
