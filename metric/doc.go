// Package metric provides pairwise distance functions over parameter
// vectors. The k-means clusterer is polymorphic over the Metric interface;
// Euclidean is the canonical choice.
package metric
