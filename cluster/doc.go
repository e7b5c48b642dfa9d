// Package cluster partitions the live sample into groups for the
// multi-ellipsoidal sampler. The canonical implementation is k-means with
// k-means++ seeding, Lloyd refinement over a pluggable metric and a
// BIC-like criterion for picking the number of clusters.
package cluster
