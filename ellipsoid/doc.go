// Package ellipsoid implements the bounding ellipsoids used for
// constrained prior sampling. Each ellipsoid wraps one cluster of live
// points: its centroid, unbiased sample covariance, eigen-decomposition,
// enlargement factor and enclosing hyper-volume. It supports containment
// tests and uniform draws from its interior.
package ellipsoid
