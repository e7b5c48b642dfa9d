// Package results turns a finished nested sampling run into posterior
// probabilities, marginal parameter estimates and plain-ASCII output
// files: one column file per parameter trace and #-commented single-file
// summaries.
package results
