// Package reducer adapts the live-point population size as a nested
// sampling run progresses. Late in a run most of the evidence has been
// gathered and a smaller population suffices, so shedding live points
// buys speed without hurting the estimate.
package reducer
