package analysis

import "errors"

var (
	// ErrEmptyPopulation indicates an analysis was invoked with no usable records.
	ErrEmptyPopulation = errors.New("empty population")

	// ErrInsufficientData indicates there are too few samples for the requested analysis.
	ErrInsufficientData = errors.New("insufficient data")
)
