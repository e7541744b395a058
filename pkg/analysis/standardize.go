package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Standardization holds the per-feature centering and scaling parameters
// fitted by Standardize.
type Standardization struct {
	Means  []float64 `json:"means"`
	Scales []float64 `json:"scales"`
}

// Standardize centers each column to zero mean and scales it to unit variance.
// Columns with zero variance keep a scale of 1, so they standardize to zero
// instead of dividing by zero. Variance is computed over the full population,
// without Bessel's correction.
func Standardize(X [][]float64) ([][]float64, *Standardization, error) {
	if len(X) == 0 {
		return nil, nil, fmt.Errorf("standardize: %w", ErrEmptyPopulation)
	}

	numFeatures := len(X[0])
	for i, row := range X {
		if len(row) != numFeatures {
			return nil, nil, fmt.Errorf("standardize: row %d has %d features, expected %d", i, len(row), numFeatures)
		}
	}

	params := &Standardization{
		Means:  make([]float64, numFeatures),
		Scales: make([]float64, numFeatures),
	}

	column := make([]float64, len(X))
	for j := 0; j < numFeatures; j++ {
		for i, row := range X {
			column[i] = row[j]
		}
		mean := stat.Mean(column, nil)

		sumSq := 0.0
		for _, v := range column {
			d := v - mean
			sumSq += d * d
		}
		scale := math.Sqrt(sumSq / float64(len(column)))
		if scale == 0 {
			scale = 1
		}

		params.Means[j] = mean
		params.Scales[j] = scale
	}

	scaled, err := params.Apply(X)
	if err != nil {
		return nil, nil, err
	}
	return scaled, params, nil
}

// Apply transforms rows using previously fitted parameters.
func (s *Standardization) Apply(X [][]float64) ([][]float64, error) {
	scaled := make([][]float64, len(X))
	for i, row := range X {
		if len(row) != len(s.Means) {
			return nil, fmt.Errorf("standardize: expected %d features, got %d", len(s.Means), len(row))
		}
		scaled[i] = make([]float64, len(row))
		for j, v := range row {
			scaled[i][j] = (v - s.Means[j]) / s.Scales[j]
		}
	}
	return scaled, nil
}
