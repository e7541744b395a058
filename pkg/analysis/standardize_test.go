package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStandardize_KnownValues tests centering and scaling against hand-computed values
func TestStandardize_KnownValues(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}}

	scaled, params, err := Standardize(X)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, params.Means[0], 1e-12)
	// Population standard deviation of {1,2,3} is sqrt(2/3)
	assert.InDelta(t, 0.816496580927726, params.Scales[0], 1e-12)

	assert.InDelta(t, -1.224744871391589, scaled[0][0], 1e-12)
	assert.InDelta(t, 0.0, scaled[1][0], 1e-12)
	assert.InDelta(t, 1.224744871391589, scaled[2][0], 1e-12)
}

// TestStandardize_ConstantColumn tests that zero-variance columns scale to zero
func TestStandardize_ConstantColumn(t *testing.T) {
	X := [][]float64{
		{5, 1},
		{5, 2},
		{5, 3},
	}

	scaled, params, err := Standardize(X)
	require.NoError(t, err)

	assert.Equal(t, 1.0, params.Scales[0], "constant column keeps scale 1")
	for _, row := range scaled {
		assert.Equal(t, 0.0, row[0])
	}

	// The varying column still standardizes normally
	assert.InDelta(t, -1.224744871391589, scaled[0][1], 1e-12)
}

// TestStandardize_Errors tests input validation
func TestStandardize_Errors(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, _, err := Standardize(nil)
		assert.ErrorIs(t, err, ErrEmptyPopulation)
	})

	t.Run("ragged rows", func(t *testing.T) {
		_, _, err := Standardize([][]float64{{1, 2}, {3}})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "expected 2")
	})
}

// TestStandardization_Apply tests reusing fitted parameters on new rows
func TestStandardization_Apply(t *testing.T) {
	X := [][]float64{{0, 10}, {2, 20}, {4, 30}}
	_, params, err := Standardize(X)
	require.NoError(t, err)

	scaled, err := params.Apply([][]float64{{2, 20}})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, scaled[0][0], 1e-12)
	assert.InDelta(t, 0.0, scaled[0][1], 1e-12)

	_, err = params.Apply([][]float64{{1, 2, 3}})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2 features, got 3")
}
