package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolationFixture builds a tight cluster near the origin plus one extreme point.
func isolationFixture() [][]float64 {
	X := make([][]float64, 0, 61)
	for i := 0; i < 60; i++ {
		X = append(X, []float64{
			float64(i%5)*0.1 - 0.2,
			float64(i%7)*0.1 - 0.3,
		})
	}
	X = append(X, []float64{10, 10})
	return X
}

// TestIsolationForest_SeparatesOutlier tests that an extreme point scores
// above every inlier
func TestIsolationForest_SeparatesOutlier(t *testing.T) {
	X := isolationFixture()

	forest := NewIsolationForest(42)
	require.NoError(t, forest.Fit(X))

	scores, err := forest.Scores(X)
	require.NoError(t, err)
	require.Len(t, scores, len(X))

	outlierScore := scores[len(scores)-1]
	for i, score := range scores[:len(scores)-1] {
		assert.Greater(t, outlierScore, score, "inlier %d should score below the outlier", i)
		assert.Greater(t, score, 0.0)
		assert.Less(t, score, 1.0)
	}
	assert.Greater(t, outlierScore, 0.6, "isolated points score well above 0.5")
}

// TestIsolationForest_Deterministic tests that one seed always yields the same scores
func TestIsolationForest_Deterministic(t *testing.T) {
	X := isolationFixture()

	first := NewIsolationForest(7)
	require.NoError(t, first.Fit(X))
	firstScores, err := first.Scores(X)
	require.NoError(t, err)

	second := NewIsolationForest(7)
	require.NoError(t, second.Fit(X))
	secondScores, err := second.Scores(X)
	require.NoError(t, err)

	assert.Equal(t, firstScores, secondScores)
}

// TestIsolationForest_Errors tests fit and score validation
func TestIsolationForest_Errors(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		err := NewIsolationForest(42).Fit(nil)
		assert.ErrorIs(t, err, ErrEmptyPopulation)
	})

	t.Run("single sample", func(t *testing.T) {
		err := NewIsolationForest(42).Fit([][]float64{{1, 2}})
		assert.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("ragged rows", func(t *testing.T) {
		err := NewIsolationForest(42).Fit([][]float64{{1, 2}, {3}})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "expected 2")
	})

	t.Run("score before fit", func(t *testing.T) {
		_, err := NewIsolationForest(42).Score([]float64{1, 2})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not fitted")
	})

	t.Run("score with wrong width", func(t *testing.T) {
		forest := NewIsolationForest(42)
		require.NoError(t, forest.Fit([][]float64{{1, 2}, {3, 4}, {5, 6}}))
		_, err := forest.Score([]float64{1})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "expected 2 features, got 1")
	})
}

// TestAveragePathLength tests the expected path length formula
func TestAveragePathLength(t *testing.T) {
	assert.Equal(t, 0.0, averagePathLength(0))
	assert.Equal(t, 0.0, averagePathLength(1))
	assert.Equal(t, 1.0, averagePathLength(2))

	// c(256) = 2*(ln(255)+gamma) - 2*255/256
	assert.InDelta(t, 10.2445, averagePathLength(256), 0.001)

	// Grows with subsample size
	assert.Greater(t, averagePathLength(512), averagePathLength(256))
}
