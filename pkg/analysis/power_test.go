package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformPowerAnalysis(t *testing.T) {
	estimates := PerformPowerAnalysis()
	require.Len(t, estimates, 3)

	assert.Equal(t, 0.2, estimates[0].EffectSize)
	assert.Equal(t, 400, estimates[0].RequiredSampleSize)
	assert.Equal(t, "Requires 400 procedures to detect 0.2 effect size with 80% power", estimates[0].Interpretation)

	assert.Equal(t, 0.5, estimates[1].EffectSize)
	assert.Equal(t, 64, estimates[1].RequiredSampleSize)
	assert.Equal(t, "Requires 64 procedures to detect 0.5 effect size with 80% power", estimates[1].Interpretation)

	// 16/(0.8*0.8) lands just under 25 in floating point; rounding
	// keeps the estimate at 25 instead of truncating to 24.
	assert.Equal(t, 0.8, estimates[2].EffectSize)
	assert.Equal(t, 25, estimates[2].RequiredSampleSize)
	assert.Equal(t, "Requires 25 procedures to detect 0.8 effect size with 80% power", estimates[2].Interpretation)
}
