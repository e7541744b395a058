package analysis

import (
	"fmt"
	"math"

	"github.com/surgiflow/surgiflow-go/pkg/models"
)

// powerEffectSizes are the Cohen's d effect sizes evaluated for trial planning.
var powerEffectSizes = []float64{0.2, 0.5, 0.8}

// PerformPowerAnalysis estimates the sample size required to detect small,
// medium and large effects in a two-sample comparison at 80% power, using
// the n = 16/d^2 approximation.
func PerformPowerAnalysis() []models.PowerEstimate {
	estimates := make([]models.PowerEstimate, 0, len(powerEffectSizes))
	for _, effectSize := range powerEffectSizes {
		required := int(math.Round(16 / (effectSize * effectSize)))
		estimates = append(estimates, models.PowerEstimate{
			EffectSize:         effectSize,
			RequiredSampleSize: required,
			Interpretation: fmt.Sprintf("Requires %d procedures to detect %v effect size with 80%% power",
				required, effectSize),
		})
	}
	return estimates
}
