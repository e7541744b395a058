package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/surgiflow/surgiflow-go/pkg/dataset"
	"github.com/surgiflow/surgiflow-go/pkg/models"
)

// minReportableCorrelation filters out pairs too weak to be meaningful.
const minReportableCorrelation = 0.1

// Outcome and tool feature column names used by the correlation engine.
const (
	colDuration      = "duration_minutes"
	colEfficiency    = "efficiency_score"
	colBloodLoss     = "blood_loss_ml"
	colComplications = "complications"

	colUsageTime   = "usage_time_minutes"
	colMaxForce    = "max_force_applied"
	colTemperature = "avg_temperature_c"
	colRating      = "efficiency_rating"
)

// correlationPhrases maps feature_outcome keys to domain-specific wording.
// Pairs without an entry fall back to a generic phrase.
var correlationPhrases = map[string]string{
	"max_force_applied_duration_minutes": "relationship between maximum force and procedure duration",
	"efficiency_rating_efficiency_score": "relationship between tool efficiency and overall procedure efficiency",
	"usage_time_minutes_blood_loss_ml":   "relationship between tool usage time and blood loss",
}

// namedColumn pairs a column name with its extracted values.
type namedColumn struct {
	name   string
	values []float64
}

// AnalyzeToolCorrelations computes Pearson correlations between aggregated
// tool metrics and procedure outcomes. Only pairs with |r| above the
// reporting floor are returned; pairs with a constant column are skipped
// and surfaced in the report instead of producing NaN.
func AnalyzeToolCorrelations(ds *dataset.Dataset) (*models.CorrelationReport, error) {
	merged := mergeProcedureToolMetrics(ds)
	if len(merged) == 0 {
		return nil, fmt.Errorf("tool correlation analysis: %w", ErrEmptyPopulation)
	}
	if len(merged) < 3 {
		return nil, fmt.Errorf("tool correlation analysis needs at least 3 procedures with tool data, got %d: %w",
			len(merged), ErrInsufficientData)
	}

	n := len(merged)
	outcomes := []namedColumn{
		{colDuration, extract(merged, func(r procedureToolRow) float64 { return r.Procedure.DurationMinutes })},
		{colEfficiency, extract(merged, func(r procedureToolRow) float64 { return r.Procedure.EfficiencyScore })},
		{colBloodLoss, extract(merged, func(r procedureToolRow) float64 { return r.Procedure.BloodLossML })},
		{colComplications, extract(merged, func(r procedureToolRow) float64 { return boolToFloat(r.Procedure.Complications) })},
	}
	features := []namedColumn{
		{colUsageTime, extract(merged, func(r procedureToolRow) float64 { return r.UsageTimeTotal })},
		{colMaxForce, extract(merged, func(r procedureToolRow) float64 { return r.MaxForceMean })},
		{colTemperature, extract(merged, func(r procedureToolRow) float64 { return r.TemperatureMean })},
		{colRating, extract(merged, func(r procedureToolRow) float64 { return r.RatingMean })},
	}

	report := &models.CorrelationReport{SampleSize: n}
	for _, outcome := range outcomes {
		for _, feature := range features {
			if constantCol := firstConstant(feature, outcome); constantCol != "" {
				report.Skipped = append(report.Skipped, models.SkippedPair{
					Feature: feature.name,
					Outcome: outcome.name,
					Reason:  fmt.Sprintf("zero variance in %s", constantCol),
				})
				continue
			}

			r := stat.Correlation(feature.values, outcome.values, nil)
			if math.Abs(r) <= minReportableCorrelation {
				continue
			}

			strength := strengthOf(r)
			direction := directionOf(r)
			report.Correlations = append(report.Correlations, models.Correlation{
				Feature:        feature.name,
				Outcome:        outcome.name,
				Coefficient:    r,
				PValue:         pearsonPValue(r, n),
				SampleSize:     n,
				Strength:       strength,
				Direction:      direction,
				Interpretation: interpret(strength, direction, feature.name, outcome.name),
			})
		}
	}
	return report, nil
}

// pearsonPValue computes the two-sided p-value for a Pearson correlation
// via the t distribution with n-2 degrees of freedom.
func pearsonPValue(r float64, n int) float64 {
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.CDF(-math.Abs(t))
}

func strengthOf(r float64) models.CorrelationStrength {
	switch abs := math.Abs(r); {
	case abs > 0.5:
		return models.CorrelationStrong
	case abs > 0.3:
		return models.CorrelationModerate
	default:
		return models.CorrelationWeak
	}
}

func directionOf(r float64) models.CorrelationDirection {
	if r > 0 {
		return models.CorrelationPositive
	}
	return models.CorrelationNegative
}

// interpret builds the human-readable summary for a correlation pair.
func interpret(strength models.CorrelationStrength, direction models.CorrelationDirection, feature, outcome string) string {
	phrase, ok := correlationPhrases[feature+"_"+outcome]
	if !ok {
		phrase = "correlation"
	}
	return fmt.Sprintf("%s %s %s", strength, direction, phrase)
}

// firstConstant returns the name of the first zero-variance column, or "".
func firstConstant(cols ...namedColumn) string {
	for _, col := range cols {
		if isConstant(col.values) {
			return col.name
		}
	}
	return ""
}

func isConstant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func extract(rows []procedureToolRow, get func(procedureToolRow) float64) []float64 {
	values := make([]float64, len(rows))
	for i, row := range rows {
		values[i] = get(row)
	}
	return values
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
