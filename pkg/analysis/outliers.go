package analysis

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/surgiflow/surgiflow-go/pkg/dataset"
	"github.com/surgiflow/surgiflow-go/pkg/models"
)

// outlierContamination is the share of procedures flagged as outliers.
const outlierContamination = 0.1

// Thresholds for attributing likely causes to an outlier procedure.
const (
	causeDurationMinutes   = 200
	causeEfficiencyScore   = 60
	causeBloodLossML       = 300
	causeInstrumentChanges = 6
)

// DetectEfficiencyOutliers flags procedures with unusual efficiency patterns.
// Procedures are merged with their tool aggregates, standardized, and scored
// by an isolation forest; the top contamination share by score is flagged.
func DetectEfficiencyOutliers(ds *dataset.Dataset, seed int64) (*models.OutlierReport, error) {
	merged := mergeProcedureToolMetrics(ds)
	if len(merged) == 0 {
		return nil, fmt.Errorf("outlier detection: %w", ErrEmptyPopulation)
	}
	if len(merged) < 2 {
		return nil, fmt.Errorf("outlier detection needs at least 2 procedures with tool data, got %d: %w",
			len(merged), ErrInsufficientData)
	}

	X := make([][]float64, len(merged))
	for i, row := range merged {
		X[i] = []float64{
			row.Procedure.DurationMinutes,
			row.Procedure.EfficiencyScore,
			row.UsageTimeTotal,
			row.RatingMean,
			row.Procedure.BloodLossML,
			float64(row.Procedure.InstrumentChanges),
		}
	}

	scaled, _, err := Standardize(X)
	if err != nil {
		return nil, err
	}

	forest := NewIsolationForest(seed)
	if err := forest.Fit(scaled); err != nil {
		return nil, err
	}
	scores, err := forest.Scores(scaled)
	if err != nil {
		return nil, err
	}

	threshold := scoreThreshold(scores)
	report := &models.OutlierReport{
		TotalProcedures: len(merged),
		ScoreThreshold:  threshold,
	}
	for i, row := range merged {
		if scores[i] <= threshold {
			continue
		}
		report.Outliers = append(report.Outliers, models.OutlierProcedure{
			ProcedureID:       row.Procedure.ProcedureID,
			ProcedureType:     row.Procedure.ProcedureType,
			DurationMinutes:   row.Procedure.DurationMinutes,
			EfficiencyScore:   row.Procedure.EfficiencyScore,
			BloodLossML:       row.Procedure.BloodLossML,
			InstrumentChanges: row.Procedure.InstrumentChanges,
			AnomalyScore:      scores[i],
			LikelyCauses:      likelyCauses(row.Procedure),
		})
	}
	report.TotalOutliers = len(report.Outliers)
	report.OutlierRate = float64(report.TotalOutliers) / float64(report.TotalProcedures)
	return report, nil
}

// scoreThreshold returns the empirical quantile above which scores are
// considered anomalous.
func scoreThreshold(scores []float64) float64 {
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	return stat.Quantile(1-outlierContamination, stat.Empirical, sorted, nil)
}

// likelyCauses attributes plausible reasons to an outlier procedure.
// Causes accumulate as metrics worsen; a procedure with no attributable
// metric is labeled a complex case.
func likelyCauses(p models.Procedure) []string {
	var causes []string

	if p.DurationMinutes > causeDurationMinutes {
		causes = append(causes, "Extended procedure duration")
	}
	if p.EfficiencyScore < causeEfficiencyScore {
		causes = append(causes, "Low efficiency score")
	}
	if p.BloodLossML > causeBloodLossML {
		causes = append(causes, "High blood loss")
	}
	if p.InstrumentChanges > causeInstrumentChanges {
		causes = append(causes, "Frequent instrument changes")
	}

	if len(causes) == 0 {
		return []string{"Complex case factors"}
	}
	return causes
}
