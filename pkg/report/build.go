package report

import (
	"errors"
	"fmt"
	"log"

	"github.com/surgiflow/surgiflow-go/pkg/analysis"
	"github.com/surgiflow/surgiflow-go/pkg/dataset"
	"github.com/surgiflow/surgiflow-go/pkg/models"
)

// BuildResults runs every analysis engine over the dataset and bundles the
// outputs into a single results record. Engines that need more data than the
// dataset carries are skipped with a warning; any other engine failure aborts
// the run. RunID and GeneratedAt are left for SaveResults to stamp.
func BuildResults(ds *dataset.Dataset, numClusters int, seed int64) (*models.AnalysisResults, error) {
	stats, err := CalculateProcedureStats(ds.Procedures)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize procedures: %w", err)
	}

	results := &models.AnalysisResults{
		Statistics:    stats,
		DataQuality:   ValidateDataQuality(ds.Procedures, ds.ToolUsage),
		PowerAnalysis: analysis.PerformPowerAnalysis(),
	}

	correlations, err := analysis.AnalyzeToolCorrelations(ds)
	if err != nil {
		if !skippable(err) {
			return nil, fmt.Errorf("failed to analyze tool correlations: %w", err)
		}
		log.Printf("Skipping correlation analysis: %v", err)
	} else {
		results.ToolCorrelations = correlations
	}

	outliers, err := analysis.DetectEfficiencyOutliers(ds, seed)
	if err != nil {
		if !skippable(err) {
			return nil, fmt.Errorf("failed to detect efficiency outliers: %w", err)
		}
		log.Printf("Skipping outlier detection: %v", err)
	} else {
		results.OutlierAnalysis = outliers
	}

	phases, err := analysis.DetectSurgicalPhases(ds, numClusters, seed)
	if err != nil {
		if !skippable(err) {
			return nil, fmt.Errorf("failed to detect surgical phases: %w", err)
		}
		log.Printf("Skipping phase detection: %v", err)
	} else {
		results.PhaseAnalysis = phases
	}

	patterns, err := analysis.AnalyzeProcedureTypePatterns(ds)
	if err != nil {
		if !skippable(err) {
			return nil, fmt.Errorf("failed to analyze procedure type patterns: %w", err)
		}
		log.Printf("Skipping procedure type patterns: %v", err)
	} else {
		results.TypePatterns = patterns
	}

	return results, nil
}

// skippable reports whether an engine failed only because the dataset is too
// small for it, which should not fail the whole run.
func skippable(err error) bool {
	return errors.Is(err, analysis.ErrInsufficientData) || errors.Is(err, analysis.ErrEmptyPopulation)
}
