package report

import (
	"strings"
	"testing"

	"github.com/surgiflow/surgiflow-go/pkg/dataset"
)

func TestBuildResults(t *testing.T) {
	ds, err := dataset.NewGenerator(42).Generate(60)
	if err != nil {
		t.Fatalf("Failed to generate dataset: %v", err)
	}

	results, err := BuildResults(ds, 4, 42)
	if err != nil {
		t.Fatalf("Failed to build results: %v", err)
	}

	if results.Statistics == nil || results.Statistics.TotalProcedures != 60 {
		t.Errorf("Expected statistics for 60 procedures, got %+v", results.Statistics)
	}
	if results.DataQuality == nil || results.DataQuality.ProcedureRecords != 60 {
		t.Errorf("Expected data quality over 60 procedures, got %+v", results.DataQuality)
	}
	if results.ToolCorrelations == nil {
		t.Error("Expected tool correlations to be present")
	}
	if results.OutlierAnalysis == nil {
		t.Error("Expected outlier analysis to be present")
	} else if results.OutlierAnalysis.TotalProcedures != 60 {
		t.Errorf("Expected 60 procedures in outlier analysis, got %d", results.OutlierAnalysis.TotalProcedures)
	}
	if results.PhaseAnalysis == nil {
		t.Error("Expected phase analysis to be present")
	} else if len(results.PhaseAnalysis.Phases) != 4 {
		t.Errorf("Expected 4 phases, got %d", len(results.PhaseAnalysis.Phases))
	}
	if len(results.TypePatterns) == 0 {
		t.Error("Expected at least one procedure type pattern")
	}
	if len(results.PowerAnalysis) != 3 {
		t.Errorf("Expected 3 power estimates, got %d", len(results.PowerAnalysis))
	}

	// SaveResults owns the run metadata
	if results.RunID != "" {
		t.Errorf("Expected empty run ID, got %q", results.RunID)
	}
	if !results.GeneratedAt.IsZero() {
		t.Errorf("Expected zero timestamp, got %v", results.GeneratedAt)
	}
}

func TestBuildResultsSkipsPhasesWithoutTelemetry(t *testing.T) {
	ds, err := dataset.NewGenerator(42).Generate(60)
	if err != nil {
		t.Fatalf("Failed to generate dataset: %v", err)
	}
	ds.SensorSamples = nil

	results, err := BuildResults(ds, 4, 42)
	if err != nil {
		t.Fatalf("Failed to build results: %v", err)
	}
	if results.PhaseAnalysis != nil {
		t.Error("Expected phase analysis to be skipped without telemetry")
	}
	if results.Statistics == nil || results.OutlierAnalysis == nil {
		t.Error("Expected remaining sections to survive the skipped engine")
	}
}

func TestBuildResultsEmptyDataset(t *testing.T) {
	_, err := BuildResults(&dataset.Dataset{}, 4, 42)
	if err == nil {
		t.Fatal("Expected error for empty dataset")
	}
	if !strings.Contains(err.Error(), "failed to summarize procedures") {
		t.Errorf("Expected summarize error, got: %v", err)
	}
}
