package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/surgiflow/surgiflow-go/pkg/models"
)

func reportFixture() *models.AnalysisResults {
	return &models.AnalysisResults{
		RunID:       "run-123",
		GeneratedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Statistics: &models.ProcedureStats{
			TotalProcedures:    500,
			AvgDurationMinutes: 156.78,
			AvgEfficiencyScore: 80.12,
			ComplicationRate:   0.08,
		},
		ToolCorrelations: &models.CorrelationReport{
			Correlations: []models.Correlation{
				{Feature: "usage_time_minutes", Outcome: "duration_minutes", Coefficient: 0.41, Interpretation: "moderate positive relationship between tool usage time and duration"},
				{Feature: "max_force_applied", Outcome: "duration_minutes", Coefficient: 0.22, Interpretation: "weak positive correlation"},
				{Feature: "avg_temperature_c", Outcome: "duration_minutes", Coefficient: -0.15, Interpretation: "weak negative correlation"},
				{Feature: "efficiency_rating", Outcome: "efficiency_score", Coefficient: 0.33, Interpretation: "moderate positive correlation"},
				{Feature: "usage_time_minutes", Outcome: "blood_loss_ml", Coefficient: 0.87, Interpretation: "strong positive relationship between tool usage time and blood loss"},
				{Feature: "max_force_applied", Outcome: "complications", Coefficient: 0.12, Interpretation: "weak positive correlation"},
			},
			SampleSize: 500,
		},
		OutlierAnalysis: &models.OutlierReport{
			TotalOutliers:   50,
			TotalProcedures: 500,
			OutlierRate:     0.1,
		},
		PhaseAnalysis: &models.PhaseReport{
			SilhouetteScore: 0.412,
			Phases: []models.PhaseSummary{
				{Phase: 0, PhaseName: "Setup/Preparation", AvgDurationMinutes: 12.4},
				{Phase: 1, PhaseName: "Active Dissection", AvgDurationMinutes: 48.9},
			},
		},
		DataQuality: &models.DataQualityReport{
			HasIssues:        false,
			ProcedureRecords: 500,
			ToolRecords:      2491,
		},
	}
}

func TestExportMarkdownReport(t *testing.T) {
	reportsDir := t.TempDir()

	rendered, err := ExportMarkdownReport(reportFixture(), reportsDir, ReportFile)
	if err != nil {
		t.Fatalf("Failed to export report: %v", err)
	}

	written, err := os.ReadFile(filepath.Join(reportsDir, ReportFile))
	if err != nil {
		t.Fatalf("Expected report file to exist: %v", err)
	}
	if string(written) != rendered {
		t.Error("Expected written report to match the returned text")
	}

	for _, want := range []string{
		"# Surgical Workflow Analysis Report",
		"Generated on: 2026-03-14 09:30:00",
		"This report summarizes insights from the analysis of 500 surgical procedures.",
		"- **Total Procedures Analyzed**: 500",
		"- **Average Procedure Duration**: 156.8 minutes",
		"- **Average Efficiency Score**: 80.1%",
		"- **Complication Rate**: 8.0%",
		"### Tool Performance Correlations",
		"- strong positive relationship between tool usage time and blood loss (r = 0.870)",
		"- **Outliers Identified**: 50",
		"- **Outlier Rate**: 10.0%",
		"- **Phase Detection Quality**: Silhouette Score = 0.412",
		"- **Setup/Preparation**: 12.4 minutes average",
		"- **Active Dissection**: 48.9 minutes average",
		"1. **Tool Optimization**:",
		"2. **Training Focus**:",
		"3. **Process Improvement**:",
		"- **Data Validation**: PASSED",
		"- **Records Processed**: 500 procedures, 2491 tool usage records",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Expected report to contain %q", want)
		}
	}
}

func TestExportMarkdownReportTopFiveCorrelations(t *testing.T) {
	rendered, err := ExportMarkdownReport(reportFixture(), t.TempDir(), ReportFile)
	if err != nil {
		t.Fatalf("Failed to export report: %v", err)
	}

	if got := strings.Count(rendered, "(r = "); got != 5 {
		t.Errorf("Expected 5 correlation lines, got %d", got)
	}
	// The weakest pair by absolute coefficient is dropped
	if strings.Contains(rendered, "(r = 0.120)") {
		t.Error("Expected the weakest correlation to be omitted")
	}
	// The strongest survives even though it appears late in the input
	if !strings.Contains(rendered, "(r = 0.870)") {
		t.Error("Expected the strongest correlation to be reported")
	}
}

func TestExportMarkdownReportIssuesFound(t *testing.T) {
	results := reportFixture()
	results.DataQuality.HasIssues = true
	results.DataQuality.Issues = []string{"Found 2 procedures with duration > 8 hours"}

	rendered, err := ExportMarkdownReport(results, t.TempDir(), ReportFile)
	if err != nil {
		t.Fatalf("Failed to export report: %v", err)
	}

	if !strings.Contains(rendered, "- **Data Validation**: ISSUES FOUND") {
		t.Error("Expected data validation to report issues")
	}
}
