package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/surgiflow/surgiflow-go/pkg/models"
)

// ReportFile is the default filename for the Markdown report.
const ReportFile = "analysis_report.md"

// ExportMarkdownReport renders the analysis results as a Markdown report,
// writes it under reportsDir, and returns the rendered text.
func ExportMarkdownReport(results *models.AnalysisResults, reportsDir, filename string) (string, error) {
	rendered := renderMarkdown(results)

	if err := os.MkdirAll(reportsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(reportsDir, filename), []byte(rendered), 0644); err != nil {
		return "", fmt.Errorf("failed to write analysis report: %w", err)
	}
	return rendered, nil
}

func renderMarkdown(results *models.AnalysisResults) string {
	generated := results.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	totalProcedures := 0
	if results.Statistics != nil {
		totalProcedures = results.Statistics.TotalProcedures
	}

	var b strings.Builder
	b.WriteString("# Surgical Workflow Analysis Report\n\n")
	fmt.Fprintf(&b, "Generated on: %s\n\n", generated.Format("2006-01-02 15:04:05"))
	b.WriteString("## Executive Summary\n\n")
	fmt.Fprintf(&b, "This report summarizes insights from the analysis of %d surgical procedures.\n\n", totalProcedures)

	b.WriteString("## Key Findings\n\n")
	b.WriteString("### Procedure Statistics\n")
	if stats := results.Statistics; stats != nil {
		fmt.Fprintf(&b, "- **Total Procedures Analyzed**: %d\n", stats.TotalProcedures)
		fmt.Fprintf(&b, "- **Average Procedure Duration**: %.1f minutes\n", stats.AvgDurationMinutes)
		fmt.Fprintf(&b, "- **Average Efficiency Score**: %.1f%%\n", stats.AvgEfficiencyScore)
		fmt.Fprintf(&b, "- **Complication Rate**: %.1f%%\n", stats.ComplicationRate*100)
	}
	b.WriteString("\n### Tool Performance Insights\n")

	if corr := results.ToolCorrelations; corr != nil && len(corr.Correlations) > 0 {
		b.WriteString("\n### Tool Performance Correlations\n")
		for _, c := range topCorrelations(corr.Correlations, 5) {
			fmt.Fprintf(&b, "- %s (r = %.3f)\n", c.Interpretation, c.Coefficient)
		}
	}

	if outliers := results.OutlierAnalysis; outliers != nil {
		b.WriteString("\n### Efficiency Outliers\n")
		fmt.Fprintf(&b, "- **Outliers Identified**: %d\n", outliers.TotalOutliers)
		fmt.Fprintf(&b, "- **Outlier Rate**: %.1f%%\n", outliers.OutlierRate*100)
	}

	if phases := results.PhaseAnalysis; phases != nil {
		b.WriteString("\n### Surgical Phase Analysis\n")
		fmt.Fprintf(&b, "- **Phase Detection Quality**: Silhouette Score = %.3f\n", phases.SilhouetteScore)
		for _, phase := range phases.Phases {
			fmt.Fprintf(&b, "- **%s**: %.1f minutes average\n", phase.PhaseName, phase.AvgDurationMinutes)
		}
	}

	b.WriteString("\n## Recommendations\n\n")
	b.WriteString("1. **Tool Optimization**: Consider redesigning tools showing high correlation with extended procedure times\n")
	b.WriteString("2. **Training Focus**: Develop targeted training for procedures with higher complication rates\n")
	b.WriteString("3. **Process Improvement**: Analyze outlier procedures to identify best practices and areas for improvement\n")

	b.WriteString("\n## Data Quality\n\n")
	if quality := results.DataQuality; quality != nil {
		validation := "ISSUES FOUND"
		if !quality.HasIssues {
			validation = "PASSED"
		}
		fmt.Fprintf(&b, "- **Data Validation**: %s\n", validation)
		fmt.Fprintf(&b, "- **Records Processed**: %d procedures, %d tool usage records\n",
			quality.ProcedureRecords, quality.ToolRecords)
	} else {
		b.WriteString("- **Data Validation**: ISSUES FOUND\n")
		b.WriteString("- **Records Processed**: 0 procedures, 0 tool usage records\n")
	}

	return b.String()
}

// topCorrelations returns the strongest correlations by absolute coefficient.
func topCorrelations(correlations []models.Correlation, limit int) []models.Correlation {
	sorted := make([]models.Correlation, len(correlations))
	copy(sorted, correlations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].Coefficient) > math.Abs(sorted[j].Coefficient)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
