package report

import (
	"fmt"

	"github.com/surgiflow/surgiflow-go/pkg/models"
)

// maxPlausibleDurationMinutes is 8 hours; anything longer is flagged.
const maxPlausibleDurationMinutes = 480

// ValidateDataQuality checks procedure and tool records for missing
// identifiers and implausible values.
func ValidateDataQuality(procedures []models.Procedure, usage []models.ToolUsage) *models.DataQualityReport {
	issues := make([]string, 0)

	procedureMissing := 0
	longDurations := 0
	overEfficiency := 0
	for _, p := range procedures {
		if p.ProcedureID == "" {
			procedureMissing++
		}
		if p.ProcedureType == "" {
			procedureMissing++
		}
		if p.DurationMinutes > maxPlausibleDurationMinutes {
			longDurations++
		}
		if p.EfficiencyScore > 100 {
			overEfficiency++
		}
	}

	toolMissing := 0
	for _, u := range usage {
		if u.ProcedureID == "" {
			toolMissing++
		}
		if u.ToolType == "" {
			toolMissing++
		}
	}

	if procedureMissing > 0 {
		issues = append(issues, fmt.Sprintf("Procedures data has %d missing values", procedureMissing))
	}
	if toolMissing > 0 {
		issues = append(issues, fmt.Sprintf("Tool metrics has %d missing values", toolMissing))
	}
	if longDurations > 0 {
		issues = append(issues, fmt.Sprintf("Found %d procedures with duration > 8 hours", longDurations))
	}
	if overEfficiency > 0 {
		issues = append(issues, fmt.Sprintf("Found %d procedures with efficiency > 100%%", overEfficiency))
	}

	return &models.DataQualityReport{
		HasIssues:        len(issues) > 0,
		Issues:           issues,
		ProcedureRecords: len(procedures),
		ToolRecords:      len(usage),
	}
}
