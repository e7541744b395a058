package analysis

import (
	"github.com/surgiflow/surgiflow-go/pkg/dataset"
	"github.com/surgiflow/surgiflow-go/pkg/models"
)

// procedureToolRow joins one procedure with its aggregated instrument metrics.
// Usage time and sticking incidents are summed across instruments; force,
// temperature and rating are averaged.
type procedureToolRow struct {
	Procedure       models.Procedure
	UsageTimeTotal  float64
	MaxForceMean    float64
	TemperatureMean float64
	RatingMean      float64
	StickingTotal   int
}

// mergeProcedureToolMetrics inner-joins procedures with per-procedure tool
// aggregates. Procedures without any tool rows are dropped. Row order follows
// the procedure order in the dataset.
func mergeProcedureToolMetrics(ds *dataset.Dataset) []procedureToolRow {
	grouped := ds.ToolUsageByProcedure()

	rows := make([]procedureToolRow, 0, len(ds.Procedures))
	for _, proc := range ds.Procedures {
		usage, ok := grouped[proc.ProcedureID]
		if !ok || len(usage) == 0 {
			continue
		}

		row := procedureToolRow{Procedure: proc}
		for _, u := range usage {
			row.UsageTimeTotal += u.UsageTimeMinutes
			row.MaxForceMean += u.MaxForceApplied
			row.TemperatureMean += u.AvgTemperatureC
			row.RatingMean += u.EfficiencyRating
			row.StickingTotal += u.TissueStickingIncidents
		}
		n := float64(len(usage))
		row.MaxForceMean /= n
		row.TemperatureMean /= n
		row.RatingMean /= n

		rows = append(rows, row)
	}
	return rows
}
