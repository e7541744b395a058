package dataset

import (
	"fmt"

	"github.com/surgiflow/surgiflow-go/pkg/models"
)

// Dataset holds one cohort of surgical workflow data in memory.
type Dataset struct {
	Procedures    []models.Procedure    `json:"procedures"`
	ToolUsage     []models.ToolUsage    `json:"tool_usage"`
	Notes         []models.SurgicalNote `json:"notes"`
	SensorSamples []models.SensorSample `json:"sensor_samples"`
}

// ProcedureIndex builds a lookup from procedure ID to procedure record.
func (d *Dataset) ProcedureIndex() map[string]models.Procedure {
	index := make(map[string]models.Procedure, len(d.Procedures))
	for _, proc := range d.Procedures {
		index[proc.ProcedureID] = proc
	}
	return index
}

// ToolUsageByProcedure groups tool usage rows by procedure ID.
func (d *Dataset) ToolUsageByProcedure() map[string][]models.ToolUsage {
	grouped := make(map[string][]models.ToolUsage)
	for _, usage := range d.ToolUsage {
		grouped[usage.ProcedureID] = append(grouped[usage.ProcedureID], usage)
	}
	return grouped
}

// SensorProcedureCount returns how many procedures have telemetry traces.
func (d *Dataset) SensorProcedureCount() int {
	seen := make(map[string]bool)
	for _, sample := range d.SensorSamples {
		seen[sample.ProcedureID] = true
	}
	return len(seen)
}

// Validate checks referential integrity across the dataset tables.
func (d *Dataset) Validate() error {
	if len(d.Procedures) == 0 {
		return fmt.Errorf("dataset has no procedures")
	}

	index := d.ProcedureIndex()
	for _, usage := range d.ToolUsage {
		if _, ok := index[usage.ProcedureID]; !ok {
			return fmt.Errorf("tool usage references unknown procedure %s", usage.ProcedureID)
		}
	}
	for _, sample := range d.SensorSamples {
		if _, ok := index[sample.ProcedureID]; !ok {
			return fmt.Errorf("sensor sample references unknown procedure %s", sample.ProcedureID)
		}
	}
	for _, note := range d.Notes {
		if _, ok := index[note.ProcedureID]; !ok {
			return fmt.Errorf("note references unknown procedure %s", note.ProcedureID)
		}
	}
	return nil
}
