package report

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/surgiflow/surgiflow-go/pkg/models"
)

// CalculateProcedureStats computes descriptive statistics over a procedure cohort.
func CalculateProcedureStats(procedures []models.Procedure) (*models.ProcedureStats, error) {
	if len(procedures) == 0 {
		return nil, fmt.Errorf("no procedures to summarize")
	}

	durations := make(stats.Float64Data, 0, len(procedures))
	efficiencies := make(stats.Float64Data, 0, len(procedures))
	bloodLoss := make(stats.Float64Data, 0, len(procedures))
	experience := make(stats.Float64Data, 0, len(procedures))
	complications := make(stats.Float64Data, 0, len(procedures))
	types := make(map[models.ProcedureType]int)

	for _, p := range procedures {
		durations = append(durations, p.DurationMinutes)
		efficiencies = append(efficiencies, p.EfficiencyScore)
		bloodLoss = append(bloodLoss, p.BloodLossML)
		experience = append(experience, float64(p.SurgeonExperienceYrs))
		if p.Complications {
			complications = append(complications, 1)
		} else {
			complications = append(complications, 0)
		}
		types[p.ProcedureType]++
	}

	avgDuration, err := stats.Mean(durations)
	if err != nil {
		return nil, fmt.Errorf("failed to compute duration stats: %w", err)
	}
	avgEfficiency, err := stats.Mean(efficiencies)
	if err != nil {
		return nil, fmt.Errorf("failed to compute efficiency stats: %w", err)
	}
	complicationRate, err := stats.Mean(complications)
	if err != nil {
		return nil, fmt.Errorf("failed to compute complication stats: %w", err)
	}
	avgBloodLoss, err := stats.Mean(bloodLoss)
	if err != nil {
		return nil, fmt.Errorf("failed to compute blood loss stats: %w", err)
	}

	minExperience, err := stats.Min(experience)
	if err != nil {
		return nil, fmt.Errorf("failed to compute experience stats: %w", err)
	}
	maxExperience, err := stats.Max(experience)
	if err != nil {
		return nil, fmt.Errorf("failed to compute experience stats: %w", err)
	}
	meanExperience, err := stats.Mean(experience)
	if err != nil {
		return nil, fmt.Errorf("failed to compute experience stats: %w", err)
	}

	return &models.ProcedureStats{
		TotalProcedures:    len(procedures),
		ProcedureTypes:     types,
		AvgDurationMinutes: avgDuration,
		AvgEfficiencyScore: avgEfficiency,
		ComplicationRate:   complicationRate,
		AvgBloodLossML:     avgBloodLoss,
		SurgeonExperience: models.ExperienceStats{
			Min:  int(minExperience),
			Max:  int(maxExperience),
			Mean: meanExperience,
		},
	}, nil
}
