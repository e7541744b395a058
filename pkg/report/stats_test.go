package report

import (
	"testing"

	"github.com/surgiflow/surgiflow-go/pkg/models"
)

func statsFixture() []models.Procedure {
	return []models.Procedure{
		{ProcedureID: "P1", ProcedureType: models.ProcedureHerniaRepair, DurationMinutes: 100, EfficiencyScore: 80, BloodLossML: 100, SurgeonExperienceYrs: 5, Complications: true},
		{ProcedureID: "P2", ProcedureType: models.ProcedureHerniaRepair, DurationMinutes: 120, EfficiencyScore: 90, BloodLossML: 200, SurgeonExperienceYrs: 10},
		{ProcedureID: "P3", ProcedureType: models.ProcedureGISurgery, DurationMinutes: 140, EfficiencyScore: 70, BloodLossML: 100, SurgeonExperienceYrs: 15},
		{ProcedureID: "P4", ProcedureType: models.ProcedureGISurgery, DurationMinutes: 180, EfficiencyScore: 100, BloodLossML: 200, SurgeonExperienceYrs: 20},
	}
}

func TestCalculateProcedureStats(t *testing.T) {
	result, err := CalculateProcedureStats(statsFixture())
	if err != nil {
		t.Fatalf("Failed to calculate stats: %v", err)
	}

	if result.TotalProcedures != 4 {
		t.Errorf("Expected 4 procedures, got %d", result.TotalProcedures)
	}
	if result.AvgDurationMinutes != 135 {
		t.Errorf("Expected avg duration 135, got %v", result.AvgDurationMinutes)
	}
	if result.AvgEfficiencyScore != 85 {
		t.Errorf("Expected avg efficiency 85, got %v", result.AvgEfficiencyScore)
	}
	if result.ComplicationRate != 0.25 {
		t.Errorf("Expected complication rate 0.25, got %v", result.ComplicationRate)
	}
	if result.AvgBloodLossML != 150 {
		t.Errorf("Expected avg blood loss 150, got %v", result.AvgBloodLossML)
	}

	if result.SurgeonExperience.Min != 5 {
		t.Errorf("Expected min experience 5, got %d", result.SurgeonExperience.Min)
	}
	if result.SurgeonExperience.Max != 20 {
		t.Errorf("Expected max experience 20, got %d", result.SurgeonExperience.Max)
	}
	if result.SurgeonExperience.Mean != 12.5 {
		t.Errorf("Expected mean experience 12.5, got %v", result.SurgeonExperience.Mean)
	}

	if result.ProcedureTypes[models.ProcedureHerniaRepair] != 2 {
		t.Errorf("Expected 2 hernia repairs, got %d", result.ProcedureTypes[models.ProcedureHerniaRepair])
	}
	if result.ProcedureTypes[models.ProcedureGISurgery] != 2 {
		t.Errorf("Expected 2 GI surgeries, got %d", result.ProcedureTypes[models.ProcedureGISurgery])
	}
}

func TestCalculateProcedureStatsEmpty(t *testing.T) {
	if _, err := CalculateProcedureStats(nil); err == nil {
		t.Error("Expected error for empty cohort")
	}
}
