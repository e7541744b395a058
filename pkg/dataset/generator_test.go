package dataset

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surgiflow/surgiflow-go/pkg/models"
)

func TestGenerateDeterministic(t *testing.T) {
	first, err := NewGenerator(42).Generate(40)
	require.NoError(t, err)
	second, err := NewGenerator(42).Generate(40)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	other, err := NewGenerator(7).Generate(40)
	require.NoError(t, err)
	assert.NotEqual(t, first.Procedures, other.Procedures)
}

func TestGenerateProcedureBounds(t *testing.T) {
	ds, err := NewGenerator(42).Generate(200)
	require.NoError(t, err)
	require.Len(t, ds.Procedures, 200)

	for i, proc := range ds.Procedures {
		assert.Equal(t, fmt.Sprintf("PROC_%04d", i), proc.ProcedureID)
		assert.Contains(t, models.AllProcedureTypes, proc.ProcedureType)
		assert.Contains(t, models.AllSurgicalSites, proc.SurgicalSite)
		assert.GreaterOrEqual(t, proc.DurationMinutes, 45.0)
		assert.GreaterOrEqual(t, proc.EfficiencyScore, 60.0)
		assert.LessOrEqual(t, proc.EfficiencyScore, 100.0)
		assert.GreaterOrEqual(t, proc.SurgeonExperienceYrs, 1)
		assert.LessOrEqual(t, proc.SurgeonExperienceYrs, 24)
		assert.GreaterOrEqual(t, proc.PatientBMI, 18.0)
		assert.LessOrEqual(t, proc.PatientBMI, 45.0)
		assert.GreaterOrEqual(t, proc.BloodLossML, 10.0)
		assert.GreaterOrEqual(t, proc.InstrumentChanges, 0)
		assert.NoError(t, proc.Validate())
	}
}

func TestGenerateToolUsage(t *testing.T) {
	ds, err := NewGenerator(42).Generate(100)
	require.NoError(t, err)

	byProc := ds.ToolUsageByProcedure()
	require.Len(t, byProc, 100)

	for procID, rows := range byProc {
		assert.GreaterOrEqual(t, len(rows), 3, "procedure %s", procID)
		assert.LessOrEqual(t, len(rows), 7, "procedure %s", procID)

		seen := make(map[models.ToolType]bool)
		for _, row := range rows {
			assert.False(t, seen[row.ToolType], "duplicate tool %s in %s", row.ToolType, procID)
			seen[row.ToolType] = true

			assert.Contains(t, models.AllToolTypes, row.ToolType)
			assert.GreaterOrEqual(t, row.UsageTimeMinutes, 5.0)
			assert.Less(t, row.UsageTimeMinutes, 45.0)
			assert.Greater(t, row.MaxForceApplied, 0.0)
			assert.GreaterOrEqual(t, row.ActivationCount, 0)
			assert.GreaterOrEqual(t, row.TissueStickingIncidents, 0)
		}
	}
}

func TestGenerateNotes(t *testing.T) {
	ds, err := NewGenerator(42).Generate(80)
	require.NoError(t, err)
	require.Len(t, ds.Notes, 80)

	index := ds.ProcedureIndex()
	for _, note := range ds.Notes {
		proc, ok := index[note.ProcedureID]
		require.True(t, ok)

		assert.Contains(t, surgeonNotePool, note.SurgeonNotes)
		assert.Contains(t, note.NurseNotes, "Estimated blood loss")
		assert.Equal(t, "Stable hemodynamics throughout case.", note.AnesthesiaNotes)
		assert.GreaterOrEqual(t, note.DifficultyRating, 1)
		assert.LessOrEqual(t, note.DifficultyRating, 5)

		if proc.PatientBMI > 35 {
			assert.Contains(t, note.KeyObservations, "Challenging anatomy due to BMI")
		}
	}
}

func TestKeyObservations(t *testing.T) {
	quiet := models.Procedure{DurationMinutes: 90, BloodLossML: 50, PatientBMI: 25}
	assert.Equal(t, "Standard procedure", keyObservations(quiet))

	eventful := models.Procedure{
		DurationMinutes: 240,
		BloodLossML:     350,
		PatientBMI:      40,
		Complications:   true,
	}
	got := keyObservations(eventful)
	for _, want := range []string{
		"Higher than average blood loss",
		"Longer procedure duration",
		"Minor complications noted",
		"Challenging anatomy due to BMI",
	} {
		assert.Contains(t, got, want)
	}
	assert.Equal(t, 4, len(strings.Split(got, "; ")))
}

func TestGenerateSensorSamples(t *testing.T) {
	t.Run("small cohort is fully sampled", func(t *testing.T) {
		ds, err := NewGenerator(42).Generate(10)
		require.NoError(t, err)
		assert.Equal(t, 10, ds.SensorProcedureCount())
	})

	t.Run("large cohort is capped", func(t *testing.T) {
		ds, err := NewGenerator(42).Generate(120)
		require.NoError(t, err)
		assert.Equal(t, sensorProcedureCap, ds.SensorProcedureCount())

		index := ds.ProcedureIndex()
		for _, sample := range ds.SensorSamples {
			proc, ok := index[sample.ProcedureID]
			require.True(t, ok)

			assert.Zero(t, sample.TimestampMinutes%2)
			assert.Less(t, sample.TimestampMinutes, int(proc.DurationMinutes))
			assert.GreaterOrEqual(t, sample.ForceSensor, 0.0)
			assert.Greater(t, sample.Vibration, 0.0)
		}
	})
}

func TestGenerateRejectsNonPositiveCount(t *testing.T) {
	for _, n := range []int{0, -5} {
		_, err := NewGenerator(42).Generate(n)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be positive")
	}
}
