package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surgiflow/surgiflow-go/pkg/dataset"
	"github.com/surgiflow/surgiflow-go/pkg/models"
)

// phaseRegime describes one synthetic telemetry regime for fixture data.
type phaseRegime struct {
	procedureID string
	force       float64
	current     float64
	wantName    string
}

// phaseFixture builds four procedures, each locked to one telemetry regime
// chosen to land in a distinct naming band.
func phaseFixture() (*dataset.Dataset, []phaseRegime) {
	regimes := []phaseRegime{
		{"PROC_SETUP", 0.5, 0.5, PhaseSetup},
		{"PROC_DISSECT", 3.0, 2.5, PhaseDissection},
		{"PROC_MANIP", 1.8, 1.0, PhaseManipulation},
		{"PROC_CLOSE", 1.2, 1.6, PhaseClosure},
	}

	ds := &dataset.Dataset{}
	for _, regime := range regimes {
		ds.Procedures = append(ds.Procedures, models.Procedure{
			ProcedureID:     regime.procedureID,
			ProcedureType:   models.ProcedureGISurgery,
			DurationMinutes: 20,
			EfficiencyScore: 80,
		})
		// Vibration and pressure stay flat so the separation lives
		// entirely in force and motor current.
		for i := 0; i < 10; i++ {
			jitter := float64(i%5)*0.004 - 0.008
			ds.SensorSamples = append(ds.SensorSamples, models.SensorSample{
				ProcedureID:      regime.procedureID,
				TimestampMinutes: i * 2,
				ForceSensor:      regime.force + jitter,
				MotorCurrent:     regime.current + jitter,
				Vibration:        1.0,
				Pressure:         12.0,
			})
		}
	}
	return ds, regimes
}

// TestDetectSurgicalPhases_NamesRegimes tests that crafted telemetry regimes
// come back as four distinct phases with the expected names
func TestDetectSurgicalPhases_NamesRegimes(t *testing.T) {
	ds, regimes := phaseFixture()

	report, err := DetectSurgicalPhases(ds, 4, 42)
	require.NoError(t, err)
	require.Len(t, report.Phases, 4)
	assert.Equal(t, 4, report.NumClusters)
	assert.Len(t, report.Assignments, 40)

	names := make(map[string]models.PhaseSummary)
	for _, phase := range report.Phases {
		names[phase.PhaseName] = phase
	}
	require.Len(t, names, 4, "each cluster should earn a distinct name")

	for _, regime := range regimes {
		phase, ok := names[regime.wantName]
		require.True(t, ok, "expected a %s phase", regime.wantName)

		assert.Equal(t, 1, phase.NumProcedures)
		assert.Equal(t, 10, phase.NumSamples)
		// 10 buckets at 2-minute spacing
		assert.InDelta(t, 20.0, phase.AvgDurationMinutes, 1e-9)
		assert.InDelta(t, regime.force, phase.AvgForce, 0.05)
		assert.InDelta(t, regime.current, phase.AvgMotorCurrent, 0.05)
	}

	// Crafted regimes are far apart, so the clustering is clean
	assert.Greater(t, report.SilhouetteScore, 0.5)

	// Assignments track the regime of their procedure
	phaseByProc := make(map[string]map[int]int)
	for _, a := range report.Assignments {
		if phaseByProc[a.ProcedureID] == nil {
			phaseByProc[a.ProcedureID] = make(map[int]int)
		}
		phaseByProc[a.ProcedureID][a.Phase]++
	}
	for _, regime := range regimes {
		assert.Len(t, phaseByProc[regime.procedureID], 1,
			"all buckets of %s should share one phase", regime.procedureID)
	}
}

// TestDetectSurgicalPhases_Deterministic tests identical reports across runs
func TestDetectSurgicalPhases_Deterministic(t *testing.T) {
	first, err := DetectSurgicalPhases(generatedDataset(t, 30, 42), 4, 42)
	require.NoError(t, err)
	second, err := DetectSurgicalPhases(generatedDataset(t, 30, 42), 4, 42)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// TestDetectSurgicalPhases_GeneratedCohort tests structural invariants on
// generator telemetry
func TestDetectSurgicalPhases_GeneratedCohort(t *testing.T) {
	ds := generatedDataset(t, 60, 42)

	report, err := DetectSurgicalPhases(ds, 4, 42)
	require.NoError(t, err)
	require.Len(t, report.Phases, 4)

	totalSamples := 0
	for _, phase := range report.Phases {
		assert.Contains(t, []string{PhaseSetup, PhaseDissection, PhaseManipulation, PhaseClosure}, phase.PhaseName)
		assert.GreaterOrEqual(t, phase.NumSamples, 0)
		totalSamples += phase.NumSamples
	}
	assert.Equal(t, len(report.Assignments), totalSamples)

	assert.GreaterOrEqual(t, report.SilhouetteScore, -1.0)
	assert.LessOrEqual(t, report.SilhouetteScore, 1.0)

	for _, a := range report.Assignments {
		assert.GreaterOrEqual(t, a.Phase, 0)
		assert.Less(t, a.Phase, 4)
	}
}

// TestDetectSurgicalPhases_Errors tests defined failures for unusable input
func TestDetectSurgicalPhases_Errors(t *testing.T) {
	t.Run("no telemetry", func(t *testing.T) {
		ds := &dataset.Dataset{Procedures: []models.Procedure{{ProcedureID: "PROC_0000"}}}
		_, err := DetectSurgicalPhases(ds, 4, 42)
		assert.ErrorIs(t, err, ErrEmptyPopulation)
	})

	t.Run("too few buckets for cluster count", func(t *testing.T) {
		ds := &dataset.Dataset{}
		for i := 0; i < 2; i++ {
			ds.SensorSamples = append(ds.SensorSamples, models.SensorSample{
				ProcedureID:      fmt.Sprintf("PROC_%04d", i),
				TimestampMinutes: 0,
				ForceSensor:      float64(i),
				MotorCurrent:     float64(i),
				Vibration:        1,
				Pressure:         12,
			})
		}
		_, err := DetectSurgicalPhases(ds, 4, 42)
		assert.ErrorIs(t, err, ErrInsufficientData)
	})
}

// TestNamePhase tests the naming heuristic bands, including boundaries
func TestNamePhase(t *testing.T) {
	tests := []struct {
		name    string
		force   float64
		current float64
		want    string
	}{
		{"low force and current", 0.4, 0.6, PhaseSetup},
		{"high force and current", 2.5, 2.0, PhaseDissection},
		{"high force, low current", 1.7, 1.2, PhaseManipulation},
		{"middle band", 1.2, 1.6, PhaseClosure},
		{"exactly at setup boundary", 1.0, 1.0, PhaseClosure},
		{"dissection force without current", 2.5, 1.4, PhaseManipulation},
		{"low force, high current", 0.5, 1.9, PhaseClosure},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, namePhase(tc.force, tc.current))
		})
	}
}
