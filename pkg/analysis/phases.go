package analysis

import (
	"fmt"
	"sort"

	"github.com/surgiflow/surgiflow-go/pkg/dataset"
	"github.com/surgiflow/surgiflow-go/pkg/models"
)

// sensorSampleIntervalMinutes is the spacing of telemetry readings, used to
// convert per-phase sample counts into durations.
const sensorSampleIntervalMinutes = 2

// Phase names assigned from cluster telemetry profiles.
const (
	PhaseSetup        = "Setup/Preparation"
	PhaseDissection   = "Active Dissection"
	PhaseManipulation = "Precise Manipulation"
	PhaseClosure      = "Closure/Finishing"
)

// sensorBucket is the mean telemetry for one (procedure, timestamp) pair.
type sensorBucket struct {
	procedureID      string
	timestampMinutes int
	force            float64
	motorCurrent     float64
	vibration        float64
	pressure         float64
}

// DetectSurgicalPhases clusters telemetry time buckets into workflow phases.
// Buckets are standardized before clustering; phase profiles and the naming
// heuristic use the raw channel means.
func DetectSurgicalPhases(ds *dataset.Dataset, numClusters int, seed int64) (*models.PhaseReport, error) {
	if len(ds.SensorSamples) == 0 {
		return nil, fmt.Errorf("phase detection: %w", ErrEmptyPopulation)
	}

	buckets := bucketSensorSamples(ds.SensorSamples)

	X := make([][]float64, len(buckets))
	for i, b := range buckets {
		X[i] = []float64{b.force, b.motorCurrent, b.vibration, b.pressure}
	}

	scaled, _, err := Standardize(X)
	if err != nil {
		return nil, err
	}

	km := NewKMeans(numClusters, seed)
	result, err := km.Fit(scaled)
	if err != nil {
		return nil, fmt.Errorf("phase detection: %w", err)
	}

	silhouette, err := SilhouetteScore(scaled, result.Labels)
	if err != nil {
		return nil, fmt.Errorf("phase detection: %w", err)
	}

	assignments := make([]models.PhaseAssignment, len(buckets))
	for i, b := range buckets {
		assignments[i] = models.PhaseAssignment{
			ProcedureID:      b.procedureID,
			TimestampMinutes: b.timestampMinutes,
			Phase:            result.Labels[i],
		}
	}

	return &models.PhaseReport{
		Assignments:     assignments,
		Phases:          summarizePhases(buckets, result.Labels, numClusters),
		SilhouetteScore: silhouette,
		NumClusters:     numClusters,
	}, nil
}

// bucketSensorSamples averages samples per (procedure, timestamp) pair and
// returns buckets in a deterministic order.
func bucketSensorSamples(samples []models.SensorSample) []sensorBucket {
	type bucketKey struct {
		procedureID      string
		timestampMinutes int
	}

	sums := make(map[bucketKey]*sensorBucket)
	counts := make(map[bucketKey]int)
	for _, s := range samples {
		key := bucketKey{s.ProcedureID, s.TimestampMinutes}
		b, ok := sums[key]
		if !ok {
			b = &sensorBucket{procedureID: s.ProcedureID, timestampMinutes: s.TimestampMinutes}
			sums[key] = b
		}
		b.force += s.ForceSensor
		b.motorCurrent += s.MotorCurrent
		b.vibration += s.Vibration
		b.pressure += s.Pressure
		counts[key]++
	}

	buckets := make([]sensorBucket, 0, len(sums))
	for key, b := range sums {
		n := float64(counts[key])
		buckets = append(buckets, sensorBucket{
			procedureID:      b.procedureID,
			timestampMinutes: b.timestampMinutes,
			force:            b.force / n,
			motorCurrent:     b.motorCurrent / n,
			vibration:        b.vibration / n,
			pressure:         b.pressure / n,
		})
	}

	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].procedureID != buckets[j].procedureID {
			return buckets[i].procedureID < buckets[j].procedureID
		}
		return buckets[i].timestampMinutes < buckets[j].timestampMinutes
	})
	return buckets
}

// summarizePhases profiles each cluster from its raw bucket values.
func summarizePhases(buckets []sensorBucket, labels []int, numClusters int) []models.PhaseSummary {
	summaries := make([]models.PhaseSummary, numClusters)
	procedureBuckets := make([]map[string]int, numClusters)
	for c := range summaries {
		summaries[c] = models.PhaseSummary{Phase: c}
		procedureBuckets[c] = make(map[string]int)
	}

	for i, b := range buckets {
		c := labels[i]
		s := &summaries[c]
		s.AvgForce += b.force
		s.AvgMotorCurrent += b.motorCurrent
		s.AvgVibration += b.vibration
		s.AvgPressure += b.pressure
		s.NumSamples++
		procedureBuckets[c][b.procedureID]++
	}

	for c := range summaries {
		s := &summaries[c]
		if s.NumSamples > 0 {
			n := float64(s.NumSamples)
			s.AvgForce /= n
			s.AvgMotorCurrent /= n
			s.AvgVibration /= n
			s.AvgPressure /= n
		}

		s.NumProcedures = len(procedureBuckets[c])
		if s.NumProcedures > 0 {
			totalBuckets := 0
			for _, count := range procedureBuckets[c] {
				totalBuckets += count
			}
			avgBuckets := float64(totalBuckets) / float64(s.NumProcedures)
			s.AvgDurationMinutes = avgBuckets * sensorSampleIntervalMinutes
		}

		s.PhaseName = namePhase(s.AvgForce, s.AvgMotorCurrent)
	}
	return summaries
}

// namePhase maps a cluster's force and motor current profile to a phase name.
// The branches are ordered; higher-force profiles are checked before the
// manipulation band.
func namePhase(force, motorCurrent float64) string {
	switch {
	case force < 1.0 && motorCurrent < 1.0:
		return PhaseSetup
	case force > 2.0 && motorCurrent > 1.8:
		return PhaseDissection
	case force > 1.5 && motorCurrent < 1.5:
		return PhaseManipulation
	default:
		return PhaseClosure
	}
}
