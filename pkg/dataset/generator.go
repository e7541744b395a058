package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/surgiflow/surgiflow-go/pkg/models"
)

// surgeonNotePool holds the canned surgeon note templates used for synthetic data.
var surgeonNotePool = []string{
	"Minimal bleeding controlled with electrocautery",
	"Some adhesions encountered, carefully dissected",
	"Clear anatomy, straightforward procedure",
	"Challoscopic anatomy, required careful dissection",
	"Dense adhesions present, took additional time",
	"Good hemostasis throughout",
	"Some instrument fogging encountered",
	"Tissue sticking to instrument tip occasionally",
}

// sensorProcedureCap limits how many procedures receive telemetry traces.
const sensorProcedureCap = 50

// Generator produces synthetic surgical workflow data.
// All randomness flows from a single seeded source, so the same seed
// always yields the same dataset.
type Generator struct {
	RandomSeed int64

	rand *rand.Rand
	src  rand.Source
}

// NewGenerator creates a generator seeded with the given value.
func NewGenerator(seed int64) *Generator {
	src := rand.NewPCG(uint64(seed), uint64(seed))
	return &Generator{
		RandomSeed: seed,
		rand:       rand.New(src),
		src:        src,
	}
}

// Generate produces a complete synthetic dataset for numProcedures procedures.
func (g *Generator) Generate(numProcedures int) (*Dataset, error) {
	if numProcedures <= 0 {
		return nil, fmt.Errorf("procedure count must be positive, got %d", numProcedures)
	}

	procedures := g.generateProcedures(numProcedures)
	toolUsage := g.generateToolUsage(procedures)
	notes := g.generateNotes(procedures)
	samples := g.generateSensorSamples(procedures)

	return &Dataset{
		Procedures:    procedures,
		ToolUsage:     toolUsage,
		Notes:         notes,
		SensorSamples: samples,
	}, nil
}

// generateProcedures creates the procedure metadata records.
func (g *Generator) generateProcedures(n int) []models.Procedure {
	procedures := make([]models.Procedure, 0, n)
	for i := 0; i < n; i++ {
		procType := models.AllProcedureTypes[g.rand.IntN(len(models.AllProcedureTypes))]

		// Laparoscopic procedures run shorter on average
		baseDuration := 180.0
		if procType == models.ProcedureLaparoscopicCholecystectomy {
			baseDuration = 120.0
		}

		procedures = append(procedures, models.Procedure{
			ProcedureID:          fmt.Sprintf("PROC_%04d", i),
			ProcedureType:        procType,
			DurationMinutes:      math.Max(45, g.normal(baseDuration, 30)),
			EfficiencyScore:      clamp(g.normal(80, 12), 60, 100),
			SurgeonExperienceYrs: g.rand.IntN(24) + 1,
			PatientBMI:           clamp(g.normal(28, 6), 18, 45),
			BloodLossML:          math.Max(10, g.gamma(2, 40)),
			Complications:        g.rand.Float64() < 0.08,
			SurgicalSite:         models.AllSurgicalSites[g.rand.IntN(len(models.AllSurgicalSites))],
			InstrumentChanges:    g.poisson(3),
		})
	}
	return procedures
}

// generateToolUsage creates per-instrument metrics for each procedure.
// Each procedure uses between 3 and 7 distinct instruments.
func (g *Generator) generateToolUsage(procedures []models.Procedure) []models.ToolUsage {
	usage := make([]models.ToolUsage, 0, len(procedures)*5)
	for _, proc := range procedures {
		numTools := g.rand.IntN(5) + 3
		perm := g.rand.Perm(len(models.AllToolTypes))

		for _, idx := range perm[:numTools] {
			usage = append(usage, models.ToolUsage{
				ProcedureID:             proc.ProcedureID,
				ToolType:                models.AllToolTypes[idx],
				UsageTimeMinutes:        g.uniform(5, 45),
				MaxForceApplied:         g.gamma(2, 2),
				AvgTemperatureC:         g.normal(45, 10),
				ActivationCount:         g.poisson(15),
				EfficiencyRating:        g.normal(7, 1.5),
				TissueStickingIncidents: g.poisson(0.5),
			})
		}
	}
	return usage
}

// generateNotes creates unstructured documentation for each procedure.
func (g *Generator) generateNotes(procedures []models.Procedure) []models.SurgicalNote {
	notes := make([]models.SurgicalNote, 0, len(procedures))
	for _, proc := range procedures {
		notes = append(notes, models.SurgicalNote{
			ProcedureID:      proc.ProcedureID,
			SurgeonNotes:     surgeonNotePool[g.rand.IntN(len(surgeonNotePool))],
			NurseNotes:       fmt.Sprintf("Patient tolerated procedure well. Estimated blood loss %vml.", proc.BloodLossML),
			AnesthesiaNotes:  "Stable hemodynamics throughout case.",
			DifficultyRating: g.rand.IntN(5) + 1,
			KeyObservations:  keyObservations(proc),
		})
	}
	return notes
}

// keyObservations derives observation text from procedure characteristics.
func keyObservations(proc models.Procedure) string {
	var observations []string

	if proc.BloodLossML > 200 {
		observations = append(observations, "Higher than average blood loss")
	}
	if proc.DurationMinutes > 180 {
		observations = append(observations, "Longer procedure duration")
	}
	if proc.Complications {
		observations = append(observations, "Minor complications noted")
	}
	if proc.PatientBMI > 35 {
		observations = append(observations, "Challenging anatomy due to BMI")
	}

	if len(observations) == 0 {
		return "Standard procedure"
	}
	return strings.Join(observations, "; ")
}

// generateSensorSamples creates telemetry for a random subset of procedures,
// sampled every 2 minutes over each procedure's duration.
func (g *Generator) generateSensorSamples(procedures []models.Procedure) []models.SensorSample {
	numSampled := len(procedures)
	if numSampled > sensorProcedureCap {
		numSampled = sensorProcedureCap
	}
	perm := g.rand.Perm(len(procedures))

	samples := make([]models.SensorSample, 0, numSampled*60)
	for _, idx := range perm[:numSampled] {
		proc := procedures[idx]
		duration := int(proc.DurationMinutes)

		for minute := 0; minute < duration; minute += 2 {
			samples = append(samples, models.SensorSample{
				ProcedureID:      proc.ProcedureID,
				TimestampMinutes: minute,
				ForceSensor:      math.Max(0, g.normal(2, 0.8)),
				Temperature:      g.normal(37, 3),
				MotorCurrent:     g.normal(1.5, 0.4),
				Vibration:        g.gamma(1, 0.5),
				Pressure:         g.normal(12, 2),
			})
		}
	}
	return samples
}

// normal draws from a normal distribution with the given mean and standard deviation.
func (g *Generator) normal(mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: g.src}.Rand()
}

// gamma draws from a gamma distribution parameterized by shape and scale.
// distuv takes a rate, which is the inverse of the scale.
func (g *Generator) gamma(shape, scale float64) float64 {
	return distuv.Gamma{Alpha: shape, Beta: 1 / scale, Src: g.src}.Rand()
}

// poisson draws a count from a Poisson distribution with the given mean.
func (g *Generator) poisson(lambda float64) int {
	return int(distuv.Poisson{Lambda: lambda, Src: g.src}.Rand())
}

// uniform draws from a uniform distribution over [min, max).
func (g *Generator) uniform(min, max float64) float64 {
	return distuv.Uniform{Min: min, Max: max, Src: g.src}.Rand()
}

// clamp restricts v to the inclusive range [lo, hi].
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
