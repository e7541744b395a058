package dataset

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/surgiflow/surgiflow-go/pkg/models"
)

// File names used in the raw data layout under <dir>/raw/.
const (
	proceduresFile  = "procedures.csv"
	toolMetricsFile = "tool_metrics.csv"
	sensorDataFile  = "sensor_data.csv"
	notesFile       = "surgical_notes.json"
)

var proceduresHeader = []string{
	"procedure_id", "procedure_type", "duration_minutes", "efficiency_score",
	"surgeon_experience_yrs", "patient_bmi", "blood_loss_ml", "complications",
	"surgical_site", "instrument_changes",
}

var toolMetricsHeader = []string{
	"procedure_id", "tool_type", "usage_time_minutes", "max_force_applied",
	"avg_temperature_c", "activation_count", "efficiency_rating",
	"tissue_sticking_incidents",
}

var sensorDataHeader = []string{
	"procedure_id", "timestamp_minutes", "force_sensor", "temperature",
	"motor_current", "vibration", "pressure",
}

// Save writes the dataset to the raw data layout under dir.
func (d *Dataset) Save(dir string) error {
	rawDir := filepath.Join(dir, "raw")
	if err := os.MkdirAll(rawDir, 0755); err != nil {
		return fmt.Errorf("failed to create raw data directory: %w", err)
	}

	if err := d.saveProceduresCSV(filepath.Join(rawDir, proceduresFile)); err != nil {
		return err
	}
	if err := d.saveToolMetricsCSV(filepath.Join(rawDir, toolMetricsFile)); err != nil {
		return err
	}
	if err := d.saveSensorDataCSV(filepath.Join(rawDir, sensorDataFile)); err != nil {
		return err
	}
	if err := d.saveNotesJSON(filepath.Join(rawDir, notesFile)); err != nil {
		return err
	}
	return nil
}

// Load reads a dataset from the raw data layout under dir.
// Sensor data and notes are optional; procedures and tool metrics are not.
func Load(dir string) (*Dataset, error) {
	rawDir := filepath.Join(dir, "raw")

	procedures, err := loadProceduresCSV(filepath.Join(rawDir, proceduresFile))
	if err != nil {
		return nil, err
	}

	toolUsage, err := loadToolMetricsCSV(filepath.Join(rawDir, toolMetricsFile))
	if err != nil {
		return nil, err
	}

	samples, err := loadSensorDataCSV(filepath.Join(rawDir, sensorDataFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	notes, err := loadNotesJSON(filepath.Join(rawDir, notesFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	return &Dataset{
		Procedures:    procedures,
		ToolUsage:     toolUsage,
		SensorSamples: samples,
		Notes:         notes,
	}, nil
}

func (d *Dataset) saveProceduresCSV(path string) error {
	records := make([][]string, 0, len(d.Procedures)+1)
	records = append(records, proceduresHeader)
	for _, p := range d.Procedures {
		records = append(records, []string{
			p.ProcedureID,
			string(p.ProcedureType),
			formatFloat(p.DurationMinutes),
			formatFloat(p.EfficiencyScore),
			strconv.Itoa(p.SurgeonExperienceYrs),
			formatFloat(p.PatientBMI),
			formatFloat(p.BloodLossML),
			formatBool(p.Complications),
			string(p.SurgicalSite),
			strconv.Itoa(p.InstrumentChanges),
		})
	}
	return writeCSV(path, records)
}

func (d *Dataset) saveToolMetricsCSV(path string) error {
	records := make([][]string, 0, len(d.ToolUsage)+1)
	records = append(records, toolMetricsHeader)
	for _, u := range d.ToolUsage {
		records = append(records, []string{
			u.ProcedureID,
			string(u.ToolType),
			formatFloat(u.UsageTimeMinutes),
			formatFloat(u.MaxForceApplied),
			formatFloat(u.AvgTemperatureC),
			strconv.Itoa(u.ActivationCount),
			formatFloat(u.EfficiencyRating),
			strconv.Itoa(u.TissueStickingIncidents),
		})
	}
	return writeCSV(path, records)
}

func (d *Dataset) saveSensorDataCSV(path string) error {
	records := make([][]string, 0, len(d.SensorSamples)+1)
	records = append(records, sensorDataHeader)
	for _, s := range d.SensorSamples {
		records = append(records, []string{
			s.ProcedureID,
			strconv.Itoa(s.TimestampMinutes),
			formatFloat(s.ForceSensor),
			formatFloat(s.Temperature),
			formatFloat(s.MotorCurrent),
			formatFloat(s.Vibration),
			formatFloat(s.Pressure),
		})
	}
	return writeCSV(path, records)
}

func (d *Dataset) saveNotesJSON(path string) error {
	data, err := json.MarshalIndent(d.Notes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal surgical notes: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write surgical notes: %w", err)
	}
	return nil
}

func loadProceduresCSV(path string) ([]models.Procedure, error) {
	rows, err := readCSV(path, proceduresHeader)
	if err != nil {
		return nil, err
	}

	procedures := make([]models.Procedure, 0, len(rows))
	for i, row := range rows {
		p := models.Procedure{
			ProcedureID:          row.str("procedure_id"),
			ProcedureType:        models.ProcedureType(row.str("procedure_type")),
			DurationMinutes:      row.float("duration_minutes"),
			EfficiencyScore:      row.float("efficiency_score"),
			SurgeonExperienceYrs: row.int("surgeon_experience_yrs"),
			PatientBMI:           row.float("patient_bmi"),
			BloodLossML:          row.float("blood_loss_ml"),
			Complications:        row.boolean("complications"),
			SurgicalSite:         models.SurgicalSite(row.str("surgical_site")),
			InstrumentChanges:    row.int("instrument_changes"),
		}
		if row.err != nil {
			return nil, fmt.Errorf("%s row %d: %w", proceduresFile, i+2, row.err)
		}
		procedures = append(procedures, p)
	}
	return procedures, nil
}

func loadToolMetricsCSV(path string) ([]models.ToolUsage, error) {
	rows, err := readCSV(path, toolMetricsHeader)
	if err != nil {
		return nil, err
	}

	usage := make([]models.ToolUsage, 0, len(rows))
	for i, row := range rows {
		u := models.ToolUsage{
			ProcedureID:             row.str("procedure_id"),
			ToolType:                models.ToolType(row.str("tool_type")),
			UsageTimeMinutes:        row.float("usage_time_minutes"),
			MaxForceApplied:         row.float("max_force_applied"),
			AvgTemperatureC:         row.float("avg_temperature_c"),
			ActivationCount:         row.int("activation_count"),
			EfficiencyRating:        row.float("efficiency_rating"),
			TissueStickingIncidents: row.int("tissue_sticking_incidents"),
		}
		if row.err != nil {
			return nil, fmt.Errorf("%s row %d: %w", toolMetricsFile, i+2, row.err)
		}
		usage = append(usage, u)
	}
	return usage, nil
}

func loadSensorDataCSV(path string) ([]models.SensorSample, error) {
	rows, err := readCSV(path, sensorDataHeader)
	if err != nil {
		return nil, err
	}

	samples := make([]models.SensorSample, 0, len(rows))
	for i, row := range rows {
		s := models.SensorSample{
			ProcedureID:      row.str("procedure_id"),
			TimestampMinutes: row.int("timestamp_minutes"),
			ForceSensor:      row.float("force_sensor"),
			Temperature:      row.float("temperature"),
			MotorCurrent:     row.float("motor_current"),
			Vibration:        row.float("vibration"),
			Pressure:         row.float("pressure"),
		}
		if row.err != nil {
			return nil, fmt.Errorf("%s row %d: %w", sensorDataFile, i+2, row.err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func loadNotesJSON(path string) ([]models.SurgicalNote, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read surgical notes: %w", err)
	}
	var notes []models.SurgicalNote
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("failed to parse surgical notes: %w", err)
	}
	return notes, nil
}

// csvRow gives header-indexed access to one CSV record.
// Parse errors stick to the row; callers check err once after reading fields.
type csvRow struct {
	cols   map[string]int
	record []string
	err    error
}

func (r *csvRow) str(name string) string {
	idx, ok := r.cols[name]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return r.record[idx]
}

func (r *csvRow) float(name string) float64 {
	if r.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(r.str(name), 64)
	if err != nil {
		r.err = fmt.Errorf("invalid %s: %q", name, r.str(name))
		return 0
	}
	return v
}

func (r *csvRow) int(name string) int {
	// Columns written by other tooling may carry a float representation
	return int(r.float(name))
}

func (r *csvRow) boolean(name string) bool {
	if r.err != nil {
		return false
	}
	v, err := strconv.ParseBool(r.str(name))
	if err != nil {
		r.err = fmt.Errorf("invalid %s: %q", name, r.str(name))
		return false
	}
	return v
}

// readCSV reads path and returns header-indexed rows.
// The required slice names columns that must be present.
func readCSV(path string, required []string) ([]*csvRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s is empty", filepath.Base(path))
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[name] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%s is missing column %q", filepath.Base(path), name)
		}
	}

	rows := make([]*csvRow, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, &csvRow{cols: cols, record: record})
	}
	return rows, nil
}

func writeCSV(path string, records [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
