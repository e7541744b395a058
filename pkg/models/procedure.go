package models

import "fmt"

// ProcedureType represents the kind of surgical procedure
type ProcedureType string

const (
	ProcedureLaparoscopicCholecystectomy ProcedureType = "Laparoscopic Cholecystectomy"
	ProcedureBariatricSurgery            ProcedureType = "Bariatric Surgery"
	ProcedureColorectalSurgery           ProcedureType = "Colorectal Surgery"
	ProcedureHerniaRepair                ProcedureType = "Hernia Repair"
	ProcedureGISurgery                   ProcedureType = "GI Surgery"
)

// AllProcedureTypes lists every procedure type in generation order.
var AllProcedureTypes = []ProcedureType{
	ProcedureLaparoscopicCholecystectomy,
	ProcedureBariatricSurgery,
	ProcedureColorectalSurgery,
	ProcedureHerniaRepair,
	ProcedureGISurgery,
}

// SurgicalSite represents the anatomical region of a procedure
type SurgicalSite string

const (
	SiteAbdominal SurgicalSite = "Abdominal"
	SiteThoracic  SurgicalSite = "Thoracic"
	SitePelvic    SurgicalSite = "Pelvic"
)

// AllSurgicalSites lists every surgical site in generation order.
var AllSurgicalSites = []SurgicalSite{SiteAbdominal, SiteThoracic, SitePelvic}

// ToolType represents an instrument tracked by the platform
type ToolType string

const (
	ToolHarmonicScalpel       ToolType = "Harmonic Scalpel"
	ToolLigasure              ToolType = "Ligasure"
	ToolRoboticGrasper        ToolType = "Robotic Grasper"
	ToolElectrosurgicalPencil ToolType = "Electrosurgical Pencil"
	ToolStapler               ToolType = "Stapler"
	ToolSuctionIrrigation     ToolType = "Suction/Irrigation"
)

// AllToolTypes lists every instrument in generation order.
var AllToolTypes = []ToolType{
	ToolHarmonicScalpel,
	ToolLigasure,
	ToolRoboticGrasper,
	ToolElectrosurgicalPencil,
	ToolStapler,
	ToolSuctionIrrigation,
}

// Procedure represents a single surgical procedure record
type Procedure struct {
	ProcedureID          string        `json:"procedure_id"`
	ProcedureType        ProcedureType `json:"procedure_type"`
	DurationMinutes      float64       `json:"duration_minutes"`
	EfficiencyScore      float64       `json:"efficiency_score"` // 60-100 scale
	SurgeonExperienceYrs int           `json:"surgeon_experience_yrs"`
	PatientBMI           float64       `json:"patient_bmi"`
	BloodLossML          float64       `json:"blood_loss_ml"`
	Complications        bool          `json:"complications"`
	SurgicalSite         SurgicalSite  `json:"surgical_site"`
	InstrumentChanges    int           `json:"instrument_changes"`
}

// Validate checks if the Procedure record is plausible
func (p *Procedure) Validate() error {
	if p.ProcedureID == "" {
		return fmt.Errorf("procedure_id is required")
	}
	if p.DurationMinutes <= 0 {
		return fmt.Errorf("duration_minutes must be positive, got %v", p.DurationMinutes)
	}
	if p.EfficiencyScore < 0 || p.EfficiencyScore > 100 {
		return fmt.Errorf("efficiency_score must be in [0, 100], got %v", p.EfficiencyScore)
	}
	return nil
}

// ToolUsage represents one instrument's metrics during a procedure
type ToolUsage struct {
	ProcedureID             string   `json:"procedure_id"`
	ToolType                ToolType `json:"tool_type"`
	UsageTimeMinutes        float64  `json:"usage_time_minutes"`
	MaxForceApplied         float64  `json:"max_force_applied"` // Newtons
	AvgTemperatureC         float64  `json:"avg_temperature_c"`
	ActivationCount         int      `json:"activation_count"`
	EfficiencyRating        float64  `json:"efficiency_rating"` // 0-10 scale
	TissueStickingIncidents int      `json:"tissue_sticking_incidents"`
}

// SensorSample represents one intraoperative telemetry reading
type SensorSample struct {
	ProcedureID      string  `json:"procedure_id"`
	TimestampMinutes int     `json:"timestamp_minutes"` // minutes from first incision
	ForceSensor      float64 `json:"force_sensor"`
	Temperature      float64 `json:"temperature"`
	MotorCurrent     float64 `json:"motor_current"`
	Vibration        float64 `json:"vibration"`
	Pressure         float64 `json:"pressure"`
}

// SurgicalNote represents unstructured documentation for a procedure
type SurgicalNote struct {
	ProcedureID      string `json:"procedure_id"`
	SurgeonNotes     string `json:"surgeon_notes"`
	NurseNotes       string `json:"nurse_notes"`
	AnesthesiaNotes  string `json:"anesthesia_notes"`
	DifficultyRating int    `json:"difficulty_rating"` // 1-5 scale
	KeyObservations  string `json:"key_observations"`
}
