package models

import "time"

// CorrelationStrength buckets the magnitude of a correlation coefficient
type CorrelationStrength string

const (
	CorrelationStrong   CorrelationStrength = "strong"   // |r| > 0.5
	CorrelationModerate CorrelationStrength = "moderate" // |r| > 0.3
	CorrelationWeak     CorrelationStrength = "weak"
)

// CorrelationDirection indicates the sign of a correlation coefficient
type CorrelationDirection string

const (
	CorrelationPositive CorrelationDirection = "positive"
	CorrelationNegative CorrelationDirection = "negative"
)

// Correlation represents one tool feature vs outcome relationship
type Correlation struct {
	Feature        string               `json:"feature"` // tool metric column
	Outcome        string               `json:"outcome"` // procedure outcome column
	Coefficient    float64              `json:"coefficient"`
	PValue         float64              `json:"p_value"`
	SampleSize     int                  `json:"sample_size"`
	Strength       CorrelationStrength  `json:"strength"`
	Direction      CorrelationDirection `json:"direction"`
	Interpretation string               `json:"interpretation"`
}

// Key returns the feature_outcome identifier for this pair.
func (c *Correlation) Key() string {
	return c.Feature + "_" + c.Outcome
}

// SkippedPair records a feature/outcome pair excluded from correlation analysis
type SkippedPair struct {
	Feature string `json:"feature"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason"`
}

// CorrelationReport holds the tool performance correlation results
type CorrelationReport struct {
	Correlations []Correlation `json:"correlations"` // pairs with |r| > 0.1
	Skipped      []SkippedPair `json:"skipped,omitempty"`
	SampleSize   int           `json:"sample_size"` // procedures with tool data
}

// OutlierProcedure represents one procedure flagged as an efficiency outlier
type OutlierProcedure struct {
	ProcedureID       string        `json:"procedure_id"`
	ProcedureType     ProcedureType `json:"procedure_type"`
	DurationMinutes   float64       `json:"duration_minutes"`
	EfficiencyScore   float64       `json:"efficiency_score"`
	BloodLossML       float64       `json:"blood_loss_ml"`
	InstrumentChanges int           `json:"instrument_changes"`
	AnomalyScore      float64       `json:"anomaly_score"` // isolation forest score in (0, 1)
	LikelyCauses      []string      `json:"likely_causes"`
}

// OutlierReport holds the efficiency outlier detection results
type OutlierReport struct {
	Outliers        []OutlierProcedure `json:"outliers"`
	TotalOutliers   int                `json:"total_outliers"`
	TotalProcedures int                `json:"total_procedures"`
	OutlierRate     float64            `json:"outlier_rate"`
	ScoreThreshold  float64            `json:"score_threshold"` // scores above this are flagged
}

// PhaseAssignment maps one sensor time bucket to a detected phase
type PhaseAssignment struct {
	ProcedureID      string `json:"procedure_id"`
	TimestampMinutes int    `json:"timestamp_minutes"`
	Phase            int    `json:"phase"`
}

// PhaseSummary describes one detected surgical phase
type PhaseSummary struct {
	Phase              int     `json:"phase"`
	PhaseName          string  `json:"phase_name"`
	AvgDurationMinutes float64 `json:"avg_duration_minutes"` // per-procedure time spent in this phase
	AvgForce           float64 `json:"avg_force"`
	AvgMotorCurrent    float64 `json:"avg_motor_current"`
	AvgVibration       float64 `json:"avg_vibration"`
	AvgPressure        float64 `json:"avg_pressure"`
	NumProcedures      int     `json:"n_procedures"`
	NumSamples         int     `json:"n_samples"`
}

// PhaseReport holds the surgical phase clustering results
type PhaseReport struct {
	Assignments     []PhaseAssignment `json:"phase_assignments"`
	Phases          []PhaseSummary    `json:"phase_summary"`
	SilhouetteScore float64           `json:"silhouette_score"`
	NumClusters     int               `json:"n_clusters"`
}

// ToolCount pairs an instrument with its usage count
type ToolCount struct {
	ToolType ToolType `json:"tool_type"`
	Count    int      `json:"count"`
}

// TypePattern summarizes workflow characteristics for one procedure type
type TypePattern struct {
	ProcedureType    ProcedureType `json:"procedure_type"`
	AvgDuration      float64       `json:"avg_duration"`
	AvgEfficiency    float64       `json:"avg_efficiency"`
	ComplicationRate float64       `json:"complication_rate"`
	CommonTools      []ToolCount   `json:"common_tools"` // top 3 by usage count
	AvgToolUsageTime float64       `json:"avg_tool_usage_time"`
	NumProcedures    int           `json:"n_procedures"`
}

// PowerEstimate holds the required sample size for one effect size
type PowerEstimate struct {
	EffectSize         float64 `json:"effect_size"`
	RequiredSampleSize int     `json:"required_sample_size"`
	Interpretation     string  `json:"interpretation"`
}

// ExperienceStats summarizes surgeon experience across procedures
type ExperienceStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
}

// ProcedureStats holds descriptive statistics for a procedure population
type ProcedureStats struct {
	TotalProcedures    int                   `json:"total_procedures"`
	ProcedureTypes     map[ProcedureType]int `json:"procedure_types"`
	AvgDurationMinutes float64               `json:"avg_duration_minutes"`
	AvgEfficiencyScore float64               `json:"avg_efficiency_score"`
	ComplicationRate   float64               `json:"complication_rate"`
	AvgBloodLossML     float64               `json:"avg_blood_loss_ml"`
	SurgeonExperience  ExperienceStats       `json:"surgeon_experience_stats"`
}

// DataQualityReport holds validation results for a dataset
type DataQualityReport struct {
	HasIssues        bool     `json:"has_issues"`
	Issues           []string `json:"issues"`
	ProcedureRecords int      `json:"procedure_records"`
	ToolRecords      int      `json:"tool_records"`
}

// AnalysisResults bundles every analysis output for one run
type AnalysisResults struct {
	RunID            string             `json:"run_id"`
	GeneratedAt      time.Time          `json:"generated_at"`
	Statistics       *ProcedureStats    `json:"statistics,omitempty"`
	ToolCorrelations *CorrelationReport `json:"tool_correlations,omitempty"`
	OutlierAnalysis  *OutlierReport     `json:"outlier_analysis,omitempty"`
	PhaseAnalysis    *PhaseReport       `json:"phase_analysis,omitempty"`
	TypePatterns     []TypePattern      `json:"type_patterns,omitempty"`
	PowerAnalysis    []PowerEstimate    `json:"power_analysis,omitempty"`
	DataQuality      *DataQualityReport `json:"data_quality,omitempty"`
}
