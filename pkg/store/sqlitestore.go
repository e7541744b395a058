package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/surgiflow/surgiflow-go/pkg/models"
)

// SQLiteStore provides SQLite-based persistence for procedure records
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based storage instance
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Open database with connection pooling parameters
	// Format: file:path?param=value
	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_journal_mode=WAL&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writes, so keep the pool small
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// retryOnBusy retries a database operation if it fails due to SQLITE_BUSY
// This provides an additional safety net on top of the busy_timeout pragma
func (s *SQLiteStore) retryOnBusy(operation func() error, maxRetries int) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		// Check if error is SQLITE_BUSY (database is locked)
		if err.Error() == "database is locked (5) (SQLITE_BUSY)" {
			// Exponential backoff: 10ms, 20ms, 40ms, 80ms, 160ms
			backoff := time.Duration(10*(1<<uint(i))) * time.Millisecond
			time.Sleep(backoff)
			continue
		}

		// If it's not a busy error, return immediately
		return err
	}
	return fmt.Errorf("operation failed after %d retries: %w", maxRetries, err)
}

// initSchema creates the database schema if it doesn't exist
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS procedures (
		procedure_id TEXT PRIMARY KEY,
		procedure_type TEXT NOT NULL,
		duration_minutes REAL NOT NULL,
		efficiency_score REAL NOT NULL,
		surgeon_experience_yrs INTEGER NOT NULL,
		patient_bmi REAL NOT NULL,
		blood_loss_ml REAL NOT NULL,
		complications INTEGER NOT NULL,
		surgical_site TEXT NOT NULL,
		instrument_changes INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_procedures_efficiency ON procedures(efficiency_score);

	CREATE TABLE IF NOT EXISTS tool_metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		procedure_id TEXT NOT NULL,
		tool_type TEXT NOT NULL,
		usage_time_minutes REAL NOT NULL,
		max_force_applied REAL NOT NULL,
		avg_temperature_c REAL NOT NULL,
		activation_count INTEGER NOT NULL,
		efficiency_rating REAL NOT NULL,
		tissue_sticking_incidents INTEGER NOT NULL,
		FOREIGN KEY (procedure_id) REFERENCES procedures(procedure_id)
	);

	CREATE INDEX IF NOT EXISTS idx_tool_metrics_procedure_id ON tool_metrics(procedure_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveProcedures replaces the procedures table with the given records
func (s *SQLiteStore) SaveProcedures(procedures []models.Procedure) error {
	query := `
		INSERT OR REPLACE INTO procedures
		(procedure_id, procedure_type, duration_minutes, efficiency_score,
		 surgeon_experience_yrs, patient_bmi, blood_loss_ml, complications,
		 surgical_site, instrument_changes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	// Use retry logic since a dashboard refresh can rewrite the table
	// while readers hold connections
	err := s.retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`DELETE FROM procedures`); err != nil {
			return fmt.Errorf("failed to clear procedures: %w", err)
		}

		for _, p := range procedures {
			complications := 0
			if p.Complications {
				complications = 1
			}

			_, err := tx.Exec(query,
				p.ProcedureID,
				string(p.ProcedureType),
				p.DurationMinutes,
				p.EfficiencyScore,
				p.SurgeonExperienceYrs,
				p.PatientBMI,
				p.BloodLossML,
				complications,
				string(p.SurgicalSite),
				p.InstrumentChanges,
			)
			if err != nil {
				return fmt.Errorf("failed to insert procedure %s: %w", p.ProcedureID, err)
			}
		}

		return tx.Commit()
	}, 5)

	if err != nil {
		return fmt.Errorf("failed to save procedures: %w", err)
	}

	return nil
}

// SaveToolUsage replaces the tool_metrics table with the given records
func (s *SQLiteStore) SaveToolUsage(usage []models.ToolUsage) error {
	query := `
		INSERT INTO tool_metrics
		(procedure_id, tool_type, usage_time_minutes, max_force_applied,
		 avg_temperature_c, activation_count, efficiency_rating, tissue_sticking_incidents)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := s.retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`DELETE FROM tool_metrics`); err != nil {
			return fmt.Errorf("failed to clear tool metrics: %w", err)
		}

		for _, u := range usage {
			_, err := tx.Exec(query,
				u.ProcedureID,
				string(u.ToolType),
				u.UsageTimeMinutes,
				u.MaxForceApplied,
				u.AvgTemperatureC,
				u.ActivationCount,
				u.EfficiencyRating,
				u.TissueStickingIncidents,
			)
			if err != nil {
				return fmt.Errorf("failed to insert tool metric for %s: %w", u.ProcedureID, err)
			}
		}

		return tx.Commit()
	}, 5)

	if err != nil {
		return fmt.Errorf("failed to save tool usage: %w", err)
	}

	return nil
}

// GetProcedure retrieves a procedure by ID
func (s *SQLiteStore) GetProcedure(id string) (*models.Procedure, error) {
	query := `
		SELECT procedure_id, procedure_type, duration_minutes, efficiency_score,
		       surgeon_experience_yrs, patient_bmi, blood_loss_ml, complications,
		       surgical_site, instrument_changes
		FROM procedures WHERE procedure_id = ?
	`

	var p models.Procedure
	var complications int

	err := s.db.QueryRow(query, id).Scan(
		&p.ProcedureID,
		&p.ProcedureType,
		&p.DurationMinutes,
		&p.EfficiencyScore,
		&p.SurgeonExperienceYrs,
		&p.PatientBMI,
		&p.BloodLossML,
		&complications,
		&p.SurgicalSite,
		&p.InstrumentChanges,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("procedure not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get procedure: %w", err)
	}

	p.Complications = complications != 0
	return &p, nil
}

// QueryEfficientProcedures lists procedures above the efficiency threshold,
// most efficient first
func (s *SQLiteStore) QueryEfficientProcedures(minEfficiency float64) ([]models.Procedure, error) {
	query := `
		SELECT procedure_id, procedure_type, duration_minutes, efficiency_score,
		       surgeon_experience_yrs, patient_bmi, blood_loss_ml, complications,
		       surgical_site, instrument_changes
		FROM procedures
		WHERE efficiency_score > ?
		ORDER BY efficiency_score DESC
	`

	rows, err := s.db.Query(query, minEfficiency)
	if err != nil {
		return nil, fmt.Errorf("failed to query procedures: %w", err)
	}
	defer rows.Close()

	procedures := make([]models.Procedure, 0)
	for rows.Next() {
		var p models.Procedure
		var complications int

		if err := rows.Scan(
			&p.ProcedureID,
			&p.ProcedureType,
			&p.DurationMinutes,
			&p.EfficiencyScore,
			&p.SurgeonExperienceYrs,
			&p.PatientBMI,
			&p.BloodLossML,
			&complications,
			&p.SurgicalSite,
			&p.InstrumentChanges,
		); err != nil {
			continue
		}

		p.Complications = complications != 0
		procedures = append(procedures, p)
	}

	return procedures, nil
}
