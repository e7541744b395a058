package store

import "github.com/surgiflow/surgiflow-go/pkg/models"

// Store is the interface for procedure persistence.
// This holds the structured procedure and tool tables; analysis results
// live in flat files under the data directory, not here.
type Store interface {
	// Procedure operations
	SaveProcedures(procedures []models.Procedure) error
	GetProcedure(id string) (*models.Procedure, error)
	QueryEfficientProcedures(minEfficiency float64) ([]models.Procedure, error)

	// Tool metric operations
	SaveToolUsage(usage []models.ToolUsage) error

	Close() error
}
