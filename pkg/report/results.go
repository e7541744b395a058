package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/surgiflow/surgiflow-go/pkg/models"
)

// ResultsFile is the default filename for saved analysis runs.
const ResultsFile = "analysis_results.json"

const processedDirName = "processed"

// SaveResults writes an analysis run as JSON under <dataDir>/processed/.
// A missing run ID or timestamp is stamped before writing.
func SaveResults(dataDir, filename string, results *models.AnalysisResults) error {
	if results.RunID == "" {
		results.RunID = uuid.New().String()
	}
	if results.GeneratedAt.IsZero() {
		results.GeneratedAt = time.Now()
	}

	processedDir := filepath.Join(dataDir, processedDirName)
	if err := os.MkdirAll(processedDir, 0755); err != nil {
		return fmt.Errorf("failed to create processed data directory: %w", err)
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal analysis results: %w", err)
	}

	if err := os.WriteFile(filepath.Join(processedDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write analysis results: %w", err)
	}
	return nil
}

// LoadResults reads a previously saved analysis run.
func LoadResults(dataDir, filename string) (*models.AnalysisResults, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, processedDirName, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis results: %w", err)
	}

	var results models.AnalysisResults
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to parse analysis results: %w", err)
	}
	return &results, nil
}
