package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	DataDir         string `yaml:"data_dir"`
	ReportsDir      string `yaml:"reports_dir"`
	DatabasePath    string `yaml:"database_path"`
	RandomSeed      int64  `yaml:"random_seed"`
	ProcedureCount  int    `yaml:"procedure_count"`
	PhaseClusters   int    `yaml:"phase_clusters"`
	DashboardPort   string `yaml:"dashboard_port"`
	RefreshSchedule string `yaml:"refresh_schedule"` // cron spec, empty disables auto refresh
	LogLevel        string `yaml:"log_level"`
}

// DefaultConfig returns the configuration used when no file or environment overrides exist
func DefaultConfig() *Config {
	return &Config{
		DataDir:         "data",
		ReportsDir:      "reports",
		DatabasePath:    "data/surgical_analysis.db",
		RandomSeed:      42,
		ProcedureCount:  500,
		PhaseClusters:   4,
		DashboardPort:   "8050",
		RefreshSchedule: "",
		LogLevel:        "info",
	}
}

// LoadConfig loads configuration from an optional YAML file and environment variables.
// Environment variables take precedence over file values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			// Missing file falls back to defaults
		} else if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	config.DataDir = getEnv("DATA_DIR", config.DataDir)
	config.ReportsDir = getEnv("REPORTS_DIR", config.ReportsDir)
	config.DatabasePath = getEnv("DATABASE_PATH", config.DatabasePath)
	config.RandomSeed = getEnvAsInt64("RANDOM_SEED", config.RandomSeed)
	config.ProcedureCount = getEnvAsInt("PROCEDURE_COUNT", config.ProcedureCount)
	config.PhaseClusters = getEnvAsInt("PHASE_CLUSTERS", config.PhaseClusters)
	config.DashboardPort = getEnv("DASHBOARD_PORT", config.DashboardPort)
	config.RefreshSchedule = getEnv("REFRESH_SCHEDULE", config.RefreshSchedule)
	config.LogLevel = getEnv("LOG_LEVEL", config.LogLevel)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.ProcedureCount <= 0 {
		return fmt.Errorf("procedure_count must be positive, got %d", c.ProcedureCount)
	}
	if c.PhaseClusters < 2 {
		return fmt.Errorf("phase_clusters must be at least 2, got %d", c.PhaseClusters)
	}
	if _, err := strconv.Atoi(c.DashboardPort); err != nil {
		return fmt.Errorf("dashboard_port must be numeric, got %q", c.DashboardPort)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsInt64 retrieves an environment variable as an int64 or returns a default value
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
