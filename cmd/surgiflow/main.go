// Entry point for the SurgiFlow CLI
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/surgiflow/surgiflow-go/pkg/config"
	"github.com/surgiflow/surgiflow-go/pkg/dashboard"
	"github.com/surgiflow/surgiflow-go/pkg/dataset"
	"github.com/surgiflow/surgiflow-go/pkg/models"
	"github.com/surgiflow/surgiflow-go/pkg/report"
	"github.com/surgiflow/surgiflow-go/pkg/store"
)

const surgiflowVersion = "v0.1.0"

const defaultConfigPath = "surgiflow.yaml"

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printHelp()
		return
	}

	switch args[0] {
	case "-h", "--help", "help":
		printHelp()
		return
	case "-v", "--version":
		fmt.Println("SurgiFlow version:", surgiflowVersion)
		return
	}

	cfg, err := config.LoadConfig(defaultConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	switch args[0] {
	case "generate":
		if err := runGenerate(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating dataset: %v\n", err)
			os.Exit(1)
		}
	case "analyze":
		if err := runAnalyze(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error running analysis: %v\n", err)
			os.Exit(1)
		}
	case "report":
		if err := runReport(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error building report: %v\n", err)
			os.Exit(1)
		}
	case "dashboard":
		if err := runDashboard(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error running dashboard: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "Unknown command. Use --help for usage.")
		os.Exit(1)
	}
}

// runGenerate fabricates a synthetic cohort and persists it to the raw data
// files and the SQLite store.
func runGenerate(cfg *config.Config) error {
	log.Printf("Generating %d procedures (seed %d)", cfg.ProcedureCount, cfg.RandomSeed)
	ds, err := dataset.NewGenerator(cfg.RandomSeed).Generate(cfg.ProcedureCount)
	if err != nil {
		return err
	}

	if err := ds.Save(cfg.DataDir); err != nil {
		return err
	}
	log.Printf("Raw dataset written under %s", filepath.Join(cfg.DataDir, "raw"))

	st, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SaveProcedures(ds.Procedures); err != nil {
		return err
	}
	if err := st.SaveToolUsage(ds.ToolUsage); err != nil {
		return err
	}

	efficient, err := st.QueryEfficientProcedures(90)
	if err != nil {
		return err
	}
	log.Printf("Persisted %d procedures and %d tool records to %s (%d with efficiency > 90)",
		len(ds.Procedures), len(ds.ToolUsage), cfg.DatabasePath, len(efficient))
	return nil
}

// runAnalyze runs every analysis engine over the stored dataset and saves the
// results bundle.
func runAnalyze(cfg *config.Config) error {
	ds, err := dataset.Load(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to load dataset (run 'surgiflow generate' first): %w", err)
	}

	results, err := report.BuildResults(ds, cfg.PhaseClusters, cfg.RandomSeed)
	if err != nil {
		return err
	}

	if err := report.SaveResults(cfg.DataDir, report.ResultsFile, results); err != nil {
		return err
	}
	log.Printf("Analysis results saved (run %s)", results.RunID)
	return nil
}

// runReport renders the console tables and writes the Markdown report from the
// last saved analysis run.
func runReport(cfg *config.Config) error {
	results, err := report.LoadResults(cfg.DataDir, report.ResultsFile)
	if err != nil {
		return fmt.Errorf("failed to load analysis results (run 'surgiflow analyze' first): %w", err)
	}
	ds, err := dataset.Load(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to load dataset (run 'surgiflow generate' first): %w", err)
	}

	report.RenderTypePatterns(os.Stdout, results.TypePatterns)
	if results.ToolCorrelations != nil {
		report.RenderCorrelationTable(os.Stdout, results.ToolCorrelations)
	}
	report.RenderPowerTable(os.Stdout, results.PowerAnalysis)
	report.RenderSensorTrace(os.Stdout, ds)

	if _, err := report.ExportMarkdownReport(results, cfg.ReportsDir, report.ReportFile); err != nil {
		return err
	}
	log.Printf("Markdown report written to %s", filepath.Join(cfg.ReportsDir, report.ReportFile))
	return nil
}

// runDashboard serves the chart dashboard. Each refresh reloads the raw data,
// re-runs the engines, and rewrites the saved results and the SQLite tables.
func runDashboard(cfg *config.Config) error {
	st, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	refresh := func() (*models.AnalysisResults, *dataset.Dataset, error) {
		ds, err := dataset.Load(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load dataset (run 'surgiflow generate' first): %w", err)
		}
		results, err := report.BuildResults(ds, cfg.PhaseClusters, cfg.RandomSeed)
		if err != nil {
			return nil, nil, err
		}
		if err := report.SaveResults(cfg.DataDir, report.ResultsFile, results); err != nil {
			return nil, nil, err
		}
		if err := st.SaveProcedures(ds.Procedures); err != nil {
			return nil, nil, err
		}
		if err := st.SaveToolUsage(ds.ToolUsage); err != nil {
			return nil, nil, err
		}
		return results, ds, nil
	}

	server := dashboard.NewServer(cfg.DashboardPort, refresh)
	if cfg.RefreshSchedule != "" {
		if err := server.StartSchedule(cfg.RefreshSchedule); err != nil {
			return err
		}
		defer server.StopSchedule()
	}

	log.Printf("Dashboard available at http://localhost:%s", cfg.DashboardPort)
	return server.Start()
}

func printHelp() {
	fmt.Println("Usage:")
	fmt.Println("  generate       Fabricate the synthetic dataset (CSV/JSON + SQLite)")
	fmt.Println("  analyze        Run the analysis engines and save JSON results")
	fmt.Println("  report         Render console tables and the Markdown report")
	fmt.Println("  dashboard      Serve the interactive chart dashboard")
	fmt.Println("  -h, --help     Show this help message")
	fmt.Println("  -v, --version  Show SurgiFlow version")
	fmt.Println()
	fmt.Println("Configuration comes from surgiflow.yaml plus environment overrides")
	fmt.Println("(DATA_DIR, DATABASE_PATH, RANDOM_SEED, PROCEDURE_COUNT, DASHBOARD_PORT, ...)")
}
