package dashboard

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/surgiflow/surgiflow-go/pkg/dataset"
	"github.com/surgiflow/surgiflow-go/pkg/models"
)

// RefreshFunc rebuilds the analysis snapshot served by the dashboard.
type RefreshFunc func() (*models.AnalysisResults, *dataset.Dataset, error)

// Server serves the chart dashboard and its JSON API
type Server struct {
	port    string
	mux     *http.ServeMux
	refresh RefreshFunc
	cron    *cron.Cron

	mu      sync.RWMutex
	results *models.AnalysisResults
	data    *dataset.Dataset
}

// NewServer creates a new dashboard server
func NewServer(port string, refresh RefreshFunc) *Server {
	s := &Server{
		port:    port,
		mux:     http.NewServeMux(),
		refresh: refresh,
		cron:    cron.New(),
	}

	s.registerRoutes()
	return s
}

// registerRoutes sets up the HTTP routes
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/", s.handleOverview)
	s.mux.HandleFunc("/phases", s.handlePhases)
	s.mux.HandleFunc("/outliers", s.handleOutliers)
	s.mux.HandleFunc("/tools", s.handleTools)
	s.mux.HandleFunc("/monitor", s.handleMonitor)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/summary", s.handleSummary)
	s.mux.HandleFunc("/api/correlations", s.handleCorrelations)
	s.mux.HandleFunc("/api/outliers", s.handleOutlierData)
	s.mux.HandleFunc("/api/phases", s.handlePhaseData)
	s.mux.HandleFunc("/api/patterns", s.handlePatterns)
	s.mux.HandleFunc("/api/power", s.handlePower)
	s.mux.HandleFunc("/api/refresh", s.handleRefresh)
}

// Start builds the initial snapshot and starts the HTTP server
func (s *Server) Start() error {
	if err := s.Refresh(); err != nil {
		return fmt.Errorf("failed to build initial snapshot: %w", err)
	}

	addr := fmt.Sprintf(":%s", s.port)
	log.Printf("Starting dashboard server on %s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// Refresh rebuilds the analysis snapshot and swaps it in
func (s *Server) Refresh() error {
	results, data, err := s.refresh()
	if err != nil {
		return fmt.Errorf("failed to refresh analysis: %w", err)
	}

	s.mu.Lock()
	s.results = results
	s.data = data
	s.mu.Unlock()

	log.Printf("Analysis snapshot refreshed (run %s)", results.RunID)
	return nil
}

// StartSchedule begins cron-driven snapshot refreshes
func (s *Server) StartSchedule(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := s.Refresh(); err != nil {
			log.Printf("Scheduled refresh failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}

	s.cron.Start()
	log.Printf("Scheduled dashboard refresh: %s", spec)
	return nil
}

// StopSchedule stops cron-driven refreshes
func (s *Server) StopSchedule() {
	s.cron.Stop()
}

// snapshot returns the currently served results and dataset
func (s *Server) snapshot() (*models.AnalysisResults, *dataset.Dataset) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results, s.data
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// handleSummary returns run metadata, statistics, and data quality
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	results, _ := s.snapshot()
	if results == nil {
		http.Error(w, "Analysis not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id":       results.RunID,
		"generated_at": results.GeneratedAt,
		"statistics":   results.Statistics,
		"data_quality": results.DataQuality,
	})
}

// handleCorrelations returns the tool correlation report
func (s *Server) handleCorrelations(w http.ResponseWriter, r *http.Request) {
	results, _ := s.snapshot()
	if results == nil {
		http.Error(w, "Analysis not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(results.ToolCorrelations)
}

// handleOutlierData returns the outlier report
func (s *Server) handleOutlierData(w http.ResponseWriter, r *http.Request) {
	results, _ := s.snapshot()
	if results == nil {
		http.Error(w, "Analysis not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(results.OutlierAnalysis)
}

// handlePhaseData returns the phase clustering report
func (s *Server) handlePhaseData(w http.ResponseWriter, r *http.Request) {
	results, _ := s.snapshot()
	if results == nil {
		http.Error(w, "Analysis not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(results.PhaseAnalysis)
}

// handlePatterns returns the procedure-type patterns
func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	results, _ := s.snapshot()
	if results == nil {
		http.Error(w, "Analysis not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(results.TypePatterns)
}

// handlePower returns the power analysis estimates
func (s *Server) handlePower(w http.ResponseWriter, r *http.Request) {
	results, _ := s.snapshot()
	if results == nil {
		http.Error(w, "Analysis not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(results.PowerAnalysis)
}

// handleRefresh rebuilds the snapshot on demand
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.Refresh(); err != nil {
		http.Error(w, fmt.Sprintf("Failed to refresh: %v", err), http.StatusInternalServerError)
		return
	}

	results, _ := s.snapshot()
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "refreshed", "run_id": results.RunID})
}

// handleOverview serves the main efficiency dashboard page
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	results, data := s.snapshot()
	if results == nil || data == nil {
		http.Error(w, "Analysis not ready", http.StatusServiceUnavailable)
		return
	}

	if err := overviewPage(results, data).Render(w); err != nil {
		log.Printf("Failed to render overview page: %v", err)
	}
}

// handlePhases serves the surgical phase page
func (s *Server) handlePhases(w http.ResponseWriter, r *http.Request) {
	results, _ := s.snapshot()
	if results == nil {
		http.Error(w, "Analysis not ready", http.StatusServiceUnavailable)
		return
	}
	if results.PhaseAnalysis == nil {
		http.Error(w, "Phase analysis not available", http.StatusNotFound)
		return
	}

	if err := phasesPage(results.PhaseAnalysis).Render(w); err != nil {
		log.Printf("Failed to render phases page: %v", err)
	}
}

// handleOutliers serves the outlier detection page
func (s *Server) handleOutliers(w http.ResponseWriter, r *http.Request) {
	results, data := s.snapshot()
	if results == nil || data == nil {
		http.Error(w, "Analysis not ready", http.StatusServiceUnavailable)
		return
	}
	if results.OutlierAnalysis == nil {
		http.Error(w, "Outlier analysis not available", http.StatusNotFound)
		return
	}

	if err := outliersPage(results.OutlierAnalysis, data).Render(w); err != nil {
		log.Printf("Failed to render outliers page: %v", err)
	}
}

// handleTools serves the tool performance heatmap page
func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	_, data := s.snapshot()
	if data == nil {
		http.Error(w, "Analysis not ready", http.StatusServiceUnavailable)
		return
	}

	if err := toolsPage(data).Render(w); err != nil {
		log.Printf("Failed to render tools page: %v", err)
	}
}

// handleMonitor serves the telemetry monitoring page
func (s *Server) handleMonitor(w http.ResponseWriter, r *http.Request) {
	_, data := s.snapshot()
	if data == nil {
		http.Error(w, "Analysis not ready", http.StatusServiceUnavailable)
		return
	}
	if len(data.SensorSamples) == 0 {
		http.Error(w, "No sensor telemetry available", http.StatusNotFound)
		return
	}

	if err := monitorPage(data).Render(w); err != nil {
		log.Printf("Failed to render monitor page: %v", err)
	}
}
