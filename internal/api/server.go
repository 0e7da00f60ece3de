package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/miravand/aquatrend/internal/cluster"
	"github.com/miravand/aquatrend/internal/usecases"
)

// Server exposes the dataset and analysis over HTTP JSON for the
// dashboard frontend. The frontend renders the charts; this side only
// serves immutable computed structures.
type Server struct {
	useCase *usecases.AnalysisUseCase
	mux     *http.ServeMux
}

// NewServer creates the HTTP API around the given use case.
func NewServer(useCase *usecases.AnalysisUseCase) *Server {
	s := &Server{
		useCase: useCase,
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("/api/datasets", s.handleDatasets)
	s.mux.HandleFunc("/api/analysis", s.handleAnalysis)
	s.mux.HandleFunc("/api/summary", s.handleSummary)
	s.mux.HandleFunc("/api/stations", s.handleStations)
	return s
}

// Handler returns the http.Handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start blocks serving the API on addr.
func (s *Server) Start(addr string) error {
	log.Printf("Serving dashboard API on %s", addr)
	return http.ListenAndServe(addr, s.mux)
}

type uploadResult struct {
	Period  string `json:"period"`
	Samples int    `json:"samples"`
	Dropped int    `json:"dropped"`
}

// handleDatasets ingests multipart CSV uploads, one file per sampling
// period. The period label comes from the "label" form field when the
// upload has a single file, otherwise from each file name (sans
// extension, which is the export's date token).
func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("failed to parse upload: %v", err), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "no files in upload (field name: files)", http.StatusBadRequest)
		return
	}

	label := strings.TrimSpace(r.FormValue("label"))
	var results []uploadResult
	for _, fh := range files {
		periodLabel := label
		if periodLabel == "" || len(files) > 1 {
			periodLabel = strings.TrimSuffix(fh.Filename, filepath.Ext(fh.Filename))
		}

		f, err := fh.Open()
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to open %s: %v", fh.Filename, err), http.StatusBadRequest)
			return
		}
		added, dropped, err := s.useCase.IngestCSVPeriod(periodLabel, f)
		f.Close()
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to ingest %s: %v", fh.Filename, err), http.StatusBadRequest)
			return
		}
		results = append(results, uploadResult{Period: periodLabel, Samples: added, Dropped: dropped})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"uploaded": results})
}

// handleAnalysis runs the full analysis with the query-configured
// cluster count, algorithm and smoothing factor.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	opts := usecases.DefaultOptions()
	if v := r.URL.Query().Get("clusters"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil || k < 1 {
			http.Error(w, "clusters must be a positive integer", http.StatusBadRequest)
			return
		}
		opts.Clusters = k
	}
	switch r.URL.Query().Get("algorithm") {
	case "", "kmeans":
		opts.Algorithm = cluster.AlgorithmKMeans
	case "uniform":
		opts.Algorithm = cluster.AlgorithmUniform
	default:
		http.Error(w, "algorithm must be kmeans or uniform", http.StatusBadRequest)
		return
	}
	if v := r.URL.Query().Get("lambda"); v != "" {
		lambda, err := strconv.ParseFloat(v, 64)
		if err != nil || lambda <= 0 || lambda > 1 {
			http.Error(w, "lambda must lie in (0, 1]", http.StatusBadRequest)
			return
		}
		opts.Lambda = lambda
	}

	report, err := s.useCase.Analyze(opts)
	if err != nil {
		log.Printf("Analysis failed: %v", err)
		http.Error(w, "analysis failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleSummary returns the AI narrative for the current dataset. The
// use case substitutes the fallback result on collaborator failure, so
// this always answers 200 with a displayable summary.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.useCase.Summarize(r.Context()))
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	stations, err := s.useCase.Stations()
	if err != nil {
		log.Printf("Failed to list stations: %v", err)
		http.Error(w, "failed to list stations", http.StatusInternalServerError)
		return
	}
	if stations == nil {
		stations = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"stations": stations})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
