package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/miravand/aquatrend/internal/repository"
	"github.com/miravand/aquatrend/internal/usecases"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := repository.NewSQLiteSampleRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	useCase := usecases.NewAnalysisUseCase(repo, nil, nil)
	return NewServer(useCase)
}

func uploadCSV(t *testing.T, server *Server, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("files", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

const sampleCSV = "station,ec,nitrate\nST-01,420,12\nST-02,910,44\nST-03,150,3\nST-04,300,9\nST-05,600,25\n"

func TestUploadAndAnalysis(t *testing.T) {
	server := newTestServer(t)

	for _, name := range []string{"2024-01.csv", "2024-02.csv"} {
		rec := uploadCSV(t, server, name, sampleCSV)
		if rec.Code != http.StatusOK {
			t.Fatalf("upload %s: status %d, body %s", name, rec.Code, rec.Body.String())
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/analysis?clusters=2&algorithm=kmeans", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("analysis: status %d, body %s", rec.Code, rec.Body.String())
	}

	var report usecases.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if len(report.PeriodLabels) != 2 {
		t.Errorf("report has %d periods, want 2", len(report.PeriodLabels))
	}
	if len(report.Stations) != 5 {
		t.Errorf("report has %d stations, want 5", len(report.Stations))
	}
	if len(report.Ranking) != 5 {
		t.Errorf("ranking has %d entries, want 5", len(report.Ranking))
	}
	for _, p := range report.Periods {
		for _, s := range p.Samples {
			if s.Cluster == "" {
				t.Fatalf("sample %s in %s has no cluster label", s.Station, p.Label)
			}
		}
	}
}

func TestUploadRejectsEmptyForm(t *testing.T) {
	server := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for upload without files", rec.Code)
	}
}

func TestAnalysisRejectsBadParams(t *testing.T) {
	server := newTestServer(t)

	for _, url := range []string{
		"/api/analysis?clusters=zero",
		"/api/analysis?clusters=-1",
		"/api/analysis?algorithm=voronoi",
		"/api/analysis?lambda=0",
		"/api/analysis?lambda=1.5",
	} {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", url, rec.Code)
		}
	}
}

func TestSummaryFallsBackWithoutService(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary: status %d, want 200", rec.Code)
	}

	var result struct {
		Summary         string   `json:"summary"`
		Recommendations []string `json:"recommendations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding summary: %v", err)
	}
	if result.Summary == "" || len(result.Recommendations) == 0 {
		t.Errorf("fallback summary is incomplete: %s", rec.Body.String())
	}
}

func TestStationsEmptyDataset(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stations", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("stations: status %d, want 200", rec.Code)
	}

	var result map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding stations: %v", err)
	}
	if result["stations"] == nil || len(result["stations"]) != 0 {
		t.Errorf("stations = %v, want empty list", result["stations"])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/datasets: status = %d, want 405", rec.Code)
	}
}
