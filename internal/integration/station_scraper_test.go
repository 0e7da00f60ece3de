package integration

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockHTMLServer creates a test server that serves a fixed HTML response
func mockHTMLServer(html string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, html)
	}))
}

func TestFetchPeriodWithMock(t *testing.T) {
	mockHTML := `
<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body>
    <h4>Water quality report 2024-06-15</h4>
    <table>
        <tbody>
            <tr><td>ST-01</td><td>420.5</td><td>12.3</td></tr>
            <tr><td>ST-02</td><td>910</td><td>44</td></tr>
            <tr><td>ST-03</td><td>n/a</td><td>5</td></tr>
            <tr><td></td><td>100</td><td>5</td></tr>
        </tbody>
    </table>
</body>
</html>`

	server := mockHTMLServer(mockHTML)
	defer server.Close()

	scraper := NewStationScraper(server.URL)
	period, err := scraper.FetchPeriod()
	if err != nil {
		t.Fatalf("FetchPeriod: %v", err)
	}

	if period.Label != "2024-06-15" {
		t.Errorf("period label = %q, want 2024-06-15", period.Label)
	}
	if len(period.Samples) != 2 {
		t.Fatalf("got %d samples, want 2 (invalid rows skipped)", len(period.Samples))
	}

	first := period.Samples[0]
	if first.Station != "ST-01" || first.Conductivity != 420.5 || first.Nitrate != 12.3 {
		t.Errorf("unexpected first sample: %+v", first)
	}
	if first.Period != "2024-06-15" {
		t.Errorf("sample period = %q, want 2024-06-15", first.Period)
	}
}

func TestFetchPeriodFallbackLabel(t *testing.T) {
	mockHTML := `
<html><body>
    <table><tbody><tr><td>ST-01</td><td>100</td><td>2</td></tr></tbody></table>
</body></html>`

	server := mockHTMLServer(mockHTML)
	defer server.Close()

	scraper := NewStationScraper(server.URL)
	period, err := scraper.FetchPeriod()
	if err != nil {
		t.Fatalf("FetchPeriod: %v", err)
	}
	if period.Label == "" {
		t.Error("period label is empty, want today's date as fallback")
	}
}

func TestFetchPeriodBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	scraper := NewStationScraper(server.URL)
	if _, err := scraper.FetchPeriod(); err == nil {
		t.Error("expected error for non-200 response, got nil")
	}
}
