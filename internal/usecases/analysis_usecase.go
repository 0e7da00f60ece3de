// Package usecases contains the application's business logic
package usecases

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/miravand/aquatrend/internal/entities"
	"github.com/miravand/aquatrend/internal/ingest"
	"github.com/miravand/aquatrend/internal/integration"
	"github.com/miravand/aquatrend/internal/integration/openai"
	"github.com/miravand/aquatrend/internal/repository"
)

// AnalysisUseCase handles business logic around the sampling dataset:
// ingestion, analysis runs and narrative summaries.
type AnalysisUseCase struct {
	repo           repository.SampleRepository
	scraper        *integration.StationScraper
	summaryService openai.SummaryService
}

// NewAnalysisUseCase creates a new analysis use case. scraper and
// summaryService may be nil when the respective integration is not
// configured.
func NewAnalysisUseCase(repo repository.SampleRepository, scraper *integration.StationScraper, summaryService openai.SummaryService) *AnalysisUseCase {
	return &AnalysisUseCase{
		repo:           repo,
		scraper:        scraper,
		summaryService: summaryService,
	}
}

// IngestCSVPeriod parses one uploaded CSV export and stores it as the
// period labeled label, replacing any previous upload with that label.
// Returns the number of samples stored and the number of rows dropped.
func (uc *AnalysisUseCase) IngestCSVPeriod(label string, r io.Reader) (int, int, error) {
	log.Printf("Ingesting CSV upload for period %s", label)
	period, dropped, err := ingest.ParsePeriodCSV(label, r)
	if err != nil {
		return 0, dropped, fmt.Errorf("failed to parse upload for period %s: %v", label, err)
	}

	if err := uc.repo.ReplacePeriod(period); err != nil {
		return 0, dropped, fmt.Errorf("failed to store period %s: %v", label, err)
	}

	return len(period.Samples), dropped, nil
}

// RefreshFromSource scrapes the configured station table and stores the
// result as a period.
func (uc *AnalysisUseCase) RefreshFromSource() error {
	if uc.scraper == nil {
		return fmt.Errorf("no station table source configured")
	}
	log.Println("Starting station table refresh...")

	period, err := uc.scraper.FetchPeriod()
	if err != nil {
		return fmt.Errorf("failed to fetch station table: %v", err)
	}
	if len(period.Samples) == 0 {
		return fmt.Errorf("station table for period %s contained no usable rows", period.Label)
	}

	if err := uc.repo.ReplacePeriod(period); err != nil {
		return fmt.Errorf("failed to store scraped period %s: %v", period.Label, err)
	}

	log.Printf("Refreshed period %s with %d samples", period.Label, len(period.Samples))
	return nil
}

// Dataset returns the stored periods in label order.
func (uc *AnalysisUseCase) Dataset() ([]entities.Period, error) {
	return uc.repo.Periods()
}

// Stations returns the distinct station codes in the dataset.
func (uc *AnalysisUseCase) Stations() ([]string, error) {
	return uc.repo.Stations()
}

// Analyze loads the dataset and computes the full report.
func (uc *AnalysisUseCase) Analyze(opts Options) (*Report, error) {
	periods, err := uc.repo.Periods()
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %v", err)
	}
	log.Printf("Running analysis over %d periods (clusters=%d, algorithm=%s)",
		len(periods), opts.Clusters, opts.Algorithm)
	return ComputeReport(periods, opts), nil
}

// Summarize requests the AI narrative for the current dataset. Failures
// of the collaborator are logged and replaced with the static fallback
// result so the caller always gets something to display.
func (uc *AnalysisUseCase) Summarize(ctx context.Context) *openai.SummaryResult {
	periods, err := uc.repo.Periods()
	if err != nil {
		log.Printf("Error loading dataset for summary: %v", err)
		return openai.FallbackSummary()
	}

	if uc.summaryService == nil {
		log.Println("Summary service not configured, returning fallback summary")
		return openai.FallbackSummary()
	}

	digests := BuildPeriodDigests(periods)
	result, err := uc.summaryService.SummarizeDataset(ctx, digests)
	if err != nil {
		log.Printf("Error requesting dataset summary: %v", err)
		return openai.FallbackSummary()
	}
	return result
}

// FormatStationAnalysis renders one station's analysis for chat display.
func (uc *AnalysisUseCase) FormatStationAnalysis(report *Report, station string) string {
	for _, sa := range report.Stations {
		if !strings.EqualFold(sa.Station, station) {
			continue
		}

		var result strings.Builder
		result.WriteString(fmt.Sprintf("Station %s (%d periods):\n\n", sa.Station, len(sa.PeriodLabels)))
		result.WriteString(fmt.Sprintf("💧 Conductivity trend: %s\n", sa.Conductivity.Trend))
		if sa.Conductivity.ChangePoint != "" {
			result.WriteString(fmt.Sprintf("   Change point: %s\n", sa.Conductivity.ChangePoint))
		}
		result.WriteString(fmt.Sprintf("   Control limits: mean %.1f, UCL %.1f, LCL %.1f\n",
			sa.Conductivity.Limits.Mean, sa.Conductivity.Limits.UCL, sa.Conductivity.Limits.LCL))
		result.WriteString(fmt.Sprintf("🧪 Nitrate trend: %s\n", sa.Nitrate.Trend))
		if sa.Nitrate.ChangePoint != "" {
			result.WriteString(fmt.Sprintf("   Change point: %s\n", sa.Nitrate.ChangePoint))
		}
		result.WriteString(fmt.Sprintf("   Control limits: mean %.1f, UCL %.1f, LCL %.1f\n",
			sa.Nitrate.Limits.Mean, sa.Nitrate.Limits.UCL, sa.Nitrate.Limits.LCL))
		if len(sa.ClusterLabels) > 0 {
			result.WriteString(fmt.Sprintf("🏷️ Quality bands: %s\n", strings.Join(sa.ClusterLabels, " → ")))
		}
		return result.String()
	}

	return fmt.Sprintf("No data found for station '%s'. Use /stations to see the available stations.", station)
}

// FormatRanking renders the volatility ranking for chat display.
func (uc *AnalysisUseCase) FormatRanking(ranking []StationScore) string {
	if len(ranking) == 0 {
		return "No stations in the dataset yet. Upload sampling data first."
	}

	var result strings.Builder
	result.WriteString("Stations ranked by volatility:\n\n")
	for i, score := range ranking {
		result.WriteString(fmt.Sprintf("%d. %s — score %.3f (%d band changes)\n",
			i+1, score.Station, score.Score, score.LabelChanges))
	}
	return result.String()
}
