// Package integration handles external service interactions
package integration

import (
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/miravand/aquatrend/internal/entities"
)

// StationScraper pulls published water-quality tables from a hydrology
// agency page. The page carries one row per station with conductivity
// and nitrate columns and a heading that names the sampling date.
type StationScraper struct {
	sourceURL string
}

// NewStationScraper creates a new station table scraper
func NewStationScraper(url string) *StationScraper {
	return &StationScraper{sourceURL: url}
}

var periodLabelPattern = regexp.MustCompile(`\d{4}-\d{2}(-\d{2})?`)

// FetchPeriod retrieves the published station table and returns it as a
// sampling period. Rows with non-numeric values are skipped. The period
// label is taken from the page heading when present, otherwise the
// current date is used.
func (ss *StationScraper) FetchPeriod() (entities.Period, error) {
	log.Printf("Sending HTTP request to station table source %s", ss.sourceURL)
	res, err := http.Get(ss.sourceURL)
	if err != nil {
		log.Printf("Error fetching station table: %v", err)
		return entities.Period{}, fmt.Errorf("failed to fetch the station table: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != 200 {
		log.Printf("Received unexpected status code: %d %s", res.StatusCode, res.Status)
		return entities.Period{}, fmt.Errorf("unexpected status code: %d %s", res.StatusCode, res.Status)
	}
	log.Printf("Successfully received HTTP response with status: %s", res.Status)

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		log.Printf("Error parsing HTML: %v", err)
		return entities.Period{}, fmt.Errorf("failed to parse the station table page: %v", err)
	}

	label := ss.ExtractPeriodLabel(doc)
	period := entities.Period{Label: label}

	rowCount := 0
	skipped := 0
	doc.Find("table tbody tr").Each(func(index int, row *goquery.Selection) {
		rowCount++
		cells := row.Find("td")
		if cells.Length() < 3 {
			skipped++
			return
		}

		station := strings.TrimSpace(cells.Eq(0).Text())
		ec, ecErr := strconv.ParseFloat(strings.TrimSpace(cells.Eq(1).Text()), 64)
		no3, no3Err := strconv.ParseFloat(strings.TrimSpace(cells.Eq(2).Text()), 64)
		if station == "" || ecErr != nil || no3Err != nil {
			skipped++
			return
		}

		period.Samples = append(period.Samples, entities.Sample{
			Station:      station,
			Conductivity: ec,
			Nitrate:      no3,
			Period:       label,
		})
	})

	log.Printf("Parsed %d rows for period %s, extracted %d valid samples, skipped %d",
		rowCount, label, len(period.Samples), skipped)
	return period, nil
}

// ExtractPeriodLabel finds a date token in the page headings. Falls back
// to today's date so a scrape always lands in some period.
func (ss *StationScraper) ExtractPeriodLabel(doc *goquery.Document) string {
	label := ""
	doc.Find("h1, h2, h3, h4").EachWithBreak(func(index int, heading *goquery.Selection) bool {
		if match := periodLabelPattern.FindString(heading.Text()); match != "" {
			label = match
			return false
		}
		return true
	})

	if label == "" {
		label = time.Now().Format("2006-01-02")
		log.Printf("No date found in page headings, using %s as period label", label)
	}
	return label
}
