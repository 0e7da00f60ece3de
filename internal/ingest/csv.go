// Package ingest decodes spreadsheet exports of water-quality samples
// into periods. One exported file corresponds to one sampling period.
package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/miravand/aquatrend/internal/entities"
)

// Column header aliases, lowercase. Exports come both from English and
// Persian spreadsheet templates.
var (
	stationAliases      = []string{"station", "code", "ایستگاه", "کد"}
	conductivityAliases = []string{"conductivity", "ec", "هدایت"}
	nitrateAliases      = []string{"nitrate", "no3", "نیترات"}
)

// ParsePeriodCSV decodes one CSV export into a Period labeled label.
// Rows whose numeric fields fail to parse (or are not finite) are
// dropped; the second return value counts them. The header row must
// contain recognizable station, conductivity and nitrate columns.
func ParsePeriodCSV(label string, r io.Reader) (entities.Period, int, error) {
	period := entities.Period{Label: label}

	br := bufio.NewReader(r)
	delimiter, err := detectDelimiter(br)
	if err != nil {
		return period, 0, err
	}

	cr := csv.NewReader(br)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return period, 0, fmt.Errorf("failed to read header row: %v", err)
	}

	stationCol := findColumn(header, stationAliases)
	ecCol := findColumn(header, conductivityAliases)
	no3Col := findColumn(header, nitrateAliases)
	if stationCol < 0 || ecCol < 0 || no3Col < 0 {
		return period, 0, fmt.Errorf("header %v has no recognizable station/conductivity/nitrate columns", header)
	}

	dropped := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return period, dropped, fmt.Errorf("failed to read row: %v", err)
		}
		if len(record) <= stationCol || len(record) <= ecCol || len(record) <= no3Col {
			dropped++
			continue
		}

		station := strings.TrimSpace(record[stationCol])
		ec, ecErr := parseNumber(record[ecCol])
		no3, no3Err := parseNumber(record[no3Col])
		if station == "" || ecErr != nil || no3Err != nil {
			dropped++
			continue
		}

		period.Samples = append(period.Samples, entities.Sample{
			Station:      station,
			Conductivity: ec,
			Nitrate:      no3,
			Period:       label,
		})
	}

	log.Printf("Parsed period %s: %d samples, %d rows dropped", label, len(period.Samples), dropped)
	return period, dropped, nil
}

// detectDelimiter peeks at the first line and picks the candidate
// delimiter occurring most often, defaulting to a comma.
func detectDelimiter(br *bufio.Reader) (rune, error) {
	peek, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return 0, fmt.Errorf("failed to read input: %v", err)
	}
	line := string(peek)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}

	best := ','
	bestCount := strings.Count(line, ",")
	for _, cand := range []rune{';', '\t'} {
		if count := strings.Count(line, string(cand)); count > bestCount {
			best = cand
			bestCount = count
		}
	}
	return best, nil
}

// findColumn returns the index of the first header cell containing one
// of the aliases, or -1.
func findColumn(header []string, aliases []string) int {
	for i, cell := range header {
		cell = strings.ToLower(strings.TrimSpace(cell))
		for _, alias := range aliases {
			if strings.Contains(cell, alias) {
				return i
			}
		}
	}
	return -1
}

// parseNumber parses a numeric cell, tolerating surrounding spaces and
// a decimal comma. Non-finite values are rejected.
func parseNumber(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if strings.Contains(cell, ",") && !strings.Contains(cell, ".") {
		cell = strings.ReplaceAll(cell, ",", ".")
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", cell)
	}
	return v, nil
}
