package ingest

import (
	"strings"
	"testing"
)

func TestParsePeriodCSV(t *testing.T) {
	input := "Station Code,EC (µS/cm),Nitrate (mg/L)\n" +
		"ST-01,420.5,12.3\n" +
		"ST-02,910,44\n"

	period, dropped, err := ParsePeriodCSV("2024-03", strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParsePeriodCSV: %v", err)
	}
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	if len(period.Samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(period.Samples))
	}

	first := period.Samples[0]
	if first.Station != "ST-01" || first.Conductivity != 420.5 || first.Nitrate != 12.3 {
		t.Errorf("unexpected first sample: %+v", first)
	}
	if first.Period != "2024-03" {
		t.Errorf("sample period = %q, want 2024-03", first.Period)
	}
}

func TestParsePeriodCSVDropsBadRows(t *testing.T) {
	input := "station,ec,no3\n" +
		"ST-01,420,12\n" +
		"ST-02,n/a,44\n" + // non-numeric conductivity
		",100,5\n" + // missing station code
		"ST-03,300\n" + // short row
		"ST-04,315,9.8\n"

	period, dropped, err := ParsePeriodCSV("2024-06", strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParsePeriodCSV: %v", err)
	}
	if len(period.Samples) != 2 {
		t.Errorf("got %d samples, want 2 (ST-01, ST-04)", len(period.Samples))
	}
	if dropped != 3 {
		t.Errorf("dropped = %d, want 3", dropped)
	}
}

func TestParsePeriodCSVSemicolonDelimiter(t *testing.T) {
	input := "station;ec;nitrate\n" +
		"ST-01;420,5;12,3\n"

	period, _, err := ParsePeriodCSV("2024-03", strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParsePeriodCSV: %v", err)
	}
	if len(period.Samples) != 1 {
		t.Fatalf("got %d samples, want 1", len(period.Samples))
	}
	s := period.Samples[0]
	if s.Conductivity != 420.5 || s.Nitrate != 12.3 {
		t.Errorf("decimal-comma values not parsed: %+v", s)
	}
}

func TestParsePeriodCSVPersianHeaders(t *testing.T) {
	input := "کد ایستگاه,هدایت الکتریکی,نیترات\n" +
		"ST-01,500,20\n"

	period, _, err := ParsePeriodCSV("1403-01", strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParsePeriodCSV: %v", err)
	}
	if len(period.Samples) != 1 {
		t.Fatalf("got %d samples, want 1", len(period.Samples))
	}
}

func TestParsePeriodCSVUnknownHeader(t *testing.T) {
	input := "a,b,c\n1,2,3\n"
	if _, _, err := ParsePeriodCSV("2024-03", strings.NewReader(input)); err == nil {
		t.Error("expected error for unrecognizable header, got nil")
	}
}
