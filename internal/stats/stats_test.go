package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMannKendall(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		want   Trend
	}{
		{"increasing", []float64{1, 2, 3, 4}, TrendIncreasing},
		{"decreasing", []float64{4, 3, 2, 1}, TrendDecreasing},
		{"constant", []float64{5, 5, 5}, TrendStable},
		{"empty", nil, TrendStable},
		{"single", []float64{7}, TrendStable},
		{"mostly up", []float64{1, 3, 2, 5}, TrendIncreasing},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MannKendall(tc.values); got != tc.want {
				t.Errorf("MannKendall(%v) = %s, want %s", tc.values, got, tc.want)
			}
		})
	}
}

func TestPettittTooShort(t *testing.T) {
	for _, values := range [][]float64{nil, {1}, {1, 2}, {1, 2, 3}} {
		labels := []string{"d0", "d1", "d2"}
		if label, ok := Pettitt(values, labels); ok {
			t.Errorf("Pettitt(%v) = %q, want no change point for n < 4", values, label)
		}
	}
}

func TestPettittLargestStep(t *testing.T) {
	values := []float64{1, 2, 10, 11}
	labels := []string{"d0", "d1", "d2", "d3"}

	label, ok := Pettitt(values, labels)
	if !ok {
		t.Fatal("Pettitt reported no change point for n = 4")
	}
	if label != "d2" {
		t.Errorf("Pettitt change point = %q, want d2 (the largest step)", label)
	}
}

func TestPettittMismatchedLabels(t *testing.T) {
	if label, ok := Pettitt([]float64{1, 2, 3, 4}, []string{"d0"}); ok {
		t.Errorf("Pettitt with short labels = %q, want no change point", label)
	}
}

func TestShewhart(t *testing.T) {
	// Classic population-stddev example: mean 5, sigma 2.
	limits := Shewhart([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	if !almostEqual(limits.Mean, 5) {
		t.Errorf("Mean = %v, want 5", limits.Mean)
	}
	if !almostEqual(limits.UCL, 11) {
		t.Errorf("UCL = %v, want 11", limits.UCL)
	}
	// mean - 3*sigma = -1, floored at zero.
	if !almostEqual(limits.LCL, 0) {
		t.Errorf("LCL = %v, want 0", limits.LCL)
	}
}

func TestShewhartEmpty(t *testing.T) {
	limits := Shewhart(nil)
	if limits.Mean != 0 || limits.UCL != 0 || limits.LCL != 0 {
		t.Errorf("Shewhart(nil) = %+v, want all-zero limits", limits)
	}
}

func TestEWMA(t *testing.T) {
	out := EWMA([]float64{10, 20}, 0.3)
	if len(out) != 2 {
		t.Fatalf("EWMA output length = %d, want 2", len(out))
	}
	if !almostEqual(out[0], 10) {
		t.Errorf("out[0] = %v, want 10 (seed)", out[0])
	}
	if !almostEqual(out[1], 13) {
		t.Errorf("out[1] = %v, want 13 (0.3*20 + 0.7*10)", out[1])
	}
}

func TestEWMAEmpty(t *testing.T) {
	if out := EWMA(nil, 0.3); len(out) != 0 {
		t.Errorf("EWMA(nil) = %v, want empty output", out)
	}
}

func TestEWMAIdentityAtLambdaOne(t *testing.T) {
	in := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	out := EWMA(in, 1)
	for i := range in {
		if !almostEqual(out[i], in[i]) {
			t.Fatalf("EWMA with lambda=1 changed the input at %d: got %v, want %v", i, out[i], in[i])
		}
	}
}

func TestEWMAInvalidLambdaFallsBack(t *testing.T) {
	want := EWMA([]float64{10, 20}, DefaultLambda)
	for _, lambda := range []float64{0, -0.5, 1.5} {
		got := EWMA([]float64{10, 20}, lambda)
		if !almostEqual(got[1], want[1]) {
			t.Errorf("EWMA with lambda=%v = %v, want fallback to default %v", lambda, got, want)
		}
	}
}
