// Package stats implements the statistical tests applied to station
// trajectories: Mann-Kendall trend detection, Pettitt change-point
// detection, Shewhart control limits and EWMA smoothing.
//
// All functions are pure and never panic for well-typed numeric input.
// The tests are the simplified textbook variants: no significance levels
// or p-values are computed, which is acceptable for the small period
// counts this tool works with (periodic manual samplings).
package stats

import "math"

// Trend is the categorical verdict of the Mann-Kendall test.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// DefaultLambda is the EWMA smoothing factor used when the caller does
// not override it.
const DefaultLambda = 0.3

// MannKendall runs the sign-based Mann-Kendall test over an ordered
// sequence of values. It sums sign(values[j]-values[i]) over all pairs
// i<j and maps the sum to a three-way verdict. O(n²), fine for the
// single-digit period counts this is applied to.
func MannKendall(values []float64) Trend {
	s := 0
	for i := 0; i < len(values); i++ {
		for j := i + 1; j < len(values); j++ {
			switch {
			case values[j] > values[i]:
				s++
			case values[j] < values[i]:
				s--
			}
		}
	}

	switch {
	case s > 0:
		return TrendIncreasing
	case s < 0:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// Pettitt locates the most likely change point in a sequence using the
// simplified Pettitt statistic. labels must parallel values (one date
// label per value). It returns the label at the split index maximizing
// |U(t)| and true, or ("", false) when the sequence is shorter than 4.
//
// No significance threshold is applied: for n >= 4 the arg-max split is
// always reported, which can surface spurious points on short noisy
// series. That matches the behavior of the original tool.
func Pettitt(values []float64, labels []string) (string, bool) {
	n := len(values)
	if n < 4 || len(labels) < n {
		return "", false
	}

	bestT := 0
	bestAbs := -1
	for t := 1; t < n; t++ {
		u := 0
		for i := 0; i < t; i++ {
			for j := t; j < n; j++ {
				switch {
				case values[i] > values[j]:
					u++
				case values[i] < values[j]:
					u--
				}
			}
		}
		if abs(u) > bestAbs {
			bestAbs = abs(u)
			bestT = t
		}
	}

	return labels[bestT], true
}

// ControlLimits holds Shewhart control chart bounds for one sequence.
type ControlLimits struct {
	Mean float64 `json:"mean"`
	UCL  float64 `json:"ucl"`
	LCL  float64 `json:"lcl"`
}

// Shewhart computes mean ± 3σ control limits using the population
// standard deviation (divisor n, not n-1). The lower limit is floored
// at zero since conductivity and nitrate cannot be negative. Empty
// input returns all-zero limits.
func Shewhart(values []float64) ControlLimits {
	n := len(values)
	if n == 0 {
		return ControlLimits{}
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var sumSq float64
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	sigma := math.Sqrt(sumSq / float64(n))

	return ControlLimits{
		Mean: mean,
		UCL:  mean + 3*sigma,
		LCL:  math.Max(0, mean-3*sigma),
	}
}

// EWMA applies exponentially weighted moving average smoothing. The
// first output equals the first input (seed); each subsequent output is
// lambda*current + (1-lambda)*previous output. lambda must lie in
// (0, 1]; values outside that range fall back to DefaultLambda.
// lambda = 1 returns the input unchanged. Empty input yields empty
// output.
func EWMA(values []float64, lambda float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	if lambda <= 0 || lambda > 1 {
		lambda = DefaultLambda
	}

	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = lambda*values[i] + (1-lambda)*out[i-1]
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
