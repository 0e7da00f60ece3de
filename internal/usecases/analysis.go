package usecases

import (
	"sort"

	"github.com/miravand/aquatrend/internal/cluster"
	"github.com/miravand/aquatrend/internal/entities"
	"github.com/miravand/aquatrend/internal/integration/openai"
	"github.com/miravand/aquatrend/internal/stats"
)

// Options configures one analysis run. The dashboard re-runs the whole
// analysis whenever the user changes any of these.
type Options struct {
	Clusters  int               `json:"clusters"`
	Algorithm cluster.Algorithm `json:"algorithm"`
	Lambda    float64           `json:"lambda"`
}

// DefaultOptions returns the configuration the dashboard starts with.
func DefaultOptions() Options {
	return Options{
		Clusters:  5,
		Algorithm: cluster.AlgorithmKMeans,
		Lambda:    stats.DefaultLambda,
	}
}

// MetricAnalysis carries the statistics computed for one metric of one
// station's trajectory.
type MetricAnalysis struct {
	Values      []float64           `json:"values"`
	Trend       stats.Trend         `json:"trend"`
	ChangePoint string              `json:"changePoint,omitempty"`
	Limits      stats.ControlLimits `json:"limits"`
	Smoothed    []float64           `json:"smoothed"`
}

// StationAnalysis groups everything computed for one station.
type StationAnalysis struct {
	Station       string         `json:"station"`
	PeriodLabels  []string       `json:"periodLabels"`
	Conductivity  MetricAnalysis `json:"conductivity"`
	Nitrate       MetricAnalysis `json:"nitrate"`
	ClusterLabels []string       `json:"clusterLabels"`
}

// Report is the full analysis output consumed read-only by the
// dashboard charts.
type Report struct {
	PeriodLabels []string          `json:"periodLabels"`
	Periods      []entities.Period `json:"periods"`
	Stations     []StationAnalysis `json:"stations"`
	Ranking      []StationScore    `json:"ranking"`
}

// ComputeReport runs the complete analysis over the dataset: per-period
// clustering, per-station trend/change-point/control-limit/smoothing
// statistics, and the volatility ranking. It is a pure function; the
// input periods are not mutated.
func ComputeReport(periods []entities.Period, opts Options) *Report {
	if opts.Clusters < 1 {
		opts.Clusters = DefaultOptions().Clusters
	}

	ordered := make([]entities.Period, len(periods))
	copy(ordered, periods)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Label < ordered[j].Label })

	report := &Report{Periods: make([]entities.Period, len(ordered))}
	for i, p := range ordered {
		report.PeriodLabels = append(report.PeriodLabels, p.Label)

		clustered := entities.Period{Label: p.Label, Samples: make([]entities.Sample, len(p.Samples))}
		copy(clustered.Samples, p.Samples)
		labels := cluster.Assign(clustered.Samples, opts.Clusters, opts.Algorithm)
		for j := range clustered.Samples {
			clustered.Samples[j].Cluster = labels[j]
		}
		report.Periods[i] = clustered
	}

	trajectories := BuildTrajectories(report.Periods)
	for _, traj := range trajectories {
		report.Stations = append(report.Stations, analyzeTrajectory(traj, opts.Lambda))
	}
	report.Ranking = RankVolatility(trajectories)

	return report
}

// BuildTrajectories groups samples by station across the given periods,
// keeping period order within each trajectory. Stations are returned in
// order of first appearance.
func BuildTrajectories(periods []entities.Period) []entities.Trajectory {
	index := make(map[string]int)
	var trajectories []entities.Trajectory

	for _, p := range periods {
		for _, s := range p.Samples {
			i, ok := index[s.Station]
			if !ok {
				i = len(trajectories)
				index[s.Station] = i
				trajectories = append(trajectories, entities.Trajectory{Station: s.Station})
			}
			trajectories[i].Samples = append(trajectories[i].Samples, s)
		}
	}

	return trajectories
}

// analyzeTrajectory computes the per-metric statistics for one station.
func analyzeTrajectory(traj entities.Trajectory, lambda float64) StationAnalysis {
	n := len(traj.Samples)
	periodLabels := make([]string, n)
	clusterLabels := make([]string, n)
	ec := make([]float64, n)
	no3 := make([]float64, n)
	for i, s := range traj.Samples {
		periodLabels[i] = s.Period
		clusterLabels[i] = s.Cluster
		ec[i] = s.Conductivity
		no3[i] = s.Nitrate
	}

	return StationAnalysis{
		Station:       traj.Station,
		PeriodLabels:  periodLabels,
		Conductivity:  analyzeMetric(ec, periodLabels, lambda),
		Nitrate:       analyzeMetric(no3, periodLabels, lambda),
		ClusterLabels: clusterLabels,
	}
}

func analyzeMetric(values []float64, labels []string, lambda float64) MetricAnalysis {
	changePoint, _ := stats.Pettitt(values, labels)
	return MetricAnalysis{
		Values:      values,
		Trend:       stats.MannKendall(values),
		ChangePoint: changePoint,
		Limits:      stats.Shewhart(values),
		Smoothed:    stats.EWMA(values, lambda),
	}
}

// BuildPeriodDigests serializes the dataset into the per-period
// aggregates handed to the summarization collaborator.
func BuildPeriodDigests(periods []entities.Period) []openai.PeriodDigest {
	digests := make([]openai.PeriodDigest, 0, len(periods))
	for _, p := range periods {
		d := openai.PeriodDigest{Label: p.Label, SampleCount: len(p.Samples)}
		if len(p.Samples) > 0 {
			var sumEC, sumNO3 float64
			for _, s := range p.Samples {
				sumEC += s.Conductivity
				sumNO3 += s.Nitrate
			}
			d.MeanConductivity = sumEC / float64(len(p.Samples))
			d.MeanNitrate = sumNO3 / float64(len(p.Samples))
		}
		digests = append(digests, d)
	}
	return digests
}
