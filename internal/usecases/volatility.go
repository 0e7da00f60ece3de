package usecases

import (
	"math"
	"sort"

	"github.com/miravand/aquatrend/internal/entities"
)

// labelChangeWeight is the contribution of one period-to-period cluster
// label change to the volatility score.
const labelChangeWeight = 0.2

// StationScore is one entry of the volatility ranking.
type StationScore struct {
	Station      string  `json:"station"`
	Score        float64 `json:"score"`
	AvgStep      float64 `json:"avgStep"`
	LabelChanges int     `json:"labelChanges"`
}

// RankVolatility scores every station by how unstable its trajectory is:
// the average normalized Euclidean step between consecutive periods plus
// a weighted count of cluster-label changes. Steps are normalized by the
// global means across all stations and periods so that stations of
// different absolute magnitude are comparable; a zero global mean falls
// back to a divisor of 1. Stations come back sorted by score descending,
// ties keeping trajectory order.
func RankVolatility(trajectories []entities.Trajectory) []StationScore {
	meanEC, meanNO3 := globalMeans(trajectories)
	if meanEC == 0 {
		meanEC = 1
	}
	if meanNO3 == 0 {
		meanNO3 = 1
	}

	scores := make([]StationScore, 0, len(trajectories))
	for _, traj := range trajectories {
		var stepSum float64
		labelChanges := 0
		pairs := 0
		for i := 1; i < len(traj.Samples); i++ {
			prev, cur := traj.Samples[i-1], traj.Samples[i]
			dEC := (cur.Conductivity - prev.Conductivity) / meanEC
			dNO3 := (cur.Nitrate - prev.Nitrate) / meanNO3
			stepSum += math.Sqrt(dEC*dEC + dNO3*dNO3)
			pairs++
			if cur.Cluster != prev.Cluster {
				labelChanges++
			}
		}

		avgStep := 0.0
		if pairs > 0 {
			avgStep = stepSum / float64(pairs)
		}

		scores = append(scores, StationScore{
			Station:      traj.Station,
			Score:        avgStep + labelChangeWeight*float64(labelChanges),
			AvgStep:      avgStep,
			LabelChanges: labelChanges,
		})
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	return scores
}

func globalMeans(trajectories []entities.Trajectory) (meanEC, meanNO3 float64) {
	var sumEC, sumNO3 float64
	count := 0
	for _, traj := range trajectories {
		for _, s := range traj.Samples {
			sumEC += s.Conductivity
			sumNO3 += s.Nitrate
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	return sumEC / float64(count), sumNO3 / float64(count)
}
