// Package cluster assigns quality-band labels to the samples of a single
// period, either by uniform interpolation over the period's value range
// or by a small fixed-iteration k-means in conductivity×nitrate space.
//
// Clustering is recomputed independently per period: a station may land
// in different bands in different periods, and no continuity constraint
// links them. Cross-period churn is measured separately by the
// volatility ranking.
package cluster

import (
	"fmt"
	"math"
	"sort"

	"github.com/miravand/aquatrend/internal/entities"
)

// Algorithm selects how centroids are derived for a period.
type Algorithm string

const (
	AlgorithmKMeans  Algorithm = "kmeans"
	AlgorithmUniform Algorithm = "uniform"
)

// kmeansIterations is fixed with no convergence check to keep output
// parity with the original tool.
const kmeansIterations = 10

// severityLabels is the default palette for exactly 5 clusters, ordered
// from lowest to highest severity.
var severityLabels = []string{"excellent", "good", "fair", "poor", "critical"}

// Labels returns the ordered label palette for k clusters: the named
// severity palette when k matches it, generic "group N" labels
// otherwise. Index 0 is always the lowest-severity band.
func Labels(k int) []string {
	if k < 1 {
		k = 1
	}
	if k == len(severityLabels) {
		out := make([]string, k)
		copy(out, severityLabels)
		return out
	}
	out := make([]string, k)
	for i := range out {
		out[i] = fmt.Sprintf("group %d", i+1)
	}
	return out
}

type centroid struct {
	conductivity float64
	nitrate      float64
}

// Assign clusters the samples of one period into k bands and returns one
// label per sample, in input order. When fewer samples than clusters are
// given, every sample receives the lowest-severity label, since
// clustering is meaningless with too few points.
func Assign(samples []entities.Sample, k int, algo Algorithm) []string {
	if k < 1 {
		k = 1
	}
	labels := Labels(k)

	out := make([]string, len(samples))
	if len(samples) < k {
		for i := range out {
			out[i] = labels[0]
		}
		return out
	}

	var centroids []centroid
	if algo == AlgorithmUniform {
		centroids = uniformCentroids(samples, k)
	} else {
		centroids = kmeansCentroids(samples, k)
	}

	// Sorting by magnitude pins cluster index 0 to the lowest-severity
	// band regardless of seeding order.
	sort.Slice(centroids, func(i, j int) bool {
		return centroids[i].conductivity+centroids[i].nitrate <
			centroids[j].conductivity+centroids[j].nitrate
	})

	for i, s := range samples {
		out[i] = labels[nearest(centroids, s.Conductivity, s.Nitrate)]
	}
	return out
}

// uniformCentroids interpolates k centroids linearly between zero and
// the period's maximum conductivity and nitrate, independent of how the
// samples are actually distributed.
func uniformCentroids(samples []entities.Sample, k int) []centroid {
	var maxEC, maxNO3 float64
	for _, s := range samples {
		if s.Conductivity > maxEC {
			maxEC = s.Conductivity
		}
		if s.Nitrate > maxNO3 {
			maxNO3 = s.Nitrate
		}
	}

	centroids := make([]centroid, k)
	for i := range centroids {
		frac := 1.0
		if k > 1 {
			frac = float64(i) / float64(k-1)
		}
		centroids[i] = centroid{conductivity: frac * maxEC, nitrate: frac * maxNO3}
	}
	return centroids
}

// kmeansCentroids seeds from the first k samples and runs exactly
// kmeansIterations rounds of nearest-centroid assignment followed by
// centroid-mean recomputation. Empty clusters retain their prior
// centroid. The fixed iteration count is not guaranteed to converge.
func kmeansCentroids(samples []entities.Sample, k int) []centroid {
	centroids := make([]centroid, k)
	for i := 0; i < k; i++ {
		centroids[i] = centroid{
			conductivity: samples[i].Conductivity,
			nitrate:      samples[i].Nitrate,
		}
	}

	for iter := 0; iter < kmeansIterations; iter++ {
		sums := make([]centroid, k)
		counts := make([]int, k)
		for _, s := range samples {
			c := nearest(centroids, s.Conductivity, s.Nitrate)
			sums[c].conductivity += s.Conductivity
			sums[c].nitrate += s.Nitrate
			counts[c]++
		}
		for i := range centroids {
			if counts[i] == 0 {
				continue
			}
			centroids[i] = centroid{
				conductivity: sums[i].conductivity / float64(counts[i]),
				nitrate:      sums[i].nitrate / float64(counts[i]),
			}
		}
	}
	return centroids
}

// nearest returns the index of the centroid closest to (ec, no3) by
// Euclidean distance; ties go to the lower index.
func nearest(centroids []centroid, ec, no3 float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, c := range centroids {
		dEC := ec - c.conductivity
		dNO3 := no3 - c.nitrate
		dist := dEC*dEC + dNO3*dNO3
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return best
}
