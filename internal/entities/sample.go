// Package entities contains the core domain objects for the aquatrend analyzer
package entities

// Sample represents a single water-quality measurement taken at a station.
// Measured fields are never mutated after parsing; Cluster is a derived
// label assigned by the period-local clustering.
type Sample struct {
	Station      string  `json:"station"`      // station code
	Conductivity float64 `json:"conductivity"` // electrical conductivity, µS/cm
	Nitrate      float64 `json:"nitrate"`      // nitrate concentration, mg/L
	Period       string  `json:"period"`       // label of the sampling period
	Cluster      string  `json:"cluster,omitempty"`
}

// Period groups the samples captured during one sampling campaign.
// Periods are ordered lexicographically by Label across the dataset.
type Period struct {
	Label   string   `json:"label"`
	Samples []Sample `json:"samples"`
}

// Trajectory is one station's time-ordered sequence of samples across
// all periods, used for trend, change-point and volatility analysis.
type Trajectory struct {
	Station string   `json:"station"`
	Samples []Sample `json:"samples"`
}
