package model

import "time"

// SourceSynthetic is the provenance label for generated fallback data. An
// adapter that could not reach its true source must tag its snapshot with it.
const SourceSynthetic = "synthetic"

// MetricSnapshot is one normalized observation of an organ's metrics.
// Snapshots are returned by value and never mutated after capture.
type MetricSnapshot struct {
	Organ      Organ     `json:"organ"`
	Metrics    Metrics   `json:"metrics"`
	Locator    string    `json:"locator"`
	Source     string    `json:"source"`
	CapturedAt time.Time `json:"captured_at"`
}

// Synthetic reports whether the snapshot carries generated fallback data.
func (s MetricSnapshot) Synthetic() bool {
	return s.Source == SourceSynthetic
}
