// Package source normalizes external environmental data providers into
// metric snapshots and runs the per-organ fallback chains.
package source

import (
	"context"

	"github.com/terrapulse/vitals-cli/internal/model"
)

// Adapter turns one external provider's response into a MetricSnapshot for a
// single organ. An adapter that cannot reach its true source and returns
// generated data must label the snapshot with model.SourceSynthetic.
type Adapter interface {
	// Name identifies the adapter for provenance labels and breaker keys.
	Name() string
	// Organ reports which organ's chain the adapter belongs to.
	Organ() model.Organ
	// Fetch resolves the locator to a region and returns one snapshot.
	Fetch(ctx context.Context, locator string) (model.MetricSnapshot, error)
}
