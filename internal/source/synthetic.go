package source

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/terrapulse/vitals-cli/internal/model"
)

// SyntheticAdapter terminates every chain. It fabricates a plausible,
// deterministic snapshot from the locator alone so the runner can always
// hand the caller something, clearly labelled as generated data.
type SyntheticAdapter struct {
	organ   model.Organ
	nowFunc func() time.Time
}

// NewSyntheticAdapter creates the terminal generator for an organ's chain.
func NewSyntheticAdapter(organ model.Organ) *SyntheticAdapter {
	return &SyntheticAdapter{organ: organ, nowFunc: time.Now}
}

func (a *SyntheticAdapter) Name() string       { return model.SourceSynthetic }
func (a *SyntheticAdapter) Organ() model.Organ { return a.organ }

// Fetch never fails. Values are seeded from the normalized locator so
// repeated calls for the same site produce identical snapshots; baselines
// sit in the mid-range of each organ's rule thresholds.
func (a *SyntheticAdapter) Fetch(_ context.Context, locator string) (model.MetricSnapshot, error) {
	region := RegionFor(a.organ, locator)
	seed := locatorSeed(region.Name)

	var metrics model.Metrics
	switch a.organ {
	case model.OrganLungs:
		metrics = model.LungsMetrics{
			AlertCount:  int(seed % 400),
			ActiveFires: int(seed % 40),
			MeanFRP:     float64(seed%25) + 1,
		}
	case model.OrganHeart:
		metrics = model.HeartMetrics{
			PH:              8.12 - float64(seed%20)/100.0,
			SeaSurfaceTempC: 24 + float64(seed%60)/10.0,
		}
	case model.OrganSkin:
		pm25 := float64(seed%120) + 5
		metrics = model.SkinMetrics{
			PM25: pm25,
			AQI:  AQIFromPM25(pm25),
		}
	}

	return model.MetricSnapshot{
		Organ:      a.organ,
		Metrics:    metrics,
		Locator:    region.Name,
		Source:     model.SourceSynthetic,
		CapturedAt: a.nowFunc(),
	}, nil
}

func locatorSeed(name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(model.NormalizeLocator(name)))
	return h.Sum64()
}
