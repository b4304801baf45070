package source

import (
	"context"
	"time"

	"github.com/terrapulse/vitals-cli/internal/model"
	"github.com/terrapulse/vitals-cli/pkg/gfw"
)

// SourceGFW is the provenance label for Global Forest Watch alerts.
const SourceGFW = "gfw"

// GFWAdapter normalizes Global Forest Watch integrated alerts into lungs
// metrics. It sits behind FIRMS in the chain as the paid-tier fallback.
type GFWAdapter struct {
	client  gfw.Client
	days    int
	nowFunc func() time.Time
}

// NewGFWAdapter creates the paid-API adapter for the lungs chain.
func NewGFWAdapter(client gfw.Client, days int) *GFWAdapter {
	if days <= 0 {
		days = 7
	}
	return &GFWAdapter{client: client, days: days, nowFunc: time.Now}
}

func (a *GFWAdapter) Name() string       { return SourceGFW }
func (a *GFWAdapter) Organ() model.Organ { return model.OrganLungs }

func (a *GFWAdapter) Fetch(ctx context.Context, locator string) (model.MetricSnapshot, error) {
	region := RegionFor(model.OrganLungs, locator)

	stats, err := a.client.AlertStats(ctx, region.West(), region.South(), region.East(), region.North(), a.days)
	if err != nil {
		return model.MetricSnapshot{}, err
	}

	return model.MetricSnapshot{
		Organ: model.OrganLungs,
		Metrics: model.LungsMetrics{
			AlertCount:  stats.AlertCount,
			ActiveFires: stats.HighConfidence,
		},
		Locator:    region.Name,
		Source:     SourceGFW,
		CapturedAt: a.nowFunc(),
	}, nil
}
