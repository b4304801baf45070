package source

import (
	"context"
	"time"

	"github.com/terrapulse/vitals-cli/internal/model"
	"github.com/terrapulse/vitals-cli/pkg/firms"
)

// SourceFIRMS is the provenance label for NASA FIRMS satellite detections.
const SourceFIRMS = "nasa_firms"

// FIRMSAdapter normalizes NASA FIRMS fire detections into lungs metrics.
type FIRMSAdapter struct {
	client  firms.Client
	days    int
	nowFunc func() time.Time
}

// NewFIRMSAdapter creates the satellite-event adapter for the lungs chain.
// days is the detection lookback window.
func NewFIRMSAdapter(client firms.Client, days int) *FIRMSAdapter {
	if days <= 0 {
		days = 1
	}
	return &FIRMSAdapter{client: client, days: days, nowFunc: time.Now}
}

func (a *FIRMSAdapter) Name() string       { return SourceFIRMS }
func (a *FIRMSAdapter) Organ() model.Organ { return model.OrganLungs }

func (a *FIRMSAdapter) Fetch(ctx context.Context, locator string) (model.MetricSnapshot, error) {
	region := RegionFor(model.OrganLungs, locator)

	detections, err := a.client.AreaDetections(ctx, region.West(), region.South(), region.East(), region.North(), a.days)
	if err != nil {
		return model.MetricSnapshot{}, err
	}

	var active int
	var frpSum float64
	for _, d := range detections {
		// VIIRS reports nominal/low/high detection confidence; treat high
		// confidence as an actively burning fire.
		if d.Confidence == "h" || d.Confidence == "high" {
			active++
		}
		frpSum += d.FRP
	}
	var meanFRP float64
	if len(detections) > 0 {
		meanFRP = frpSum / float64(len(detections))
	}

	return model.MetricSnapshot{
		Organ: model.OrganLungs,
		Metrics: model.LungsMetrics{
			AlertCount:  len(detections),
			ActiveFires: active,
			MeanFRP:     meanFRP,
		},
		Locator:    region.Name,
		Source:     SourceFIRMS,
		CapturedAt: a.nowFunc(),
	}, nil
}
