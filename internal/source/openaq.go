package source

import (
	"context"
	"math"
	"time"

	"github.com/rotisserie/eris"

	"github.com/terrapulse/vitals-cli/internal/model"
	"github.com/terrapulse/vitals-cli/pkg/openaq"
)

// SourceOpenAQ is the provenance label for OpenAQ measurements.
const SourceOpenAQ = "openaq"

// OpenAQAdapter normalizes OpenAQ pollutant readings into skin metrics.
type OpenAQAdapter struct {
	client  openaq.Client
	nowFunc func() time.Time
}

// NewOpenAQAdapter creates the primary adapter for the skin chain.
func NewOpenAQAdapter(client openaq.Client) *OpenAQAdapter {
	return &OpenAQAdapter{client: client, nowFunc: time.Now}
}

func (a *OpenAQAdapter) Name() string       { return SourceOpenAQ }
func (a *OpenAQAdapter) Organ() model.Organ { return model.OrganSkin }

func (a *OpenAQAdapter) Fetch(ctx context.Context, locator string) (model.MetricSnapshot, error) {
	region := RegionFor(model.OrganSkin, locator)

	measurements, err := a.client.LatestMeasurements(ctx,
		region.West(), region.South(), region.East(), region.North())
	if err != nil {
		return model.MetricSnapshot{}, err
	}

	metrics := model.SkinMetrics{}
	var pm25Sum, no2Sum float64
	var pm25N, no2N int
	for _, m := range measurements {
		switch m.Parameter {
		case "pm25":
			pm25Sum += m.Value
			pm25N++
		case "no2":
			no2Sum += m.Value
			no2N++
		}
	}
	if pm25N == 0 {
		return model.MetricSnapshot{}, eris.Errorf("openaq: no pm25 readings for %s", region.Name)
	}

	metrics.PM25 = pm25Sum / float64(pm25N)
	if no2N > 0 {
		metrics.NO2 = no2Sum / float64(no2N)
	}
	metrics.AQI = AQIFromPM25(metrics.PM25)

	return model.MetricSnapshot{
		Organ:      model.OrganSkin,
		Metrics:    metrics,
		Locator:    region.Name,
		Source:     SourceOpenAQ,
		CapturedAt: a.nowFunc(),
	}, nil
}

// pm25Breakpoints are the US EPA AQI breakpoints for 24h PM2.5 (2024
// revision): concentration range mapped linearly onto an index range.
var pm25Breakpoints = []struct {
	cLow, cHigh float64
	iLow, iHigh int
}{
	{0.0, 9.0, 0, 50},
	{9.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 125.4, 151, 200},
	{125.5, 225.4, 201, 300},
	{225.5, 325.4, 301, 500},
}

// AQIFromPM25 converts a PM2.5 concentration (µg/m³) to the US EPA index.
// Concentrations beyond the table are pinned at 500.
func AQIFromPM25(ugm3 float64) int {
	if ugm3 <= 0 {
		return 0
	}
	c := math.Round(ugm3*10) / 10
	for _, bp := range pm25Breakpoints {
		if c <= bp.cHigh {
			ratio := (c - bp.cLow) / (bp.cHigh - bp.cLow)
			return bp.iLow + int(math.Round(ratio*float64(bp.iHigh-bp.iLow)))
		}
	}
	return 500
}
