package source

import (
	"context"
	"time"

	"github.com/terrapulse/vitals-cli/internal/model"
	"github.com/terrapulse/vitals-cli/pkg/gml"
)

// SourceGML is the provenance label for the NOAA GML CO2 record.
const SourceGML = "noaa_gml"

// Surface ocean pH tracks the atmospheric CO2 record closely enough for a
// fallback estimate: a drop of roughly 0.00085 pH units per ppm above the
// pre-industrial ~280 ppm baseline, anchored at pH 8.20.
const (
	preindustrialCO2 = 280.0
	preindustrialPH  = 8.20
	phPerPPM         = 0.00085
)

// GMLAdapter estimates heart metrics from the NOAA GML atmospheric CO2
// record, fetched over FTP. It backs up the buoy network: coarser, but the
// record is essentially always available.
type GMLAdapter struct {
	client  gml.Client
	nowFunc func() time.Time
}

// NewGMLAdapter creates the CO2-record fallback adapter for the heart chain.
func NewGMLAdapter(client gml.Client) *GMLAdapter {
	return &GMLAdapter{client: client, nowFunc: time.Now}
}

func (a *GMLAdapter) Name() string       { return SourceGML }
func (a *GMLAdapter) Organ() model.Organ { return model.OrganHeart }

func (a *GMLAdapter) Fetch(ctx context.Context, locator string) (model.MetricSnapshot, error) {
	region := RegionFor(model.OrganHeart, locator)

	reading, err := a.client.LatestReading(ctx)
	if err != nil {
		return model.MetricSnapshot{}, err
	}

	return model.MetricSnapshot{
		Organ: model.OrganHeart,
		Metrics: model.HeartMetrics{
			PH:           estimatePH(reading.PPM),
			PCO2Microatm: reading.PPM,
		},
		Locator:    region.Name,
		Source:     SourceGML,
		CapturedAt: a.nowFunc(),
	}, nil
}

func estimatePH(co2PPM float64) float64 {
	if co2PPM <= preindustrialCO2 {
		return preindustrialPH
	}
	return preindustrialPH - (co2PPM-preindustrialCO2)*phPerPPM
}
