package source

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/terrapulse/vitals-cli/internal/model"
	"github.com/terrapulse/vitals-cli/pkg/erddap"
)

// SourceERDDAP is the provenance label for NOAA buoy observations.
const SourceERDDAP = "noaa_erddap"

// ERDDAPAdapter normalizes NOAA moored-buoy ocean chemistry into heart
// metrics, averaging the readings inside the lookback window.
type ERDDAPAdapter struct {
	client   erddap.Client
	lookback time.Duration
	nowFunc  func() time.Time
}

// NewERDDAPAdapter creates the primary adapter for the heart chain.
func NewERDDAPAdapter(client erddap.Client, lookback time.Duration) *ERDDAPAdapter {
	if lookback <= 0 {
		lookback = 72 * time.Hour
	}
	return &ERDDAPAdapter{client: client, lookback: lookback, nowFunc: time.Now}
}

func (a *ERDDAPAdapter) Name() string       { return SourceERDDAP }
func (a *ERDDAPAdapter) Organ() model.Organ { return model.OrganHeart }

func (a *ERDDAPAdapter) Fetch(ctx context.Context, locator string) (model.MetricSnapshot, error) {
	region := RegionFor(model.OrganHeart, locator)
	now := a.nowFunc()

	observations, err := a.client.LatestObservations(ctx,
		region.West(), region.South(), region.East(), region.North(), now.Add(-a.lookback))
	if err != nil {
		return model.MetricSnapshot{}, err
	}
	if len(observations) == 0 {
		return model.MetricSnapshot{}, eris.Errorf("erddap: no observations for %s in window", region.Name)
	}

	var ph, sst, pco2 float64
	var phN, pco2N int
	for _, o := range observations {
		if o.PH > 0 {
			ph += o.PH
			phN++
		}
		if o.PCO2Sea > 0 {
			pco2 += o.PCO2Sea
			pco2N++
		}
		sst += o.SeaSurfaceC
	}
	if phN == 0 {
		return model.MetricSnapshot{}, eris.Errorf("erddap: no pH readings for %s", region.Name)
	}

	metrics := model.HeartMetrics{
		PH:              ph / float64(phN),
		SeaSurfaceTempC: sst / float64(len(observations)),
	}
	if pco2N > 0 {
		metrics.PCO2Microatm = pco2 / float64(pco2N)
	}

	return model.MetricSnapshot{
		Organ:      model.OrganHeart,
		Metrics:    metrics,
		Locator:    region.Name,
		Source:     SourceERDDAP,
		CapturedAt: now,
	}, nil
}
