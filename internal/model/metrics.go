package model

// Metrics is the tagged union of per-organ metric payloads. Each variant
// carries the fixed field set its sources can populate; callers switch on
// the concrete type rather than reaching into a loosely-typed map.
type Metrics interface {
	// MetricsOrgan reports which organ the payload is shaped for.
	MetricsOrgan() Organ
}

// LungsMetrics holds wildfire and deforestation pressure for a region.
type LungsMetrics struct {
	// AlertCount is the number of fire/deforestation alerts in the lookback
	// window. This drives the rule-based severity thresholds.
	AlertCount int `json:"alert_count"`
	// ActiveFires is the subset of alerts that are currently burning
	// detections (as opposed to clearing alerts).
	ActiveFires int `json:"active_fires"`
	// MeanFRP is the mean fire radiative power in megawatts, zero when the
	// source does not report it.
	MeanFRP float64 `json:"mean_frp_mw"`
}

func (LungsMetrics) MetricsOrgan() Organ { return OrganLungs }

// HeartMetrics holds ocean chemistry readings for a site.
type HeartMetrics struct {
	// PH is surface seawater pH on the total scale.
	PH float64 `json:"ph"`
	// SeaSurfaceTempC is sea surface temperature in degrees Celsius.
	SeaSurfaceTempC float64 `json:"sea_surface_temp_c"`
	// PCO2Microatm is surface pCO2 in microatmospheres, zero when unreported.
	PCO2Microatm float64 `json:"pco2_uatm"`
}

func (HeartMetrics) MetricsOrgan() Organ { return OrganHeart }

// SkinMetrics holds air quality readings for a site.
type SkinMetrics struct {
	// AQI is the US EPA air quality index derived from the dominant pollutant.
	AQI int `json:"aqi"`
	// PM25 is fine particulate concentration in µg/m³.
	PM25 float64 `json:"pm25_ugm3"`
	// NO2 is nitrogen dioxide concentration in µg/m³, zero when unreported.
	NO2 float64 `json:"no2_ugm3"`
}

func (SkinMetrics) MetricsOrgan() Organ { return OrganSkin }
