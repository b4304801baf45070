// Package firms is a thin client for the NASA FIRMS area API, which serves
// near-real-time satellite fire detections as CSV.
package firms

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/terrapulse/vitals-cli/internal/resilience"
)

const (
	defaultBaseURL = "https://firms.modaps.eosdis.nasa.gov"
	defaultSensor  = "VIIRS_SNPP_NRT"
)

// Detection is a single satellite fire detection.
type Detection struct {
	Latitude   float64
	Longitude  float64
	Brightness float64
	// FRP is fire radiative power in megawatts.
	FRP        float64
	Confidence string
	AcqDate    string
	DayNight   string
}

// Client fetches fire detections for a bounding box.
type Client interface {
	AreaDetections(ctx context.Context, west, south, east, north float64, days int) ([]Detection, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithSensor overrides the default satellite sensor product.
func WithSensor(sensor string) Option {
	return func(c *httpClient) { c.sensor = sensor }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	mapKey  string
	baseURL string
	sensor  string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a FIRMS client. FIRMS map keys allow 5000 transactions
// per 10 minutes; the client-side limiter stays far inside that.
func NewClient(mapKey string, opts ...Option) Client {
	c := &httpClient{
		mapKey:  mapKey,
		baseURL: defaultBaseURL,
		sensor:  defaultSensor,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(2), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) AreaDetections(ctx context.Context, west, south, east, north float64, days int) ([]Detection, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "firms: rate limiter")
	}

	url := fmt.Sprintf("%s/api/area/csv/%s/%s/%s/%d",
		c.baseURL, c.mapKey, c.sensor,
		fmt.Sprintf("%.4f,%.4f,%.4f,%.4f", west, south, east, north),
		days,
	)

	var detections []Detection
	err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), "nasa_firms", func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return eris.Wrap(err, "firms: create request")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return eris.Wrap(err, "firms: send request")
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			err := eris.Errorf("firms: unexpected status %d: %s", resp.StatusCode, string(body))
			if resilience.TransientHTTPStatus(resp.StatusCode) {
				return resilience.MarkTransient(err, resp.StatusCode)
			}
			return err
		}

		detections, err = parseCSV(resp.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detections, nil
}

// parseCSV decodes the FIRMS CSV payload. The header row names the columns;
// rows missing a known column are skipped rather than failing the fetch.
func parseCSV(r io.Reader) ([]Detection, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "firms: read csv header")
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	var out []Detection
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "firms: read csv row")
		}

		d := Detection{
			Latitude:   floatAt(row, col, "latitude"),
			Longitude:  floatAt(row, col, "longitude"),
			Brightness: floatAt(row, col, "bright_ti4"),
			FRP:        floatAt(row, col, "frp"),
			Confidence: stringAt(row, col, "confidence"),
			AcqDate:    stringAt(row, col, "acq_date"),
			DayNight:   stringAt(row, col, "daynight"),
		}
		out = append(out, d)
	}
	return out, nil
}

func floatAt(row []string, col map[string]int, name string) float64 {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
	if err != nil {
		return 0
	}
	return v
}

func stringAt(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
