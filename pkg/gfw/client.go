// Package gfw is a thin client for the Global Forest Watch data API
// (integrated deforestation alerts, keyed paid tier).
package gfw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/terrapulse/vitals-cli/internal/resilience"
)

const (
	defaultBaseURL = "https://data-api.globalforestwatch.org"
	defaultDataset = "gfw_integrated_alerts"
)

// AlertSummary aggregates integrated alerts over a polygon and window.
type AlertSummary struct {
	AlertCount     int     `json:"alert_count"`
	HighConfidence int     `json:"high_confidence_count"`
	AreaHectares   float64 `json:"area_ha"`
}

// Client queries alert summaries for a bounding box.
type Client interface {
	AlertStats(ctx context.Context, west, south, east, north float64, days int) (*AlertSummary, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithDataset overrides the default alert dataset.
func WithDataset(dataset string) Option {
	return func(c *httpClient) { c.dataset = dataset }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	apiKey  string
	baseURL string
	dataset string
	http    *http.Client
}

// NewClient creates a GFW data API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		dataset: defaultDataset,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// queryRequest is the body for POST /dataset/{dataset}/latest/query.
type queryRequest struct {
	SQL      string          `json:"sql"`
	Geometry json.RawMessage `json:"geometry"`
}

// queryResponse is the GFW query envelope.
type queryResponse struct {
	Data []struct {
		AlertCount     int     `json:"alert_count"`
		HighConfidence int     `json:"high_confidence_count"`
		AreaHa         float64 `json:"area_ha"`
	} `json:"data"`
}

func (c *httpClient) AlertStats(ctx context.Context, west, south, east, north float64, days int) (*AlertSummary, error) {
	geometry := fmt.Sprintf(
		`{"type":"Polygon","coordinates":[[[%[1]f,%[2]f],[%[3]f,%[2]f],[%[3]f,%[4]f],[%[1]f,%[4]f],[%[1]f,%[2]f]]]}`,
		west, south, east, north,
	)
	body, err := json.Marshal(queryRequest{
		SQL: fmt.Sprintf(
			"SELECT COUNT(*) AS alert_count, SUM(CASE WHEN gfw_integrated_alerts__confidence = 'high' THEN 1 ELSE 0 END) AS high_confidence_count, SUM(area__ha) AS area_ha FROM results WHERE gfw_integrated_alerts__date >= NOW() - INTERVAL '%d days'",
			days,
		),
		Geometry: json.RawMessage(geometry),
	})
	if err != nil {
		return nil, eris.Wrap(err, "gfw: marshal query")
	}

	url := fmt.Sprintf("%s/dataset/%s/latest/query", c.baseURL, c.dataset)

	var summary *AlertSummary
	err = resilience.Retry(ctx, resilience.DefaultRetryConfig(), "gfw", func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return eris.Wrap(err, "gfw: create request")
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return eris.Wrap(err, "gfw: send request")
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return eris.Wrap(err, "gfw: read response")
		}

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("gfw: unexpected status %d: %s", resp.StatusCode, string(respBody))
			if resilience.TransientHTTPStatus(resp.StatusCode) {
				return resilience.MarkTransient(err, resp.StatusCode)
			}
			return err
		}

		var parsed queryResponse
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return eris.Wrap(err, "gfw: unmarshal response")
		}
		if len(parsed.Data) == 0 {
			return eris.New("gfw: empty result set")
		}

		row := parsed.Data[0]
		summary = &AlertSummary{
			AlertCount:     row.AlertCount,
			HighConfidence: row.HighConfidence,
			AreaHectares:   row.AreaHa,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
