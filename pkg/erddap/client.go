// Package erddap is a thin client for NOAA ERDDAP tabledap services serving
// moored-buoy ocean chemistry observations.
package erddap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/terrapulse/vitals-cli/internal/resilience"
)

const (
	defaultBaseURL = "https://coastwatch.pfeg.noaa.gov/erddap"
	defaultDataset = "pmelTaoMonPos"
)

// Observation is one buoy reading.
type Observation struct {
	Time        time.Time
	PH          float64
	SeaSurfaceC float64
	PCO2Sea     float64
}

// Client fetches recent observations for a bounding box.
type Client interface {
	LatestObservations(ctx context.Context, west, south, east, north float64, since time.Time) ([]Observation, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default ERDDAP base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithDataset overrides the default tabledap dataset ID.
func WithDataset(dataset string) Option {
	return func(c *httpClient) { c.dataset = dataset }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	baseURL string
	dataset string
	http    *http.Client
}

// NewClient creates an ERDDAP tabledap client. ERDDAP is unauthenticated.
func NewClient(opts ...Option) Client {
	c := &httpClient{
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

// table is ERDDAP's column-oriented JSON envelope.
type table struct {
	Table struct {
		ColumnNames []string `json:"columnNames"`
		Rows        [][]any  `json:"rows"`
	} `json:"table"`
}

func (c *httpClient) LatestObservations(ctx context.Context, west, south, east, north float64, since time.Time) ([]Observation, error) {
	query := fmt.Sprintf(
		"time,pH,sea_surface_temperature,pCO2_sw&longitude>=%f&longitude<=%f&latitude>=%f&latitude<=%f&time>=%s",
		west, east, south, north, since.UTC().Format(time.RFC3339),
	)
	reqURL := fmt.Sprintf("%s/tabledap/%s.json?%s", c.baseURL, c.dataset, url.PathEscape(query))

	var observations []Observation
	err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), "noaa_erddap", func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return eris.Wrap(err, "erddap: create request")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return eris.Wrap(err, "erddap: send request")
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return eris.Wrap(err, "erddap: read response")
		}

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("erddap: unexpected status %d: %s", resp.StatusCode, truncate(body, 256))
			if resilience.TransientHTTPStatus(resp.StatusCode) {
				return resilience.MarkTransient(err, resp.StatusCode)
			}
			return err
		}

		observations, err = parseTable(body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return observations, nil
}

// parseTable flattens the column-oriented payload into observations. Columns
// the dataset does not carry are left zero rather than failing the fetch.
func parseTable(body []byte) ([]Observation, error) {
	var t table
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, eris.Wrap(err, "erddap: unmarshal table")
	}

	col := make(map[string]int, len(t.Table.ColumnNames))
	for i, name := range t.Table.ColumnNames {
		col[name] = i
	}

	out := make([]Observation, 0, len(t.Table.Rows))
	for _, row := range t.Table.Rows {
		obs := Observation{
			PH:          floatCell(row, col, "pH"),
			SeaSurfaceC: floatCell(row, col, "sea_surface_temperature"),
			PCO2Sea:     floatCell(row, col, "pCO2_sw"),
		}
		if i, ok := col["time"]; ok && i < len(row) {
			if s, ok := row[i].(string); ok {
				if ts, err := time.Parse(time.RFC3339, s); err == nil {
					obs.Time = ts
				}
			}
		}
		out = append(out, obs)
	}
	return out, nil
}

func floatCell(row []any, col map[string]int, name string) float64 {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return 0
	}
	v, ok := row[i].(float64)
	if !ok {
		return 0
	}
	return v
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
