// Package openaq is a thin client for the OpenAQ v3 air quality API.
package openaq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/terrapulse/vitals-cli/internal/resilience"
)

const defaultBaseURL = "https://api.openaq.org"

// Measurement is the latest reading of one pollutant near a point.
type Measurement struct {
	Parameter string  `json:"parameter"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
}

// Client fetches the latest pollutant measurements inside a bounding box.
type Client interface {
	LatestMeasurements(ctx context.Context, west, south, east, north float64) ([]Measurement, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an OpenAQ client. The free tier allows 60 requests per
// minute; the limiter keeps bursts inside that.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(1), 2),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// latestResponse is the OpenAQ v3 envelope for parameter latest queries.
type latestResponse struct {
	Results []struct {
		Parameter struct {
			Name  string `json:"name"`
			Units string `json:"units"`
		} `json:"parameter"`
		Value float64 `json:"value"`
	} `json:"results"`
}

func (c *httpClient) LatestMeasurements(ctx context.Context, west, south, east, north float64) ([]Measurement, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "openaq: rate limiter")
	}

	url := fmt.Sprintf("%s/v3/parameters/latest?bbox=%.4f,%.4f,%.4f,%.4f&limit=100",
		c.baseURL, west, south, east, north)

	var measurements []Measurement
	err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), "openaq", func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return eris.Wrap(err, "openaq: create request")
		}
		req.Header.Set("X-API-Key", c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return eris.Wrap(err, "openaq: send request")
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return eris.Wrap(err, "openaq: read response")
		}

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("openaq: unexpected status %d: %s", resp.StatusCode, string(body))
			if resilience.TransientHTTPStatus(resp.StatusCode) {
				return resilience.MarkTransient(err, resp.StatusCode)
			}
			return err
		}

		var parsed latestResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return eris.Wrap(err, "openaq: unmarshal response")
		}

		measurements = make([]Measurement, 0, len(parsed.Results))
		for _, r := range parsed.Results {
			measurements = append(measurements, Measurement{
				Parameter: r.Parameter.Name,
				Value:     r.Value,
				Unit:      r.Parameter.Units,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return measurements, nil
}
