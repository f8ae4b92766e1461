// Package openaq provides an OpenAQ v3 API client for station discovery.
package openaq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aircast/aircast/internal/provider/resilience"
	"github.com/aircast/aircast/internal/station"
)

const (
	// ProviderName identifies this station provider.
	ProviderName = "openaq"

	// DefaultBaseURL is the OpenAQ v3 API base URL.
	DefaultBaseURL = "https://api.openaq.org/v3"
)

// ClientConfig holds configuration for the OpenAQ client.
type ClientConfig struct {
	// APIKey is optional but recommended for higher rate limits.
	APIKey string

	// BaseURL overrides the API base URL.
	BaseURL string

	// HTTPClient is the HTTP client to use. If nil, a resilient client
	// with defaults is created.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenAQ v3 API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new OpenAQ client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultConfig(ProviderName))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// SearchStations fetches stations within radiusMeters of the coordinate.
func (c *Client) SearchStations(ctx context.Context, lat, lon float64, radiusMeters int) ([]*station.Station, error) {
	url := fmt.Sprintf("%s/locations?coordinates=%.6f,%.6f&radius=%d&limit=100",
		c.baseURL, lat, lon, radiusMeters)

	var resp locationsResponse
	if err := c.get(ctx, url, &resp); err != nil {
		return nil, err
	}

	stations := make([]*station.Station, 0, len(resp.Results))
	for _, loc := range resp.Results {
		st := &station.Station{
			ID:   loc.ID,
			Name: loc.Name,
			Lat:  loc.Coordinates.Latitude,
			Lon:  loc.Coordinates.Longitude,
		}
		for _, sensor := range loc.Sensors {
			if sensor.Parameter.Name == "pm25" {
				st.HasPM25 = true
				break
			}
		}
		stations = append(stations, st)
	}
	return stations, nil
}

// LatestMeasurements fetches the most recent sensor readings for a station.
func (c *Client) LatestMeasurements(ctx context.Context, stationID int64) ([]*station.Measurement, error) {
	url := fmt.Sprintf("%s/locations/%d/latest", c.baseURL, stationID)

	var resp latestResponse
	if err := c.get(ctx, url, &resp); err != nil {
		return nil, err
	}

	measurements := make([]*station.Measurement, 0, len(resp.Results))
	for _, r := range resp.Results {
		m := &station.Measurement{
			SensorID: r.SensorsID,
			Value:    r.Value,
		}
		if r.Datetime.UTC != "" {
			if ts, err := time.Parse(time.RFC3339, r.Datetime.UTC); err == nil {
				m.MeasuredAt = ts
			}
		}
		measurements = append(measurements, m)
	}
	return measurements, nil
}

// SensorParameter fetches the measured parameter name for a sensor.
func (c *Client) SensorParameter(ctx context.Context, sensorID int64) (string, error) {
	url := fmt.Sprintf("%s/sensors/%d", c.baseURL, sensorID)

	var resp sensorsResponse
	if err := c.get(ctx, url, &resp); err != nil {
		return "", err
	}
	if len(resp.Results) == 0 {
		return "", fmt.Errorf("sensor %d not found", sensorID)
	}
	return resp.Results[0].Parameter.Name, nil
}

func (c *Client) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// OpenAQ API response structures.

type locationsResponse struct {
	Results []struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		Coordinates struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"coordinates"`
		Sensors []struct {
			ID        int64 `json:"id"`
			Parameter struct {
				Name string `json:"name"`
			} `json:"parameter"`
		} `json:"sensors"`
	} `json:"results"`
}

type latestResponse struct {
	Results []struct {
		SensorsID int64   `json:"sensorsId"`
		Value     float64 `json:"value"`
		Datetime  struct {
			UTC string `json:"utc"`
		} `json:"datetime"`
	} `json:"results"`
}

type sensorsResponse struct {
	Results []struct {
		ID        int64 `json:"id"`
		Parameter struct {
			Name string `json:"name"`
		} `json:"parameter"`
	} `json:"results"`
}
