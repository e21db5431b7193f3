package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"realtyBack/internal/models"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Client resolves free-text addresses to coordinates.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(httpClient *http.Client, baseURL, apiKey string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{httpClient: httpClient, baseURL: baseURL, apiKey: apiKey}
}

// Resolve returns coordinates for address. With enabled=false it returns
// fallback immediately and never touches the network, the manual-coordinates
// escape hatch. A lookup with no match is models.ErrAddressNotFound; the
// caller is expected to abort without retrying.
func (c *Client) Resolve(ctx context.Context, address string, enabled bool, fallback models.Geolocation) (models.Geolocation, error) {
	if !enabled {
		return fallback, nil
	}
	if strings.TrimSpace(address) == "" {
		return models.Geolocation{}, models.ErrAddressNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()

	params := url.Values{}
	params.Set("address", address)
	params.Set("key", c.apiKey)

	endpoint := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.Geolocation{}, fmt.Errorf("geocode: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Geolocation{}, fmt.Errorf("geocode: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return models.Geolocation{}, fmt.Errorf("geocode: http %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}

	var payload struct {
		Results []struct {
			Geometry struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.Geolocation{}, fmt.Errorf("geocode: decode: %w", err)
	}

	// Upstream failures (REQUEST_DENIED, OVER_QUERY_LIMIT, ...) also come back
	// with an empty results array, so the status must be checked first or a
	// quota error would read as a bad address.
	if payload.Status != "" && payload.Status != "OK" && payload.Status != "ZERO_RESULTS" {
		return models.Geolocation{}, errors.New("geocode: status " + payload.Status)
	}
	if payload.Status == "ZERO_RESULTS" || len(payload.Results) == 0 {
		return models.Geolocation{}, models.ErrAddressNotFound
	}

	// First result wins; absent fields decode to 0.
	loc := payload.Results[0].Geometry.Location
	return models.Geolocation{Lat: loc.Lat, Lng: loc.Lng}, nil
}
