// Package geoip provides best-effort IP geolocation via the free
// ip-api.com service. Lookups are bounded by the client timeout and callers
// are expected to fall back to Unknown() when a lookup fails; a failed
// lookup must never fail the operation that requested it.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"
)

const defaultTimeout = 2 * time.Second

// Location holds the fields recorded on a click event.
type Location struct {
	City    string
	Region  string
	Country string
}

// Unknown returns the placeholder location used when a lookup fails.
func Unknown() Location {
	return Location{City: "Unknown", Region: "Unknown", Country: "Unknown"}
}

// ipAPIResponse is the JSON response from ip-api.com.
type ipAPIResponse struct {
	Status     string `json:"status"` // "success" or "fail"
	Message    string `json:"message"`
	Country    string `json:"country"`
	RegionName string `json:"regionName"`
	City       string `json:"city"`
}

// Client queries ip-api.com for IP geolocation.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a geolocation client. baseURL defaults to the public
// ip-api.com endpoint; the timeout bounds every lookup.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "http://ip-api.com/json"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// Lookup resolves an IP address to a location.
// Private and loopback addresses skip the network call entirely since the
// service cannot resolve them.
func (c *Client) Lookup(ctx context.Context, ip string) (Location, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Unknown(), fmt.Errorf("invalid IP address: %q", ip)
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return Unknown(), nil
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Unknown(), fmt.Errorf("build geolocation request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Unknown(), fmt.Errorf("geolocation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Unknown(), fmt.Errorf("geolocation service returned %d", resp.StatusCode)
	}

	var body ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Unknown(), fmt.Errorf("decode geolocation response: %w", err)
	}

	if body.Status != "success" {
		return Unknown(), fmt.Errorf("geolocation lookup failed: %s", body.Message)
	}

	loc := Location{
		City:    orUnknown(body.City),
		Region:  orUnknown(body.RegionName),
		Country: orUnknown(body.Country),
	}
	return loc, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
