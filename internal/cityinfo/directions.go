package cityinfo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/neexbeast/weather-dashboard/internal/config"
	"github.com/neexbeast/weather-dashboard/internal/provider"
)

var (
	// ErrNoDestination is returned without a network call for a blank destination.
	ErrNoDestination = errors.New("no destination")

	// ErrRouteUnavailable is wrapped by every non-OK directions status.
	ErrRouteUnavailable = errors.New("route unavailable")
)

// RouteStatusError reports the directions status that prevented a route.
type RouteStatusError struct {
	Status  string
	Message string
}

func (e *RouteStatusError) Error() string {
	if e.Message == "" {
		return "directions status " + e.Status
	}
	return fmt.Sprintf("directions status %s: %s", e.Status, e.Message)
}

func (e *RouteStatusError) Unwrap() error { return ErrRouteUnavailable }

// DirectionsClient requests driving routes from the Google Directions API.
type DirectionsClient struct {
	apiKey   string
	endpoint string
	provider *provider.Client
}

// NewDirectionsClient constructs a DirectionsClient from the maps config.
func NewDirectionsClient(cfg config.MapsConfig) *DirectionsClient {
	return &DirectionsClient{
		apiKey:   cfg.APIKey,
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/directions/json",
		provider: provider.New("google-directions", nil),
	}
}

type directionsResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message"`
	Routes       json.RawMessage `json:"routes"`
}

type routeSummary struct {
	Summary string `json:"summary"`
	Legs    []struct {
		Distance struct {
			Value int `json:"value"`
		} `json:"distance"`
		Duration struct {
			Value int `json:"value"`
		} `json:"duration"`
	} `json:"legs"`
}

// FetchRoute returns the driving route from the origin to destination.
// A non-OK provider status yields a *RouteStatusError.
func (c *DirectionsClient) FetchRoute(ctx context.Context, originLat, originLon float64, destination string) (*Route, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, ErrNoDestination
	}

	q := url.Values{}
	q.Set("origin", formatLatLon(originLat, originLon))
	q.Set("destination", destination)
	q.Set("mode", "driving")
	q.Set("key", c.apiKey)

	var raw directionsResponse
	if err := c.provider.GetJSON(ctx, c.endpoint, q, &raw); err != nil {
		return nil, fmt.Errorf("directions to %s: %w", destination, err)
	}

	if raw.Status != "OK" {
		return nil, fmt.Errorf("directions to %s: %w", destination, &RouteStatusError{Status: raw.Status, Message: raw.ErrorMessage})
	}

	route := &Route{Destination: destination, Payload: raw.Routes}

	var summaries []routeSummary
	if len(raw.Routes) > 0 {
		if err := json.Unmarshal(raw.Routes, &summaries); err != nil {
			return nil, fmt.Errorf("decoding routes to %s: %w", destination, err)
		}
	}
	if len(summaries) > 0 {
		route.Summary = summaries[0].Summary
		for _, leg := range summaries[0].Legs {
			route.DistanceMeters += leg.Distance.Value
			route.DurationSeconds += leg.Duration.Value
		}
	}

	return route, nil
}
