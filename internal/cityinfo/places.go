package cityinfo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/neexbeast/weather-dashboard/internal/config"
	"github.com/neexbeast/weather-dashboard/internal/provider"
)

// DefaultRadiusMeters is the nearby-search radius when none is configured.
const DefaultRadiusMeters = 5000

// PlacesStatusError is returned when the Places API answers 200 with a
// body status other than OK or ZERO_RESULTS. A body without a status is
// reported with an empty Status.
type PlacesStatusError struct {
	Status  string
	Message string
}

func (e *PlacesStatusError) Error() string {
	if e.Status == "" {
		return "places response without status"
	}
	if e.Message == "" {
		return "places status " + e.Status
	}
	return fmt.Sprintf("places status %s: %s", e.Status, e.Message)
}

// PlacesClient runs Google Places nearby searches.
type PlacesClient struct {
	apiKey   string
	endpoint string
	radius   int
	provider *provider.Client
}

// NewPlacesClient constructs a PlacesClient from the maps config.
func NewPlacesClient(cfg config.MapsConfig) *PlacesClient {
	radius := cfg.RadiusMeters
	if radius <= 0 {
		radius = DefaultRadiusMeters
	}
	return &PlacesClient{
		apiKey:   cfg.APIKey,
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/place/nearbysearch/json",
		radius:   radius,
		provider: provider.New("google-places", nil),
	}
}

type nearbySearchResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Name     string   `json:"name"`
		Rating   *float64 `json:"rating"`
		Vicinity string   `json:"vicinity"`
	} `json:"results"`
}

// FetchNearby returns places of the given kind around lat/lon within the
// configured radius. Order is whatever the provider returned and carries
// no meaning.
func (c *PlacesClient) FetchNearby(ctx context.Context, kind Kind, lat, lon float64) ([]Place, error) {
	return c.FetchNearbyWithin(ctx, kind, lat, lon, c.radius)
}

// FetchNearbyWithin is FetchNearby with an explicit radius. A non-positive
// radius falls back to DefaultRadiusMeters.
func (c *PlacesClient) FetchNearbyWithin(ctx context.Context, kind Kind, lat, lon float64, radiusMeters int) ([]Place, error) {
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}

	q := url.Values{}
	q.Set("location", formatLatLon(lat, lon))
	q.Set("radius", strconv.Itoa(radiusMeters))
	q.Set("type", string(kind))
	q.Set("key", c.apiKey)

	var raw nearbySearchResponse
	if err := c.provider.GetJSON(ctx, c.endpoint, q, &raw); err != nil {
		return nil, fmt.Errorf("nearby %s search: %w", kind, err)
	}

	switch raw.Status {
	case "OK", "ZERO_RESULTS":
	default:
		return nil, fmt.Errorf("nearby %s search: %w", kind, &PlacesStatusError{Status: raw.Status, Message: raw.ErrorMessage})
	}

	places := make([]Place, 0, len(raw.Results))
	for _, r := range raw.Results {
		if r.Name == "" {
			continue
		}
		p := Place{Name: r.Name, Address: r.Vicinity}
		if r.Rating != nil {
			p.Rating = clampRating(*r.Rating)
		}
		places = append(places, p)
	}

	return places, nil
}

func clampRating(r float64) float64 {
	switch {
	case r < 0:
		return 0
	case r > 5:
		return 5
	}
	return r
}

func formatLatLon(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
}
