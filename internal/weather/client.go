// Package weather fetches current conditions from OpenWeatherMap and maps
// provider failures onto a small error taxonomy.
package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/neexbeast/weather-dashboard/internal/config"
	"github.com/neexbeast/weather-dashboard/internal/provider"
)

// Client fetches current weather from OpenWeatherMap. Every call is a
// single attempt in metric units.
type Client struct {
	apiKey   string
	endpoint string
	provider *provider.Client
}

// NewClient constructs a Client from the weather section of the config.
func NewClient(cfg config.WeatherConfig) *Client {
	return &Client{
		apiKey:   cfg.APIKey,
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/weather",
		provider: provider.New("openweathermap", nil),
	}
}

// owmResponse is the subset of the current-weather payload we consume.
type owmResponse struct {
	Main *struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
		Pressure int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Coord *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
}

// FetchByCoordinates returns the weather at lat/lon.
// Fails with ErrAuth on 401 and *NetworkError otherwise.
func (c *Client) FetchByCoordinates(ctx context.Context, lat, lon float64) (*Snapshot, error) {
	q := c.query()
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	snap, err := c.fetch(ctx, q, false)
	if err != nil {
		return nil, fmt.Errorf("weather at %.4f,%.4f: %w", lat, lon, err)
	}
	return snap, nil
}

// FetchByCityName returns the weather for a city name.
// Fails with ErrAuth on 401, ErrNotFound on 404 and *NetworkError otherwise.
func (c *Client) FetchByCityName(ctx context.Context, name string) (*Snapshot, error) {
	q := c.query()
	q.Set("q", name)

	snap, err := c.fetch(ctx, q, true)
	if err != nil {
		return nil, fmt.Errorf("weather for %s: %w", name, err)
	}
	return snap, nil
}

func (c *Client) query() url.Values {
	q := url.Values{}
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	return q
}

func (c *Client) fetch(ctx context.Context, q url.Values, byName bool) (*Snapshot, error) {
	var raw owmResponse
	if err := c.provider.GetJSON(ctx, c.endpoint, q, &raw); err != nil {
		return nil, classify(err, byName)
	}
	return raw.toSnapshot()
}

// classify maps a provider failure onto the weather error taxonomy.
// 404 only means "city not found" for name lookups.
func classify(err error, byName bool) error {
	var se *provider.StatusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == http.StatusUnauthorized:
			return ErrAuth
		case se.StatusCode == http.StatusNotFound && byName:
			return ErrNotFound
		}
		return &NetworkError{Message: se.Message, Err: err}
	}
	return &NetworkError{Message: err.Error(), Err: err}
}

func (r *owmResponse) toSnapshot() (*Snapshot, error) {
	if r.Main == nil || r.Coord == nil {
		return nil, &NetworkError{Message: "unexpected response from weather provider"}
	}

	snap := &Snapshot{
		LocationName:       r.Name,
		CountryCode:        r.Sys.Country,
		TemperatureCelsius: r.Main.Temp,
		HumidityPercent:    r.Main.Humidity,
		PressureHPa:        r.Main.Pressure,
		Coordinates:        Coordinates{Lat: r.Coord.Lat, Lon: r.Coord.Lon},
	}
	if len(r.Weather) > 0 {
		snap.ConditionDescription = r.Weather[0].Description
		snap.ConditionIconID = r.Weather[0].Icon
	}

	return snap, nil
}
