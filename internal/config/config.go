// Package config builds the process configuration once at startup.
//
// Values come from the OS environment, optionally seeded from a .env file.
// The resulting Config is passed explicitly to every component that needs a
// key or URL; nothing else in the module reads the environment.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the top-level configuration for the dashboard server.
type Config struct {
	Port     string `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Weather   WeatherConfig
	Photos    PhotosConfig
	Maps      MapsConfig
	Session   SessionConfig
	Telemetry TelemetryConfig
}

// WeatherConfig configures the OpenWeatherMap client.
type WeatherConfig struct {
	APIKey  string `envconfig:"OPENWEATHER_API_KEY"`
	BaseURL string `envconfig:"OPENWEATHER_BASE_URL" default:"https://api.openweathermap.org/data/2.5" validate:"required,url"`
}

// PhotosConfig configures the Unsplash image search client.
type PhotosConfig struct {
	APIKey  string `envconfig:"UNSPLASH_API_KEY"`
	BaseURL string `envconfig:"UNSPLASH_BASE_URL" default:"https://api.unsplash.com" validate:"required,url"`
	PerPage int    `envconfig:"UNSPLASH_PER_PAGE" default:"5" validate:"gte=1,lte=5"`
}

// MapsConfig configures the Google Places and Directions clients.
type MapsConfig struct {
	APIKey       string `envconfig:"GOOGLE_MAPS_API_KEY"`
	BaseURL      string `envconfig:"GOOGLE_MAPS_BASE_URL" default:"https://maps.googleapis.com/maps/api" validate:"required,url"`
	RadiusMeters int    `envconfig:"PLACES_RADIUS_METERS" default:"5000" validate:"gte=1,lte=50000"`
}

// SessionConfig selects and tunes the dashboard state store.
// An empty RedisURL keeps sessions in process memory.
type SessionConfig struct {
	RedisURL string        `envconfig:"REDIS_URL" validate:"omitempty,url"`
	TTL      time.Duration `envconfig:"SESSION_TTL" default:"1h" validate:"gte=1m"`

	// CookieSecure marks the session cookie Secure; enable behind TLS.
	CookieSecure bool `envconfig:"SESSION_COOKIE_SECURE" default:"false"`
}

// TelemetryConfig enables span export when ZipkinEndpoint is set.
type TelemetryConfig struct {
	ServiceName    string `envconfig:"OTEL_SERVICE_NAME" default:"weather-dashboard"`
	ZipkinEndpoint string `envconfig:"ZIPKIN_ENDPOINT" validate:"omitempty,url"`
}

// Warnings lists non-fatal configuration problems worth logging at startup.
// A missing key does not stop the process; the provider will reject calls.
func (c *Config) Warnings() []string {
	var out []string
	if c.Weather.APIKey == "" {
		out = append(out, "OPENWEATHER_API_KEY is not set; weather lookups will fail with an invalid API key error")
	}
	if c.Photos.APIKey == "" {
		out = append(out, "UNSPLASH_API_KEY is not set; city photos will be unavailable")
	}
	if c.Maps.APIKey == "" {
		out = append(out, "GOOGLE_MAPS_API_KEY is not set; places and directions will be unavailable")
	}
	return out
}

// Load reads .env (if present), processes the environment and validates.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	return load()
}

func load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
