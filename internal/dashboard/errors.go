package dashboard

import (
	"errors"

	"github.com/neexbeast/weather-dashboard/internal/weather"
)

var (
	// ErrPermissionDenied means the user refused to share their location.
	ErrPermissionDenied = errors.New("geolocation permission denied")

	// ErrUnsupported means the client cannot report a location at all.
	ErrUnsupported = errors.New("geolocation unsupported")
)

const (
	msgAuth        = "Invalid API key. Please check your OpenWeatherMap API key."
	msgNotFound    = "City not found. Please check the city name and try again."
	msgNetwork     = "Failed to fetch weather data: "
	msgPermission  = "Please enable location access to get weather for your current location"
	msgUnsupported = "Geolocation is not supported by your browser"
	msgGeneric     = "Failed to fetch weather data"
)

// ErrorMessage converts a failure from a weather action into the single
// string shown to the user.
func ErrorMessage(err error) string {
	var ne *weather.NetworkError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, weather.ErrAuth):
		return msgAuth
	case errors.Is(err, weather.ErrNotFound):
		return msgNotFound
	case errors.Is(err, ErrPermissionDenied):
		return msgPermission
	case errors.Is(err, ErrUnsupported):
		return msgUnsupported
	case errors.As(err, &ne):
		return msgNetwork + ne.Message
	}
	return msgGeneric
}
