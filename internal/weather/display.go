package weather

import "math"

const iconBaseURL = "https://openweathermap.org/img/wn/"

// TemperatureColor maps a temperature to the card accent color.
func TemperatureColor(celsius float64) string {
	switch {
	case celsius < 10:
		return "#00b4db"
	case celsius < 20:
		return "#0083b0"
	case celsius < 30:
		return "#ff9a44"
	default:
		return "#ff6b6b"
	}
}

// IconURL returns the 2x PNG for a provider condition icon id, or "" for none.
func IconURL(iconID string) string {
	if iconID == "" {
		return ""
	}
	return iconBaseURL + iconID + "@2x.png"
}

// RoundedCelsius is the whole-degree temperature shown to users.
// Halves round up, so -2.5 becomes -2.
func RoundedCelsius(celsius float64) int {
	return int(math.Floor(celsius + 0.5))
}
