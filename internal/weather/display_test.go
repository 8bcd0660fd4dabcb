package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemperatureColor(t *testing.T) {
	tests := []struct {
		celsius float64
		want    string
	}{
		{-20, "#00b4db"},
		{9.99, "#00b4db"},
		{10, "#0083b0"},
		{19.5, "#0083b0"},
		{20, "#ff9a44"},
		{29.9, "#ff9a44"},
		{30, "#ff6b6b"},
		{45, "#ff6b6b"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, TemperatureColor(tc.celsius), "temp %v", tc.celsius)
	}
}

func TestIconURL(t *testing.T) {
	assert.Equal(t, "https://openweathermap.org/img/wn/01d@2x.png", IconURL("01d"))
	assert.Empty(t, IconURL(""))
}

func TestRoundedCelsius(t *testing.T) {
	assert.Equal(t, 15, RoundedCelsius(14.5))
	assert.Equal(t, -2, RoundedCelsius(-2.5))
	assert.Equal(t, 0, RoundedCelsius(0.4))
}
