package dashboard

import (
	"github.com/neexbeast/weather-dashboard/internal/cityinfo"
	"github.com/neexbeast/weather-dashboard/internal/weather"
)

// maxListedPlaces is how many restaurants and hotels the city view lists.
const maxListedPlaces = 3

// WeatherSummaryView is the weather card derived from a snapshot.
type WeatherSummaryView struct {
	Heading     string `json:"heading"`
	Temperature int    `json:"temperature"`
	Color       string `json:"color"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url,omitempty"`
	Humidity    int    `json:"humidity"`
	Pressure    int    `json:"pressure"`
}

// CityInfoView is the city-information panel derived from a snapshot.
type CityInfoView struct {
	City        string              `json:"city"`
	Photos      []string            `json:"photos"`
	MapCenter   weather.Coordinates `json:"map_center"`
	Restaurants []cityinfo.Place    `json:"restaurants"`
	Hotels      []cityinfo.Place    `json:"hotels"`
	Route       *cityinfo.Route     `json:"route,omitempty"`
	Loading     bool                `json:"loading"`
}

// Views bundles everything the dashboard page renders.
type Views struct {
	State    State               `json:"state"`
	Weather  *WeatherSummaryView `json:"weather,omitempty"`
	CityInfo *CityInfoView       `json:"city_info,omitempty"`
}

// RenderWeather returns nil until a snapshot exists.
func RenderWeather(s State) *WeatherSummaryView {
	snap := s.Snapshot
	if snap == nil {
		return nil
	}

	heading := snap.LocationName
	if snap.CountryCode != "" {
		heading += ", " + snap.CountryCode
	}

	return &WeatherSummaryView{
		Heading:     heading,
		Temperature: weather.RoundedCelsius(snap.TemperatureCelsius),
		Color:       weather.TemperatureColor(snap.TemperatureCelsius),
		Description: snap.ConditionDescription,
		IconURL:     weather.IconURL(snap.ConditionIconID),
		Humidity:    snap.HumidityPercent,
		Pressure:    snap.PressureHPa,
	}
}

// RenderCityInfo returns nil until a snapshot exists. Sections that belong
// to an older snapshot are not shown.
func RenderCityInfo(s State) *CityInfoView {
	snap := s.Snapshot
	if snap == nil {
		return nil
	}

	v := &CityInfoView{
		City:        snap.LocationName,
		Photos:      []string{},
		MapCenter:   snap.Coordinates,
		Restaurants: []cityinfo.Place{},
		Hotels:      []cityinfo.Place{},
	}
	if !s.cityInfoLoaded() {
		return v
	}

	ci := s.CityInfo
	if ci.Photos != nil {
		v.Photos = ci.Photos
	}
	v.Restaurants = topPlaces(ci.Restaurants)
	v.Hotels = topPlaces(ci.Hotels)
	v.Route = ci.Route
	v.Loading = ci.Loading
	return v
}

// Render builds every view for s.
func Render(s State) Views {
	return Views{
		State:    s,
		Weather:  RenderWeather(s),
		CityInfo: RenderCityInfo(s),
	}
}

func topPlaces(places []cityinfo.Place) []cityinfo.Place {
	if len(places) > maxListedPlaces {
		places = places[:maxListedPlaces]
	}
	out := make([]cityinfo.Place, len(places))
	copy(out, places)
	return out
}
