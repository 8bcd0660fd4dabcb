package weather

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Snapshot is one fetched weather observation. It is never mutated after
// the client returns it; a newer fetch replaces it wholesale.
type Snapshot struct {
	LocationName         string      `json:"location_name"`
	CountryCode          string      `json:"country_code"`
	TemperatureCelsius   float64     `json:"temperature_celsius"`
	HumidityPercent      int         `json:"humidity_percent"`
	PressureHPa          int         `json:"pressure_hpa"`
	ConditionDescription string      `json:"condition_description"`
	ConditionIconID      string      `json:"condition_icon_id"`
	Coordinates          Coordinates `json:"coordinates"`
}
