package cityinfo

import "encoding/json"

// Kind selects the Places category for a nearby search.
type Kind string

const (
	KindRestaurant Kind = "restaurant"
	KindLodging    Kind = "lodging"
)

// Place is one nearby point of interest.
type Place struct {
	Name    string  `json:"name"`
	Rating  float64 `json:"rating"`
	Address string  `json:"address"`
}

// Route is a driving route from the snapshot location to a destination.
// Payload carries the provider's routes array untouched; the summary
// fields are read from the first route for convenience.
type Route struct {
	Destination     string          `json:"destination"`
	Summary         string          `json:"summary,omitempty"`
	DistanceMeters  int             `json:"distance_meters,omitempty"`
	DurationSeconds int             `json:"duration_seconds,omitempty"`
	Payload         json.RawMessage `json:"payload"`
}

// Request describes one city-information load.
type Request struct {
	City        string
	Lat, Lon    float64
	Destination string
}

// Result aggregates whatever sections settled successfully.
type Result struct {
	Photos      []string `json:"photos,omitempty"`
	Restaurants []Place  `json:"restaurants,omitempty"`
	Hotels      []Place  `json:"hotels,omitempty"`
	Route       *Route   `json:"route,omitempty"`
}

// Section names one independently loaded part of a Result.
type Section string

const (
	SectionPhotos      Section = "photos"
	SectionRestaurants Section = "restaurants"
	SectionHotels      Section = "hotels"
	SectionRoute       Section = "route"
)
