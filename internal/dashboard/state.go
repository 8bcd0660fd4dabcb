package dashboard

import (
	"encoding/json"
	"fmt"

	"github.com/neexbeast/weather-dashboard/internal/cityinfo"
	"github.com/neexbeast/weather-dashboard/internal/weather"
)

// View is the active dashboard tab.
type View int

const (
	ViewWeather View = iota
	ViewCityInfo
)

func (v View) String() string {
	switch v {
	case ViewCityInfo:
		return "city_info"
	default:
		return "weather"
	}
}

// ParseView accepts the names produced by View.String.
func ParseView(s string) (View, error) {
	switch s {
	case "weather":
		return ViewWeather, nil
	case "city_info":
		return ViewCityInfo, nil
	}
	return ViewWeather, fmt.Errorf("unknown view %q", s)
}

func (v View) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

func (v *View) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseView(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// CityInfo holds the city-information sections derived from the snapshot
// identified by SnapshotSeq.
type CityInfo struct {
	Photos      []string         `json:"photos,omitempty"`
	Restaurants []cityinfo.Place `json:"restaurants,omitempty"`
	Hotels      []cityinfo.Place `json:"hotels,omitempty"`
	Route       *cityinfo.Route  `json:"route,omitempty"`
	Loading     bool             `json:"loading"`
	SnapshotSeq uint64           `json:"snapshot_seq"`
}

// State is everything one dashboard session shows. Only the Controller
// writes it.
type State struct {
	Snapshot        *weather.Snapshot `json:"snapshot,omitempty"`
	SearchText      string            `json:"search_text"`
	DestinationText string            `json:"destination_text"`
	ErrorMessage    string            `json:"error_message,omitempty"`
	IsLoading       bool              `json:"is_loading"`
	ActiveView      View              `json:"active_view"`
	CityInfo        CityInfo          `json:"city_info"`

	// Seq increases each time a weather fetch starts; only the fetch that
	// owns the current Seq may settle the state.
	Seq uint64 `json:"seq"`
	// SnapshotSeq is the Seq of the fetch that produced Snapshot.
	SnapshotSeq uint64 `json:"snapshot_seq"`
}

// cityInfoLoaded reports whether city info was requested for the current snapshot.
func (s *State) cityInfoLoaded() bool {
	return s.Snapshot != nil && s.CityInfo.SnapshotSeq == s.SnapshotSeq
}
