// Package dashboard owns the dashboard state machine: geolocation and
// city searches drive weather fetches, and the city-information view
// lazily loads photos, places and a route for the current snapshot.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neexbeast/weather-dashboard/internal/cityinfo"
	"github.com/neexbeast/weather-dashboard/internal/weather"
)

// WeatherFetcher is the interface satisfied by weather.Client.
type WeatherFetcher interface {
	FetchByCoordinates(ctx context.Context, lat, lon float64) (*weather.Snapshot, error)
	FetchByCityName(ctx context.Context, name string) (*weather.Snapshot, error)
}

// CityInfoFetcher is the interface satisfied by cityinfo.Fetcher.
type CityInfoFetcher interface {
	FetchAll(ctx context.Context, req cityinfo.Request, onSettle cityinfo.SettleFunc) (*cityinfo.Result, error)
	FetchRoute(ctx context.Context, originLat, originLon float64, destination string) (*cityinfo.Route, error)
}

// errStale aborts a store update whose result belongs to a superseded action.
var errStale = errors.New("superseded by a newer action")

// Controller applies user actions to session state. Every action returns
// the state as it stands once that action has settled.
type Controller struct {
	weather WeatherFetcher
	city    CityInfoFetcher
	store   Store
	log     *slog.Logger
}

// NewController constructs a Controller.
func NewController(w WeatherFetcher, city CityInfoFetcher, store Store, log *slog.Logger) *Controller {
	return &Controller{weather: w, city: city, store: store, log: log}
}

// State returns the current state of a session.
func (c *Controller) State(ctx context.Context, session string) (State, error) {
	s, err := c.store.Load(ctx, session)
	if err != nil {
		return State{}, fmt.Errorf("loading session state: %w", err)
	}
	return s, nil
}

// Locate fetches the weather at the device position reported by loc.
// A denied or unsupported locator fails the action without a network call.
func (c *Controller) Locate(ctx context.Context, session string, loc Locator) (State, error) {
	seq, err := c.begin(ctx, session, nil)
	if err != nil {
		return State{}, err
	}

	coords, err := loc.Locate(ctx)
	if err != nil {
		return c.settle(ctx, session, seq, nil, err)
	}

	snap, err := c.weather.FetchByCoordinates(ctx, coords.Lat, coords.Lon)
	return c.settle(ctx, session, seq, snap, err)
}

// Search fetches the weather for a city. A blank city leaves the state
// untouched.
func (c *Controller) Search(ctx context.Context, session, city string) (State, error) {
	name := strings.TrimSpace(city)
	if name == "" {
		return c.State(ctx, session)
	}

	seq, err := c.begin(ctx, session, func(s *State) { s.SearchText = city })
	if err != nil {
		return State{}, err
	}

	snap, err := c.weather.FetchByCityName(ctx, name)
	return c.settle(ctx, session, seq, snap, err)
}

// SetView switches the active view. Opening the city-information view for
// the first time for a snapshot loads its sections.
func (c *Controller) SetView(ctx context.Context, session string, view View) (State, error) {
	var load bool
	state, err := c.store.Update(ctx, session, func(s *State) error {
		s.ActiveView = view
		load = view == ViewCityInfo && s.Snapshot != nil && !s.cityInfoLoaded()
		if load {
			s.CityInfo = CityInfo{Loading: true, SnapshotSeq: s.SnapshotSeq}
		}
		return nil
	})
	if err != nil {
		return State{}, fmt.Errorf("switching view: %w", err)
	}

	if !load {
		return state, nil
	}
	return c.loadCityInfo(ctx, session, state)
}

// SetDestination stores the destination text. While the city-information
// view shows the current snapshot, a non-blank destination refetches the
// route; a blank one clears it.
func (c *Controller) SetDestination(ctx context.Context, session, text string) (State, error) {
	dest := strings.TrimSpace(text)

	var (
		fetch   bool
		origin  weather.Coordinates
		snapSeq uint64
	)
	state, err := c.store.Update(ctx, session, func(s *State) error {
		s.DestinationText = text
		if dest == "" {
			s.CityInfo.Route = nil
			return nil
		}
		fetch = s.ActiveView == ViewCityInfo && s.cityInfoLoaded()
		if fetch {
			origin, snapSeq = s.Snapshot.Coordinates, s.SnapshotSeq
		}
		return nil
	})
	if err != nil {
		return State{}, fmt.Errorf("setting destination: %w", err)
	}
	if !fetch {
		return state, nil
	}

	// The route belongs to the session, not to this request.
	ctx = context.WithoutCancel(ctx)

	route, err := c.city.FetchRoute(ctx, origin.Lat, origin.Lon, dest)
	if err != nil {
		c.logRouteError(session, dest, err)
		route = nil
	}

	return c.applyCityInfo(ctx, session, snapSeq, func(s *State) error {
		if s.DestinationText != text {
			return errStale
		}
		s.CityInfo.Route = route
		return nil
	})
}

// begin enters the loading state and claims a new sequence number.
func (c *Controller) begin(ctx context.Context, session string, mutate func(*State)) (uint64, error) {
	var seq uint64
	_, err := c.store.Update(ctx, session, func(s *State) error {
		s.Seq++
		seq = s.Seq
		s.IsLoading = true
		s.ErrorMessage = ""
		if mutate != nil {
			mutate(s)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("starting weather fetch: %w", err)
	}
	return seq, nil
}

// settle applies the outcome of the weather fetch that owns seq. A failure
// sets the error message and keeps the previous snapshot.
func (c *Controller) settle(ctx context.Context, session string, seq uint64, snap *weather.Snapshot, fetchErr error) (State, error) {
	// The outcome is recorded even if the caller went away.
	ctx = context.WithoutCancel(ctx)

	if fetchErr != nil {
		c.log.Warn("weather fetch failed", "session", session, "seq", seq, "err", fetchErr)
	}

	var loadCity bool
	state, err := c.store.Update(ctx, session, func(s *State) error {
		if s.Seq != seq {
			return errStale
		}
		s.IsLoading = false
		if fetchErr != nil {
			s.ErrorMessage = ErrorMessage(fetchErr)
			return nil
		}

		s.Snapshot = snap
		s.SnapshotSeq = seq
		s.ErrorMessage = ""
		s.CityInfo = CityInfo{}
		loadCity = s.ActiveView == ViewCityInfo
		if loadCity {
			s.CityInfo = CityInfo{Loading: true, SnapshotSeq: seq}
		}
		return nil
	})
	if errors.Is(err, errStale) {
		c.log.Info("discarding stale weather result", "session", session, "seq", seq, "current_seq", state.Seq)
		return state, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("settling weather fetch: %w", err)
	}

	if loadCity {
		return c.loadCityInfo(ctx, session, state)
	}
	return state, nil
}

// loadCityInfo runs the city-information fan-out for the snapshot in
// state. Each section is stored as soon as it arrives. The sections are
// marked loaded before the fan-out starts, so it runs to completion even
// if the caller goes away.
func (c *Controller) loadCityInfo(ctx context.Context, session string, state State) (State, error) {
	ctx = context.WithoutCancel(ctx)

	snap, snapSeq, dest := state.Snapshot, state.SnapshotSeq, strings.TrimSpace(state.DestinationText)
	req := cityinfo.Request{
		City:        snap.LocationName,
		Lat:         snap.Coordinates.Lat,
		Lon:         snap.Coordinates.Lon,
		Destination: dest,
	}

	_, err := c.city.FetchAll(ctx, req, func(section cityinfo.Section, partial cityinfo.Result) {
		_, applyErr := c.applyCityInfo(ctx, session, snapSeq, func(s *State) error {
			switch section {
			case cityinfo.SectionPhotos:
				s.CityInfo.Photos = partial.Photos
			case cityinfo.SectionRestaurants:
				s.CityInfo.Restaurants = partial.Restaurants
			case cityinfo.SectionHotels:
				s.CityInfo.Hotels = partial.Hotels
			case cityinfo.SectionRoute:
				if strings.TrimSpace(s.DestinationText) != dest {
					return errStale
				}
				s.CityInfo.Route = partial.Route
			}
			return nil
		})
		if applyErr != nil {
			c.log.Warn("storing city info section failed", "session", session, "section", section, "err", applyErr)
		}
	})
	if err != nil {
		c.log.Error("city info fetch failed", "session", session, "city", snap.LocationName, "err", err)
	}

	return c.applyCityInfo(ctx, session, snapSeq, func(s *State) error {
		s.CityInfo.Loading = false
		return nil
	})
}

// applyCityInfo updates city info only while it still belongs to the
// snapshot identified by snapSeq.
func (c *Controller) applyCityInfo(ctx context.Context, session string, snapSeq uint64, fn func(*State) error) (State, error) {
	state, err := c.store.Update(ctx, session, func(s *State) error {
		if s.SnapshotSeq != snapSeq || s.CityInfo.SnapshotSeq != snapSeq {
			return errStale
		}
		return fn(s)
	})
	if errors.Is(err, errStale) {
		c.log.Debug("discarding stale city info update", "session", session, "snapshot_seq", snapSeq)
		return state, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("updating city info: %w", err)
	}
	return state, nil
}

func (c *Controller) logRouteError(session, destination string, err error) {
	if errors.Is(err, cityinfo.ErrRouteUnavailable) {
		c.log.Info("no route to destination", "session", session, "destination", destination, "err", err)
		return
	}
	c.log.Warn("route fetch failed", "session", session, "destination", destination, "err", err)
}
