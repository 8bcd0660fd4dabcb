// Package cityinfo loads the city-information sections shown next to a
// weather snapshot: photos, nearby restaurants and hotels, and a route.
package cityinfo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/weather-dashboard/internal/config"
)

// photoFetcher is the interface satisfied by PhotoClient.
type photoFetcher interface {
	FetchCityPhotos(ctx context.Context, city string) ([]string, error)
}

// placeFetcher is the interface satisfied by PlacesClient.
type placeFetcher interface {
	FetchNearby(ctx context.Context, kind Kind, lat, lon float64) ([]Place, error)
}

// routeFetcher is the interface satisfied by DirectionsClient.
type routeFetcher interface {
	FetchRoute(ctx context.Context, originLat, originLon float64, destination string) (*Route, error)
}

// SettleFunc receives each section as soon as it loads successfully.
// It may be called from several goroutines at once.
type SettleFunc func(section Section, partial Result)

// Fetcher loads all city-information sections in parallel.
type Fetcher struct {
	photos photoFetcher
	places placeFetcher
	routes routeFetcher
	log    *slog.Logger
}

// NewFetcher constructs a Fetcher with production clients built from cfg.
func NewFetcher(cfg *config.Config, log *slog.Logger) *Fetcher {
	return &Fetcher{
		photos: NewPhotoClient(cfg.Photos),
		places: NewPlacesClient(cfg.Maps),
		routes: NewDirectionsClient(cfg.Maps),
		log:    log,
	}
}

// NewFetcherWithClients constructs a Fetcher with injectable clients (used in tests).
func NewFetcherWithClients(p photoFetcher, pl placeFetcher, r routeFetcher, log *slog.Logger) *Fetcher {
	return &Fetcher{photos: p, places: pl, routes: r, log: log}
}

// FetchRoute fetches only the route section.
func (f *Fetcher) FetchRoute(ctx context.Context, originLat, originLon float64, destination string) (*Route, error) {
	return f.routes.FetchRoute(ctx, originLat, originLon, destination)
}

// FetchAll issues the photo, restaurant, hotel and route requests
// concurrently. A failing request is logged and leaves its section empty;
// the route is skipped for a blank destination. The returned error is
// non-nil only if a request panicked.
func (f *Fetcher) FetchAll(ctx context.Context, req Request, onSettle SettleFunc) (*Result, error) {
	if onSettle == nil {
		onSettle = func(Section, Result) {}
	}

	g, gCtx := errgroup.WithContext(ctx)
	var res Result

	g.Go(f.guard(SectionPhotos, func() {
		photos, err := f.photos.FetchCityPhotos(gCtx, req.City)
		if err != nil {
			f.log.Warn("photo fetch failed", "city", req.City, "err", err)
			return
		}
		res.Photos = photos
		onSettle(SectionPhotos, Result{Photos: photos})
	}))

	g.Go(f.guard(SectionRestaurants, func() {
		places, err := f.places.FetchNearby(gCtx, KindRestaurant, req.Lat, req.Lon)
		if err != nil {
			f.log.Warn("restaurant fetch failed", "city", req.City, "err", err)
			return
		}
		res.Restaurants = places
		onSettle(SectionRestaurants, Result{Restaurants: places})
	}))

	g.Go(f.guard(SectionHotels, func() {
		places, err := f.places.FetchNearby(gCtx, KindLodging, req.Lat, req.Lon)
		if err != nil {
			f.log.Warn("hotel fetch failed", "city", req.City, "err", err)
			return
		}
		res.Hotels = places
		onSettle(SectionHotels, Result{Hotels: places})
	}))

	if strings.TrimSpace(req.Destination) != "" {
		g.Go(f.guard(SectionRoute, func() {
			route, err := f.routes.FetchRoute(gCtx, req.Lat, req.Lon, req.Destination)
			if err != nil {
				f.logRouteError(req.Destination, err)
				return
			}
			res.Route = route
			onSettle(SectionRoute, Result{Route: route})
		}))
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetching city info for %s: %w", req.City, err)
	}

	return &res, nil
}

// logRouteError logs a route failure at a level matching its cause.
func (f *Fetcher) logRouteError(destination string, err error) {
	if errors.Is(err, ErrRouteUnavailable) {
		f.log.Info("no route to destination", "destination", destination, "err", err)
		return
	}
	f.log.Warn("route fetch failed", "destination", destination, "err", err)
}

// guard turns a panic in fn into an errgroup error.
func (f *Fetcher) guard(section Section, fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				f.log.Error("city info fetch panicked", "section", section, "recover", r)
				err = fmt.Errorf("%s fetch panicked: %v", section, r)
			}
		}()
		fn()
		return nil
	}
}
