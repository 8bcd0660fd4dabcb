package dashboard

import (
	"context"

	"github.com/neexbeast/weather-dashboard/internal/weather"
)

// Locator yields the device position. Implementations return
// ErrPermissionDenied or ErrUnsupported instead of a position when the
// device cannot or will not share it.
type Locator interface {
	Locate(ctx context.Context) (weather.Coordinates, error)
}

// ReportedPosition is a Locator over a result the browser already obtained.
type ReportedPosition struct {
	Coords weather.Coordinates
	Err    error
}

func (p ReportedPosition) Locate(context.Context) (weather.Coordinates, error) {
	return p.Coords, p.Err
}
