package api

import (
	"context"

	"github.com/neexbeast/weather-dashboard/internal/dashboard"
)

// Dashboard defines the dashboard actions needed by handlers.
type Dashboard interface {
	State(ctx context.Context, session string) (dashboard.State, error)
	Locate(ctx context.Context, session string, loc dashboard.Locator) (dashboard.State, error)
	Search(ctx context.Context, session, city string) (dashboard.State, error)
	SetView(ctx context.Context, session string, view dashboard.View) (dashboard.State, error)
	SetDestination(ctx context.Context, session, text string) (dashboard.State, error)
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
