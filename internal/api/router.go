package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
)

// NewRouter builds and returns the Chi router with all routes configured.
// The health endpoint carries no session; every dashboard route does.
func NewRouter(handlers *Handlers, store Pinger, session SessionOptions, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Trace("weather-dashboard/api"))
	r.Use(func(next http.Handler) http.Handler { return gzhttp.GzipHandler(next) })

	r.Get("/api/v1/health", HealthHandlerFunc(store, log))

	r.Route("/api/v1/dashboard", func(r chi.Router) {
		r.Use(Session(session))

		r.Get("/", handlers.GetDashboard)
		r.Get("/weather", handlers.GetWeather)
		r.Get("/city-info", handlers.GetCityInfo)
		r.Post("/location", handlers.PostLocation)
		r.Post("/search", handlers.PostSearch)
		r.Put("/destination", handlers.PutDestination)
		r.Put("/view", handlers.PutView)
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
