package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/neexbeast/weather-dashboard/internal/dashboard"
	"github.com/neexbeast/weather-dashboard/internal/weather"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 16

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	dash     Dashboard
	validate *validator.Validate
	log      *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(dash Dashboard, log *slog.Logger) *Handlers {
	return &Handlers{
		dash:     dash,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
	}
}

type locationRequest struct {
	Lat   *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon   *float64 `json:"lon" validate:"omitempty,gte=-180,lte=180"`
	Error string   `json:"error" validate:"omitempty,oneof=permission_denied unsupported"`
}

type searchRequest struct {
	City string `json:"city" validate:"max=200"`
}

type destinationRequest struct {
	Destination string `json:"destination" validate:"max=200"`
}

type viewRequest struct {
	View string `json:"view" validate:"required,oneof=weather city_info"`
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decode reads a JSON body into dst and validates it. On failure it writes
// the response and returns false.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("field %s failed %s validation", fe.Field(), fe.Tag())
	}
	return "invalid request"
}

// respond writes the rendered dashboard for a settled action.
func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, action string, state dashboard.State, err error) {
	if err != nil {
		h.log.Error("dashboard action failed", "action", action, "session", SessionID(r.Context()), "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, dashboard.Render(state))
}

// GetDashboard handles GET /api/v1/dashboard.
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	state, err := h.dash.State(r.Context(), SessionID(r.Context()))
	h.respond(w, r, "state", state, err)
}

// GetWeather handles GET /api/v1/dashboard/weather.
func (h *Handlers) GetWeather(w http.ResponseWriter, r *http.Request) {
	state, err := h.dash.State(r.Context(), SessionID(r.Context()))
	if err != nil {
		h.respond(w, r, "weather", state, err)
		return
	}
	view := dashboard.RenderWeather(state)
	if view == nil {
		writeError(w, http.StatusNotFound, "no weather loaded yet")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetCityInfo handles GET /api/v1/dashboard/city-info.
func (h *Handlers) GetCityInfo(w http.ResponseWriter, r *http.Request) {
	state, err := h.dash.State(r.Context(), SessionID(r.Context()))
	if err != nil {
		h.respond(w, r, "city_info", state, err)
		return
	}
	view := dashboard.RenderCityInfo(state)
	if view == nil {
		writeError(w, http.StatusNotFound, "no weather loaded yet")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// PostLocation handles POST /api/v1/dashboard/location. The body carries
// either the browser's coordinates or the reason it could not get them.
func (h *Handlers) PostLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if !h.decode(w, r, &req) {
		return
	}

	var pos dashboard.ReportedPosition
	switch req.Error {
	case "permission_denied":
		pos.Err = dashboard.ErrPermissionDenied
	case "unsupported":
		pos.Err = dashboard.ErrUnsupported
	default:
		if req.Lat == nil || req.Lon == nil {
			writeError(w, http.StatusUnprocessableEntity, "lat and lon are required")
			return
		}
		pos.Coords = weather.Coordinates{Lat: *req.Lat, Lon: *req.Lon}
	}

	state, err := h.dash.Locate(r.Context(), SessionID(r.Context()), pos)
	h.respond(w, r, "locate", state, err)
}

// PostSearch handles POST /api/v1/dashboard/search.
func (h *Handlers) PostSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !h.decode(w, r, &req) {
		return
	}

	state, err := h.dash.Search(r.Context(), SessionID(r.Context()), req.City)
	h.respond(w, r, "search", state, err)
}

// PutDestination handles PUT /api/v1/dashboard/destination.
func (h *Handlers) PutDestination(w http.ResponseWriter, r *http.Request) {
	var req destinationRequest
	if !h.decode(w, r, &req) {
		return
	}

	state, err := h.dash.SetDestination(r.Context(), SessionID(r.Context()), req.Destination)
	h.respond(w, r, "set_destination", state, err)
}

// PutView handles PUT /api/v1/dashboard/view.
func (h *Handlers) PutView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := dashboard.ParseView(req.View)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	state, err := h.dash.SetView(r.Context(), SessionID(r.Context()), view)
	h.respond(w, r, "set_view", state, err)
}

// HealthHandlerFunc returns an http.HandlerFunc that checks session store
// connectivity. It returns 200 when the store answers, 503 otherwise.
func HealthHandlerFunc(store Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		storeStatus := "ok"

		if err := store.Ping(ctx); err != nil {
			log.Error("health check: session store ping failed", "err", err)
			storeStatus = "error"
			status = http.StatusServiceUnavailable
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}

		writeJSON(w, status, map[string]string{
			"status": overall,
			"store":  storeStatus,
		})
	}
}
