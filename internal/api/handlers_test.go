package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/weather-dashboard/internal/api"
	"github.com/neexbeast/weather-dashboard/internal/dashboard"
	"github.com/neexbeast/weather-dashboard/internal/weather"
)

// ---- mock implementations ----

type mockDashboard struct {
	stateFn          func(ctx context.Context, session string) (dashboard.State, error)
	locateFn         func(ctx context.Context, session string, loc dashboard.Locator) (dashboard.State, error)
	searchFn         func(ctx context.Context, session, city string) (dashboard.State, error)
	setViewFn        func(ctx context.Context, session string, view dashboard.View) (dashboard.State, error)
	setDestinationFn func(ctx context.Context, session, text string) (dashboard.State, error)
}

func (m *mockDashboard) State(ctx context.Context, session string) (dashboard.State, error) {
	return m.stateFn(ctx, session)
}
func (m *mockDashboard) Locate(ctx context.Context, session string, loc dashboard.Locator) (dashboard.State, error) {
	return m.locateFn(ctx, session, loc)
}
func (m *mockDashboard) Search(ctx context.Context, session, city string) (dashboard.State, error) {
	return m.searchFn(ctx, session, city)
}
func (m *mockDashboard) SetView(ctx context.Context, session string, view dashboard.View) (dashboard.State, error) {
	return m.setViewFn(ctx, session, view)
}
func (m *mockDashboard) SetDestination(ctx context.Context, session, text string) (dashboard.State, error) {
	return m.setDestinationFn(ctx, session, text)
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// ---- helpers ----

func sampleState() dashboard.State {
	return dashboard.State{
		Snapshot: &weather.Snapshot{
			LocationName:         "Paris",
			CountryCode:          "FR",
			TemperatureCelsius:   15,
			HumidityPercent:      60,
			PressureHPa:          1012,
			ConditionDescription: "clear sky",
			ConditionIconID:      "01d",
			Coordinates:          weather.Coordinates{Lat: 48.8566, Lon: 2.3522},
		},
		SearchText:  "Paris",
		Seq:         1,
		SnapshotSeq: 1,
	}
}

func buildRouter(dash api.Dashboard, store *mockPinger) http.Handler {
	return buildRouterWith(dash, store, api.SessionOptions{TTL: time.Hour})
}

func buildRouterWith(dash api.Dashboard, store *mockPinger, session api.SessionOptions) http.Handler {
	if store == nil {
		store = &mockPinger{}
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handlers := api.NewHandlers(dash, log)
	return api.NewRouter(handlers, store, session, log)
}

func do(router http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == api.SessionCookie {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", api.SessionCookie)
	return nil
}

type renderedViews struct {
	State    dashboard.State               `json:"state"`
	Weather  *dashboard.WeatherSummaryView `json:"weather"`
	CityInfo *dashboard.CityInfoView       `json:"city_info"`
}

// ---- GET /api/v1/dashboard ----

func TestGetDashboard_IssuesSessionCookie(t *testing.T) {
	var gotSession string
	dash := &mockDashboard{stateFn: func(_ context.Context, session string) (dashboard.State, error) {
		gotSession = session
		return dashboard.State{}, nil
	}}

	w := do(buildRouter(dash, nil), http.MethodGet, "/api/v1/dashboard", "")

	assert.Equal(t, http.StatusOK, w.Code)
	c := sessionCookie(t, w)
	assert.Equal(t, c.Value, gotSession)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, 3600, c.MaxAge)
}

func TestGetDashboard_SecureSessionCookie(t *testing.T) {
	dash := &mockDashboard{stateFn: func(context.Context, string) (dashboard.State, error) {
		return dashboard.State{}, nil
	}}
	router := buildRouterWith(dash, nil, api.SessionOptions{TTL: 30 * time.Minute, Secure: true})

	w := do(router, http.MethodGet, "/api/v1/dashboard", "")

	assert.Equal(t, http.StatusOK, w.Code)
	c := sessionCookie(t, w)
	assert.True(t, c.Secure)
	assert.Equal(t, 1800, c.MaxAge)
}

func TestGetDashboard_ReusesValidSessionCookie(t *testing.T) {
	const id = "0b6d2c1e-4a43-4f8e-9d3b-2b8f5b0f1c11"
	var gotSession string
	dash := &mockDashboard{stateFn: func(_ context.Context, session string) (dashboard.State, error) {
		gotSession = session
		return sampleState(), nil
	}}

	w := do(buildRouter(dash, nil), http.MethodGet, "/api/v1/dashboard", "",
		&http.Cookie{Name: api.SessionCookie, Value: id})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, gotSession)

	var got renderedViews
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.NotNil(t, got.Weather)
	assert.Equal(t, "Paris, FR", got.Weather.Heading)
	assert.Equal(t, 15, got.Weather.Temperature)
	require.NotNil(t, got.CityInfo)
	assert.Equal(t, 48.8566, got.CityInfo.MapCenter.Lat)
	assert.Equal(t, "weather", got.State.ActiveView.String())
}

func TestGetDashboard_ReplacesMalformedSessionCookie(t *testing.T) {
	var gotSession string
	dash := &mockDashboard{stateFn: func(_ context.Context, session string) (dashboard.State, error) {
		gotSession = session
		return dashboard.State{}, nil
	}}

	w := do(buildRouter(dash, nil), http.MethodGet, "/api/v1/dashboard", "",
		&http.Cookie{Name: api.SessionCookie, Value: "../../etc/passwd"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, "../../etc/passwd", gotSession)
	assert.Equal(t, gotSession, sessionCookie(t, w).Value)
}

func TestGetDashboard_StoreError(t *testing.T) {
	dash := &mockDashboard{stateFn: func(context.Context, string) (dashboard.State, error) {
		return dashboard.State{}, fmt.Errorf("redis down")
	}}

	w := do(buildRouter(dash, nil), http.MethodGet, "/api/v1/dashboard", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetWeather_NoSnapshot(t *testing.T) {
	dash := &mockDashboard{stateFn: func(context.Context, string) (dashboard.State, error) {
		return dashboard.State{}, nil
	}}

	router := buildRouter(dash, nil)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/api/v1/dashboard/weather", "").Code)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/api/v1/dashboard/city-info", "").Code)
}

func TestGetWeather_Snapshot(t *testing.T) {
	dash := &mockDashboard{stateFn: func(context.Context, string) (dashboard.State, error) {
		return sampleState(), nil
	}}

	w := do(buildRouter(dash, nil), http.MethodGet, "/api/v1/dashboard/weather", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got dashboard.WeatherSummaryView
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "#0083b0", got.Color)
	assert.Equal(t, "https://openweathermap.org/img/wn/01d@2x.png", got.IconURL)
}

// ---- POST /api/v1/dashboard/location ----

func TestPostLocation_Coordinates(t *testing.T) {
	var got weather.Coordinates
	dash := &mockDashboard{locateFn: func(ctx context.Context, _ string, loc dashboard.Locator) (dashboard.State, error) {
		coords, err := loc.Locate(ctx)
		require.NoError(t, err)
		got = coords
		return sampleState(), nil
	}}

	w := do(buildRouter(dash, nil), http.MethodPost, "/api/v1/dashboard/location", `{"lat":48.8566,"lon":2.3522}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, weather.Coordinates{Lat: 48.8566, Lon: 2.3522}, got)
}

func TestPostLocation_ReportedFailures(t *testing.T) {
	tests := []struct {
		body string
		want error
	}{
		{`{"error":"permission_denied"}`, dashboard.ErrPermissionDenied},
		{`{"error":"unsupported"}`, dashboard.ErrUnsupported},
	}
	for _, tc := range tests {
		var got error
		dash := &mockDashboard{locateFn: func(ctx context.Context, _ string, loc dashboard.Locator) (dashboard.State, error) {
			_, got = loc.Locate(ctx)
			return dashboard.State{ErrorMessage: dashboard.ErrorMessage(got)}, nil
		}}

		w := do(buildRouter(dash, nil), http.MethodPost, "/api/v1/dashboard/location", tc.body)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.ErrorIs(t, got, tc.want)
	}
}

func TestPostLocation_Invalid(t *testing.T) {
	dash := &mockDashboard{locateFn: func(context.Context, string, dashboard.Locator) (dashboard.State, error) {
		t.Fatal("Locate should not be called for invalid input")
		return dashboard.State{}, nil
	}}
	router := buildRouter(dash, nil)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing lon", `{"lat":10}`, http.StatusUnprocessableEntity},
		{"lat out of range", `{"lat":91,"lon":0}`, http.StatusUnprocessableEntity},
		{"lon out of range", `{"lat":0,"lon":-181}`, http.StatusUnprocessableEntity},
		{"unknown reason", `{"error":"timeout"}`, http.StatusUnprocessableEntity},
		{"not json", `lat=1`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := do(router, http.MethodPost, "/api/v1/dashboard/location", tc.body)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

// ---- POST /api/v1/dashboard/search ----

func TestPostSearch_PassesCity(t *testing.T) {
	var gotCity string
	dash := &mockDashboard{searchFn: func(_ context.Context, _ string, city string) (dashboard.State, error) {
		gotCity = city
		return sampleState(), nil
	}}

	w := do(buildRouter(dash, nil), http.MethodPost, "/api/v1/dashboard/search", `{"city":"Paris"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Paris", gotCity)
}

func TestPostSearch_ErrorMessageIsRendered(t *testing.T) {
	dash := &mockDashboard{searchFn: func(context.Context, string, string) (dashboard.State, error) {
		return dashboard.State{ErrorMessage: dashboard.ErrorMessage(weather.ErrNotFound)}, nil
	}}

	w := do(buildRouter(dash, nil), http.MethodPost, "/api/v1/dashboard/search", `{"city":"Atlantis"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got renderedViews
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "City not found. Please check the city name and try again.", got.State.ErrorMessage)
	assert.Nil(t, got.Weather)
}

func TestPostSearch_TooLong(t *testing.T) {
	dash := &mockDashboard{}
	body := fmt.Sprintf(`{"city":%q}`, strings.Repeat("x", 201))

	w := do(buildRouter(dash, nil), http.MethodPost, "/api/v1/dashboard/search", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// ---- PUT /api/v1/dashboard/view and /destination ----

func TestPutView(t *testing.T) {
	var got dashboard.View
	dash := &mockDashboard{setViewFn: func(_ context.Context, _ string, view dashboard.View) (dashboard.State, error) {
		got = view
		return dashboard.State{ActiveView: view}, nil
	}}
	router := buildRouter(dash, nil)

	w := do(router, http.MethodPut, "/api/v1/dashboard/view", `{"view":"city_info"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dashboard.ViewCityInfo, got)

	w = do(router, http.MethodPut, "/api/v1/dashboard/view", `{"view":"map"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(router, http.MethodPut, "/api/v1/dashboard/view", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPutDestination(t *testing.T) {
	var got string
	dash := &mockDashboard{setDestinationFn: func(_ context.Context, _ string, text string) (dashboard.State, error) {
		got = text
		return dashboard.State{DestinationText: text}, nil
	}}

	w := do(buildRouter(dash, nil), http.MethodPut, "/api/v1/dashboard/destination", `{"destination":"Lyon"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Lyon", got)
}

func TestPutDestination_ActionError(t *testing.T) {
	dash := &mockDashboard{setDestinationFn: func(context.Context, string, string) (dashboard.State, error) {
		return dashboard.State{}, fmt.Errorf("store unavailable")
	}}

	w := do(buildRouter(dash, nil), http.MethodPut, "/api/v1/dashboard/destination", `{"destination":"Lyon"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ---- GET /api/v1/health ----

func TestHealth_OK(t *testing.T) {
	w := do(buildRouter(&mockDashboard{}, &mockPinger{}), http.MethodGet, "/api/v1/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["store"])

	for _, c := range w.Result().Cookies() {
		assert.NotEqual(t, api.SessionCookie, c.Name, "health must not issue a session")
	}
}

func TestHealth_StoreDown(t *testing.T) {
	w := do(buildRouter(&mockDashboard{}, &mockPinger{err: fmt.Errorf("redis unreachable")}),
		http.MethodGet, "/api/v1/health", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "error", body["store"])
}
