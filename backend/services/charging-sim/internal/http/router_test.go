package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func named(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(name + ":" + r.PathValue("sessionID") + r.PathValue("stationID")))
	}
}

func TestRouterDispatch(t *testing.T) {
	router := NewRouter(Routes{
		Health:        named("health"),
		ListStations:  named("stations"),
		GetStation:    named("station"),
		CreateSession: named("create"),
		ListSessions:  named("list"),
		StartSession:  named("start"),
		GetSession:    named("get"),
		StopSession:   named("stop"),
	})

	cases := []struct {
		method, path, want string
	}{
		{http.MethodGet, "/health", "health:"},
		{http.MethodGet, "/stations", "stations:"},
		{http.MethodGet, "/stations/ST-1001", "station:ST-1001"},
		{http.MethodPost, "/sessions", "create:"},
		{http.MethodGet, "/sessions", "list:"},
		{http.MethodPost, "/sessions/SES-12345/start", "start:SES-12345"},
		{http.MethodGet, "/sessions/SES-12345", "get:SES-12345"},
		{http.MethodPost, "/sessions/SES-12345/stop", "stop:SES-12345"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, tc.path)
		assert.Equal(t, tc.want, rec.Body.String(), tc.path)
	}
}

func TestRouterMethodAndMissingRoutes(t *testing.T) {
	router := NewRouter(Routes{ListStations: named("stations")})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stations", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
