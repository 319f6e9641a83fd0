package httpserver

import "net/http"

// Routes groups handlers. Nil entries are not registered.
type Routes struct {
	Health        http.Handler
	Metrics       http.Handler
	ListStations  http.HandlerFunc
	GetStation    http.HandlerFunc
	CreateSession http.HandlerFunc
	ListSessions  http.HandlerFunc
	StartSession  http.HandlerFunc
	GetSession    http.HandlerFunc
	StopSession   http.HandlerFunc
	SessionFeed   http.HandlerFunc
}

// NewRouter registers endpoints. Method mismatches on a known path get 405
// from the mux.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, h http.Handler) {
		if h != nil {
			mux.Handle(pattern, h)
		}
	}
	handleFunc := func(pattern string, h http.HandlerFunc) {
		if h != nil {
			mux.Handle(pattern, h)
		}
	}

	handle("GET /health", routes.Health)
	handle("GET /metrics", routes.Metrics)

	handleFunc("GET /stations", routes.ListStations)
	handleFunc("GET /stations/{stationID}", routes.GetStation)

	handleFunc("POST /sessions", routes.CreateSession)
	handleFunc("GET /sessions", routes.ListSessions)
	handleFunc("POST /sessions/{sessionID}/start", routes.StartSession)
	handleFunc("GET /sessions/{sessionID}", routes.GetSession)
	handleFunc("POST /sessions/{sessionID}/stop", routes.StopSession)

	handleFunc("GET /ws/sessions", routes.SessionFeed)
	return mux
}
