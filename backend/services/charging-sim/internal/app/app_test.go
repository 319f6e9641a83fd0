package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chargesim/backend/services/charging-sim/internal/config"
	"chargesim/backend/services/charging-sim/internal/models"
)

const token = "UNAD-TEST-TOKEN"

func newTestServer(t *testing.T) (*App, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.Simulation.Seed = 2024

	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.bus.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		a.hub.Close()
	})

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)
	return a, srv
}

func call(t *testing.T, srv *httptest.Server, method, path, body string, authorized bool) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if authorized {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

// reserve retries until the simulator reports the connector as available.
func reserve(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	for i := 0; i < 100; i++ {
		resp, body := call(t, srv, http.MethodPost, "/sessions", `{"station_id":"ST-1001","connector_id":"CON-001"}`, true)
		if resp.StatusCode == http.StatusCreated {
			assert.Equal(t, "Reserved", body["status"])
			return body["session_id"].(string)
		}
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "Connector not available", body["message"])
	}
	t.Fatal("connector never sampled as available")
	return ""
}

func TestEndpointsRequireToken(t *testing.T) {
	_, srv := newTestServer(t)

	for _, path := range []string{"/stations", "/stations/ST-1001", "/sessions/SES-1", "/sessions", "/does-not-exist"} {
		resp, body := call(t, srv, http.MethodGet, path, "", false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, "Unauthorized", body["message"], path)
	}

	resp, _ := call(t, srv, http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = call(t, srv, http.MethodGet, "/metrics", "", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWrongMethodIs405(t *testing.T) {
	_, srv := newTestServer(t)
	resp, _ := call(t, srv, http.MethodDelete, "/stations", "", true)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStationsAreResampledEachRequest(t *testing.T) {
	_, srv := newTestServer(t)

	seen := make(map[string]bool)
	for i := 0; i < 30; i++ {
		resp, body := call(t, srv, http.MethodGet, "/stations/ST-1001", "", true)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		connectors := body["connectors"].([]interface{})
		require.Len(t, connectors, 3)
		status := connectors[0].(map[string]interface{})["status"].(string)
		assert.Contains(t, []string{"Available", "Occupied", "OutOfService"}, status)
		seen[status] = true
	}
	assert.Greater(t, len(seen), 1, "status never changed across 30 reads")
}

func TestFullSessionFlow(t *testing.T) {
	_, srv := newTestServer(t)
	id := reserve(t, srv)

	resp, body := call(t, srv, http.MethodPost, "/sessions/"+id+"/start", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Charging", body["status"])

	resp, body = call(t, srv, http.MethodGet, "/sessions/"+id, "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, []interface{}{"Charging", "Completed"}, body["status"])
	assert.NotNil(t, body["start_time"])

	resp, body = call(t, srv, http.MethodPost, "/sessions/"+id+"/stop", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, []interface{}{"Session stopped", "Session already completed"}, body["message"])
	assert.Equal(t, "Completed", body["report"].(map[string]interface{})["status"])

	resp, body = call(t, srv, http.MethodPost, "/sessions/"+id+"/stop", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Session already completed", body["message"])
}

func TestSessionFeedStreamsLifecycle(t *testing.T) {
	a, srv := newTestServer(t)
	id := reserve(t, srv)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/sessions?session_id=" + id
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	defer conn.Close()

	require.Eventually(t, func() bool { return a.hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	call(t, srv, http.MethodPost, "/sessions/"+id+"/start", "", true)
	call(t, srv, http.MethodPost, "/sessions/"+id+"/stop", "", true)

	var got []models.SessionEventType
	for len(got) < 2 {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var ev models.SessionEvent
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, id, ev.Session.ID)
		got = append(got, ev.Type)
	}
	assert.Equal(t, []models.SessionEventType{models.EventSessionCharging, models.EventSessionCompleted}, got)
}

func TestSessionFeedRequiresToken(t *testing.T) {
	_, srv := newTestServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/sessions"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMetricsReflectTraffic(t *testing.T) {
	_, srv := newTestServer(t)
	reserve(t, srv)

	require.Eventually(t, func() bool {
		resp, err := srv.Client().Get(srv.URL + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		return strings.Contains(string(raw), "chargesim_sessions_created_total 1")
	}, 2*time.Second, 20*time.Millisecond)
}
