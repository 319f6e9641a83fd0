package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chargesim/backend/services/charging-sim/internal/models"
)

func dialHub(t *testing.T, hub *Hub, query string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/sessions" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) models.SessionEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev models.SessionEvent
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestHubBroadcastsEvents(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := dialHub(t, hub, "")
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Handle(context.Background(), models.SessionEvent{
		Type:    models.EventSessionCompleted,
		Reason:  models.CompletionStopped,
		Session: models.ChargingSession{ID: "SES-10001", Status: models.SessionCompleted, Duration: 12, KWhDelivered: 1.2},
		At:      time.Now().UTC(),
	}))

	ev := readEvent(t, conn)
	assert.Equal(t, models.EventSessionCompleted, ev.Type)
	assert.Equal(t, models.CompletionStopped, ev.Reason)
	assert.Equal(t, "SES-10001", ev.Session.ID)
	assert.Equal(t, 1.2, ev.Session.KWhDelivered)
}

func TestHubFiltersBySession(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := dialHub(t, hub, "?session_id=SES-2")
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, hub.Handle(ctx, models.SessionEvent{Type: models.EventSessionReserved, Session: models.ChargingSession{ID: "SES-1"}}))
	require.NoError(t, hub.Handle(ctx, models.SessionEvent{Type: models.EventSessionReserved, Session: models.ChargingSession{ID: "SES-2"}}))

	ev := readEvent(t, conn)
	assert.Equal(t, "SES-2", ev.Session.ID)
}

func TestHubDropsClosedSubscribers(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := dialHub(t, hub, "")
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubClose(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := dialHub(t, hub, "")
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	hub.Close()
	assert.Zero(t, hub.Subscribers())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "server should hang up after Close")
}
