package httpapi

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"societyhub.org/internal/bus"
)

// waitForSubscribers blocks until the hub sees n live subscriptions, so a
// publish cannot race the connection setup.
func waitForSubscribers(t *testing.T, hub *bus.Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers() < n {
		if time.Now().After(deadline) {
			t.Fatalf("hub never reached %d subscribers", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestWebSocketUpgradeAndDelivery(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(h.api.Handler())
	defer srv.Close()

	conn, resp, err := websocket.DefaultDialer.Dial(
		wsURL(srv, "/ws?token="+h.token(t, h.member)), nil)
	require.NoError(t, err, "upgrade must succeed through the full middleware chain")
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	waitForSubscribers(t, h.hub, 1)
	h.hub.Broadcast(bus.EventNewNotice, map[string]string{"id": "n-1"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev bus.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, bus.EventNewNotice, ev.Name)
}

func TestWebSocketRoleRoomIsBoundAtConnect(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(h.api.Handler())
	defer srv.Close()

	adminConn, _, err := websocket.DefaultDialer.Dial(
		wsURL(srv, "/ws?token="+h.token(t, h.admin)), nil)
	require.NoError(t, err)
	defer adminConn.Close()
	waitForSubscribers(t, h.hub, 1)

	memberConn, _, err := websocket.DefaultDialer.Dial(
		wsURL(srv, "/ws?token="+h.token(t, h.member)), nil)
	require.NoError(t, err)
	defer memberConn.Close()
	waitForSubscribers(t, h.hub, 2)

	// A member cannot talk its way into the admin room.
	require.NoError(t, memberConn.WriteJSON(map[string]string{
		"action": "join-room", "room": "admin",
	}))

	h.hub.Publish(bus.EventGuestStatusUpdated, map[string]string{"id": "g-1"}, bus.Room("admin"))

	require.NoError(t, adminConn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev bus.Event
	require.NoError(t, adminConn.ReadJSON(&ev))
	assert.Equal(t, bus.EventGuestStatusUpdated, ev.Name)

	require.NoError(t, memberConn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	require.Error(t, memberConn.ReadJSON(&ev), "admin-targeted event must not reach the member socket")
}

func TestWebSocketRejectsBadToken(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(h.api.Handler())
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws?token=garbage"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEventsStreamDeliversFrames(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(h.api.Handler())
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+h.token(t, h.member))

	resp, err := srv.Client().Do(req)
	require.NoError(t, err, "headers must be flushed before any event arrives")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	waitForSubscribers(t, h.hub, 1)
	h.hub.Broadcast(bus.EventPaymentStatusUpdated, map[string]string{"id": "p-1"})

	reader := bufio.NewReader(resp.Body)
	var data string
	deadline := time.Now().Add(2 * time.Second)
	for data == "" {
		require.True(t, time.Now().Before(deadline), "timed out waiting for an SSE frame")
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		}
	}

	var ev bus.Event
	require.NoError(t, json.Unmarshal([]byte(data), &ev))
	assert.Equal(t, bus.EventPaymentStatusUpdated, ev.Name)
}
