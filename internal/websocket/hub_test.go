package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mnavcli/internal/config"
)

func testHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

// dialTestClient upgrades one client connection against an httptest server.
func dialTestClient(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	cfg := config.WebSocketConfig{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		PingPeriod:      50 * time.Millisecond,
		PongWait:        200 * time.Millisecond,
	}
	upgrader := Upgrader(cfg, nil)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		Serve(hub, conn, cfg, nil)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(payload, &ev))
	return ev
}

func TestHubGreetsNewClient(t *testing.T) {
	hub := testHub(t)
	conn := dialTestClient(t, hub)

	ev := readEvent(t, conn)
	assert.Equal(t, TypeConnected, ev.Type)
}

func TestHubBroadcastsRefresh(t *testing.T) {
	hub := testHub(t)
	conn := dialTestClient(t, hub)
	readEvent(t, conn) // greeting

	asOf := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	hub.BroadcastSnapshotRefresh(asOf, 12)

	ev := readEvent(t, conn)
	assert.Equal(t, TypeSnapshotRefresh, ev.Type)
	assert.True(t, ev.At.Equal(asOf))
	data, ok := ev.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(12), data["companies"])
}

func TestHubTracksClientCount(t *testing.T) {
	hub := testHub(t)
	assert.Equal(t, 0, hub.ClientCount())

	conn := dialTestClient(t, hub)
	readEvent(t, conn) // ensure registration completed

	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)
}

func TestUpgraderOriginCheck(t *testing.T) {
	upgrader := Upgrader(config.WebSocketConfig{}, []string{"https://dash.example.com"})

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "https://dash.example.com")
	assert.True(t, upgrader.CheckOrigin(r))

	r.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, upgrader.CheckOrigin(r))
}
