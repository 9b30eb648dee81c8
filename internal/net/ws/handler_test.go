package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arena-blitz/server"
)

func newTestServer(t *testing.T, cfg server.HubConfig) (*server.Hub, *httptest.Server) {
	t.Helper()
	hub := server.NewHubWithConfig(cfg, nil)
	handler := NewHandler(hub, HandlerConfig{})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg map[string]any) {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

// readUntil decodes frames until one of the wanted type arrives, failing the
// test if the deadline passes first.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		_, payload, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %q", msgType)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(payload, &decoded))
		if decoded["type"] == msgType {
			return decoded
		}
	}
}

func TestHandlerJoinReply(t *testing.T) {
	_, srv := newTestServer(t, server.DefaultHubConfig())
	conn := dial(t, srv)

	send(t, conn, map[string]any{"type": "join", "name": "Alice"})
	joined := readUntil(t, conn, "joined")

	assert.NotEmpty(t, joined["playerId"])
	assert.Equal(t, false, joined["gameStarted"])
	players, ok := joined["players"].([]any)
	require.True(t, ok)
	assert.Len(t, players, 1)
}

func TestHandlerPingPong(t *testing.T) {
	_, srv := newTestServer(t, server.DefaultHubConfig())
	conn := dial(t, srv)

	send(t, conn, map[string]any{"type": "ping", "timestamp": 123456})
	pong := readUntil(t, conn, "pong")
	assert.Equal(t, float64(123456), pong["timestamp"])
}

func TestHandlerMalformedFrameKeepsConnection(t *testing.T) {
	_, srv := newTestServer(t, server.DefaultHubConfig())
	conn := dial(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	send(t, conn, map[string]any{"type": "ping", "timestamp": 9})
	pong := readUntil(t, conn, "pong")
	assert.Equal(t, float64(9), pong["timestamp"])
}

func TestHandlerUnknownTypeIgnored(t *testing.T) {
	_, srv := newTestServer(t, server.DefaultHubConfig())
	conn := dial(t, srv)

	send(t, conn, map[string]any{"type": "teleport", "x": 1})
	send(t, conn, map[string]any{"type": "ping", "timestamp": 42})
	pong := readUntil(t, conn, "pong")
	assert.Equal(t, float64(42), pong["timestamp"])
}

func TestHandlerCapacityCloseCode(t *testing.T) {
	cfg := server.DefaultHubConfig()
	cfg.MaxConnections = 1
	_, srv := newTestServer(t, cfg)

	first := dial(t, srv)
	defer first.Close()

	second := dial(t, srv)
	require.NoError(t, second.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err := second.ReadMessage()
	require.Error(t, err)
	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok, "expected a close frame, got %v", err)
	assert.Equal(t, server.CloseAtCapacity, closeErr.Code)
}

func TestHandlerShutdownCloseCode(t *testing.T) {
	hub, srv := newTestServer(t, server.DefaultHubConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hub.Shutdown(ctx)

	conn := dial(t, srv)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok, "expected a close frame, got %v", err)
	assert.Equal(t, server.CloseShuttingDown, closeErr.Code)
}

func TestHandlerRelaysBetweenClients(t *testing.T) {
	_, srv := newTestServer(t, server.DefaultHubConfig())

	alice := dial(t, srv)
	bob := dial(t, srv)

	send(t, alice, map[string]any{"type": "join", "name": "Alice"})
	readUntil(t, alice, "joined")
	send(t, bob, map[string]any{"type": "join", "name": "Bob"})
	joined := readUntil(t, bob, "joined")
	bobID, _ := joined["playerId"].(string)
	require.NotEmpty(t, bobID)

	// The second join starts the match for everyone.
	readUntil(t, alice, "game_start")

	send(t, alice, map[string]any{
		"type":     "position",
		"position": map[string]any{"x": 1.5, "y": 0, "z": -2},
		"rotation": map[string]any{"x": 0, "y": 90},
		"state":    "running",
	})
	update := readUntil(t, bob, "player_position")
	pos, ok := update["position"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1.5, pos["x"])
	assert.Equal(t, "running", update["state"])

	send(t, alice, map[string]any{
		"type":   "shoot",
		"weapon": "rifle",
		"origin": map[string]any{"x": 1.5, "y": 0, "z": -2},
		"target": map[string]any{"x": 5, "y": 0, "z": 5},
	})
	shot := readUntil(t, bob, "player_shoot")
	assert.Equal(t, "rifle", shot["weapon"])
}

func TestHandlerDisconnectAnnounced(t *testing.T) {
	_, srv := newTestServer(t, server.DefaultHubConfig())

	alice := dial(t, srv)
	bob := dial(t, srv)

	send(t, alice, map[string]any{"type": "join", "name": "Alice"})
	readUntil(t, alice, "joined")
	send(t, bob, map[string]any{"type": "join", "name": "Bob"})
	readUntil(t, bob, "joined")

	require.NoError(t, bob.Close())

	left := readUntil(t, alice, "player_left")
	assert.Equal(t, "Bob", left["playerName"])
	end := readUntil(t, alice, "game_end")
	assert.Equal(t, "Not enough players", end["reason"])
}
