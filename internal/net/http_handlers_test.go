package net

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arena-blitz/server"
)

func TestHealthEndpoint(t *testing.T) {
	hub := server.NewHub()
	srv := httptest.NewServer(NewHTTPHandler(hub, HTTPHandlerConfig{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestDiagnosticsEndpoint(t *testing.T) {
	hub := server.NewHub()
	srv := httptest.NewServer(NewHTTPHandler(hub, HTTPHandlerConfig{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/diagnostics")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var payload struct {
		Status      string `json:"status"`
		Rooms       int    `json:"rooms"`
		Players     int    `json:"players"`
		Connections int    `json:"connections"`
		TickRate    int    `json:"tickRate"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))

	assert.Equal(t, "ok", payload.Status)
	assert.Equal(t, 1, payload.Rooms)
	assert.Equal(t, 0, payload.Players)
	assert.Equal(t, server.TickRate(), payload.TickRate)
}
