package net

import (
	"encoding/json"
	"log"
	nethttp "net/http"
	"time"

	"arena-blitz/server"
	"arena-blitz/server/internal/net/ws"
)

type HTTPHandlerConfig struct {
	Logger *log.Logger
}

// NewHTTPHandler mounts the health and diagnostics surfaces plus the
// websocket endpoint.
func NewHTTPHandler(hub *server.Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		diag := hub.Diagnostics()
		payload := struct {
			server.DiagnosticsSnapshot
			ServerTime int64 `json:"serverTime"`
			TickRate   int   `json:"tickRate"`
			Telemetry  any   `json:"telemetry"`
		}{
			DiagnosticsSnapshot: diag,
			ServerTime:          time.Now().UnixMilli(),
			TickRate:            server.TickRate(),
			Telemetry:           hub.TelemetrySnapshot(),
		}

		data, err := json.Marshal(payload)
		if err != nil {
			nethttp.Error(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	wsHandler := ws.NewHandler(hub, ws.HandlerConfig{Logger: logger})
	mux.Handle("/ws", wsHandler)

	return mux
}
