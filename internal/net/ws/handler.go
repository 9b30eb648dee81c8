package ws

import (
	"encoding/json"
	"errors"
	"log"
	nethttp "net/http"

	"github.com/gorilla/websocket"

	"arena-blitz/server"
)

type HandlerConfig struct {
	Logger *log.Logger
}

// Handler upgrades connections and runs the per-connection read loop,
// dispatching each decoded frame to the hub.
type Handler struct {
	hub      *server.Hub
	logger   *log.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *server.Hub, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{
		hub:      hub,
		logger:   logger,
		upgrader: upgrader,
	}
}

// ServeHTTP makes the handler mountable on any mux.
func (h *Handler) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	h.Handle(w, r)
}

func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed: %v", err)
		return
	}

	sess, err := h.hub.Connect(conn)
	if err != nil {
		code := websocket.CloseInternalServerErr
		reason := "rejected"
		switch {
		case errors.Is(err, server.ErrAtCapacity):
			code = server.CloseAtCapacity
			reason = "at capacity"
		case errors.Is(err, server.ErrShuttingDown):
			code = server.CloseShuttingDown
			reason = "shutting down"
		}
		message := websocket.FormatCloseMessage(code, reason)
		conn.WriteMessage(websocket.CloseMessage, message)
		conn.Close()
		return
	}

	playerID := sess.ID()
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.hub.Disconnect(playerID, "connection closed")
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.logger.Printf("discarding malformed message from %s: %v", playerID, err)
			continue
		}

		h.hub.Touch(playerID)

		switch msg.Type {
		case "join":
			h.hub.HandleJoin(playerID, msg.Name)
		case "position":
			if msg.Position == nil || msg.Rotation == nil {
				continue
			}
			h.hub.HandlePosition(playerID, *msg.Position, *msg.Rotation, msg.State)
		case "shoot":
			if msg.Origin == nil || msg.Target == nil {
				continue
			}
			h.hub.HandleShoot(playerID, msg.Weapon, *msg.Origin, *msg.Target)
		case "hit":
			if msg.TargetID == "" || msg.Damage == nil {
				continue
			}
			h.hub.HandleHit(playerID, msg.TargetID, *msg.Damage, msg.IsHeadshot)
		case "weapon_change":
			h.hub.HandleWeaponChange(playerID, msg.Weapon)
		case "ping":
			ack := pongMessage{Type: "pong", Timestamp: msg.Timestamp}
			data, err := json.Marshal(ack)
			if err != nil {
				h.logger.Printf("failed to marshal pong for %s: %v", playerID, err)
				continue
			}
			if err := sess.WriteMessage(data); err != nil {
				h.hub.Disconnect(playerID, "write failed")
				return
			}
		default:
			// Unknown types are a no-op, not an error.
		}
	}
}
