package lifecycle

import (
	"context"

	"arena-blitz/server/logging"
)

const (
	// EventPlayerJoined is emitted when a player enters the room.
	EventPlayerJoined logging.EventType = "lifecycle.player_joined"
	// EventPlayerLeft is emitted when a player leaves, including idle reaps.
	EventPlayerLeft logging.EventType = "lifecycle.player_left"
	// EventPlayerRespawned is emitted when the tick loop revives a dead player.
	EventPlayerRespawned logging.EventType = "lifecycle.player_respawned"
	// EventMatchStarted is emitted on the lobby→active transition.
	EventMatchStarted logging.EventType = "lifecycle.match_started"
	// EventMatchEnded is emitted on the active→lobby transition.
	EventMatchEnded logging.EventType = "lifecycle.match_ended"
)

type PlayerJoinedPayload struct {
	Name    string `json:"name"`
	Players int    `json:"players"`
}

type PlayerLeftPayload struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type PlayerRespawnedPayload struct {
	SpawnX float64 `json:"spawnX"`
	SpawnY float64 `json:"spawnY"`
	SpawnZ float64 `json:"spawnZ"`
}

type MatchStartedPayload struct {
	Players int `json:"players"`
}

type MatchEndedPayload struct {
	Reason string `json:"reason"`
	Winner string `json:"winner,omitempty"`
}

func PlayerJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerJoinedPayload) {
	publish(ctx, pub, EventPlayerJoined, tick, actor, payload)
}

func PlayerLeft(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerLeftPayload) {
	publish(ctx, pub, EventPlayerLeft, tick, actor, payload)
}

func PlayerRespawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerRespawnedPayload) {
	publish(ctx, pub, EventPlayerRespawned, tick, actor, payload)
}

func MatchStarted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload MatchStartedPayload) {
	publish(ctx, pub, EventMatchStarted, tick, actor, payload)
}

func MatchEnded(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload MatchEndedPayload) {
	publish(ctx, pub, EventMatchEnded, tick, actor, payload)
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, tick uint64, actor logging.EntityRef, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}
