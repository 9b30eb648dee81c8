package server

import (
	"time"

	"arena-blitz/server/logging"
)

// GameConfig carries the gameplay constants shared with clients at join and
// match start. All durations are serialized as milliseconds.
type GameConfig struct {
	KillLimit      int   `json:"killLimit"`
	TimeLimitMs    int64 `json:"timeLimitMs"`
	RespawnDelayMs int64 `json:"respawnDelayMs"`
	SpawnProtectMs int64 `json:"spawnProtectionMs"`
	TickRate       int   `json:"tickRate"`
}

// DefaultGameConfig returns the stock arena ruleset.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		KillLimit:      defaultKillLimit,
		TimeLimitMs:    defaultTimeLimit.Milliseconds(),
		RespawnDelayMs: defaultRespawnWait.Milliseconds(),
		SpawnProtectMs: spawnProtection.Milliseconds(),
		TickRate:       tickRate,
	}
}

// Normalized clamps nonsensical overrides back to sane values.
func (c GameConfig) Normalized() GameConfig {
	if c.KillLimit < 1 {
		c.KillLimit = defaultKillLimit
	}
	if c.TimeLimitMs < 1000 {
		c.TimeLimitMs = defaultTimeLimit.Milliseconds()
	}
	if c.RespawnDelayMs < 0 {
		c.RespawnDelayMs = defaultRespawnWait.Milliseconds()
	}
	if c.SpawnProtectMs < 0 {
		c.SpawnProtectMs = spawnProtection.Milliseconds()
	}
	if c.TickRate < 1 || c.TickRate > 60 {
		c.TickRate = tickRate
	}
	return c
}

func (c GameConfig) timeLimit() time.Duration {
	return time.Duration(c.TimeLimitMs) * time.Millisecond
}

func (c GameConfig) respawnDelay() time.Duration {
	return time.Duration(c.RespawnDelayMs) * time.Millisecond
}

func (c GameConfig) spawnProtect() time.Duration {
	return time.Duration(c.SpawnProtectMs) * time.Millisecond
}

// HubConfig wires the hub's collaborators and policy knobs.
type HubConfig struct {
	MaxConnections int
	Game           GameConfig
	Publisher      logging.Publisher
}

// DefaultHubConfig returns the config used when the caller overrides nothing.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		MaxConnections: defaultMaxConns,
		Game:           DefaultGameConfig(),
	}
}
