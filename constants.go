package server

import "time"

const (
	ProtocolVersion    = 1
	writeWait          = 10 * time.Second
	tickRate           = 20 // ticks per second
	maxNameLength      = 16
	defaultRoomID      = "arena-default"
	killFeedCapacity   = 10
	historyWindow      = 500 * time.Millisecond
	lagCompensation    = 100 * time.Millisecond
	rangeTolerance     = 1.15
	maxHeightGap       = 5.0
	maxClaimedDamage   = 500.0
	playerMaxHealth    = 100.0
	idleTimeout        = 60 * time.Second
	idleSweepInterval  = 10 * time.Second
	shutdownGrace      = 3 * time.Second
	defaultMaxConns    = 64
	defaultKillLimit   = 20
	defaultTimeLimit   = 10 * time.Minute
	defaultRespawnWait = 3 * time.Second
	spawnProtection    = 2 * time.Second
)

// Close codes surfaced to clients for lifecycle rejections.
const (
	CloseTimeout      = 1000
	CloseShuttingDown = 1001
	CloseAtCapacity   = 1013
)

// TickRate reports the simulation frequency for the diagnostics surface.
func TickRate() int { return tickRate }

// IdleTimeout reports the inactivity window after which sessions are reaped.
func IdleTimeout() time.Duration { return idleTimeout }
