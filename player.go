package server

import (
	"math"
	"math/rand"
	"strings"
	"time"
)

// Vec3 is a world-space coordinate. Y is the vertical axis.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Rotation carries the client's view angles.
type Rotation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// spawnPoints are the eight fixed arena spawns; respawns pick uniformly.
var spawnPoints = [8]Vec3{
	{X: -40, Y: 0, Z: -40},
	{X: 40, Y: 0, Z: -40},
	{X: -40, Y: 0, Z: 40},
	{X: 40, Y: 0, Z: 40},
	{X: 0, Y: 0, Z: -55},
	{X: 0, Y: 0, Z: 55},
	{X: -55, Y: 0, Z: 0},
	{X: 55, Y: 0, Z: 0},
}

func randomSpawnPoint() Vec3 {
	return spawnPoints[rand.Intn(len(spawnPoints))]
}

// Player is the authoritative per-connection entity. It is created when the
// join message arrives, mutated only under the hub lock, and destroyed on
// disconnect. Health is deliberately not floor-clamped; death is gated on
// health <= 0 and wire snapshots clamp the displayed value.
type Player struct {
	ID                  string
	Name                string
	Position            Vec3
	Rotation            Rotation
	State               string
	Health              float64
	Kills               int
	Deaths              int
	Weapon              Weapon
	Alive               bool
	RespawnAt           time.Time
	SpawnProtectedUntil time.Time
	LastUpdate          time.Time
	JoinedAt            time.Time

	limiter *RateLimiter
	history *PositionHistory
}

func newPlayer(id, name string, now time.Time) *Player {
	return &Player{
		ID:         id,
		Name:       sanitizeName(name),
		Position:   randomSpawnPoint(),
		Health:     playerMaxHealth,
		Weapon:     WeaponRifle,
		Alive:      true,
		LastUpdate: now,
		JoinedAt:   now,
		limiter:    NewRateLimiter(),
		history:    NewPositionHistory(),
	}
}

// spawnProtected reports whether the player still has a respawn shield.
func (p *Player) spawnProtected(now time.Time) bool {
	return !p.SpawnProtectedUntil.IsZero() && now.Before(p.SpawnProtectedUntil)
}

// rewoundPosition returns where the player stood at the given instant,
// falling back to the live transform when no history is retained.
func (p *Player) rewoundPosition(at time.Time) Vec3 {
	if sample, ok := p.history.At(at); ok {
		return sample.Position
	}
	return p.Position
}

func (p *Player) snapshot() PlayerSnapshot {
	health := p.Health
	if health < 0 {
		health = 0
	}
	return PlayerSnapshot{
		ID:       p.ID,
		Name:     p.Name,
		Position: p.Position,
		Rotation: p.Rotation,
		Health:   health,
		Kills:    p.Kills,
		Deaths:   p.Deaths,
		Weapon:   p.Weapon,
		Alive:    p.Alive,
	}
}

// sanitizeName keeps printable ASCII, trims surrounding whitespace, and caps
// the result at 16 characters. Empty results fall back to "Player".
func sanitizeName(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r < 0x20 || r > 0x7e {
			continue
		}
		b.WriteRune(r)
		if b.Len() >= maxNameLength {
			break
		}
	}
	name := strings.TrimSpace(b.String())
	if name == "" {
		return "Player"
	}
	return name
}

func validVec3(v Vec3) bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

func validRotation(r Rotation) bool {
	return finite(r.X) && finite(r.Y)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
