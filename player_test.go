package server

import (
	"math"
	"testing"
	"time"
)

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "Alice", "Alice"},
		{"trimmed", "  Bob  ", "Bob"},
		{"control characters stripped", "Eve\x00\x1b[31m", "Eve[31m"},
		{"non ascii stripped", "Zoë", "Zo"},
		{"truncated", "aaaaaaaaaaaaaaaaaaaaaaaa", "aaaaaaaaaaaaaaaa"},
		{"empty falls back", "", "Player"},
		{"whitespace only falls back", "   ", "Player"},
		{"unicode only falls back", "日本語", "Player"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitizeName(tc.raw); got != tc.want {
				t.Fatalf("sanitizeName(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNewPlayerDefaults(t *testing.T) {
	now := time.Now()
	p := newPlayer("p1", "Alice", now)

	if !p.Alive || p.Health != playerMaxHealth {
		t.Fatalf("new player should spawn alive at full health: %+v", p)
	}
	if p.Weapon != WeaponRifle {
		t.Fatalf("default weapon should be the rifle, got %q", p.Weapon)
	}
	found := false
	for _, sp := range spawnPoints {
		if p.Position == sp {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("spawn position %+v is not a fixed spawn point", p.Position)
	}
}

func TestValidVec3RejectsNonFinite(t *testing.T) {
	if !validVec3(Vec3{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("finite vector should be valid")
	}
	for _, v := range []Vec3{
		{X: math.NaN()},
		{Y: math.Inf(1)},
		{Z: math.Inf(-1)},
	} {
		if validVec3(v) {
			t.Fatalf("vector %+v should be rejected", v)
		}
	}
	if validRotation(Rotation{X: math.NaN()}) {
		t.Fatalf("NaN rotation should be rejected")
	}
}

func TestSnapshotClampsHealth(t *testing.T) {
	p := newPlayer("p1", "Alice", time.Now())
	p.Health = -25

	if snap := p.snapshot(); snap.Health != 0 {
		t.Fatalf("wire health should clamp at zero, got %f", snap.Health)
	}
	if p.Health != -25 {
		t.Fatalf("stored health must be untouched by the snapshot")
	}
}
