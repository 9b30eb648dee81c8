package server

import (
	"fmt"
	"math"
	"time"
)

// Weapon identifies one of the five hitscan weapon classes.
type Weapon string

const (
	WeaponRifle   Weapon = "rifle"
	WeaponSMG     Weapon = "smg"
	WeaponShotgun Weapon = "shotgun"
	WeaponPistol  Weapon = "pistol"
	WeaponSniper  Weapon = "sniper"
)

// weaponRanges holds the maximum effective range per weapon. Unknown weapons
// fall back to the rifle range rather than failing the whole claim.
var weaponRanges = map[Weapon]float64{
	WeaponRifle:   80,
	WeaponSMG:     40,
	WeaponShotgun: 15,
	WeaponPistol:  50,
	WeaponSniper:  150,
}

func parseWeapon(raw string) (Weapon, bool) {
	switch Weapon(raw) {
	case WeaponRifle, WeaponSMG, WeaponShotgun, WeaponPistol, WeaponSniper:
		return Weapon(raw), true
	}
	return "", false
}

func weaponRange(w Weapon) float64 {
	if r, ok := weaponRanges[w]; ok {
		return r
	}
	return weaponRanges[WeaponRifle]
}

// HitVerdict is the outcome of re-validating a client damage claim. Silent
// rejections are dropped without a log line; the rest carry a reason for the
// combat event stream.
type HitVerdict struct {
	Accepted    bool
	Silent      bool
	Reason      string
	Distance    float64
	Multiplier  float64
	FinalDamage float64
}

func rejectHit(reason string, silent bool, distance float64) HitVerdict {
	return HitVerdict{Reason: reason, Silent: silent, Distance: distance}
}

// ValidateHit re-checks a reported hit against server state. The victim is
// rewound by the fixed lag-compensation offset; the attacker's live position
// is authoritative for where they aimed. Pure: neither player is mutated,
// the caller applies FinalDamage.
func ValidateHit(attacker, victim *Player, weapon Weapon, claimedDamage float64, now time.Time) HitVerdict {
	if !finite(claimedDamage) || claimedDamage < 0 || claimedDamage > maxClaimedDamage {
		return rejectHit("invalid damage value", true, 0)
	}

	if victim.spawnProtected(now) {
		return rejectHit("victim spawn protected", true, 0)
	}

	victimPos := victim.rewoundPosition(now.Add(-lagCompensation))
	attackerPos := attacker.Position

	distance := distance3D(attackerPos, victimPos)
	maxRange := weaponRange(weapon) * rangeTolerance
	if distance > maxRange {
		return rejectHit(fmt.Sprintf("Distance too far: %.1f > %.1f", distance, maxRange), false, distance)
	}

	if math.Abs(attackerPos.Y-victimPos.Y) > maxHeightGap {
		return rejectHit("Height difference too large", false, distance)
	}

	multiplier := damageFalloff(weapon, distance)
	return HitVerdict{
		Accepted:    true,
		Distance:    distance,
		Multiplier:  multiplier,
		FinalDamage: claimedDamage * multiplier,
	}
}

// damageFalloff returns the range-based damage multiplier in [0,1]. Only the
// spread weapons decay; everything else hits for full damage inside range.
func damageFalloff(weapon Weapon, distance float64) float64 {
	switch weapon {
	case WeaponShotgun:
		if distance > 8 {
			return math.Max(0.3, 1-(distance-8)/12)
		}
	case WeaponSMG:
		if distance > 25 {
			return math.Max(0.5, 1-(distance-25)/30)
		}
	}
	return 1.0
}

func distance3D(a, b Vec3) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
