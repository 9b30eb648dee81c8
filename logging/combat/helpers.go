package combat

import (
	"context"

	"arena-blitz/server/logging"
)

const (
	// EventHitRejected is emitted when the hit validator refuses a damage claim.
	EventHitRejected logging.EventType = "combat.hit_rejected"
	// EventDamage is emitted when a validated hit lands on a victim.
	EventDamage logging.EventType = "combat.damage"
	// EventDefeat is emitted when a hit drops a victim's health to zero or below.
	EventDefeat logging.EventType = "combat.defeat"
)

// HitRejectedPayload carries the validator verdict for a refused claim.
type HitRejectedPayload struct {
	Weapon   string  `json:"weapon"`
	Reason   string  `json:"reason"`
	Distance float64 `json:"distance,omitempty"`
	Claimed  float64 `json:"claimedDamage"`
}

// DamagePayload captures the amount dealt to a single victim.
type DamagePayload struct {
	Weapon       string  `json:"weapon"`
	Amount       float64 `json:"amount"`
	Multiplier   float64 `json:"multiplier"`
	VictimHealth float64 `json:"victimHealth"`
	Headshot     bool    `json:"headshot,omitempty"`
}

// DefeatPayload describes the fatal blow.
type DefeatPayload struct {
	Weapon   string `json:"weapon"`
	Headshot bool   `json:"headshot,omitempty"`
}

// HitRejected publishes a combat rejection with its human-readable reason.
func HitRejected(ctx context.Context, pub logging.Publisher, tick uint64, attacker, victim logging.EntityRef, payload HitRejectedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventHitRejected,
		Tick:     tick,
		Actor:    attacker,
		Targets:  []logging.EntityRef{victim},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

// Damage publishes a validated hit.
func Damage(ctx context.Context, pub logging.Publisher, tick uint64, attacker, victim logging.EntityRef, payload DamagePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDamage,
		Tick:     tick,
		Actor:    attacker,
		Targets:  []logging.EntityRef{victim},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

// Defeat publishes the kill that ended a victim's life.
func Defeat(ctx context.Context, pub logging.Publisher, tick uint64, attacker, victim logging.EntityRef, payload DefeatPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDefeat,
		Tick:     tick,
		Actor:    attacker,
		Targets:  []logging.EntityRef{victim},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}
