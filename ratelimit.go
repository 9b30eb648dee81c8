package server

import "time"

type rateLimitRule struct {
	minInterval  time.Duration
	maxPerSecond int
}

// rateLimitRules throttles the message types a motivated client can spam.
// Types without an entry pass unthrottled.
var rateLimitRules = map[string]rateLimitRule{
	"position":      {minInterval: 30 * time.Millisecond, maxPerSecond: 40},
	"shoot":         {minInterval: 80 * time.Millisecond, maxPerSecond: 15},
	"hit":           {minInterval: 80 * time.Millisecond, maxPerSecond: 15},
	"weapon_change": {minInterval: 200 * time.Millisecond, maxPerSecond: 6},
}

type rateBucket struct {
	lastAccepted time.Time
	count        int
	second       int64
}

// RateLimiter tracks one counter set per throttled message type. Each player
// owns one instance, so no synchronization is needed beyond the hub lock.
//
// A burst straddling a wall-clock second boundary can momentarily exceed the
// steady-state rate because the counter resets with the bucket. Accepted:
// the min-interval gate still bounds the worst case.
type RateLimiter struct {
	buckets map[string]*rateBucket
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{buckets: make(map[string]*rateBucket, len(rateLimitRules))}
}

// Allow reports whether a message of the given type may be processed now.
// Rejections leave the acceptance state untouched.
func (l *RateLimiter) Allow(messageType string, now time.Time) bool {
	rule, throttled := rateLimitRules[messageType]
	if !throttled {
		return true
	}

	bucket, ok := l.buckets[messageType]
	if !ok {
		bucket = &rateBucket{}
		l.buckets[messageType] = bucket
	}

	second := now.UnixMilli() / 1000
	if second != bucket.second {
		bucket.second = second
		bucket.count = 0
	}

	if !bucket.lastAccepted.IsZero() && now.Sub(bucket.lastAccepted) < rule.minInterval {
		return false
	}
	if bucket.count >= rule.maxPerSecond {
		return false
	}

	bucket.lastAccepted = now
	bucket.count++
	return true
}
