package server

import "time"

// historyCapacity bounds the ring. Position updates are throttled to one per
// 30ms, so a 500ms window never needs more than ~17 live samples.
const historyCapacity = 32

type positionSample struct {
	Time     time.Time
	Position Vec3
	Rotation Rotation
}

// PositionHistory is a bounded deque of timestamped transforms used to rewind
// a player for lag-compensated hit tests. Entries are strictly time-ordered;
// pruning keeps every retained entry within the 500ms window.
type PositionHistory struct {
	samples [historyCapacity]positionSample
	head    int
	size    int
}

func NewPositionHistory() *PositionHistory {
	return &PositionHistory{}
}

// Record appends a sample and prunes entries older than the window.
func (h *PositionHistory) Record(pos Vec3, rot Rotation, now time.Time) {
	if h.size == historyCapacity {
		h.head = (h.head + 1) % historyCapacity
		h.size--
	}
	idx := (h.head + h.size) % historyCapacity
	h.samples[idx] = positionSample{Time: now, Position: pos, Rotation: rot}
	h.size++

	for h.size > 0 && now.Sub(h.samples[h.head].Time) > historyWindow {
		h.head = (h.head + 1) % historyCapacity
		h.size--
	}
}

// At returns the newest sample taken at or before target. When the target
// predates everything retained it returns the oldest sample; when the history
// is empty it reports ok=false and the caller falls back to the live
// transform. It never returns a sample newer than target while an older one
// exists.
func (h *PositionHistory) At(target time.Time) (positionSample, bool) {
	if h.size == 0 {
		return positionSample{}, false
	}
	for i := h.size - 1; i >= 0; i-- {
		sample := h.samples[(h.head+i)%historyCapacity]
		if !sample.Time.After(target) {
			return sample, true
		}
	}
	return h.samples[h.head], true
}

// Len reports the number of retained samples.
func (h *PositionHistory) Len() int { return h.size }

// Oldest returns the head sample for invariant checks.
func (h *PositionHistory) Oldest() (positionSample, bool) {
	if h.size == 0 {
		return positionSample{}, false
	}
	return h.samples[h.head], true
}

// Newest returns the most recent sample.
func (h *PositionHistory) Newest() (positionSample, bool) {
	if h.size == 0 {
		return positionSample{}, false
	}
	return h.samples[(h.head+h.size-1)%historyCapacity], true
}
