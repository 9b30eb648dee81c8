package server

import (
	"testing"
	"time"
)

func TestPositionHistory_RecordPrunesOutsideWindow(t *testing.T) {
	h := NewPositionHistory()
	base := time.Now()

	h.Record(Vec3{X: 1}, Rotation{}, base)
	h.Record(Vec3{X: 2}, Rotation{}, base.Add(200*time.Millisecond))
	h.Record(Vec3{X: 3}, Rotation{}, base.Add(700*time.Millisecond))

	if h.Len() != 2 {
		t.Fatalf("expected first sample pruned, got %d retained", h.Len())
	}
	oldest, ok := h.Oldest()
	if !ok {
		t.Fatalf("expected retained samples")
	}
	if oldest.Position.X != 2 {
		t.Fatalf("expected oldest sample X=2, got %f", oldest.Position.X)
	}
}

func TestPositionHistory_EntriesStayOrderedAndWithinWindow(t *testing.T) {
	h := NewPositionHistory()
	base := time.Now()

	var last time.Time
	for i := 0; i < 50; i++ {
		now := base.Add(time.Duration(i) * 40 * time.Millisecond)
		h.Record(Vec3{X: float64(i)}, Rotation{}, now)
		last = now
	}

	prev := time.Time{}
	for i := 0; i < h.Len(); i++ {
		sample := h.samples[(h.head+i)%historyCapacity]
		if sample.Time.Before(prev) {
			t.Fatalf("samples out of order at index %d", i)
		}
		if last.Sub(sample.Time) > historyWindow {
			t.Fatalf("sample at index %d outside window: %v", i, last.Sub(sample.Time))
		}
		prev = sample.Time
	}
}

func TestPositionHistory_AtReturnsNewestNotAfterTarget(t *testing.T) {
	h := NewPositionHistory()
	base := time.Now()

	h.Record(Vec3{X: 1}, Rotation{}, base)
	h.Record(Vec3{X: 2}, Rotation{}, base.Add(100*time.Millisecond))
	h.Record(Vec3{X: 3}, Rotation{}, base.Add(200*time.Millisecond))

	sample, ok := h.At(base.Add(150 * time.Millisecond))
	if !ok {
		t.Fatalf("expected a sample")
	}
	if sample.Position.X != 2 {
		t.Fatalf("expected X=2 for mid-window lookup, got %f", sample.Position.X)
	}

	sample, ok = h.At(base.Add(500 * time.Millisecond))
	if !ok || sample.Position.X != 3 {
		t.Fatalf("expected newest sample for late lookup, got %+v ok=%v", sample, ok)
	}
}

func TestPositionHistory_AtBeforeAllReturnsOldest(t *testing.T) {
	h := NewPositionHistory()
	base := time.Now()

	h.Record(Vec3{X: 7}, Rotation{}, base)
	h.Record(Vec3{X: 8}, Rotation{}, base.Add(50*time.Millisecond))

	sample, ok := h.At(base.Add(-time.Second))
	if !ok {
		t.Fatalf("expected a sample")
	}
	if sample.Position.X != 7 {
		t.Fatalf("expected oldest sample, got X=%f", sample.Position.X)
	}
}

func TestPositionHistory_AtEmptyReportsMiss(t *testing.T) {
	h := NewPositionHistory()
	if _, ok := h.At(time.Now()); ok {
		t.Fatalf("expected miss on empty history")
	}
}

func TestPositionHistory_OverflowDropsOldest(t *testing.T) {
	h := NewPositionHistory()
	base := time.Now()

	// Capacity+4 samples inside the window force the ring to wrap.
	for i := 0; i < historyCapacity+4; i++ {
		h.Record(Vec3{X: float64(i)}, Rotation{}, base.Add(time.Duration(i)*time.Millisecond))
	}
	if h.Len() != historyCapacity {
		t.Fatalf("expected ring capped at %d, got %d", historyCapacity, h.Len())
	}
	oldest, _ := h.Oldest()
	if oldest.Position.X != 4 {
		t.Fatalf("expected 4 oldest samples dropped, oldest X=%f", oldest.Position.X)
	}
	newest, _ := h.Newest()
	if newest.Position.X != float64(historyCapacity+3) {
		t.Fatalf("unexpected newest sample X=%f", newest.Position.X)
	}
}
