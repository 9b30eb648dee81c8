package server

import (
	"sync/atomic"
	"time"
)

type telemetryCounters struct {
	connectionsAccepted atomic.Uint64
	connectionsRejected atomic.Uint64
	messagesDispatched  atomic.Uint64
	messagesThrottled   atomic.Uint64
	broadcastsSent      atomic.Uint64
	bytesSent           atomic.Uint64
	hitsAccepted        atomic.Uint64
	hitsRejected        atomic.Uint64
	tickDurationMillis  atomic.Int64
}

type telemetrySnapshot struct {
	ConnectionsAccepted uint64 `json:"connectionsAccepted"`
	ConnectionsRejected uint64 `json:"connectionsRejected"`
	MessagesDispatched  uint64 `json:"messagesDispatched"`
	MessagesThrottled   uint64 `json:"messagesThrottled"`
	BroadcastsSent      uint64 `json:"broadcastsSent"`
	BytesSent           uint64 `json:"bytesSent"`
	HitsAccepted        uint64 `json:"hitsAccepted"`
	HitsRejected        uint64 `json:"hitsRejected"`
	TickDurationMillis  int64  `json:"tickDurationMillis"`
}

func newTelemetryCounters() *telemetryCounters {
	return &telemetryCounters{}
}

func (t *telemetryCounters) RecordBroadcast(bytes, recipients int) {
	if bytes < 0 || recipients <= 0 {
		return
	}
	t.broadcastsSent.Add(1)
	t.bytesSent.Add(uint64(bytes) * uint64(recipients))
}

func (t *telemetryCounters) RecordTickDuration(duration time.Duration) {
	millis := duration.Milliseconds()
	if millis < 0 {
		millis = 0
	}
	t.tickDurationMillis.Store(millis)
}

func (t *telemetryCounters) Snapshot() telemetrySnapshot {
	return telemetrySnapshot{
		ConnectionsAccepted: t.connectionsAccepted.Load(),
		ConnectionsRejected: t.connectionsRejected.Load(),
		MessagesDispatched:  t.messagesDispatched.Load(),
		MessagesThrottled:   t.messagesThrottled.Load(),
		BroadcastsSent:      t.broadcastsSent.Load(),
		BytesSent:           t.bytesSent.Load(),
		HitsAccepted:        t.hitsAccepted.Load(),
		HitsRejected:        t.hitsRejected.Load(),
		TickDurationMillis:  t.tickDurationMillis.Load(),
	}
}
