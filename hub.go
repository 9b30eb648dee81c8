package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"arena-blitz/server/logging"
	combatlog "arena-blitz/server/logging/combat"
)

var (
	// ErrAtCapacity is returned when the concurrent-connection cap is hit.
	ErrAtCapacity = errors.New("server at capacity")
	// ErrShuttingDown is returned once a shutdown has been initiated.
	ErrShuttingDown = errors.New("server shutting down")
)

// Hub owns every session, player, and room, and is the single writer for all
// of them. Message handlers, the tick loop, and the idle sweep mutate state
// under one mutex and deliver broadcasts only after releasing it.
type Hub struct {
	mu           sync.Mutex
	cfg          HubConfig
	pub          logging.Publisher
	sessions     map[string]*Session
	players      map[string]*Player
	rooms        map[string]*Room
	room         *Room
	shuttingDown bool
	startedAt    time.Time
	telemetry    *telemetryCounters
}

func NewHub() *Hub {
	return NewHubWithConfig(DefaultHubConfig(), nil)
}

func NewHubWithConfig(cfg HubConfig, pub logging.Publisher) *Hub {
	if pub == nil {
		pub = cfg.Publisher
	}
	if pub == nil {
		pub = logging.NopPublisher()
	}
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = defaultMaxConns
	}
	cfg.Game = cfg.Game.Normalized()

	h := &Hub{
		cfg:       cfg,
		pub:       pub,
		sessions:  make(map[string]*Session),
		players:   make(map[string]*Player),
		rooms:     make(map[string]*Room),
		startedAt: time.Now(),
		telemetry: newTelemetryCounters(),
	}
	// The registry supports more rooms; only the default is ever created.
	h.room = NewRoom(defaultRoomID, cfg.Game, pub)
	h.rooms[h.room.ID] = h.room
	return h
}

// Connect admits a new connection, assigning it a process-unique player id.
// Capacity and shutdown rejections leave closing the socket to the caller so
// it can send the distinct close code.
func (h *Hub) Connect(conn Conn) (*Session, error) {
	h.mu.Lock()
	if h.shuttingDown {
		h.mu.Unlock()
		h.telemetry.connectionsRejected.Add(1)
		return nil, ErrShuttingDown
	}
	if len(h.sessions) >= h.cfg.MaxConnections {
		h.mu.Unlock()
		h.telemetry.connectionsRejected.Add(1)
		return nil, ErrAtCapacity
	}
	sess := &Session{id: uuid.NewString(), conn: conn, lastSeen: time.Now()}
	h.sessions[sess.id] = sess
	h.mu.Unlock()

	h.telemetry.connectionsAccepted.Add(1)
	return sess, nil
}

// Touch records inbound activity for the idle sweep.
func (h *Hub) Touch(id string) {
	now := time.Now()
	h.mu.Lock()
	defer h.mu.Unlock()
	if sess, ok := h.sessions[id]; ok {
		sess.lastSeen = now
	}
	if p, ok := h.players[id]; ok {
		p.LastUpdate = now
	}
}

// HandleJoin creates the player, adds it to the default room, replies with
// the roster, and announces the join. Duplicate joins are ignored.
func (h *Hub) HandleJoin(id, name string) {
	now := time.Now()
	h.telemetry.messagesDispatched.Add(1)

	h.mu.Lock()
	sess, ok := h.sessions[id]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, exists := h.players[id]; exists {
		h.mu.Unlock()
		return
	}
	p := newPlayer(id, name, now)
	h.players[id] = p
	msgs := h.room.AddPlayer(p, now)
	reply := JoinedMessage{
		Type:        "joined",
		PlayerID:    id,
		Players:     h.room.snapshotPlayers(),
		GameStarted: h.room.gameStarted,
		Config:      h.cfg.Game,
		KillFeed:    h.room.KillFeed(),
	}
	h.mu.Unlock()

	data, err := json.Marshal(reply)
	if err != nil {
		log.Printf("failed to marshal join reply for %s: %v", id, err)
		return
	}
	if err := sess.WriteMessage(data); err != nil {
		h.Disconnect(id, "write failed")
		return
	}
	h.flush(msgs)
}

// HandlePosition validates and applies a transform update, records it in the
// lag-compensation history, and relays it to everyone but the sender.
func (h *Hub) HandlePosition(id string, pos Vec3, rot Rotation, state string) {
	now := time.Now()
	h.telemetry.messagesDispatched.Add(1)

	h.mu.Lock()
	p, ok := h.players[id]
	if !ok || !p.Alive {
		h.mu.Unlock()
		return
	}
	if !p.limiter.Allow("position", now) {
		h.mu.Unlock()
		h.telemetry.messagesThrottled.Add(1)
		return
	}
	if !validVec3(pos) || !validRotation(rot) {
		h.mu.Unlock()
		return
	}
	p.Position = pos
	p.Rotation = rot
	p.State = state
	p.LastUpdate = now
	p.history.Record(pos, rot, now)
	h.mu.Unlock()

	h.flush([]outbound{{
		payload: PlayerPositionMessage{
			Type:     "player_position",
			PlayerID: id,
			Position: pos,
			Rotation: rot,
			State:    state,
		},
		exclude: id,
	}})
}

// HandleShoot relays a shot to the rest of the room. The shot itself deals
// no damage; hit messages carry the claims.
func (h *Hub) HandleShoot(id, weaponRaw string, origin, target Vec3) {
	now := time.Now()
	h.telemetry.messagesDispatched.Add(1)

	h.mu.Lock()
	p, ok := h.players[id]
	if !ok || !p.Alive {
		h.mu.Unlock()
		return
	}
	if !p.limiter.Allow("shoot", now) {
		h.mu.Unlock()
		h.telemetry.messagesThrottled.Add(1)
		return
	}
	weapon, ok := parseWeapon(weaponRaw)
	if !ok || !validVec3(origin) || !validVec3(target) {
		h.mu.Unlock()
		return
	}
	position := p.Position
	h.mu.Unlock()

	h.flush([]outbound{{
		payload: PlayerShootMessage{
			Type:     "player_shoot",
			PlayerID: id,
			Weapon:   weapon,
			Position: position,
			Origin:   origin,
			Target:   target,
		},
		exclude: id,
	}})
}

// HandleHit re-validates a client damage claim and applies it on success.
// Anti-cheat rejections are logged through the combat stream; policy and
// bounds rejections are dropped silently.
func (h *Hub) HandleHit(id, targetID string, claimedDamage float64, isHeadshot bool) {
	now := time.Now()
	h.telemetry.messagesDispatched.Add(1)

	h.mu.Lock()
	attacker, ok := h.players[id]
	if !ok || !attacker.Alive {
		h.mu.Unlock()
		return
	}
	if !attacker.limiter.Allow("hit", now) {
		h.mu.Unlock()
		h.telemetry.messagesThrottled.Add(1)
		return
	}
	victim, ok := h.room.Player(targetID)
	if !ok || !victim.Alive || victim.ID == attacker.ID {
		h.mu.Unlock()
		return
	}

	weapon := attacker.Weapon
	verdict := ValidateHit(attacker, victim, weapon, claimedDamage, now)
	if !verdict.Accepted {
		tick := h.room.tick
		h.mu.Unlock()
		h.telemetry.hitsRejected.Add(1)
		if !verdict.Silent {
			combatlog.HitRejected(context.Background(), h.pub, tick, playerRef(id), playerRef(targetID),
				combatlog.HitRejectedPayload{
					Weapon:   string(weapon),
					Reason:   verdict.Reason,
					Distance: verdict.Distance,
					Claimed:  claimedDamage,
				})
		}
		return
	}

	msgs := h.room.ApplyHit(attacker, victim, verdict, isHeadshot, now)
	h.mu.Unlock()

	h.telemetry.hitsAccepted.Add(1)
	h.flush(msgs)
}

// HandleWeaponChange validates the weapon enum and announces the switch.
func (h *Hub) HandleWeaponChange(id, weaponRaw string) {
	now := time.Now()
	h.telemetry.messagesDispatched.Add(1)

	h.mu.Lock()
	p, ok := h.players[id]
	if !ok {
		h.mu.Unlock()
		return
	}
	if !p.limiter.Allow("weapon_change", now) {
		h.mu.Unlock()
		h.telemetry.messagesThrottled.Add(1)
		return
	}
	weapon, ok := parseWeapon(weaponRaw)
	if !ok {
		h.mu.Unlock()
		return
	}
	p.Weapon = weapon
	h.mu.Unlock()

	h.flush([]outbound{{
		payload: PlayerWeaponMessage{Type: "player_weapon", PlayerID: id, Weapon: weapon},
		exclude: id,
	}})
}

// Disconnect is the single teardown path for every way a connection ends:
// client close, write failure, idle timeout, shutdown.
func (h *Hub) Disconnect(id, reason string) {
	now := time.Now()

	h.mu.Lock()
	sess, sessOK := h.sessions[id]
	if sessOK {
		delete(h.sessions, id)
	}
	_, playerOK := h.players[id]
	var msgs []outbound
	if playerOK {
		delete(h.players, id)
		msgs = h.room.RemovePlayer(id, reason, now)
	}
	h.mu.Unlock()

	if sessOK {
		sess.Close()
	}
	h.flush(msgs)
}

// Run drives the two background loops: the room tick and the idle sweep.
// Both mutate state through the same lock as the message handlers.
func (h *Hub) Run(stop <-chan struct{}) {
	tickInterval := time.Second / time.Duration(h.cfg.Game.TickRate)
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	sweeper := time.NewTicker(idleSweepInterval)
	defer sweeper.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			start := time.Now()
			h.mu.Lock()
			msgs := h.room.Update(now)
			h.mu.Unlock()
			h.flush(msgs)
			h.telemetry.RecordTickDuration(time.Since(start))
		case now := <-sweeper.C:
			h.sweepIdle(now)
		}
	}
}

// sweepIdle closes sockets whose owner sent nothing within the timeout,
// funneling them through the normal disconnect path.
func (h *Hub) sweepIdle(now time.Time) {
	h.mu.Lock()
	var stale []*Session
	for id, sess := range h.sessions {
		last := sess.lastSeen
		if p, ok := h.players[id]; ok && p.LastUpdate.After(last) {
			last = p.LastUpdate
		}
		if now.Sub(last) > idleTimeout {
			stale = append(stale, sess)
		}
	}
	h.mu.Unlock()

	for _, sess := range stale {
		log.Printf("disconnecting %s due to idle timeout", sess.id)
		sess.CloseWithCode(CloseTimeout, "timeout")
		h.Disconnect(sess.id, "idle timeout")
	}
}

// Shutdown blocks new connections, notifies every client, waits out a short
// grace period, and force-closes whatever remains.
func (h *Hub) Shutdown(ctx context.Context) {
	h.mu.Lock()
	if h.shuttingDown {
		h.mu.Unlock()
		return
	}
	h.shuttingDown = true
	sessions := make([]*Session, 0, len(h.sessions))
	for _, sess := range h.sessions {
		sessions = append(sessions, sess)
	}
	h.mu.Unlock()

	notice := ServerShutdownMessage{Type: "server_shutdown", Message: "Server is shutting down"}
	if data, err := json.Marshal(notice); err == nil {
		for _, sess := range sessions {
			if err := sess.WriteMessage(data); err != nil {
				log.Printf("failed to notify %s of shutdown: %v", sess.id, err)
			}
		}
	}

	select {
	case <-time.After(shutdownGrace):
	case <-ctx.Done():
	}

	for _, sess := range sessions {
		sess.CloseWithCode(CloseShuttingDown, "shutting down")
		h.Disconnect(sess.id, "server shutdown")
	}
}

// flush serializes each broadcast once and delivers it to every room member
// with an open session. Failed writers are disconnected after the fan-out.
func (h *Hub) flush(msgs []outbound) {
	for _, m := range msgs {
		data, err := json.Marshal(m.payload)
		if err != nil {
			log.Printf("failed to marshal broadcast: %v", err)
			continue
		}

		h.mu.Lock()
		recipients := make([]*Session, 0, len(h.room.players))
		for pid := range h.room.players {
			if pid == m.exclude {
				continue
			}
			if sess, ok := h.sessions[pid]; ok {
				recipients = append(recipients, sess)
			}
		}
		h.mu.Unlock()

		var failed []string
		for _, sess := range recipients {
			if err := sess.WriteMessage(data); err != nil {
				log.Printf("failed to send update to %s: %v", sess.id, err)
				failed = append(failed, sess.id)
			}
		}
		h.telemetry.RecordBroadcast(len(data), len(recipients))
		for _, fid := range failed {
			h.Disconnect(fid, "write failed")
		}
	}
}

// DiagnosticsSnapshot is the health/status surface consumed over HTTP.
type DiagnosticsSnapshot struct {
	Status      string `json:"status"`
	UptimeMs    int64  `json:"uptime"`
	Rooms       int    `json:"rooms"`
	Players     int    `json:"players"`
	Connections int    `json:"connections"`
}

func (h *Hub) Diagnostics() DiagnosticsSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return DiagnosticsSnapshot{
		Status:      "ok",
		UptimeMs:    time.Since(h.startedAt).Milliseconds(),
		Rooms:       len(h.rooms),
		Players:     len(h.players),
		Connections: len(h.sessions),
	}
}

func (h *Hub) TelemetrySnapshot() telemetrySnapshot {
	return h.telemetry.Snapshot()
}

// CurrentConfig returns the gameplay ruleset shared with clients.
func (h *Hub) CurrentConfig() GameConfig {
	return h.cfg.Game
}
