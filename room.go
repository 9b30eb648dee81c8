package server

import (
	"context"
	"fmt"
	"sort"
	"time"

	"arena-blitz/server/logging"
	combatlog "arena-blitz/server/logging/combat"
	"arena-blitz/server/logging/lifecycle"
)

// outbound is a broadcast intent produced under the hub lock and delivered
// after it is released. An empty exclude means every room member receives it.
type outbound struct {
	payload any
	exclude string
}

// Room is the match state machine. It is mutated only under the hub lock and
// never performs I/O itself; every method returns the broadcasts the caller
// must deliver.
type Room struct {
	ID            string
	players       map[string]*Player
	gameStarted   bool
	gameStartTime time.Time
	killFeed      []KillFeedEntry
	tick          uint64
	cfg           GameConfig
	pub           logging.Publisher
}

func NewRoom(id string, cfg GameConfig, pub logging.Publisher) *Room {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &Room{
		ID:      id,
		players: make(map[string]*Player),
		cfg:     cfg,
		pub:     pub,
	}
}

// GameStarted reports whether a match is active.
func (r *Room) GameStarted() bool { return r.gameStarted }

// PlayerCount reports current membership.
func (r *Room) PlayerCount() int { return len(r.players) }

// Player looks up a member by id.
func (r *Room) Player(id string) (*Player, bool) {
	p, ok := r.players[id]
	return p, ok
}

// KillFeed returns the retained kill log, most recent first.
func (r *Room) KillFeed() []KillFeedEntry {
	feed := make([]KillFeedEntry, 0, len(r.killFeed))
	for i := len(r.killFeed) - 1; i >= 0; i-- {
		feed = append(feed, r.killFeed[i])
	}
	return feed
}

// AddPlayer registers a member and starts the match once a second player is
// present. The joiner receives the roster in its joined reply, so the
// player_joined broadcast excludes them.
func (r *Room) AddPlayer(p *Player, now time.Time) []outbound {
	r.players[p.ID] = p

	msgs := []outbound{{
		payload: PlayerJoinedMessage{Type: "player_joined", Player: p.snapshot()},
		exclude: p.ID,
	}}

	lifecycle.PlayerJoined(context.Background(), r.pub, r.tick, playerRef(p.ID),
		lifecycle.PlayerJoinedPayload{Name: p.Name, Players: len(r.players)})

	if !r.gameStarted && len(r.players) >= 2 {
		msgs = append(msgs, r.startGame(now))
	}
	return msgs
}

// RemovePlayer drops a member, announces the departure, and ends the match
// when membership falls below two.
func (r *Room) RemovePlayer(id, reason string, now time.Time) []outbound {
	p, ok := r.players[id]
	if !ok {
		return nil
	}
	delete(r.players, id)

	msgs := []outbound{{
		payload: PlayerLeftMessage{Type: "player_left", PlayerID: p.ID, PlayerName: p.Name},
	}}

	lifecycle.PlayerLeft(context.Background(), r.pub, r.tick, playerRef(p.ID),
		lifecycle.PlayerLeftPayload{Name: p.Name, Reason: reason})

	if r.gameStarted && len(r.players) < 2 {
		msgs = append(msgs, r.endGame("Not enough players", now))
	}
	return msgs
}

// startGame is the lobby→active transition: stats reset, feed cleared,
// everyone notified with the shared ruleset.
func (r *Room) startGame(now time.Time) outbound {
	r.gameStarted = true
	r.gameStartTime = now
	r.killFeed = r.killFeed[:0]

	for _, p := range r.players {
		p.Kills = 0
		p.Deaths = 0
		p.Health = playerMaxHealth
		p.Alive = true
		p.RespawnAt = time.Time{}
	}

	lifecycle.MatchStarted(context.Background(), r.pub, r.tick, roomRef(r.ID),
		lifecycle.MatchStartedPayload{Players: len(r.players)})

	return outbound{payload: GameStartMessage{
		Type:    "game_start",
		Config:  r.cfg,
		Players: r.snapshotPlayers(),
	}}
}

// endGame is the active→lobby transition. Winner is the highest kill count;
// ties resolve to the earliest join time.
func (r *Room) endGame(reason string, now time.Time) outbound {
	r.gameStarted = false

	var winner *PlayerSnapshot
	var winnerName string
	if w := r.winner(); w != nil {
		snap := w.snapshot()
		winner = &snap
		winnerName = w.Name
	}

	lifecycle.MatchEnded(context.Background(), r.pub, r.tick, roomRef(r.ID),
		lifecycle.MatchEndedPayload{Reason: reason, Winner: winnerName})

	return outbound{payload: GameEndMessage{
		Type:    "game_end",
		Reason:  reason,
		Winner:  winner,
		Players: r.snapshotPlayers(),
	}}
}

func (r *Room) winner() *Player {
	var best *Player
	for _, p := range r.players {
		if best == nil {
			best = p
			continue
		}
		if p.Kills > best.Kills || (p.Kills == best.Kills && p.JoinedAt.Before(best.JoinedAt)) {
			best = p
		}
	}
	return best
}

// ApplyHit applies a validated damage claim to the victim and handles the
// resulting kill. The verdict must already be accepted.
func (r *Room) ApplyHit(attacker, victim *Player, verdict HitVerdict, isHeadshot bool, now time.Time) []outbound {
	victim.Health -= verdict.FinalDamage

	combatlog.Damage(context.Background(), r.pub, r.tick, playerRef(attacker.ID), playerRef(victim.ID),
		combatlog.DamagePayload{
			Weapon:       string(attacker.Weapon),
			Amount:       verdict.FinalDamage,
			Multiplier:   verdict.Multiplier,
			VictimHealth: victim.Health,
			Headshot:     isHeadshot,
		})

	health := victim.Health
	if health < 0 {
		health = 0
	}
	msgs := []outbound{{
		payload: PlayerDamageMessage{
			Type:       "player_damage",
			TargetID:   victim.ID,
			AttackerID: attacker.ID,
			Damage:     verdict.FinalDamage,
			Health:     health,
			IsHeadshot: isHeadshot,
		},
	}}

	if victim.Health <= 0 && victim.Alive {
		msgs = append(msgs, r.HandleKill(attacker.ID, victim.ID, isHeadshot, now)...)
	}
	return msgs
}

// HandleKill updates the scores and kill feed, schedules the respawn, and
// evaluates the kill-limit end condition.
func (r *Room) HandleKill(killerID, victimID string, isHeadshot bool, now time.Time) []outbound {
	killer, killerOK := r.players[killerID]
	victim, victimOK := r.players[victimID]
	if !killerOK || !victimOK {
		return nil
	}

	killer.Kills++
	victim.Deaths++
	victim.Health = 0
	victim.Alive = false
	victim.RespawnAt = now.Add(r.cfg.respawnDelay())

	r.killFeed = append(r.killFeed, KillFeedEntry{
		Killer:     killer.Name,
		Victim:     victim.Name,
		IsHeadshot: isHeadshot,
		Timestamp:  now.UnixMilli(),
	})
	if len(r.killFeed) > killFeedCapacity {
		r.killFeed = r.killFeed[len(r.killFeed)-killFeedCapacity:]
	}

	combatlog.Defeat(context.Background(), r.pub, r.tick, playerRef(killerID), playerRef(victimID),
		combatlog.DefeatPayload{Weapon: string(killer.Weapon), Headshot: isHeadshot})

	msgs := []outbound{{
		payload: PlayerKilledMessage{
			Type:       "player_killed",
			KillerID:   killer.ID,
			VictimID:   victim.ID,
			KillerName: killer.Name,
			VictimName: victim.Name,
			IsHeadshot: isHeadshot,
			Scores:     r.scoreboard(),
		},
	}}

	if r.gameStarted && killer.Kills >= r.cfg.KillLimit {
		msgs = append(msgs, r.endGame(fmt.Sprintf("%s wins!", killer.Name), now))
	}
	return msgs
}

// Update is one tick: revive due respawns and enforce the time limit.
func (r *Room) Update(now time.Time) []outbound {
	r.tick++

	var msgs []outbound
	for _, p := range r.players {
		if p.Alive || p.RespawnAt.IsZero() || now.Before(p.RespawnAt) {
			continue
		}
		msgs = append(msgs, r.respawn(p, now))
	}

	if r.gameStarted && now.Sub(r.gameStartTime) >= r.cfg.timeLimit() {
		msgs = append(msgs, r.endGame("Time limit reached", now))
	}
	return msgs
}

func (r *Room) respawn(p *Player, now time.Time) outbound {
	spawn := randomSpawnPoint()
	p.Position = spawn
	p.Alive = true
	p.Health = playerMaxHealth
	p.RespawnAt = time.Time{}
	p.SpawnProtectedUntil = now.Add(r.cfg.spawnProtect())
	p.history.Record(spawn, p.Rotation, now)

	lifecycle.PlayerRespawned(context.Background(), r.pub, r.tick, playerRef(p.ID),
		lifecycle.PlayerRespawnedPayload{SpawnX: spawn.X, SpawnY: spawn.Y, SpawnZ: spawn.Z})

	return outbound{payload: PlayerRespawnMessage{
		Type:            "player_respawn",
		PlayerID:        p.ID,
		Position:        spawn,
		Health:          p.Health,
		SpawnProtection: r.cfg.SpawnProtectMs,
	}}
}

func (r *Room) snapshotPlayers() []PlayerSnapshot {
	players := make([]PlayerSnapshot, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, p.snapshot())
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	return players
}

// scoreboard sorts by kills descending; equal kill counts keep the earlier
// joiner first, matching the winner tie-break.
func (r *Room) scoreboard() []ScoreEntry {
	members := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		members = append(members, p)
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].Kills != members[j].Kills {
			return members[i].Kills > members[j].Kills
		}
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})
	scores := make([]ScoreEntry, 0, len(members))
	for _, p := range members {
		scores = append(scores, ScoreEntry{PlayerID: p.ID, Name: p.Name, Kills: p.Kills, Deaths: p.Deaths})
	}
	return scores
}

func playerRef(id string) logging.EntityRef {
	return logging.EntityRef{ID: id, Kind: logging.EntityKindPlayer}
}

func roomRef(id string) logging.EntityRef {
	return logging.EntityRef{ID: id, Kind: logging.EntityKindRoom}
}
