package server

// Server→client wire messages. Everything rides the same JSON framing with a
// type tag; cmd/schema reflects these structs into the published protocol
// schema.

// PlayerSnapshot is the wire view of a player. Displayed health is clamped
// at zero even though stored health may go negative.
type PlayerSnapshot struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Position Vec3     `json:"position"`
	Rotation Rotation `json:"rotation"`
	Health   float64  `json:"health"`
	Kills    int      `json:"kills"`
	Deaths   int      `json:"deaths"`
	Weapon   Weapon   `json:"weapon"`
	Alive    bool     `json:"alive"`
}

// ScoreEntry is one scoreboard row, sorted by kills descending.
type ScoreEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Kills    int    `json:"kills"`
	Deaths   int    `json:"deaths"`
}

// KillFeedEntry is one row of the capped, most-recent-first kill log.
type KillFeedEntry struct {
	Killer     string `json:"killer"`
	Victim     string `json:"victim"`
	IsHeadshot bool   `json:"isHeadshot"`
	Timestamp  int64  `json:"timestamp"`
}

type JoinedMessage struct {
	Type        string           `json:"type"`
	PlayerID    string           `json:"playerId"`
	Players     []PlayerSnapshot `json:"players"`
	GameStarted bool             `json:"gameStarted"`
	Config      GameConfig       `json:"config"`
	KillFeed    []KillFeedEntry  `json:"killFeed"`
}

type PlayerJoinedMessage struct {
	Type   string         `json:"type"`
	Player PlayerSnapshot `json:"player"`
}

type PlayerLeftMessage struct {
	Type       string `json:"type"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type GameStartMessage struct {
	Type    string           `json:"type"`
	Config  GameConfig       `json:"config"`
	Players []PlayerSnapshot `json:"players"`
}

type GameEndMessage struct {
	Type    string           `json:"type"`
	Reason  string           `json:"reason"`
	Winner  *PlayerSnapshot  `json:"winner"`
	Players []PlayerSnapshot `json:"players"`
}

type PlayerPositionMessage struct {
	Type     string   `json:"type"`
	PlayerID string   `json:"playerId"`
	Position Vec3     `json:"position"`
	Rotation Rotation `json:"rotation"`
	State    string   `json:"state,omitempty"`
}

type PlayerShootMessage struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	Weapon   Weapon `json:"weapon"`
	Position Vec3   `json:"position"`
	Origin   Vec3   `json:"origin"`
	Target   Vec3   `json:"target"`
}

type PlayerDamageMessage struct {
	Type       string  `json:"type"`
	TargetID   string  `json:"targetId"`
	AttackerID string  `json:"attackerId"`
	Damage     float64 `json:"damage"`
	Health     float64 `json:"health"`
	IsHeadshot bool    `json:"isHeadshot"`
}

type PlayerKilledMessage struct {
	Type       string       `json:"type"`
	KillerID   string       `json:"killerId"`
	VictimID   string       `json:"victimId"`
	KillerName string       `json:"killerName"`
	VictimName string       `json:"victimName"`
	IsHeadshot bool         `json:"isHeadshot"`
	Scores     []ScoreEntry `json:"scores"`
}

type PlayerRespawnMessage struct {
	Type            string  `json:"type"`
	PlayerID        string  `json:"playerId"`
	Position        Vec3    `json:"position"`
	Health          float64 `json:"health"`
	SpawnProtection int64   `json:"spawnProtection"`
}

type PlayerWeaponMessage struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	Weapon   Weapon `json:"weapon"`
}

type PongMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

type ServerShutdownMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Protocol groups every server→client message for schema generation.
type Protocol struct {
	Joined         JoinedMessage         `json:"joined"`
	PlayerJoined   PlayerJoinedMessage   `json:"player_joined"`
	PlayerLeft     PlayerLeftMessage     `json:"player_left"`
	GameStart      GameStartMessage      `json:"game_start"`
	GameEnd        GameEndMessage        `json:"game_end"`
	PlayerPosition PlayerPositionMessage `json:"player_position"`
	PlayerShoot    PlayerShootMessage    `json:"player_shoot"`
	PlayerDamage   PlayerDamageMessage   `json:"player_damage"`
	PlayerKilled   PlayerKilledMessage   `json:"player_killed"`
	PlayerRespawn  PlayerRespawnMessage  `json:"player_respawn"`
	PlayerWeapon   PlayerWeaponMessage   `json:"player_weapon"`
	Pong           PongMessage           `json:"pong"`
	ServerShutdown ServerShutdownMessage `json:"server_shutdown"`
}
