package ws

import (
	"arena-blitz/server"
)

// clientMessage is the decoded inbound envelope. The tag set is closed;
// frames with an unrecognized type are dropped without a reply so a probing
// client learns nothing.
type clientMessage struct {
	Type       string           `json:"type"`
	Name       string           `json:"name"`
	Position   *server.Vec3     `json:"position"`
	Rotation   *server.Rotation `json:"rotation"`
	State      string           `json:"state"`
	Weapon     string           `json:"weapon"`
	Origin     *server.Vec3     `json:"origin"`
	Target     *server.Vec3     `json:"target"`
	TargetID   string           `json:"targetId"`
	Damage     *float64         `json:"damage"`
	IsHeadshot bool             `json:"isHeadshot"`
	Timestamp  int64            `json:"timestamp"`
}

type pongMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}
