// internal/models/models.go
package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// User represents a registered account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Argon2id encoded hash; never serialized.
	IsEphemeral  bool      `json:"isEphemeral"`
}

// Player represents a seat in a game: a user plus their live connection state.
type Player struct {
	ID        uuid.UUID       `json:"id"`
	User      User            `json:"user"`
	Conn      *websocket.Conn `json:"-"`
	Connected bool            `json:"connected"`
}

// GameAction is the wire format for a player-submitted move.
type GameAction struct {
	ActionType string                 `json:"action"`            // "action_draw" or "action_play".
	Card       string                 `json:"card,omitempty"`    // Card name, e.g. "guard".
	TargetID   string                 `json:"target,omitempty"`  // Target player UUID string.
	Guess      string                 `json:"guess,omitempty"`   // Guard guesses only.
	Payload    map[string]interface{} `json:"payload,omitempty"` // Additional arbitrary data.
}
