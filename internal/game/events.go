// internal/game/events.go
package game

import (
	"github.com/google/uuid"

	"github.com/courtship-games/courtship/engine"
)

// GameEventType represents the type of a game-related event broadcast via WebSockets.
type GameEventType string

// Constants defining the various GameEvent types used for WebSocket communication.
const (
	EventPrivateDraw       GameEventType = "private_card_drawn"   // Private: Details of the card drawn.
	EventPlayerPlay        GameEventType = "player_card_played"   // Public: Player played a card (with target/guess).
	EventPrivateReveal     GameEventType = "private_hand_revealed" // Private: A hand shown to the actor (priest).
	EventHandsCompared     GameEventType = "hands_compared"       // Private to both parties: baron comparison.
	EventHandsTraded       GameEventType = "hands_traded"         // Private to both parties: king trade.
	EventPlayerDiscard     GameEventType = "player_card_discarded" // Public: A forced discard (prince).
	EventPlayerEliminated  GameEventType = "player_eliminated"    // Public: Player is out of the round, hand revealed.
	EventRoundWon          GameEventType = "round_won"            // Public: Round winner and final hands.
	EventGameWon           GameEventType = "game_won"             // Public: Game winner at the token threshold.
	EventGamePlayerTurn    GameEventType = "game_player_turn"     // Public: Notification of the current player's turn.
	EventPrivateSyncState  GameEventType = "private_sync_state"   // Private: Full filtered state sync for a player.
	EventPrivateActionFail GameEventType = "private_action_fail"  // Private: A submitted action was rejected.
	EventGameEnd           GameEventType = "game_end"             // Public: Game has ended, includes results.
)

// EventUser identifies a user within a GameEvent payload.
type EventUser struct {
	ID uuid.UUID `json:"id"`
}

// GameEvent is the standard structure for broadcasting game state changes and actions.
type GameEvent struct {
	Type   GameEventType `json:"type"`
	User   *EventUser    `json:"user,omitempty"`   // The user initiating the event.
	Target *EventUser    `json:"target,omitempty"` // The user affected by the event, if any.
	Card   string        `json:"card,omitempty"`   // Card name involved, e.g. "guard".
	Guess  string        `json:"guess,omitempty"`  // Guard guesses only.

	Revealed []string `json:"revealed,omitempty"` // Hand contents disclosed by the event.

	Payload map[string]interface{} `json:"payload,omitempty"` // Additional arbitrary data.

	State *engine.PlayerView `json:"state,omitempty"` // Full filtered state for sync events.
}

// eventTypeFor maps an engine event kind to its wire event type.
func eventTypeFor(kind engine.EventKind) GameEventType {
	switch kind {
	case engine.EventCardDrawn:
		return EventPrivateDraw
	case engine.EventCardPlayed:
		return EventPlayerPlay
	case engine.EventHandRevealed:
		return EventPrivateReveal
	case engine.EventHandsCompared:
		return EventHandsCompared
	case engine.EventHandsTraded:
		return EventHandsTraded
	case engine.EventCardDiscarded:
		return EventPlayerDiscard
	case engine.EventPlayerEliminated:
		return EventPlayerEliminated
	case engine.EventRoundWon:
		return EventRoundWon
	case engine.EventGameWon:
		return EventGameWon
	}
	return GameEventType(kind.String())
}

// translateEvent converts an engine event into its broadcast envelope.
// Engine player ids are the players' UUID strings.
func translateEvent(ev engine.Event) GameEvent {
	out := GameEvent{
		Type:    eventTypeFor(ev.Kind),
		Payload: map[string]interface{}{"at": ev.At},
	}
	if actor, err := uuid.Parse(ev.Actor); err == nil {
		out.User = &EventUser{ID: actor}
	}
	if ev.Target != "" {
		if target, err := uuid.Parse(ev.Target); err == nil {
			out.Target = &EventUser{ID: target}
		}
	}
	if ev.Card != engine.CardNone {
		out.Card = ev.Card.String()
	}
	if ev.Guess != engine.CardNone {
		out.Guess = ev.Guess.String()
	}
	for _, c := range ev.Revealed {
		out.Revealed = append(out.Revealed, c.String())
	}
	return out
}
