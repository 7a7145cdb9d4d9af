package engine

import "time"

// EventKind enumerates the observable consequences of executed actions.
type EventKind uint8

const (
	EventCardDrawn EventKind = iota
	EventCardPlayed
	EventHandRevealed
	EventHandsCompared
	EventHandsTraded
	EventCardDiscarded
	EventPlayerEliminated
	EventRoundWon
	EventGameWon
)

func (k EventKind) String() string {
	switch k {
	case EventCardDrawn:
		return "card_drawn"
	case EventCardPlayed:
		return "card_played"
	case EventHandRevealed:
		return "hand_revealed"
	case EventHandsCompared:
		return "hands_compared"
	case EventHandsTraded:
		return "hands_traded"
	case EventCardDiscarded:
		return "card_discarded"
	case EventPlayerEliminated:
		return "player_eliminated"
	case EventRoundWon:
		return "round_won"
	case EventGameWon:
		return "game_won"
	}
	return "unknown"
}

// Event is an append-only output of an executed action. The engine never
// reads events back; they exist for the caller to relay to clients according
// to each event's visibility.
type Event struct {
	Kind     EventKind
	Actor    string // player who caused the event
	Target   string // affected player, if any
	Card     Card   // card drawn, played, or discarded
	Guess    Card   // Guard guesses only
	Revealed []Card // hand contents disclosed by the event
	Public   bool
	// VisibleTo lists the recipients of a non-public event.
	VisibleTo []string
	At        int64 // unix milliseconds
}

// VisibleToPlayer reports whether the event may be shown to the given player.
func (e Event) VisibleToPlayer(playerID string) bool {
	if e.Public {
		return true
	}
	for _, id := range e.VisibleTo {
		if id == playerID {
			return true
		}
	}
	return false
}

func eventNow() int64 {
	return time.Now().UnixMilli()
}

func publicEvent(kind EventKind, actor, target string, card Card) Event {
	return Event{Kind: kind, Actor: actor, Target: target, Card: card, Public: true, At: eventNow()}
}

func privateEvent(kind EventKind, actor, target string, card Card, visibleTo ...string) Event {
	return Event{Kind: kind, Actor: actor, Target: target, Card: card, VisibleTo: visibleTo, At: eventNow()}
}
