package engine

// ActionKind discriminates the action union.
type ActionKind uint8

const (
	ActionDraw ActionKind = iota
	ActionPlay
)

func (k ActionKind) String() string {
	if k == ActionDraw {
		return "draw"
	}
	return "play"
}

// Action is a player-submitted move. Kind selects the variant: ActionDraw
// carries no payload; ActionPlay names the card and, for targeted cards, the
// target player and (Guard only) the guessed card.
type Action struct {
	PlayerID string
	Kind     ActionKind
	Card     Card   // ActionPlay only
	TargetID string // optional target player
	Guess    Card   // Guard only
}

// DrawAction builds a draw action for the given player.
func DrawAction(playerID string) Action {
	return Action{PlayerID: playerID, Kind: ActionDraw}
}

// PlayAction builds a play action. targetID and guess may be zero values for
// cards that do not use them.
func PlayAction(playerID string, card Card, targetID string, guess Card) Action {
	return Action{PlayerID: playerID, Kind: ActionPlay, Card: card, TargetID: targetID, Guess: guess}
}
