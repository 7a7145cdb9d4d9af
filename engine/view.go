package engine

// ViewPlayer is the projection of one player inside a PlayerView. Hand is
// populated only for the requesting player; everyone else exposes the count.
type ViewPlayer struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Hand       []Card `json:"hand,omitempty"`
	HandSize   int    `json:"handSize"`
	Discards   []Card `json:"discards"`
	Eliminated bool   `json:"eliminated"`
	Protected  bool   `json:"protected"`
	Tokens     int    `json:"tokens"`
}

// PlayerView is the per-player projection of a GameState. It is the single
// choke point preventing information leakage: other players' hands are
// reduced to counts, the deck to its size, and the set-aside card is omitted
// entirely.
type PlayerView struct {
	GameID          string       `json:"gameId"`
	PlayerID        string       `json:"playerId"`
	Phase           string       `json:"phase"`
	CurrentPlayerID string       `json:"currentPlayerId"`
	DeckSize        int          `json:"deckSize"`
	FaceUp          []Card       `json:"faceUp,omitempty"`
	Round           int          `json:"round"`
	Turn            int          `json:"turn"`
	TokensToWin     int          `json:"tokensToWin"`
	Finished        bool         `json:"finished"`
	WinnerID        string       `json:"winnerId,omitempty"`
	Players         []ViewPlayer `json:"players"`
	Actions         []ActionKind `json:"actions,omitempty"`
}

// FilterStateForPlayer projects the state into what the given player is
// entitled to see. Total and side-effect-free.
func FilterStateForPlayer(s *GameState, playerID string) PlayerView {
	view := PlayerView{
		GameID:      s.GameID,
		PlayerID:    playerID,
		Phase:       s.Phase.String(),
		DeckSize:    len(s.Deck),
		FaceUp:      append([]Card(nil), s.FaceUp...),
		Round:       s.Round,
		Turn:        s.Turn,
		TokensToWin: s.TokensToWin,
		Finished:    s.Finished,
		WinnerID:    s.WinnerID,
		Actions:     AvailableActions(s, playerID),
	}
	if s.Phase != PhaseGameOver && len(s.Players) > 0 {
		view.CurrentPlayerID = s.Players[s.Current].ID
	}

	view.Players = make([]ViewPlayer, len(s.Players))
	for i, p := range s.Players {
		vp := ViewPlayer{
			ID:         p.ID,
			Name:       p.Name,
			HandSize:   len(p.Hand),
			Discards:   append([]Card(nil), p.Discards...),
			Eliminated: p.Eliminated,
			Protected:  p.Protected,
			Tokens:     p.Tokens,
		}
		if p.ID == playerID {
			vp.Hand = append([]Card(nil), p.Hand...)
		}
		view.Players[i] = vp
	}
	return view
}
