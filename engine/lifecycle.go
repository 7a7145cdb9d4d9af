package engine

// checkRoundEnd runs after every resolved action. A round ends when exactly
// one player survives, or when the next player to act would draw from an
// empty deck (the player who drew the last card still finishes their turn).
func (g *GameState) checkRoundEnd() []Event {
	if g.Phase == PhaseGameOver {
		return nil
	}
	alive := g.alivePlayers()
	deckExhausted := g.Phase == PhaseDraw && len(g.Deck) == 0
	if len(alive) > 1 && !deckExhausted {
		return nil
	}
	return g.endRound(alive)
}

// endRound awards a token to the round winner and either finishes the game
// or deals the next round. The winner is the survivor holding the
// highest-rank card; rank ties go to the earliest seat index.
func (g *GameState) endRound(alive []int) []Event {
	winnerIdx := alive[0]
	for _, idx := range alive[1:] {
		if handRank(&g.Players[idx]) > handRank(&g.Players[winnerIdx]) {
			winnerIdx = idx
		}
	}

	winner := &g.Players[winnerIdx]
	winner.Tokens++
	g.Phase = PhaseRoundOver

	won := publicEvent(EventRoundWon, winner.ID, "", CardNone)
	won.Revealed = append([]Card(nil), winner.Hand...)
	events := []Event{won}

	if winner.Tokens >= g.TokensToWin {
		g.Phase = PhaseGameOver
		g.Finished = true
		g.WinnerID = winner.ID
		events = append(events, publicEvent(EventGameWon, winner.ID, "", CardNone))
		return events
	}

	g.startRound(winnerIdx)
	return events
}

// handRank returns the rank of the player's hand card, or 0 for an empty hand.
func handRank(p *Player) int {
	if len(p.Hand) == 0 {
		return 0
	}
	return p.Hand[0].Rank()
}

// startRound deals a fresh round: new shuffled deck, one set-aside card, the
// 2-player face-up reveal, one card per player. Tokens carry over; the lead
// player opens in the Draw phase.
func (g *GameState) startRound(leadIdx int) {
	for i := range g.Players {
		p := &g.Players[i]
		p.Hand = nil
		p.Discards = nil
		p.Eliminated = false
		p.Protected = false
	}

	deck := NewDeck()
	g.shuffle(deck)
	g.Deck = deck

	g.SetAside, _ = g.drawCard()

	g.FaceUp = nil
	if len(g.Players) == 2 {
		for i := 0; i < 3; i++ {
			c, _ := g.drawCard()
			g.FaceUp = append(g.FaceUp, c)
		}
	}

	for i := range g.Players {
		c, _ := g.drawCard()
		g.Players[i].Hand = append(g.Players[i].Hand, c)
	}

	g.Current = leadIdx
	g.Round++
	g.Turn = 0
	g.Phase = PhaseDraw
}
