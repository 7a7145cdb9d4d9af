package engine

// ExecuteAction validates and applies an action. On success it returns the
// successor state and the ordered events the action produced; the input state
// is never mutated. On rejection the error is a *RuleViolation and both
// return values are nil.
func ExecuteAction(s *GameState, a Action) (*GameState, []Event, error) {
	if err := Validate(s, a); err != nil {
		return nil, nil, err
	}

	n := s.Clone()
	var events []Event
	switch a.Kind {
	case ActionDraw:
		events = n.resolveDraw()
	case ActionPlay:
		events = n.resolvePlay(a)
	}

	events = append(events, n.checkRoundEnd()...)
	return n, events, nil
}

// resolveDraw moves the top deck card into the current player's hand.
// Protection expires at the start of the protected player's own turn, which
// is exactly when they draw.
func (g *GameState) resolveDraw() []Event {
	p := g.CurrentPlayer()
	p.Protected = false

	c, ok := g.drawCard()
	if !ok {
		// Unreachable: lifecycle ends the round before an empty-deck draw.
		return nil
	}
	p.Hand = append(p.Hand, c)
	g.Phase = PhasePlay

	return []Event{privateEvent(EventCardDrawn, p.ID, "", c, p.ID)}
}

// resolvePlay discards the played card, dispatches its effect, and advances
// the turn to the next living player.
func (g *GameState) resolvePlay(a Action) []Event {
	actor := g.CurrentPlayer()
	actor.removeFromHand(a.Card)
	actor.Discards = append(actor.Discards, a.Card)

	played := publicEvent(EventCardPlayed, actor.ID, a.TargetID, a.Card)
	played.Guess = a.Guess
	events := append([]Event{played}, g.applyEffect(a)...)

	g.advanceTurn()
	return events
}

// applyEffect dispatches the card-specific effect of a validated play. A
// missing or protected target makes targeted effects fizzle silently; the
// validator only lets that situation through when the rules force it.
func (g *GameState) applyEffect(a Action) []Event {
	actorIdx := g.Current
	actor := &g.Players[actorIdx]

	targetIdx := -1
	if a.TargetID != "" {
		targetIdx, _ = g.playerByID(a.TargetID)
	}

	switch a.Card {
	case Guard:
		return g.effectGuard(actorIdx, targetIdx, a.Guess)
	case Priest:
		return g.effectPriest(actorIdx, targetIdx)
	case Baron:
		return g.effectBaron(actorIdx, targetIdx)
	case Handmaid:
		actor.Protected = true
		return nil
	case Prince:
		if targetIdx < 0 {
			targetIdx = actorIdx
		}
		return g.effectPrince(actorIdx, targetIdx)
	case King:
		return g.effectKing(actorIdx, targetIdx)
	case Countess:
		// No effect; the forced-discard rule lives in the validator.
		return nil
	case Princess:
		return []Event{g.eliminate(actorIdx)}
	}
	return nil
}

// effectGuard eliminates the target if the guess matches their hand card.
// A wrong guess is not an error, just no elimination.
func (g *GameState) effectGuard(actorIdx, targetIdx int, guess Card) []Event {
	if targetIdx < 0 || guess == CardNone {
		return nil
	}
	t := &g.Players[targetIdx]
	if t.Protected || t.Eliminated || len(t.Hand) == 0 {
		return nil
	}
	if t.Hand[0] != guess {
		return nil
	}
	return []Event{g.eliminate(targetIdx)}
}

// effectPriest reveals the target's hand to the acting player only.
func (g *GameState) effectPriest(actorIdx, targetIdx int) []Event {
	if targetIdx < 0 {
		return nil
	}
	actor := &g.Players[actorIdx]
	t := &g.Players[targetIdx]
	if t.Protected || t.Eliminated {
		return nil
	}
	ev := privateEvent(EventHandRevealed, actor.ID, t.ID, CardNone, actor.ID)
	ev.Revealed = append([]Card(nil), t.Hand...)
	return []Event{ev}
}

// effectBaron compares hands; the strictly lower rank is eliminated, a tie
// eliminates nobody. The comparison is disclosed to both participants before
// any elimination.
func (g *GameState) effectBaron(actorIdx, targetIdx int) []Event {
	if targetIdx < 0 {
		return nil
	}
	actor := &g.Players[actorIdx]
	t := &g.Players[targetIdx]
	if t.Protected || t.Eliminated || len(actor.Hand) == 0 || len(t.Hand) == 0 {
		return nil
	}

	actorCard, targetCard := actor.Hand[0], t.Hand[0]
	compared := privateEvent(EventHandsCompared, actor.ID, t.ID, CardNone, actor.ID, t.ID)
	compared.Revealed = []Card{actorCard, targetCard}
	events := []Event{compared}

	switch {
	case actorCard.Rank() < targetCard.Rank():
		events = append(events, g.eliminate(actorIdx))
	case targetCard.Rank() < actorCard.Rank():
		events = append(events, g.eliminate(targetIdx))
	}
	return events
}

// effectPrince forces the target to discard their hand and draw a
// replacement. Discarding the Princess this way eliminates the target. When
// the deck is empty the replacement comes from the set-aside card — the one
// case it re-enters play.
func (g *GameState) effectPrince(actorIdx, targetIdx int) []Event {
	actor := &g.Players[actorIdx]
	t := &g.Players[targetIdx]
	if t.Eliminated || (t.Protected && targetIdx != actorIdx) || len(t.Hand) == 0 {
		return nil
	}

	discarded := t.Hand[0]
	if discarded == Princess {
		return []Event{g.eliminate(targetIdx)}
	}

	t.Hand = t.Hand[:0]
	t.Discards = append(t.Discards, discarded)
	events := []Event{publicEvent(EventCardDiscarded, actor.ID, t.ID, discarded)}

	if replacement, ok := g.drawCard(); ok {
		t.Hand = append(t.Hand, replacement)
		events = append(events, privateEvent(EventCardDrawn, t.ID, "", replacement, t.ID))
	} else if g.SetAside != CardNone {
		t.Hand = append(t.Hand, g.SetAside)
		events = append(events, privateEvent(EventCardDrawn, t.ID, "", g.SetAside, t.ID))
		g.SetAside = CardNone
	}
	return events
}

// effectKing swaps hands between the acting player and the target.
func (g *GameState) effectKing(actorIdx, targetIdx int) []Event {
	if targetIdx < 0 {
		return nil
	}
	actor := &g.Players[actorIdx]
	t := &g.Players[targetIdx]
	if t.Protected || t.Eliminated {
		return nil
	}

	actor.Hand, t.Hand = t.Hand, actor.Hand
	ev := privateEvent(EventHandsTraded, actor.ID, t.ID, CardNone, actor.ID, t.ID)
	return []Event{ev}
}

// eliminate removes the player from the round, revealing their final hand.
// Elimination always publicly reveals the discarded hand by rule.
func (g *GameState) eliminate(idx int) Event {
	p := &g.Players[idx]
	revealed := append([]Card(nil), p.Hand...)
	p.Discards = append(p.Discards, p.Hand...)
	p.Hand = nil
	p.Eliminated = true

	ev := publicEvent(EventPlayerEliminated, p.ID, "", CardNone)
	ev.Revealed = revealed
	return ev
}

// advanceTurn hands the turn to the next living player. If the round is
// over, the lifecycle check fires immediately afterwards and supersedes the
// Draw phase set here.
func (g *GameState) advanceTurn() {
	g.Turn++
	g.Current = g.nextAlive(g.Current)
	g.Phase = PhaseDraw
}
