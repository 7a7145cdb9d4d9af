package engine

// AvailableActions returns the action kinds the given player may take in the
// current state: {draw} on their Draw-phase turn, {play} on their Play-phase
// turn, and nothing otherwise (not their turn, eliminated, or game over).
func AvailableActions(s *GameState, playerID string) []ActionKind {
	if s.Phase == PhaseRoundOver || s.Phase == PhaseGameOver {
		return nil
	}
	idx, p := s.playerByID(playerID)
	if p == nil || p.Eliminated || idx != s.Current {
		return nil
	}
	switch s.Phase {
	case PhaseDraw:
		return []ActionKind{ActionDraw}
	case PhasePlay:
		return []ActionKind{ActionPlay}
	}
	return nil
}

// LegalTargets returns the ids of the players the given card may name as a
// target right now, from the given player's seat. Cards without a targeting
// effect return nil.
func LegalTargets(s *GameState, playerID string, card Card) []string {
	idx, p := s.playerByID(playerID)
	if p == nil {
		return nil
	}
	return s.legalTargets(idx, card)
}

func (g *GameState) legalTargets(actorIdx int, card Card) []string {
	var targets []string
	switch card {
	case Guard, Priest, Baron, King:
		for i := range g.Players {
			if i == actorIdx {
				continue
			}
			p := &g.Players[i]
			if !p.Eliminated && !p.Protected {
				targets = append(targets, p.ID)
			}
		}
	case Prince:
		for i := range g.Players {
			p := &g.Players[i]
			if p.Eliminated {
				continue
			}
			if p.Protected && i != actorIdx {
				continue
			}
			targets = append(targets, p.ID)
		}
	}
	return targets
}
