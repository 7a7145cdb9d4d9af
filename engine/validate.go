package engine

// Validate decides whether the action is legal in the given state. It never
// mutates the state; on rejection the returned error is a *RuleViolation.
func Validate(s *GameState, a Action) error {
	if s.Phase == PhaseRoundOver || s.Phase == PhaseGameOver {
		return violation(WrongPhase, "game is not accepting actions in phase %s", s.Phase)
	}

	idx, p := s.playerByID(a.PlayerID)
	if p == nil {
		return violation(WrongTurn, "player %s is not in this game", a.PlayerID)
	}
	if p.Eliminated {
		return violation(PlayerIsEliminated, "player %s has been eliminated", a.PlayerID)
	}
	if idx != s.Current {
		return violation(WrongTurn, "it is not player %s's turn", a.PlayerID)
	}

	switch a.Kind {
	case ActionDraw:
		if s.Phase != PhaseDraw {
			return violation(WrongPhase, "cannot draw during phase %s", s.Phase)
		}
		return nil

	case ActionPlay:
		if s.Phase != PhasePlay {
			return violation(WrongPhase, "cannot play during phase %s", s.Phase)
		}
		if !p.holds(a.Card) {
			return violation(CardNotInHand, "player %s does not hold %s", a.PlayerID, a.Card)
		}
		if countessForced(p) && a.Card != Countess {
			return violation(MustDiscardCountess, "holding the countess with %s forces the countess", otherHeld(p))
		}
		if a.Card == Guard && a.Guess == Guard {
			return violation(InvalidGuess, "guard may not guess guard")
		}
		return validateTarget(s, idx, a)
	}
	return violation(WrongPhase, "unknown action kind %d", a.Kind)
}

// countessForced reports whether the hand triggers the forced-Countess rule:
// the Countess held together with the King or the Prince must be played.
func countessForced(p *Player) bool {
	return p.holds(Countess) && (p.holds(King) || p.holds(Prince))
}

// otherHeld names the royal card held alongside the Countess, for error text.
func otherHeld(p *Player) Card {
	if p.holds(King) {
		return King
	}
	return Prince
}

// validateTarget checks the target constraints of the card being played.
//
// Guard, Priest, Baron, and King must name another living, unprotected
// player; omitting the target is legal only when no such player exists, in
// which case the play fizzles. The Prince may name any living player
// including self (self-targeting bypasses protection, which the acting
// player never has on their own turn anyway); an omitted Prince target
// defaults to self. Remaining cards take no target.
func validateTarget(s *GameState, actorIdx int, a Action) error {
	switch a.Card {
	case Guard, Priest, Baron, King:
		if a.TargetID == "" {
			if len(s.legalTargets(actorIdx, a.Card)) > 0 {
				return violation(NoLegalTarget, "%s requires a target while legal targets remain", a.Card)
			}
			return nil
		}
		ti, t := s.playerByID(a.TargetID)
		if t == nil {
			return violation(NoLegalTarget, "target %s is not in this game", a.TargetID)
		}
		if ti == actorIdx {
			return violation(NoLegalTarget, "%s cannot target its own player", a.Card)
		}
		if t.Eliminated {
			return violation(InvalidTargetEliminated, "target %s has been eliminated", a.TargetID)
		}
		if t.Protected {
			return violation(InvalidTargetProtected, "target %s is protected by the handmaid", a.TargetID)
		}
		return nil

	case Prince:
		if a.TargetID == "" {
			return nil // defaults to self
		}
		ti, t := s.playerByID(a.TargetID)
		if t == nil {
			return violation(NoLegalTarget, "target %s is not in this game", a.TargetID)
		}
		if t.Eliminated {
			return violation(InvalidTargetEliminated, "target %s has been eliminated", a.TargetID)
		}
		if t.Protected && ti != actorIdx {
			return violation(InvalidTargetProtected, "target %s is protected by the handmaid", a.TargetID)
		}
		return nil
	}

	// Handmaid, Countess, Princess take no target; a stray target id is ignored.
	return nil
}
