package engine

import "fmt"

// ViolationCode enumerates the closed set of rule violations.
type ViolationCode uint8

const (
	WrongTurn ViolationCode = iota
	WrongPhase
	PlayerIsEliminated
	CardNotInHand
	MustDiscardCountess
	InvalidGuess
	InvalidTargetProtected
	InvalidTargetEliminated
	NoLegalTarget
)

func (c ViolationCode) String() string {
	switch c {
	case WrongTurn:
		return "wrong_turn"
	case WrongPhase:
		return "wrong_phase"
	case PlayerIsEliminated:
		return "player_eliminated"
	case CardNotInHand:
		return "card_not_in_hand"
	case MustDiscardCountess:
		return "must_discard_countess"
	case InvalidGuess:
		return "invalid_guess"
	case InvalidTargetProtected:
		return "invalid_target_protected"
	case InvalidTargetEliminated:
		return "invalid_target_eliminated"
	case NoLegalTarget:
		return "no_legal_target"
	}
	return "unknown"
}

// RuleViolation is a rejected action. It indicates nothing about engine
// health: the state is unchanged and the caller relays the rejection to the
// acting player.
type RuleViolation struct {
	Code   ViolationCode
	Reason string
}

func (e *RuleViolation) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

func violation(code ViolationCode, format string, args ...interface{}) *RuleViolation {
	return &RuleViolation{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// ConfigError reports an invalid game configuration at initialization.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Reason
}
