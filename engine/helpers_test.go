package engine

import (
	"fmt"
	"testing"
)

// testPlayers returns n PlayerInfo entries with ids p0..p(n-1).
func testPlayers(n int) []PlayerInfo {
	players := make([]PlayerInfo, n)
	for i := range players {
		players[i] = PlayerInfo{ID: fmt.Sprintf("p%d", i), Name: fmt.Sprintf("Player %d", i)}
	}
	return players
}

// mustInit initializes a game or fails the test.
func mustInit(t *testing.T, n int, seed uint64) *GameState {
	t.Helper()
	g, err := Initialize(testPlayers(n), Config{GameID: "test-game", Seed: seed})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return g
}

// buildState constructs a mid-round state for scenario tests. hands[i]
// becomes player pi's hand; the current player is p0. Phase is Play when p0
// holds two cards, Draw otherwise. The deck is set verbatim.
func buildState(hands [][]Card, deck []Card) *GameState {
	g := &GameState{
		GameID:      "test-game",
		Round:       1,
		TokensToWin: tokensToWin(len(hands)),
		Seed:        1,
		Deck:        append([]Card(nil), deck...),
	}
	for i, hand := range hands {
		g.Players = append(g.Players, Player{
			ID:   fmt.Sprintf("p%d", i),
			Name: fmt.Sprintf("Player %d", i),
			Hand: append([]Card(nil), hand...),
		})
	}
	if len(hands[0]) == 2 {
		g.Phase = PhasePlay
	} else {
		g.Phase = PhaseDraw
	}
	return g
}

// mustExecute applies an action or fails the test.
func mustExecute(t *testing.T, s *GameState, a Action) (*GameState, []Event) {
	t.Helper()
	next, events, err := ExecuteAction(s, a)
	if err != nil {
		t.Fatalf("ExecuteAction(%s by %s): %v", a.Kind, a.PlayerID, err)
	}
	return next, events
}

// checkConservation verifies the multiset of cards across every zone equals
// the full deck composition. Only meaningful for states produced by
// Initialize and ExecuteAction.
func checkConservation(t *testing.T, s *GameState) {
	t.Helper()
	counts := make(map[Card]int)
	for _, c := range s.Deck {
		counts[c]++
	}
	if s.SetAside != CardNone {
		counts[s.SetAside]++
	}
	for _, c := range s.FaceUp {
		counts[c]++
	}
	for _, p := range s.Players {
		for _, c := range p.Hand {
			counts[c]++
		}
		for _, c := range p.Discards {
			counts[c]++
		}
	}

	for c := Guard; c <= Princess; c++ {
		if counts[c] != c.Count() {
			t.Fatalf("round %d turn %d: count(%s) = %d, want %d", s.Round, s.Turn, c, counts[c], c.Count())
		}
	}
}

// findEvent returns the first event of the given kind, or nil.
func findEvent(events []Event, kind EventKind) *Event {
	for i := range events {
		if events[i].Kind == kind {
			return &events[i]
		}
	}
	return nil
}

// pickPlay chooses a deterministic legal play for the current player,
// honoring the forced-Countess rule and target requirements. Variety comes
// from the turn counter.
func pickPlay(g *GameState, hand []Card) Action {
	p := g.CurrentPlayer()

	card := hand[g.Turn%len(hand)]
	if countessForced(p) {
		card = Countess
	}

	targetID := ""
	targets := g.legalTargets(g.Current, card)
	if len(targets) > 0 {
		targetID = targets[g.Turn%len(targets)]
	}

	guess := CardNone
	if card == Guard && targetID != "" {
		// Any non-Guard card is a legal guess.
		guess = Card(2 + g.Turn%7)
	}
	return PlayAction(p.ID, card, targetID, guess)
}

// autoStep advances the game by one legal action from the current player.
func autoStep(g *GameState) (*GameState, error) {
	p := g.CurrentPlayer()
	var a Action
	if g.Phase == PhaseDraw {
		a = DrawAction(p.ID)
	} else {
		a = pickPlay(g, p.Hand)
	}
	next, _, err := ExecuteAction(g, a)
	return next, err
}

// violationCode extracts the ViolationCode from an error, failing the test
// if the error is not a *RuleViolation.
func violationCode(t *testing.T, err error) ViolationCode {
	t.Helper()
	if err == nil {
		t.Fatal("expected a rule violation, got nil")
	}
	rv, ok := err.(*RuleViolation)
	if !ok {
		t.Fatalf("expected *RuleViolation, got %T: %v", err, err)
	}
	return rv.Code
}
