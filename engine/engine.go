package engine

import "fmt"

// PlayerInfo identifies a participant at initialization. IDs are opaque to
// the engine; the service layer uses UUID strings.
type PlayerInfo struct {
	ID   string
	Name string
}

// Config controls initialization. Seed drives the deterministic shuffle
// stream; a zero seed is replaced with a fixed non-zero value so xorshift
// does not stall.
type Config struct {
	GameID string
	Seed   uint64
}

// Initialize validates the player list and deals the first round.
func Initialize(players []PlayerInfo, cfg Config) (*GameState, error) {
	if len(players) < MinPlayers || len(players) > MaxPlayers {
		return nil, &ConfigError{Reason: fmt.Sprintf("player count must be %d-%d, got %d", MinPlayers, MaxPlayers, len(players))}
	}
	seen := make(map[string]bool, len(players))
	for _, p := range players {
		if p.ID == "" {
			return nil, &ConfigError{Reason: "player id must not be empty"}
		}
		if seen[p.ID] {
			return nil, &ConfigError{Reason: fmt.Sprintf("duplicate player id %s", p.ID)}
		}
		seen[p.ID] = true
	}

	g := &GameState{
		GameID:      cfg.GameID,
		TokensToWin: tokensToWin(len(players)),
		Seed:        cfg.Seed,
	}
	if g.Seed == 0 {
		g.Seed = 1
	}
	g.Players = make([]Player, len(players))
	for i, p := range players {
		g.Players[i] = Player{ID: p.ID, Name: p.Name}
	}

	g.startRound(0)
	return g, nil
}

// GameEngine is the contract a game implementation exposes to the session
// layer, generic over its state and action types. It is implemented once per
// game type; the session layer never reaches past it.
type GameEngine[S, A any] interface {
	Initialize(players []PlayerInfo, cfg Config) (S, error)
	ValidateAction(s S, a A) error
	ExecuteAction(s S, a A) (S, []Event, error)
	AvailableActions(s S, playerID string) []ActionKind
	FilterStateForPlayer(s S, playerID string) PlayerView
}

// LoveLetter implements GameEngine for the Love Letter ruleset. It is
// stateless; all game state lives in the GameState values it returns.
type LoveLetter struct{}

var _ GameEngine[*GameState, Action] = LoveLetter{}

func (LoveLetter) Initialize(players []PlayerInfo, cfg Config) (*GameState, error) {
	return Initialize(players, cfg)
}

func (LoveLetter) ValidateAction(s *GameState, a Action) error {
	return Validate(s, a)
}

func (LoveLetter) ExecuteAction(s *GameState, a Action) (*GameState, []Event, error) {
	return ExecuteAction(s, a)
}

func (LoveLetter) AvailableActions(s *GameState, playerID string) []ActionKind {
	return AvailableActions(s, playerID)
}

func (LoveLetter) FilterStateForPlayer(s *GameState, playerID string) PlayerView {
	return FilterStateForPlayer(s, playerID)
}
