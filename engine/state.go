package engine

// Player count bounds for a game.
const (
	MinPlayers = 2
	MaxPlayers = 4
)

// Phase identifies where in the turn cycle a state sits.
type Phase uint8

const (
	PhaseDraw     Phase = iota // current player must draw
	PhasePlay                  // current player holds two cards and must play one
	PhaseRoundOver             // transient: round resolved, next round not yet dealt
	PhaseGameOver              // terminal
)

func (p Phase) String() string {
	switch p {
	case PhaseDraw:
		return "draw"
	case PhasePlay:
		return "play"
	case PhaseRoundOver:
		return "round_over"
	case PhaseGameOver:
		return "game_over"
	}
	return "unknown"
}

// Player holds one participant's round and game state. Players are owned
// exclusively by their GameState; external callers only ever see copies.
type Player struct {
	ID         string
	Name       string
	Hand       []Card // 1 card during play, 2 between draw and play, 0 when eliminated
	Discards   []Card // face-up, in play order
	Eliminated bool
	Protected  bool // Handmaid immunity until the start of this player's next turn
	Tokens     int  // tokens of affection across rounds
}

func (p *Player) holds(c Card) bool {
	for _, h := range p.Hand {
		if h == c {
			return true
		}
	}
	return false
}

// removeFromHand removes one copy of c from the hand.
// Returns false if the card is not held.
func (p *Player) removeFromHand(c Card) bool {
	for i, h := range p.Hand {
		if h == c {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// GameState is the complete snapshot of a game in progress. Transitions never
// mutate a caller-visible state: ExecuteAction clones the state and returns
// the successor, so callers may retain any state for history or replay.
type GameState struct {
	GameID      string
	Phase       Phase
	Current     int // index into Players of the current player
	Players     []Player
	Deck        []Card // draw pile; cards are drawn from the tail
	SetAside    Card   // face-down card removed at deal time; CardNone once spent
	FaceUp      []Card // 2-player variant: three cards revealed at deal time
	Round       int    // 1-based
	Turn        int    // resets each round
	Finished    bool
	WinnerID    string
	TokensToWin int    // fixed at initialization: 2p→7, 3p→5, 4p→4
	Seed        uint64 // xorshift64 stream, advanced by every shuffle
}

// nextRand advances the xorshift64 stream.
func (g *GameState) nextRand() uint64 {
	x := g.Seed
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.Seed = x
	return x
}

// randN returns a random number in [0, n).
func (g *GameState) randN(n uint64) uint64 {
	return g.nextRand() % n
}

// shuffle performs an in-place Fisher-Yates shuffle.
func (g *GameState) shuffle(cards []Card) {
	for i := len(cards) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Clone returns a deep copy of the state.
func (g *GameState) Clone() *GameState {
	n := *g
	n.Players = make([]Player, len(g.Players))
	for i, p := range g.Players {
		np := p
		np.Hand = append([]Card(nil), p.Hand...)
		np.Discards = append([]Card(nil), p.Discards...)
		n.Players[i] = np
	}
	n.Deck = append([]Card(nil), g.Deck...)
	n.FaceUp = append([]Card(nil), g.FaceUp...)
	return &n
}

// CurrentPlayer returns the player whose turn it is.
func (g *GameState) CurrentPlayer() *Player {
	return &g.Players[g.Current]
}

// playerByID returns the index and player for the given id, or (-1, nil).
func (g *GameState) playerByID(id string) (int, *Player) {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return i, &g.Players[i]
		}
	}
	return -1, nil
}

// nextAlive returns the index of the next non-eliminated player after from,
// wrapping around. If from is the only survivor, from is returned.
func (g *GameState) nextAlive(from int) int {
	n := len(g.Players)
	for step := 1; step <= n; step++ {
		idx := (from + step) % n
		if !g.Players[idx].Eliminated {
			return idx
		}
	}
	return from
}

// alivePlayers returns the indices of all non-eliminated players, in seat order.
func (g *GameState) alivePlayers() []int {
	var alive []int
	for i := range g.Players {
		if !g.Players[i].Eliminated {
			alive = append(alive, i)
		}
	}
	return alive
}

// drawCard pops a card from the tail of the deck.
func (g *GameState) drawCard() (Card, bool) {
	if len(g.Deck) == 0 {
		return CardNone, false
	}
	c := g.Deck[len(g.Deck)-1]
	g.Deck = g.Deck[:len(g.Deck)-1]
	return c, true
}

// tokensToWin maps player count to the number of round wins that ends the game.
func tokensToWin(players int) int {
	switch players {
	case 2:
		return 7
	case 3:
		return 5
	}
	return 4
}
