// internal/game/game.go
package game

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/courtship-games/courtship/engine"
	"github.com/courtship-games/courtship/internal/cache"
	"github.com/courtship-games/courtship/internal/database"
	"github.com/courtship-games/courtship/internal/models"
)

// OnGameEndFunc defines the signature for a callback function executed when a game ends.
// It receives the lobby ID, the winner's ID (can be Nil), and the final token counts.
type OnGameEndFunc func(lobbyID uuid.UUID, winner uuid.UUID, tokens map[uuid.UUID]int)

// Game represents the state and logic for a single table. The engine owns the
// rules; Game owns players, connections, timers, and event fan-out.
type Game struct {
	ID      uuid.UUID // Unique identifier for this game instance.
	LobbyID uuid.UUID // ID of the lobby that created this game.

	Players []*models.Player // List of players at the table.

	// Engine integration. State is the authoritative rules state; engine
	// player ids are the players' UUID strings.
	Engine engine.LoveLetter
	State  *engine.GameState

	// Turn management.
	TurnID       int           // Increments each applied action, used to invalidate stale timers.
	TurnDuration time.Duration // Configurable duration for each turn timer; 0 disables it.
	turnTimer    *time.Timer
	actionIndex  int // Sequential index for logging actions via the historian queue.

	Started  bool
	GameOver bool

	lastSeen map[uuid.UUID]time.Time
	Mu       sync.Mutex // Mutex protecting concurrent access to game state.

	// Communication callbacks.
	BroadcastFn         func(ev GameEvent)                     // Sends an event to all connected players.
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent) // Sends an event to a single player.
	OnGameEnd           OnGameEndFunc                          // Callback executed when the game finishes.
}

// NewGame creates a new game instance with default settings. The engine is
// initialized in Start once the seating is final.
func NewGame() *Game {
	id, _ := uuid.NewRandom()
	return &Game{
		ID:           id,
		lastSeen:     make(map[uuid.UUID]time.Time),
		TurnDuration: 30 * time.Second,
	}
}

// AddPlayer adds a player to the game if not started, or refreshes their
// connection if they are already seated.
// Assumes lock is held by caller.
func (g *Game) AddPlayer(p *models.Player) {
	for i, pl := range g.Players {
		if pl.ID == p.ID {
			g.Players[i].Conn = p.Conn
			g.Players[i].Connected = true
			g.Players[i].User = p.User
			g.lastSeen[p.ID] = time.Now()
			log.Printf("Game %s: Player %s (%s) reconnected.", g.ID, p.ID, p.User.Username)
			return
		}
	}
	if g.Started {
		log.Printf("Game %s: Player %s (%s) cannot be added because game has already started.", g.ID, p.ID, p.User.Username)
		if p.Conn != nil {
			p.Conn.Close(websocket.StatusPolicyViolation, "Game already in progress.")
		}
		return
	}
	g.Players = append(g.Players, p)
	g.lastSeen[p.ID] = time.Now()
	log.Printf("Game %s: Player %s (%s) added.", g.ID, p.ID, p.User.Username)
	g.logAction(p.ID, "player_add", map[string]interface{}{"username": p.User.Username})
}

// Start deals the first round and begins the turn cycle.
// Assumes lock is held by caller.
func (g *Game) Start() error {
	if g.Started || g.GameOver {
		log.Printf("Game %s: Start called in invalid state (Started:%v, Over:%v).", g.ID, g.Started, g.GameOver)
		return errors.New("game already started or over")
	}

	infos := make([]engine.PlayerInfo, len(g.Players))
	for i, p := range g.Players {
		infos[i] = engine.PlayerInfo{ID: p.ID.String(), Name: p.User.Username}
	}
	state, err := g.Engine.Initialize(infos, engine.Config{
		GameID: g.ID.String(),
		Seed:   uint64(time.Now().UnixNano()),
	})
	if err != nil {
		log.Printf("Game %s: Engine initialization failed: %v", g.ID, err)
		return err
	}
	g.State = state
	g.Started = true
	log.Printf("Game %s: Started with %d players.", g.ID, len(g.Players))
	g.logAction(uuid.Nil, "game_start", map[string]interface{}{"players": len(g.Players)})

	g.persistInitialGameState()
	g.broadcastSyncStateToAll()
	g.scheduleNextTurnTimer()
	g.broadcastPlayerTurn()
	return nil
}

// toEngineAction converts a wire action into an engine action for the player.
func toEngineAction(playerID uuid.UUID, action models.GameAction) (engine.Action, error) {
	engineID := playerID.String()
	switch action.ActionType {
	case "action_draw":
		return engine.DrawAction(engineID), nil
	case "action_play":
		card := engine.ParseCard(action.Card)
		if card == engine.CardNone {
			return engine.Action{}, errors.New("unknown card " + action.Card)
		}
		guess := engine.CardNone
		if action.Guess != "" {
			guess = engine.ParseCard(action.Guess)
			if guess == engine.CardNone {
				return engine.Action{}, errors.New("unknown guess " + action.Guess)
			}
		}
		return engine.PlayAction(engineID, card, action.TargetID, guess), nil
	}
	return engine.Action{}, errors.New("unknown action type " + action.ActionType)
}

// HandlePlayerAction routes an incoming player action into the engine and
// fans out the resulting events.
// Assumes lock is held by the caller.
func (g *Game) HandlePlayerAction(playerID uuid.UUID, action models.GameAction) {
	if g.GameOver {
		log.Printf("Game %s: Action %s from %s ignored (game over).", g.ID, action.ActionType, playerID)
		return
	}
	if !g.Started {
		log.Printf("Game %s: Action %s from %s ignored (game not started).", g.ID, action.ActionType, playerID)
		return
	}
	player := g.getPlayerByID(playerID)
	if player == nil || !player.Connected {
		log.Printf("Game %s: Action %s from non-existent/disconnected player %s ignored.", g.ID, action.ActionType, playerID)
		return
	}
	g.lastSeen[playerID] = time.Now()

	a, err := toEngineAction(playerID, action)
	if err != nil {
		g.failAction(playerID, err.Error())
		return
	}
	g.applyAction(playerID, a)
}

// applyAction executes a validated-or-rejected engine action and advances the
// table state on success.
// Assumes lock is held by caller.
func (g *Game) applyAction(playerID uuid.UUID, a engine.Action) {
	next, events, err := g.Engine.ExecuteAction(g.State, a)
	if err != nil {
		var rv *engine.RuleViolation
		if errors.As(err, &rv) {
			log.Printf("Game %s: Action %s from %s rejected: %v", g.ID, a.Kind, playerID, rv)
			g.fireEventToPlayer(playerID, GameEvent{
				Type: EventPrivateActionFail,
				Payload: map[string]interface{}{
					"code":    rv.Code.String(),
					"message": rv.Reason,
				},
			})
			return
		}
		log.Printf("Error: Game %s: Action %s from %s failed: %v", g.ID, a.Kind, playerID, err)
		g.failAction(playerID, "internal error")
		return
	}

	g.State = next
	g.TurnID++
	g.logAction(playerID, "action_"+a.Kind.String(), map[string]interface{}{
		"card":   a.Card.String(),
		"target": a.TargetID,
		"round":  next.Round,
		"turn":   next.Turn,
	})

	g.relayEngineEvents(events)
	g.broadcastSyncStateToAll()

	if next.Finished {
		g.EndGame()
		return
	}
	g.scheduleNextTurnTimer()
	g.broadcastPlayerTurn()
}

// relayEngineEvents fans engine events out to their entitled recipients.
// Assumes lock is held by caller.
func (g *Game) relayEngineEvents(events []engine.Event) {
	for _, ev := range events {
		out := translateEvent(ev)
		if ev.Public {
			g.fireEvent(out)
			continue
		}
		for _, id := range ev.VisibleTo {
			recipient, err := uuid.Parse(id)
			if err != nil {
				log.Printf("Warning: Game %s: Event %s names non-UUID recipient %q.", g.ID, ev.Kind, id)
				continue
			}
			g.fireEventToPlayer(recipient, out)
		}
	}
}

// failAction sends a private rejection notice to a player.
// Assumes lock is held by caller.
func (g *Game) failAction(playerID uuid.UUID, reason string) {
	g.fireEventToPlayer(playerID, GameEvent{
		Type:    EventPrivateActionFail,
		Payload: map[string]interface{}{"message": reason},
	})
}

// scheduleNextTurnTimer arms the timeout for the current player's move.
// Assumes lock is held by caller.
func (g *Game) scheduleNextTurnTimer() {
	if g.turnTimer != nil {
		g.turnTimer.Stop()
		g.turnTimer = nil
	}
	if g.TurnDuration <= 0 || g.GameOver || !g.Started || g.State == nil || g.State.Finished {
		return
	}

	currentID, ok := g.currentPlayerUUID()
	if !ok {
		return
	}
	expectedTurnID := g.TurnID

	g.turnTimer = time.AfterFunc(g.TurnDuration, func() {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		if g.GameOver || !g.Started || g.TurnID != expectedTurnID {
			return
		}
		log.Printf("Game %s, Turn %d: Timer fired for player %s.", g.ID, g.TurnID, currentID)
		g.handleTimeout(currentID)
	})
}

// handleTimeout plays a forced legal action on behalf of a player whose turn
// timer expired.
// Assumes lock is held by caller.
func (g *Game) handleTimeout(playerID uuid.UUID) {
	g.logAction(playerID, "player_timeout", map[string]interface{}{"turn": g.TurnID})
	a, ok := g.autoAction(playerID.String())
	if !ok {
		log.Printf("Game %s: No auto action available for timed-out player %s.", g.ID, playerID)
		return
	}
	g.applyAction(playerID, a)
}

// autoAction picks the first legal move for the player: draw when drawing is
// due, otherwise the first playable card with the first legal target.
// Assumes lock is held by caller.
func (g *Game) autoAction(engineID string) (engine.Action, bool) {
	kinds := engine.AvailableActions(g.State, engineID)
	if len(kinds) == 0 {
		return engine.Action{}, false
	}
	if kinds[0] == engine.ActionDraw {
		return engine.DrawAction(engineID), true
	}

	view := g.Engine.FilterStateForPlayer(g.State, engineID)
	var hand []engine.Card
	for _, vp := range view.Players {
		if vp.ID == engineID {
			hand = vp.Hand
			break
		}
	}
	for _, card := range hand {
		targets := engine.LegalTargets(g.State, engineID, card)
		candidates := append(targets, "")
		for _, target := range candidates {
			guess := engine.CardNone
			if card == engine.Guard && target != "" {
				guess = engine.Priest
			}
			a := engine.PlayAction(engineID, card, target, guess)
			if g.Engine.ValidateAction(g.State, a) == nil {
				return a, true
			}
		}
	}
	return engine.Action{}, false
}

// broadcastPlayerTurn notifies all players whose move it is.
// Assumes lock is held by caller.
func (g *Game) broadcastPlayerTurn() {
	if g.GameOver || !g.Started || g.State == nil || g.State.Finished {
		return
	}
	currentID, ok := g.currentPlayerUUID()
	if !ok {
		return
	}
	g.fireEvent(GameEvent{
		Type: EventGamePlayerTurn,
		User: &EventUser{ID: currentID},
		Payload: map[string]interface{}{
			"round": g.State.Round,
			"turn":  g.State.Turn,
			"phase": g.State.Phase.String(),
		},
	})
}

// currentPlayerUUID resolves the engine's current player to a seat UUID.
// Assumes lock is held by caller.
func (g *Game) currentPlayerUUID() (uuid.UUID, bool) {
	if g.State == nil || len(g.State.Players) == 0 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(g.State.Players[g.State.Current].ID)
	if err != nil {
		log.Printf("Error: Game %s: Current player id %q is not a UUID.", g.ID, g.State.Players[g.State.Current].ID)
		return uuid.Nil, false
	}
	return id, true
}

// fireEvent broadcasts an event to all connected players via the BroadcastFn callback.
// Assumes lock is held by caller.
func (g *Game) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	} else {
		log.Printf("Warning: Game %s: BroadcastFn is nil, cannot broadcast event type %s.", g.ID, ev.Type)
	}
}

// fireEventToPlayer sends an event to a specific connected player.
// Assumes lock is held by caller.
func (g *Game) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if g.BroadcastToPlayerFn == nil {
		log.Printf("Warning: Game %s: BroadcastToPlayerFn is nil, cannot send private event type %s to player %s.", g.ID, ev.Type, playerID)
		return
	}
	target := g.getPlayerByID(playerID)
	if target != nil && target.Connected {
		g.BroadcastToPlayerFn(playerID, ev)
	}
}

// HandleDisconnect marks a player as disconnected. The rules state is
// untouched; their turns are played out by the timeout handler until they
// return.
// Assumes lock is held by caller.
func (g *Game) HandleDisconnect(playerID uuid.UUID) {
	log.Printf("Game %s: Handling disconnect for player %s.", g.ID, playerID)
	g.logAction(playerID, "player_disconnect", nil)

	for i := range g.Players {
		if g.Players[i].ID == playerID {
			if !g.Players[i].Connected {
				return
			}
			g.Players[i].Connected = false
			g.Players[i].Conn = nil
			break
		}
	}

	if g.Started && !g.GameOver && g.countConnectedPlayers() == 0 {
		log.Printf("Game %s: All players disconnected. Ending game.", g.ID)
		g.EndGame()
	}
}

// HandleReconnect marks a player as connected and resyncs them.
// Assumes lock is held by caller.
func (g *Game) HandleReconnect(playerID uuid.UUID, conn *websocket.Conn) {
	log.Printf("Game %s: Handling reconnect for player %s.", g.ID, playerID)

	for i := range g.Players {
		if g.Players[i].ID == playerID {
			g.Players[i].Connected = true
			g.Players[i].Conn = conn
			g.lastSeen[playerID] = time.Now()
			g.logAction(playerID, "player_reconnect", map[string]interface{}{"username": g.Players[i].User.Username})

			g.sendSyncState(playerID)
			if g.Started && !g.GameOver {
				if current, ok := g.currentPlayerUUID(); ok && current == playerID {
					g.scheduleNextTurnTimer()
				}
			}
			return
		}
	}

	log.Printf("Game %s: Reconnecting player %s not found in game.", g.ID, playerID)
	if conn != nil {
		conn.Close(websocket.StatusPolicyViolation, "You are not part of this game.")
	}
}

// sendSyncState sends the current filtered game state to a single player.
// Assumes lock is held by caller.
func (g *Game) sendSyncState(playerID uuid.UUID) {
	if g.State == nil {
		return
	}
	view := g.Engine.FilterStateForPlayer(g.State, playerID.String())
	g.fireEventToPlayer(playerID, GameEvent{
		Type:  EventPrivateSyncState,
		State: &view,
	})
}

// broadcastSyncStateToAll sends each connected player their own filtered state.
// Assumes lock is held by caller.
func (g *Game) broadcastSyncStateToAll() {
	for _, p := range g.Players {
		if p.Connected {
			g.sendSyncState(p.ID)
		}
	}
}

// countConnectedPlayers returns the number of players currently marked as connected.
// Assumes lock is held by caller.
func (g *Game) countConnectedPlayers() int {
	count := 0
	for _, p := range g.Players {
		if p.Connected {
			count++
		}
	}
	return count
}

// getPlayerByID finds a player struct by ID within the game's Players slice.
// Assumes lock is held by caller.
func (g *Game) getPlayerByID(playerID uuid.UUID) *models.Player {
	for _, p := range g.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// EndGame finalizes the game, persists results, broadcasts the outcome, and
// triggers the OnGameEnd callback.
// Assumes lock is held by caller.
func (g *Game) EndGame() {
	if g.GameOver {
		return
	}
	g.GameOver = true
	g.Started = false
	if g.turnTimer != nil {
		g.turnTimer.Stop()
		g.turnTimer = nil
	}

	winnerID := uuid.Nil
	tokens := make(map[uuid.UUID]int)
	if g.State != nil {
		for _, p := range g.State.Players {
			if id, err := uuid.Parse(p.ID); err == nil {
				tokens[id] = p.Tokens
			}
		}
		if g.State.WinnerID != "" {
			if id, err := uuid.Parse(g.State.WinnerID); err == nil {
				winnerID = id
			}
		}
	}

	g.logAction(uuid.Nil, string(EventGameEnd), map[string]interface{}{
		"winner": winnerID.String(),
		"tokens": tokens,
	})
	g.persistFinalGameState(winnerID, tokens)

	tokensPayload := make(map[string]int, len(tokens))
	for id, n := range tokens {
		tokensPayload[id.String()] = n
	}
	g.fireEvent(GameEvent{
		Type: EventGameEnd,
		Payload: map[string]interface{}{
			"winner": winnerID.String(),
			"tokens": tokensPayload,
		},
	})

	if g.OnGameEnd != nil {
		g.OnGameEnd(g.LobbyID, winnerID, tokens)
	}
	log.Printf("Game %s: Ended. Winner: %s. Tokens: %v", g.ID, winnerID, tokens)
}

// persistInitialGameState saves the opening deal to the database for replay/audit.
// Assumes lock is held by caller.
func (g *Game) persistInitialGameState() {
	type seatState struct {
		Name string   `json:"name"`
		Hand []string `json:"hand"`
	}
	snap := map[string]interface{}{
		"deckSize": len(g.State.Deck),
		"faceUp":   cardNames(g.State.FaceUp),
		"players":  map[string]seatState{},
	}
	seats := snap["players"].(map[string]seatState)
	for _, p := range g.State.Players {
		seats[p.ID] = seatState{Name: p.Name, Hand: cardNames(p.Hand)}
	}

	if database.DB != nil {
		gameID := g.ID
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.UpsertInitialGameState(ctx, gameID, snap); err != nil {
				log.Printf("Error: Game %s: Failed persisting initial state: %v", gameID, err)
			}
		}()
	}
}

// persistFinalGameState saves the terminal result to the database.
// Assumes lock is held by caller.
func (g *Game) persistFinalGameState(winnerID uuid.UUID, tokens map[uuid.UUID]int) {
	snapshot := map[string]interface{}{
		"winner": winnerID.String(),
		"tokens": map[string]int{},
	}
	counts := snapshot["tokens"].(map[string]int)
	for id, n := range tokens {
		counts[id.String()] = n
	}
	if g.State != nil {
		snapshot["rounds"] = g.State.Round
	}

	if database.DB != nil {
		gameID := g.ID
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.StoreFinalGameStateInDB(ctx, gameID, winnerID, snapshot); err != nil {
				log.Printf("Error: Game %s: Failed persisting final state: %v", gameID, err)
			}
		}()
	}
}

func cardNames(cards []engine.Card) []string {
	names := make([]string, len(cards))
	for i, c := range cards {
		names[i] = c.String()
	}
	return names
}

// logAction sends game action details to the historian service via the Redis queue.
// Increments the internal action index for ordering.
// Assumes lock is held by caller.
func (g *Game) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActorUserID:   actorID, // Can be Nil for game events.
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}

	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cache.Rdb == nil {
			return
		}
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			log.Printf("Error: Game %s: Failed publishing action %d ('%s') to Redis: %v", rec.GameID, rec.ActionIndex, rec.ActionType, err)
		}
	}(record)
}
