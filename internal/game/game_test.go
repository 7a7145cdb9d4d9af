// internal/game/game_test.go
package game

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtship-games/courtship/engine"
	"github.com/courtship-games/courtship/internal/models"
)

// mockBroadcaster captures game events for testing assertions.
type mockBroadcaster struct {
	mu           sync.Mutex
	allEvents    []GameEvent
	playerEvents map[uuid.UUID][]GameEvent
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{
		playerEvents: make(map[uuid.UUID][]GameEvent),
	}
}

func (mb *mockBroadcaster) broadcastFn(ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = append(mb.allEvents, ev)
}

func (mb *mockBroadcaster) broadcastToPlayerFn(playerID uuid.UUID, ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.playerEvents[playerID] = append(mb.playerEvents[playerID], ev)
}

func (mb *mockBroadcaster) findEventByType(eventType GameEventType) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for i := len(mb.allEvents) - 1; i >= 0; i-- {
		if mb.allEvents[i].Type == eventType {
			return &mb.allEvents[i]
		}
	}
	return nil
}

func (mb *mockBroadcaster) findPlayerEventByType(playerID uuid.UUID, eventType GameEventType) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	events := mb.playerEvents[playerID]
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == eventType {
			return &events[i]
		}
	}
	return nil
}

func (mb *mockBroadcaster) getLastPlayerEvent(playerID uuid.UUID) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	events := mb.playerEvents[playerID]
	if len(events) == 0 {
		return nil
	}
	return &events[len(events)-1]
}

// setupTestGame initializes a started game with mock players and broadcasters.
// Turn timers are disabled so tests control the action flow.
func setupTestGame(t *testing.T, numPlayers int) (*Game, []*models.Player, *mockBroadcaster) {
	t.Helper()

	g := NewGame()
	g.TurnDuration = 0
	mb := newMockBroadcaster()
	g.BroadcastFn = mb.broadcastFn
	g.BroadcastToPlayerFn = mb.broadcastToPlayerFn

	players := make([]*models.Player, numPlayers)
	for i := 0; i < numPlayers; i++ {
		player := &models.Player{
			ID:        uuid.New(),
			Connected: true,
			User:      models.User{Username: "Player" + string(rune('A'+i))},
		}
		player.User.ID = player.ID
		players[i] = player
		g.AddPlayer(player)
	}

	require.NoError(t, g.Start())
	require.True(t, g.Started, "game should be marked as started")
	require.NotNil(t, g.State, "engine state should exist after start")
	return g, players, mb
}

// currentUUID returns the player whose move it is.
func currentUUID(t *testing.T, g *Game) uuid.UUID {
	t.Helper()
	id, ok := g.currentPlayerUUID()
	require.True(t, ok, "current player must resolve to a UUID")
	return id
}

// wireAction converts an engine action into its wire form.
func wireAction(a engine.Action) models.GameAction {
	if a.Kind == engine.ActionDraw {
		return models.GameAction{ActionType: "action_draw"}
	}
	out := models.GameAction{
		ActionType: "action_play",
		Card:       a.Card.String(),
		TargetID:   a.TargetID,
	}
	if a.Guess != engine.CardNone {
		out.Guess = a.Guess.String()
	}
	return out
}

func TestStartDealsAndSyncs(t *testing.T) {
	g, players, mb := setupTestGame(t, 3)

	for _, p := range players {
		sync := mb.findPlayerEventByType(p.ID, EventPrivateSyncState)
		require.NotNil(t, sync, "player %s should receive a sync state", p.ID)
		require.NotNil(t, sync.State)
		assert.Equal(t, p.ID.String(), sync.State.PlayerID)

		for _, vp := range sync.State.Players {
			if vp.ID == p.ID.String() {
				assert.Len(t, vp.Hand, 1, "own hand visible after the deal")
			} else {
				assert.Empty(t, vp.Hand, "other hands must be hidden")
			}
		}
	}

	turn := mb.findEventByType(EventGamePlayerTurn)
	require.NotNil(t, turn, "turn announcement expected after start")
	assert.Equal(t, currentUUID(t, g), turn.User.ID)
}

func TestStartRejectsShortTable(t *testing.T) {
	g := NewGame()
	g.TurnDuration = 0
	mb := newMockBroadcaster()
	g.BroadcastFn = mb.broadcastFn
	g.BroadcastToPlayerFn = mb.broadcastToPlayerFn

	p := &models.Player{ID: uuid.New(), Connected: true}
	g.AddPlayer(p)

	err := g.Start()
	require.Error(t, err)
	assert.False(t, g.Started)
}

func TestDrawThenPlayFlow(t *testing.T) {
	g, _, mb := setupTestGame(t, 2)
	actor := currentUUID(t, g)

	g.HandlePlayerAction(actor, models.GameAction{ActionType: "action_draw"})

	drawn := mb.findPlayerEventByType(actor, EventPrivateDraw)
	require.NotNil(t, drawn, "drawing player should see the drawn card")
	assert.NotEmpty(t, drawn.Card)
	assert.Nil(t, mb.findEventByType(EventPrivateDraw), "drawn card must not be broadcast")

	play, ok := g.autoAction(actor.String())
	require.True(t, ok, "a legal play must exist after drawing")
	g.HandlePlayerAction(actor, wireAction(play))

	played := mb.findEventByType(EventPlayerPlay)
	require.NotNil(t, played, "plays are public")
	assert.Equal(t, actor, played.User.ID)
	assert.Equal(t, play.Card.String(), played.Card)
}

func TestWrongTurnRejected(t *testing.T) {
	g, players, mb := setupTestGame(t, 3)
	actor := currentUUID(t, g)

	var bystander uuid.UUID
	for _, p := range players {
		if p.ID != actor {
			bystander = p.ID
			break
		}
	}

	g.HandlePlayerAction(bystander, models.GameAction{ActionType: "action_draw"})

	fail := mb.findPlayerEventByType(bystander, EventPrivateActionFail)
	require.NotNil(t, fail, "out-of-turn actions fail privately")
	assert.Equal(t, "wrong_turn", fail.Payload["code"])
	assert.Nil(t, mb.findEventByType(EventPrivateActionFail), "failures are never broadcast")
}

func TestUnknownActionRejected(t *testing.T) {
	g, _, mb := setupTestGame(t, 2)
	actor := currentUUID(t, g)

	g.HandlePlayerAction(actor, models.GameAction{ActionType: "action_play", Card: "dragon"})

	fail := mb.findPlayerEventByType(actor, EventPrivateActionFail)
	require.NotNil(t, fail)
	assert.Contains(t, fail.Payload["message"], "unknown card")
}

func TestTimeoutPlaysForStalledPlayer(t *testing.T) {
	g, _, mb := setupTestGame(t, 2)
	g.Mu.Lock()
	g.TurnDuration = 50 * time.Millisecond
	g.scheduleNextTurnTimer()
	actor := currentUUID(t, g)
	g.Mu.Unlock()

	require.Eventually(t, func() bool {
		return mb.findPlayerEventByType(actor, EventPrivateDraw) != nil
	}, 2*time.Second, 10*time.Millisecond, "timer should draw for the stalled player")
}

func TestDisconnectReconnectResyncs(t *testing.T) {
	g, players, mb := setupTestGame(t, 3)
	victim := players[1].ID

	g.HandleDisconnect(victim)
	assert.False(t, players[1].Connected)
	assert.False(t, g.GameOver, "one disconnect must not end the game")

	g.HandleReconnect(victim, nil)
	assert.True(t, players[1].Connected)

	last := mb.getLastPlayerEvent(victim)
	require.NotNil(t, last)
	assert.Equal(t, EventPrivateSyncState, last.Type)
}

func TestLateJoinRejected(t *testing.T) {
	g, _, _ := setupTestGame(t, 2)

	stranger := &models.Player{ID: uuid.New(), Connected: true}
	g.AddPlayer(stranger)

	assert.Len(t, g.Players, 2, "no seats are added after start")
}

func TestGameRunsToCompletion(t *testing.T) {
	g, _, mb := setupTestGame(t, 3)

	var endWinner uuid.UUID
	ended := false
	g.OnGameEnd = func(lobbyID, winner uuid.UUID, tokens map[uuid.UUID]int) {
		ended = true
		endWinner = winner
		assert.Len(t, tokens, 3)
	}

	for steps := 0; !g.GameOver; steps++ {
		require.Less(t, steps, 5000, "game did not terminate")
		actor := currentUUID(t, g)
		a, ok := g.autoAction(actor.String())
		require.True(t, ok, "current player must always have a legal action")
		g.applyAction(actor, a)
	}

	require.True(t, ended, "OnGameEnd callback expected")
	assert.NotEqual(t, uuid.Nil, endWinner)

	end := mb.findEventByType(EventGameEnd)
	require.NotNil(t, end, "game end is broadcast")
	assert.Equal(t, endWinner.String(), end.Payload["winner"])

	won := mb.findEventByType(EventGameWon)
	require.NotNil(t, won, "engine game_won event is relayed")
	assert.Equal(t, endWinner, won.User.ID)
}
