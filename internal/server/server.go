// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/courtship-games/courtship/internal/auth"
	"github.com/courtship-games/courtship/internal/game"
	"github.com/courtship-games/courtship/internal/models"
)

// Server owns the set of live games and the WebSocket transport into them.
type Server struct {
	log *logrus.Logger

	mu    sync.Mutex
	games map[uuid.UUID]*game.Game
}

// New creates an empty server.
func New(logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	return &Server{
		log:   logger,
		games: make(map[uuid.UUID]*game.Game),
	}
}

// CreateGame registers a new game and wires its broadcast callbacks to the
// players' WebSocket connections.
func (s *Server) CreateGame() *game.Game {
	g := game.NewGame()

	g.BroadcastFn = func(ev game.GameEvent) {
		for _, p := range g.Players {
			if p.Connected && p.Conn != nil {
				s.writeEvent(p.Conn, ev)
			}
		}
	}
	g.BroadcastToPlayerFn = func(playerID uuid.UUID, ev game.GameEvent) {
		for _, p := range g.Players {
			if p.ID == playerID && p.Connected && p.Conn != nil {
				s.writeEvent(p.Conn, ev)
				return
			}
		}
	}
	g.OnGameEnd = func(lobbyID, winner uuid.UUID, tokens map[uuid.UUID]int) {
		s.log.WithFields(logrus.Fields{
			"game":   g.ID,
			"winner": winner,
		}).Info("game finished")
	}

	s.mu.Lock()
	s.games[g.ID] = g
	s.mu.Unlock()

	s.log.WithField("game", g.ID).Info("game created")
	return g
}

// GetGame looks up a live game by id.
func (s *Server) GetGame(id uuid.UUID) (*game.Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	return g, ok
}

func (s *Server) writeEvent(conn *websocket.Conn, ev game.GameEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.log.WithError(err).Error("marshal game event")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		s.log.WithError(err).Debug("write game event")
	}
}

// HandleCreateGame handles POST /game/create. Returns the new game's id.
func (s *Server) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, err := s.authenticate(r); err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	g := s.CreateGame()
	writeJSON(w, http.StatusOK, map[string]string{"gameId": g.ID.String()})
}

// HandleGameWS handles GET /game/ws/{id}. The client authenticates with a
// token query parameter and then exchanges JSON game actions and events.
func (s *Server) HandleGameWS(w http.ResponseWriter, r *http.Request) {
	userID, err := s.authenticate(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/game/ws/")
	gameID, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "bad game id", http.StatusBadRequest)
		return
	}
	g, ok := s.GetGame(gameID)
	if !ok {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket accept failed")
		return
	}

	username := r.URL.Query().Get("name")
	if username == "" {
		username = "player-" + userID.String()[:8]
	}
	player := &models.Player{
		ID:        userID,
		User:      models.User{ID: userID, Username: username},
		Conn:      conn,
		Connected: true,
	}

	g.Mu.Lock()
	if g.Started {
		g.HandleReconnect(userID, conn)
	} else {
		g.AddPlayer(player)
	}
	g.Mu.Unlock()

	s.readLoop(r.Context(), conn, g, userID)
}

// readLoop pumps client messages into the game until the connection drops.
func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, g *game.Game, userID uuid.UUID) {
	defer func() {
		conn.Close(websocket.StatusNormalClosure, "")
		g.Mu.Lock()
		g.HandleDisconnect(userID)
		g.Mu.Unlock()
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			s.log.WithFields(logrus.Fields{"game": g.ID, "user": userID}).WithError(err).Debug("read loop ended")
			return
		}

		var action models.GameAction
		if err := json.Unmarshal(data, &action); err != nil {
			s.log.WithField("user", userID).WithError(err).Warn("malformed game action")
			continue
		}

		g.Mu.Lock()
		if action.ActionType == "action_start" {
			if err := g.Start(); err != nil {
				s.log.WithField("game", g.ID).WithError(err).Warn("start rejected")
			}
		} else {
			g.HandlePlayerAction(userID, action)
		}
		g.Mu.Unlock()
	}
}

// authenticate validates the token query parameter and returns the user id.
func (s *Server) authenticate(r *http.Request) (uuid.UUID, error) {
	return auth.ValidateToken(r.URL.Query().Get("token"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("write json response")
	}
}
