// internal/server/handlers.go
package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/courtship-games/courtship/internal/auth"
	"github.com/courtship-games/courtship/internal/database"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleRegister handles POST /auth/register. Creates an account and returns
// a session token.
func (s *Server) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Username == "" || creds.Password == "" {
		http.Error(w, "username and password required", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		s.log.WithError(err).Error("hash password")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	userID := uuid.New()
	if database.DB != nil {
		if err := database.CreateUser(r.Context(), userID, creds.Username, hash, false); err != nil {
			s.log.WithError(err).Warn("create user")
			http.Error(w, "username unavailable", http.StatusConflict)
			return
		}
	}

	token, err := auth.CreateToken(userID)
	if err != nil {
		s.log.WithError(err).Error("create token")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": userID.String(), "token": token})
}

// HandleLogin handles POST /auth/login. Verifies credentials and returns a
// session token.
func (s *Server) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Username == "" {
		http.Error(w, "username and password required", http.StatusBadRequest)
		return
	}
	if database.DB == nil {
		http.Error(w, "logins unavailable", http.StatusServiceUnavailable)
		return
	}

	userID, hash, err := database.GetUserByUsername(r.Context(), creds.Username)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	ok, err := auth.VerifyPassword(creds.Password, hash)
	if err != nil || !ok {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := auth.CreateToken(userID)
	if err != nil {
		s.log.WithError(err).Error("create token")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": userID.String(), "token": token})
}

// HandleGuest handles POST /auth/guest. Issues a token for an ephemeral
// account so players can join without registering.
func (s *Server) HandleGuest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := uuid.New()
	token, err := auth.CreateToken(userID)
	if err != nil {
		s.log.WithError(err).Error("create token")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": userID.String(), "token": token})
}
