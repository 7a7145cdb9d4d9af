// internal/database/database.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the process-wide connection pool. It stays nil when Postgres is not
// configured; persistence is then skipped.
var DB *pgxpool.Pool

// ConnectDB opens the pool using DATABASE_URL from the environment.
func ConnectDB(ctx context.Context) error {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping: %w", err)
	}
	DB = pool
	return nil
}

// EnsureSchema creates the tables the game service writes to.
func EnsureSchema(ctx context.Context) error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}
	_, err := DB.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			is_ephemeral BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS game_initial_states (
			game_id UUID PRIMARY KEY,
			snapshot JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS game_results (
			game_id UUID PRIMARY KEY,
			winner_id UUID,
			snapshot JSONB NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// UpsertInitialGameState saves the opening deal snapshot for replay/audit.
func UpsertInitialGameState(ctx context.Context, gameID uuid.UUID, snapshot interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal initial snapshot: %w", err)
	}
	_, err = DB.Exec(ctx, `
		INSERT INTO game_initial_states (game_id, snapshot)
		VALUES ($1, $2)
		ON CONFLICT (game_id) DO UPDATE SET snapshot = EXCLUDED.snapshot
	`, gameID, data)
	if err != nil {
		return fmt.Errorf("upsert initial state for %s: %w", gameID, err)
	}
	return nil
}

// StoreFinalGameStateInDB saves the terminal result of a finished game.
func StoreFinalGameStateInDB(ctx context.Context, gameID, winnerID uuid.UUID, snapshot interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal final snapshot: %w", err)
	}
	_, err = DB.Exec(ctx, `
		INSERT INTO game_results (game_id, winner_id, snapshot)
		VALUES ($1, $2, $3)
		ON CONFLICT (game_id) DO UPDATE SET winner_id = EXCLUDED.winner_id, snapshot = EXCLUDED.snapshot
	`, gameID, winnerID, data)
	if err != nil {
		return fmt.Errorf("store final state for %s: %w", gameID, err)
	}
	return nil
}

// CreateUser inserts a new account row.
func CreateUser(ctx context.Context, userID uuid.UUID, username, passwordHash string, ephemeral bool) error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}
	_, err := DB.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, is_ephemeral)
		VALUES ($1, $2, $3, $4)
	`, userID, username, passwordHash, ephemeral)
	if err != nil {
		return fmt.Errorf("create user %s: %w", username, err)
	}
	return nil
}

// GetUserByUsername loads an account row, returning id and password hash.
func GetUserByUsername(ctx context.Context, username string) (uuid.UUID, string, error) {
	if DB == nil {
		return uuid.Nil, "", fmt.Errorf("database not connected")
	}
	var id uuid.UUID
	var hash string
	err := DB.QueryRow(ctx, `
		SELECT id, password_hash FROM users WHERE username = $1
	`, username).Scan(&id, &hash)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("get user %s: %w", username, err)
	}
	return id, hash, nil
}
