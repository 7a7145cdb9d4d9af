// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the process-wide Redis client. It stays nil when Redis is not
// configured; callers must check before publishing.
var Rdb *redis.Client

// InitRedis connects the process-wide client using REDIS_ADDR and
// REDIS_PASSWORD from the environment.
func InitRedis(ctx context.Context) error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", addr, err)
	}
	Rdb = client
	return nil
}

// GameActionRecord is one entry in a game's append-only action history,
// consumed by the historian worker.
type GameActionRecord struct {
	GameID        uuid.UUID              `json:"gameId"`
	ActionIndex   int                    `json:"actionIndex"`
	ActorUserID   uuid.UUID              `json:"actorUserId"` // Nil for game-level events.
	ActionType    string                 `json:"actionType"`
	ActionPayload map[string]interface{} `json:"actionPayload"`
	Timestamp     int64                  `json:"timestamp"` // Unix milliseconds.
}

func actionListKey(gameID uuid.UUID) string {
	return "game_actions:" + gameID.String()
}

// PublishGameAction appends the record to the game's action list.
func PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	if Rdb == nil {
		return fmt.Errorf("redis client not initialized")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	if err := Rdb.RPush(ctx, actionListKey(rec.GameID), data).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", actionListKey(rec.GameID), err)
	}
	return nil
}

// GameActionHistory returns the recorded actions for a game in publish order.
func GameActionHistory(ctx context.Context, gameID uuid.UUID) ([]GameActionRecord, error) {
	if Rdb == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}
	raw, err := Rdb.LRange(ctx, actionListKey(gameID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", actionListKey(gameID), err)
	}
	records := make([]GameActionRecord, 0, len(raw))
	for _, item := range raw {
		var rec GameActionRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal action record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
