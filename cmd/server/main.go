// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/courtship-games/courtship/internal/cache"
	"github.com/courtship-games/courtship/internal/database"
	"github.com/courtship-games/courtship/internal/server"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if os.Getenv("DATABASE_URL") != "" {
		if err := database.ConnectDB(ctx); err != nil {
			logger.WithError(err).Fatal("connect database")
		}
		if err := database.EnsureSchema(ctx); err != nil {
			logger.WithError(err).Fatal("ensure schema")
		}
		logger.Info("database connected")
	} else {
		logger.Warn("DATABASE_URL not set, persistence disabled")
	}

	if os.Getenv("REDIS_ADDR") != "" {
		if err := cache.InitRedis(ctx); err != nil {
			logger.WithError(err).Fatal("connect redis")
		}
		logger.Info("redis connected")
	} else {
		logger.Warn("REDIS_ADDR not set, action history disabled")
	}

	srv := server.New(logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/register", srv.HandleRegister)
	mux.HandleFunc("/auth/login", srv.HandleLogin)
	mux.HandleFunc("/auth/guest", srv.HandleGuest)
	mux.HandleFunc("/game/create", srv.HandleCreateGame)
	mux.HandleFunc("/game/ws/", srv.HandleGameWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	addr := ":" + envOr("PORT", "8080")
	logger.WithField("addr", addr).Info("server listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
