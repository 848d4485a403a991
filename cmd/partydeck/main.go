package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/kagehara/partydeck/internal/cache"
	"github.com/kagehara/partydeck/internal/config"
	"github.com/kagehara/partydeck/internal/database"
	"github.com/kagehara/partydeck/internal/game"
	"github.com/kagehara/partydeck/internal/server"
)

func main() {
	cfg := config.Load()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Connect(ctx, cfg.DatabaseURL); err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	defer database.DB.Close()
	if err := database.Migrate(ctx); err != nil {
		logrus.WithError(err).Fatal("migration failed")
	}

	if err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		logrus.WithError(err).Warn("redis unavailable, sessions will poll")
	}

	srv := server.New(game.NewManager())
	if err := srv.Run(ctx, cfg.ListenAddr); err != nil {
		logrus.WithError(err).Fatal("server failed")
	}
}
