package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/fishivo/geocore/internal/adapters/fixtures"
	"github.com/fishivo/geocore/internal/adapters/postgres"
	"github.com/fishivo/geocore/internal/adapters/valkey"
	"github.com/fishivo/geocore/internal/core/ports"
	"github.com/fishivo/geocore/internal/core/usecases"
	"github.com/fishivo/geocore/internal/pkg/config"
	"github.com/fishivo/geocore/internal/pkg/logging"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: seed <spots.yaml>")
	}

	cfg, err := config.Load("geocore-seed")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	spots, err := fixtures.LoadSpots(os.Args[1])
	if err != nil {
		log.Fatalf("load: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Cached spot lookups are dropped when valkey is reachable.
	var cacheSvc ports.CacheService
	if cache, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable, cached spots will expire on their own", "error", err)
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	markers := usecases.NewMarkerService(postgres.NewSpotRepo(db), cacheSvc, usecases.MarkerConfig{})
	if err := markers.SaveSpots(ctx, spots); err != nil {
		log.Fatalf("seed: %v", err)
	}
	slog.Info("spots seeded", "count", len(spots), "file", os.Args[1])
}
