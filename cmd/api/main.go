package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/fishivo/geocore/internal/adapters/http"
	natsadapter "github.com/fishivo/geocore/internal/adapters/nats"
	"github.com/fishivo/geocore/internal/adapters/postgres"
	"github.com/fishivo/geocore/internal/adapters/valkey"
	"github.com/fishivo/geocore/internal/core/ports"
	"github.com/fishivo/geocore/internal/core/usecases"
	"github.com/fishivo/geocore/internal/pkg/clustering"
	"github.com/fishivo/geocore/internal/pkg/config"
	"github.com/fishivo/geocore/internal/pkg/logging"
	"github.com/fishivo/geocore/internal/pkg/metrics"
	"github.com/fishivo/geocore/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("geocore-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go reportPoolStats(ctx, db)

	// Cache (optional)
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// NATS (optional): publishes readings and feeds the WebSocket relay
	var publisher ports.NavigationPublisher
	var natsConn *nats.Conn
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
		natsConn = pub.Conn()
	}

	markers := usecases.NewMarkerService(postgres.NewSpotRepo(db), cacheSvc, markerConfig(cfg))
	nav := usecases.NewNavigationService(postgres.NewTrackRepo(db), publisher, usecases.NavigationConfig{
		Window:   cfg.Navigation.Window,
		ResetGap: cfg.Navigation.ResetGap(),
		Source:   "http",
	})
	go pruneSessions(ctx, nav)

	deps := &http.Dependencies{
		Markers:    markers,
		Navigation: nav,
		NATS:       natsConn,
		DB:         db,
		Cache:      cache,
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "geocore API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, If-None-Match",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

func markerConfig(cfg *config.Config) usecases.MarkerConfig {
	return usecases.MarkerConfig{
		Padding:              cfg.Clustering.Padding,
		CacheTTL:             cfg.Clustering.CacheTTL,
		MaxSpots:             cfg.Clustering.MaxSpots,
		DefaultTarget:        clustering.ParsePerformanceTarget(cfg.Clustering.PerformanceTarget),
		MinZoomForIndividual: cfg.Clustering.MinZoomForIndividual,
		Radius: clustering.RadiusTiers{
			Low:    cfg.Clustering.RadiusLow,
			Medium: cfg.Clustering.RadiusMedium,
			High:   cfg.Clustering.RadiusHigh,
		},
	}
}

// reportPoolStats refreshes the connection pool gauges until ctx is done.
func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		case <-ctx.Done():
			return
		}
	}
}

// pruneSessions drops idle navigation sessions until ctx is done.
func pruneSessions(ctx context.Context, nav *usecases.NavigationService) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := nav.PruneIdle(); n > 0 {
				slog.Debug("idle navigation sessions dropped", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
