// Command warmer runs the Temporal worker that precomputes marker caches.
//
// Usage:
//
//	warmer                                         run the worker
//	warmer start <ne_lat> <ne_lng> <sw_lat> <sw_lng> [target]
//	                                               start a warmup and wait for it
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/fishivo/geocore/internal/adapters/postgres"
	"github.com/fishivo/geocore/internal/adapters/valkey"
	"github.com/fishivo/geocore/internal/core/domain"
	"github.com/fishivo/geocore/internal/core/usecases"
	"github.com/fishivo/geocore/internal/pkg/clustering"
	"github.com/fishivo/geocore/internal/pkg/config"
	"github.com/fishivo/geocore/internal/pkg/logging"
	"github.com/fishivo/geocore/internal/pkg/telemetry"
	"github.com/fishivo/geocore/internal/workflows"
)

func main() {
	cfg, err := config.Load("geocore-warmer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	if len(os.Args) > 1 && os.Args[1] == "start" {
		startWarmup(c, cfg.Temporal.TaskQueue, os.Args[2:])
		return
	}

	ctx := context.Background()
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Warming without a cache only exercises the database.
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	markers := usecases.NewMarkerService(postgres.NewSpotRepo(db), cache, usecases.MarkerConfig{
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
	})

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.MarkerWarmupWorkflow)
	w.RegisterActivity(&workflows.WarmupActivities{Markers: markers})

	slog.Info("warmer worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

func startWarmup(c client.Client, taskQueue string, args []string) {
	if len(args) < 4 {
		log.Fatal("usage: warmer start <ne_lat> <ne_lng> <sw_lat> <sw_lng> [target]")
	}
	vals := make([]float64, 4)
	for i := range vals {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			log.Fatalf("argument %d: %v", i+1, err)
		}
		vals[i] = v
	}
	input := workflows.WarmupInput{
		Bounds: domain.MapBounds{
			NE: domain.Coordinate{Latitude: vals[0], Longitude: vals[1]},
			SW: domain.Coordinate{Latitude: vals[2], Longitude: vals[3]},
		},
	}
	if len(args) > 4 {
		input.Target = args[4]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        fmt.Sprintf("marker-warmup-%d", time.Now().UnixNano()),
		TaskQueue: taskQueue,
	}, workflows.MarkerWarmupWorkflow, input)
	if err != nil {
		log.Fatalf("start workflow: %v", err)
	}
	slog.Info("warmup started", "workflow_id", run.GetID(), "run_id", run.GetRunID())

	var res workflows.WarmupResult
	if err := run.Get(ctx, &res); err != nil {
		log.Fatalf("warmup: %v", err)
	}
	for _, z := range res.Zooms {
		fmt.Printf("zoom %-5g clusters %-6d individual %-6d items %d\n", z.Zoom, z.Clusters, z.Individual, z.TotalItems)
	}
}
