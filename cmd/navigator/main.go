// Command navigator turns GPS fix streams into smoothed navigation readings.
//
// Usage:
//
//	navigator          consume fixes from the configured source and publish readings
//	navigator relay    forward fixes from a serial or MQTT source to NATS unprocessed
//	navigator watch    log the readings published on NATS
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fishivo/geocore/internal/adapters/gpsfeed"
	natsadapter "github.com/fishivo/geocore/internal/adapters/nats"
	"github.com/fishivo/geocore/internal/adapters/postgres"
	"github.com/fishivo/geocore/internal/core/domain"
	"github.com/fishivo/geocore/internal/core/ports"
	"github.com/fishivo/geocore/internal/core/usecases"
	"github.com/fishivo/geocore/internal/pkg/config"
	"github.com/fishivo/geocore/internal/pkg/logging"
	"github.com/fishivo/geocore/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("geocore-navigator")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	if len(os.Args) > 1 && os.Args[1] == "watch" {
		if err := watch(ctx, cfg); err != nil {
			log.Fatalf("watch: %v", err)
		}
		return
	}

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	relay := len(os.Args) > 1 && os.Args[1] == "relay"
	source, closeSource, err := newSource(cfg, relay)
	if err != nil {
		log.Fatalf("fix source: %v", err)
	}
	defer closeSource()

	var handler ports.FixHandler
	if relay {
		slog.Info("navigator relaying fixes to NATS", "source", cfg.Navigation.Source)
		handler = pub.PublishFix
	} else {
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()

		nav := usecases.NewNavigationService(postgres.NewTrackRepo(db), pub, usecases.NavigationConfig{
			Window:   cfg.Navigation.Window,
			ResetGap: cfg.Navigation.ResetGap(),
			Source:   cfg.Navigation.Source,
		})
		go pruneSessions(ctx, nav)
		handler = ingestHandler(nav)
		slog.Info("navigator started", "source", cfg.Navigation.Source)
	}

	if err := source.Run(ctx, handler); err != nil {
		log.Fatalf("fix source: %v", err)
	}
	slog.Info("navigator stopped")
}

// newSource builds the configured fix source. Relaying from NATS back
// into NATS is refused.
func newSource(cfg *config.Config, relay bool) (ports.FixSource, func(), error) {
	noop := func() {}
	switch cfg.Navigation.Source {
	case "serial":
		return &gpsfeed.SerialSource{
			PortName: cfg.GPS.SerialPort,
			BaudRate: cfg.GPS.BaudRate,
			VesselID: cfg.GPS.VesselID,
		}, noop, nil
	case "mqtt":
		return &gpsfeed.MQTTSource{
			Broker:   cfg.GPS.MQTTBroker,
			Topic:    cfg.GPS.MQTTTopic,
			ClientID: cfg.GPS.MQTTClientID,
		}, noop, nil
	case "nats":
		if relay {
			return nil, noop, errors.New("relay needs a serial or mqtt source")
		}
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			return nil, noop, err
		}
		return sub, sub.Close, nil
	default:
		return nil, noop, errors.New("unknown source " + cfg.Navigation.Source)
	}
}

// ingestHandler feeds fixes to nav. Invalid fixes are dropped rather than
// redelivered.
func ingestHandler(nav *usecases.NavigationService) ports.FixHandler {
	return func(ctx context.Context, vesselID string, fix domain.GPSPosition, compassHeading *float64) error {
		reading, err := nav.Ingest(ctx, vesselID, fix, compassHeading)
		switch {
		case errors.Is(err, domain.ErrInvalidPosition), errors.Is(err, domain.ErrUnknownVessel):
			slog.Warn("drop fix", "vessel", vesselID, "error", err)
			return nil
		case err != nil:
			return err
		}
		if reading != nil {
			slog.Debug("navigation reading",
				"vessel", vesselID, "sog", reading.Smoothed.SOG, "heading", reading.Smoothed.Heading, "direction", reading.Direction)
		}
		return nil
	}
}

// watch logs every navigation reading until ctx is done.
func watch(ctx context.Context, cfg *config.Config) error {
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		return err
	}
	defer sub.Close()

	var readings ports.NavigationSubscriber = sub
	err = readings.SubscribeNavigation(ctx, func(_ context.Context, r *domain.NavigationReading) error {
		slog.Info("reading",
			"vessel", r.VesselID,
			"session", r.SessionID,
			"sog", r.Smoothed.SOG,
			"cog", r.Smoothed.COG,
			"heading", r.Smoothed.Heading,
			"direction", r.Direction)
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("watching navigation readings", "url", cfg.NATS.URL)
	<-ctx.Done()
	return nil
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
