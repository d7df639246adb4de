package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fishivo/geocore/internal/core/domain"
	"github.com/fishivo/geocore/internal/core/ports"
	"github.com/fishivo/geocore/internal/pkg/metrics"
	"github.com/fishivo/geocore/internal/pkg/navigation"
	"github.com/fishivo/geocore/internal/pkg/telemetry"
)

// defaultIdleTimeout applies when neither IdleTimeout nor ResetGap is set.
const defaultIdleTimeout = 30 * time.Minute

// NavigationConfig tunes NavigationService.
type NavigationConfig struct {
	Window   int           // smoothing window; <= 0 uses navigation.DefaultWindow
	ResetGap time.Duration // silence that restarts a vessel's stream; 0 disables
	Source   string        // metrics label for where fixes come from

	// IdleTimeout drops sessions that saw no fix for this long. Zero
	// uses ResetGap, or 30 minutes when ResetGap is zero too.
	IdleTimeout time.Duration
	// Now is the wall clock used for idle tracking; nil uses time.Now.
	Now func() time.Time
}

// NavigationService turns per-vessel fix streams into smoothed readings.
type NavigationService struct {
	tracks    ports.TrackRepository
	publisher ports.NavigationPublisher
	cfg       NavigationConfig
	tracer    trace.Tracer

	mu        sync.Mutex
	sessions  map[string]*vesselSession
	lastPrune time.Time
}

type vesselSession struct {
	sess *navigation.Session
	seen time.Time
}

// NewNavigationService creates a new NavigationService. tracks and
// publisher may be nil.
func NewNavigationService(tracks ports.TrackRepository, publisher ports.NavigationPublisher, cfg NavigationConfig) *NavigationService {
	if cfg.Source == "" {
		cfg.Source = "unknown"
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = cfg.ResetGap
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &NavigationService{
		tracks:    tracks,
		publisher: publisher,
		cfg:       cfg,
		tracer:    telemetry.Tracer(),
		sessions:  make(map[string]*vesselSession),
		lastPrune: cfg.Now(),
	}
}

// Ingest feeds one fix for vesselID. It returns a nil reading, without
// error, for the fix that opens a stream.
func (s *NavigationService) Ingest(ctx context.Context, vesselID string, fix domain.GPSPosition, compassHeading *float64) (*domain.NavigationReading, error) {
	if vesselID == "" {
		return nil, fmt.Errorf("%w: empty vessel id", domain.ErrUnknownVessel)
	}
	if !navigation.IsValidPosition(fix) {
		metrics.FixesRejected.WithLabelValues(s.cfg.Source).Inc()
		return nil, fmt.Errorf("%w: %v, %v", domain.ErrInvalidPosition, fix.Latitude, fix.Longitude)
	}

	ctx, span := s.tracer.Start(ctx, telemetry.SpanNavigationFix)
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.AttrVesselID, vesselID))

	sess := s.session(ctx, vesselID)

	if s.tracks != nil {
		if err := s.tracks.Insert(ctx, vesselID, fix); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("insert fix: %w", err)
		}
	}
	metrics.FixesIngested.WithLabelValues(s.cfg.Source).Inc()

	update, ok := sess.Advance(fix, compassHeading, s.cfg.ResetGap)
	span.SetAttributes(attribute.String(telemetry.AttrNavigationSess, update.SessionID))
	if update.Restarted {
		metrics.SessionResets.Inc()
		slog.Info("navigation stream restarted", "vessel", vesselID, "session", update.SessionID)
	}
	if !ok {
		return nil, nil
	}

	reading := &domain.NavigationReading{
		VesselID:  vesselID,
		SessionID: update.SessionID,
		Time:      fix.Time(),
		Position:  domain.Coordinate{Latitude: fix.Latitude, Longitude: fix.Longitude},
		Raw:       update.Raw,
		Smoothed:  update.Smoothed,
		Direction: navigation.CompassDirection(update.Smoothed.Heading),
		Cardinal:  navigation.CardinalDirection(update.Smoothed.Heading),
	}

	if s.publisher != nil {
		if err := s.publisher.PublishNavigation(ctx, reading); err != nil {
			slog.Warn("publish navigation reading", "vessel", vesselID, "error", err)
		}
	}

	return reading, nil
}

// session returns the vessel's session, creating it on first use. A new
// session resumes from stored history before it becomes visible, so a
// concurrent fix for the same vessel is never overtaken by an older
// stored one. The reset gap discards history that is stale.
func (s *NavigationService) session(ctx context.Context, vesselID string) *navigation.Session {
	if sess := s.touch(vesselID); sess != nil {
		return sess
	}

	sess := navigation.NewSession(s.cfg.Window)
	if s.tracks != nil {
		if last, err := s.tracks.Latest(ctx, vesselID); err == nil && last != nil {
			sess.Advance(*last, nil, 0)
		}
	}

	now := s.cfg.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.sessions[vesselID]; ok {
		v.seen = now
		return v.sess
	}
	if now.Sub(s.lastPrune) >= s.cfg.IdleTimeout/2 {
		s.pruneLocked(now)
	}
	s.sessions[vesselID] = &vesselSession{sess: sess, seen: now}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return sess
}

// touch marks an existing session as used and returns it, or nil.
func (s *NavigationService) touch(vesselID string) *navigation.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.sessions[vesselID]
	if !ok {
		return nil
	}
	v.seen = s.cfg.Now()
	return v.sess
}

// PruneIdle drops sessions that saw no fix within the idle timeout and
// reports how many were dropped. A dropped vessel resumes from stored
// history on its next fix.
func (s *NavigationService) PruneIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked(s.cfg.Now())
}

func (s *NavigationService) pruneLocked(now time.Time) int {
	s.lastPrune = now
	dropped := 0
	for id, v := range s.sessions {
		if now.Sub(v.seen) > s.cfg.IdleTimeout {
			delete(s.sessions, id)
			dropped++
		}
	}
	if dropped > 0 {
		metrics.ActiveSessions.Set(float64(len(s.sessions)))
	}
	return dropped
}

// Reset drops the vessel's stream state; the next fix opens a new
// session without resuming from stored history.
func (s *NavigationService) Reset(vesselID string) error {
	s.mu.Lock()
	v, ok := s.sessions[vesselID]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownVessel, vesselID)
	}
	v.sess.Reset()
	metrics.SessionResets.Inc()
	return nil
}

// Session returns the current state of the vessel's stream.
func (s *NavigationService) Session(vesselID string) (navigation.SessionSnapshot, error) {
	s.mu.Lock()
	v, ok := s.sessions[vesselID]
	s.mu.Unlock()

	if !ok {
		return navigation.SessionSnapshot{}, fmt.Errorf("%w: %s", domain.ErrUnknownVessel, vesselID)
	}
	return v.sess.Snapshot(), nil
}
