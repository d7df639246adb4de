package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fishivo/geocore/internal/core/domain"
	"github.com/fishivo/geocore/internal/core/ports"
	"github.com/fishivo/geocore/internal/pkg/clustering"
	"github.com/fishivo/geocore/internal/pkg/geospatial"
	"github.com/fishivo/geocore/internal/pkg/metrics"
	"github.com/fishivo/geocore/internal/pkg/telemetry"
)

// MaxZoom is the deepest zoom level a marker query accepts.
const MaxZoom = 24

// Cached marker results are keyed by a generation that SaveSpots bumps,
// so stored spots invalidate every cached viewport at once.
const (
	markerGenKey = "markers:gen"
	markerGenTTL = 7 * 24 * 60 * 60 // seconds
)

// MarkerConfig tunes MarkerService. Zero fields take defaults.
type MarkerConfig struct {
	Padding              float64
	CacheTTL             int // seconds; 0 disables caching
	MaxSpots             int
	DefaultTarget        clustering.PerformanceTarget
	MinZoomForIndividual float64
	Radius               clustering.RadiusTiers
}

// MarkerQuery describes a viewport to render.
type MarkerQuery struct {
	Bounds  domain.MapBounds
	Zoom    float64
	Target  clustering.PerformanceTarget // empty uses the configured default
	Padding *float64                     // nil uses the configured padding
}

// MarkerResult is the clustered content of a viewport.
type MarkerResult struct {
	Bounds domain.MapBounds             `json:"bounds"` // padded query bounds
	Zoom   float64                      `json:"zoom"`
	Target clustering.PerformanceTarget `json:"target"`
	Result domain.ClusterResult         `json:"result"`
	Stats  clustering.ClusteringStats   `json:"stats"`

	// Truncated is set when more than MaxSpots spots matched; only the
	// first MaxSpots in store order were clustered.
	Truncated bool `json:"truncated"`
}

// MarkerService turns viewports into clustered markers.
type MarkerService struct {
	spots  ports.SpotRepository
	cache  ports.CacheService
	cfg    MarkerConfig
	tracer trace.Tracer
}

// NewMarkerService creates a new MarkerService.
func NewMarkerService(spots ports.SpotRepository, cache ports.CacheService, cfg MarkerConfig) *MarkerService {
	if cfg.Padding < 0 {
		cfg.Padding = 0
	}
	if cfg.MaxSpots <= 0 {
		cfg.MaxSpots = 5000
	}
	if cfg.DefaultTarget == "" {
		cfg.DefaultTarget = clustering.TargetBalanced
	}
	return &MarkerService{spots: spots, cache: cache, cfg: cfg, tracer: telemetry.Tracer()}
}

// Markers clusters the spots visible in q.Bounds (plus padding) for q.Zoom.
func (s *MarkerService) Markers(ctx context.Context, q MarkerQuery) (*MarkerResult, error) {
	if !geospatial.IsValidBounds(q.Bounds) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidBounds, geospatial.FormatBoundsForDebug(q.Bounds))
	}
	if math.IsNaN(q.Zoom) || q.Zoom < 0 || q.Zoom > MaxZoom {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidZoom, q.Zoom)
	}

	target := q.Target
	if target == "" {
		target = s.cfg.DefaultTarget
	}
	target = clustering.ParsePerformanceTarget(string(target))

	padding := s.cfg.Padding
	if q.Padding != nil && *q.Padding >= 0 {
		padding = *q.Padding
	}
	bounds := geospatial.ExpandBounds(q.Bounds, padding)

	ctx, span := s.tracer.Start(ctx, telemetry.SpanMarkers)
	defer span.End()
	span.SetAttributes(
		attribute.Float64(telemetry.AttrZoom, q.Zoom),
		attribute.String(telemetry.AttrTarget, string(target)),
		attribute.String(telemetry.AttrBounds, geospatial.FormatBoundsForDebug(bounds)),
	)

	// Try cache
	var cacheKey string
	if s.cache != nil && s.cfg.CacheTTL > 0 {
		cacheKey = fmt.Sprintf("markers:%s:%.4f:%.4f:%.4f:%.4f:%g:%s", s.generation(ctx),
			bounds.NE.Latitude, bounds.NE.Longitude, bounds.SW.Latitude, bounds.SW.Longitude, q.Zoom, target)
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var res MarkerResult
			if err := json.Unmarshal(data, &res); err == nil {
				metrics.CacheHits.WithLabelValues("markers").Inc()
				span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, true))
				return &res, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("markers").Inc()
	}

	// One extra row tells a full viewport from a truncated one.
	spots, err := s.spots.InBounds(ctx, bounds, s.cfg.MaxSpots+1)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("spots in bounds: %w", err)
	}
	truncated := len(spots) > s.cfg.MaxSpots
	if truncated {
		spots = spots[:s.cfg.MaxSpots]
	}

	items := make([]domain.ClusterableItem, 0, len(spots))
	for _, sp := range spots {
		items = append(items, sp.ClusterableItem())
	}
	// The store may match on geometry with its own tolerance.
	items = clustering.FilterItemsByBounds(items, bounds)

	start := time.Now()
	result := clustering.Cluster(items, s.options(target, q.Zoom))
	stats := clustering.Stats(items, result.Clusters, result.IndividualItems)
	metrics.ObserveClustering(string(target), len(items), stats.ReductionRatio, time.Since(start))

	span.SetAttributes(
		attribute.Int(telemetry.AttrItems, len(items)),
		attribute.Int(telemetry.AttrClusters, len(result.Clusters)),
	)

	res := &MarkerResult{
		Bounds: bounds,
		Zoom:   q.Zoom,
		Target: target,
		Result: result,
		Stats:  stats,

		Truncated: truncated,
	}

	if s.cache != nil && s.cfg.CacheTTL > 0 {
		if data, err := json.Marshal(res); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.cfg.CacheTTL)
		}
	}

	return res, nil
}

// options resolves clustering options for target. The balanced target
// follows the configured tiers; fast and detailed use their presets.
func (s *MarkerService) options(target clustering.PerformanceTarget, zoom float64) clustering.Options {
	opts := clustering.Preset(target, zoom)
	if target != clustering.TargetBalanced {
		return opts
	}
	if s.cfg.MinZoomForIndividual > 0 {
		opts.MinZoomForIndividual = s.cfg.MinZoomForIndividual
	}
	if s.cfg.Radius != (clustering.RadiusTiers{}) {
		opts.Radius = s.cfg.Radius
	}
	return opts
}

// Spots pages through the raw spots inside bounds.
func (s *MarkerService) Spots(ctx context.Context, bounds domain.MapBounds, offset, limit int) ([]domain.Spot, int, error) {
	if !geospatial.IsValidBounds(bounds) {
		return nil, 0, fmt.Errorf("%w: %s", domain.ErrInvalidBounds, geospatial.FormatBoundsForDebug(bounds))
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	spots, total, err := s.spots.ListInBounds(ctx, bounds, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list spots: %w", err)
	}
	return spots, total, nil
}

// Spot returns a single spot.
func (s *MarkerService) Spot(ctx context.Context, id string) (*domain.Spot, error) {
	cacheKey := "spots:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var spot domain.Spot
			if err := json.Unmarshal(data, &spot); err == nil {
				return &spot, nil
			}
		}
	}

	spot, err := s.spots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(spot); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600) // 10 min for single spot
		}
	}

	return spot, nil
}

// SaveSpots stores spots and drops their cached copies.
func (s *MarkerService) SaveSpots(ctx context.Context, spots []domain.Spot) error {
	for _, sp := range spots {
		if !geospatial.ValidateCoordinateBounds(sp.Location.Latitude, sp.Location.Longitude) {
			return fmt.Errorf("spot %s: %w", sp.ID, domain.ErrInvalidCoordinate)
		}
	}
	var err error
	if len(spots) == 1 {
		err = s.spots.Upsert(ctx, &spots[0])
	} else {
		err = s.spots.UpsertBatch(ctx, spots)
	}
	if err != nil {
		return fmt.Errorf("upsert spots: %w", err)
	}
	if s.cache != nil {
		for _, sp := range spots {
			_ = s.cache.Delete(ctx, "spots:id:"+sp.ID)
		}
		gen := strconv.FormatInt(time.Now().UnixNano(), 36)
		_ = s.cache.Set(ctx, markerGenKey, []byte(gen), markerGenTTL)
	}
	return nil
}

// generation returns the current marker cache generation, "0" until
// spots are first saved.
func (s *MarkerService) generation(ctx context.Context) string {
	if data, err := s.cache.Get(ctx, markerGenKey); err == nil && len(data) > 0 {
		return string(data)
	}
	return "0"
}
