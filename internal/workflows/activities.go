package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/fishivo/geocore/internal/core/domain"
	"github.com/fishivo/geocore/internal/core/usecases"
	"github.com/fishivo/geocore/internal/pkg/clustering"
	"github.com/fishivo/geocore/internal/pkg/telemetry"
)

// WarmMarkersInput is the input of the WarmMarkers activity.
type WarmMarkersInput struct {
	Bounds domain.MapBounds
	Zoom   float64
	Target string
}

// WarmupActivities holds the activity implementations for the warmup workflow.
type WarmupActivities struct {
	Markers *usecases.MarkerService
}

// WarmMarkers computes one viewport at one zoom. MarkerService caches the
// result as a side effect.
func (a *WarmupActivities) WarmMarkers(ctx context.Context, input WarmMarkersInput) (ZoomCount, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanWarmupActivity)
	defer span.End()
	span.SetAttributes(attribute.Float64(telemetry.AttrZoom, input.Zoom))

	res, err := a.Markers.Markers(ctx, usecases.MarkerQuery{
		Bounds: input.Bounds,
		Zoom:   input.Zoom,
		Target: clustering.PerformanceTarget(input.Target),
	})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrInvalidBounds) || errors.Is(err, domain.ErrInvalidZoom) {
			return ZoomCount{}, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, err)
		}
		return ZoomCount{}, fmt.Errorf("warm zoom %g: %w", input.Zoom, err)
	}

	activity.GetLogger(ctx).Info("Warmed markers",
		"zoom", input.Zoom, "clusters", res.Stats.Clusters, "items", res.Stats.TotalItems)

	return ZoomCount{
		Zoom:       input.Zoom,
		Clusters:   res.Stats.Clusters,
		Individual: res.Stats.IndividualItems,
		TotalItems: res.Stats.TotalItems,
	}, nil
}
