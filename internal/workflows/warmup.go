// Package workflows holds the Temporal workflows run by the warmer.
package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/fishivo/geocore/internal/core/domain"
	"github.com/fishivo/geocore/internal/pkg/geospatial"
)

// ErrTypeInvalidInput marks application errors that must not be retried.
const ErrTypeInvalidInput = "InvalidInput"

// DefaultWarmupZooms covers one zoom per clustering radius tier plus the
// first individual-markers zoom.
var DefaultWarmupZooms = []float64{8, 10, 11, 12}

// WarmupInput is the input for MarkerWarmupWorkflow.
type WarmupInput struct {
	Bounds domain.MapBounds
	Zooms  []float64
	Target string
}

// ZoomCount reports what one zoom level of a region clustered into.
type ZoomCount struct {
	Zoom       float64
	Clusters   int
	Individual int
	TotalItems int
}

// WarmupResult is the outcome of MarkerWarmupWorkflow, one entry per zoom
// in input order.
type WarmupResult struct {
	Zooms []ZoomCount
}

// MarkerWarmupWorkflow precomputes the marker response of a region at
// several zoom levels so the first map load is served from cache.
func MarkerWarmupWorkflow(ctx workflow.Context, input WarmupInput) (WarmupResult, error) {
	logger := workflow.GetLogger(ctx)

	if !geospatial.IsValidBounds(input.Bounds) {
		return WarmupResult{}, temporal.NewNonRetryableApplicationError(
			"invalid bounds: "+geospatial.FormatBoundsForDebug(input.Bounds), ErrTypeInvalidInput, nil)
	}
	zooms := input.Zooms
	if len(zooms) == 0 {
		zooms = DefaultWarmupZooms
	}

	logger.Info("Starting marker warmup", "zooms", len(zooms), "target", input.Target)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeInvalidInput},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	result := WarmupResult{Zooms: make([]ZoomCount, 0, len(zooms))}
	for _, zoom := range zooms {
		var count ZoomCount
		err := workflow.ExecuteActivity(ctx, "WarmMarkers", WarmMarkersInput{
			Bounds: input.Bounds,
			Zoom:   zoom,
			Target: input.Target,
		}).Get(ctx, &count)
		if err != nil {
			return result, err
		}
		result.Zooms = append(result.Zooms, count)
	}

	logger.Info("Marker warmup finished", "zooms", len(result.Zooms))
	return result, nil
}
