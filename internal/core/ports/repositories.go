package ports

import (
	"context"

	"github.com/fishivo/geocore/internal/core/domain"
)

// SpotRepository persists located spots.
type SpotRepository interface {
	Upsert(ctx context.Context, spot *domain.Spot) error
	UpsertBatch(ctx context.Context, spots []domain.Spot) error
	GetByID(ctx context.Context, id string) (*domain.Spot, error)
	// InBounds returns spots inside bounds (edges inclusive) in a stable
	// order, so clustering the result is deterministic. limit <= 0 means
	// no limit.
	InBounds(ctx context.Context, bounds domain.MapBounds, limit int) ([]domain.Spot, error)
	// ListInBounds pages through the spots inside bounds and reports the
	// total match count.
	ListInBounds(ctx context.Context, bounds domain.MapBounds, offset, limit int) ([]domain.Spot, int, error)
}

// TrackRepository persists the fix history of vessels.
type TrackRepository interface {
	Insert(ctx context.Context, vesselID string, fix domain.GPSPosition) error
	Latest(ctx context.Context, vesselID string) (*domain.GPSPosition, error)
}
