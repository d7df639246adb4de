package ports

import (
	"context"

	"github.com/fishivo/geocore/internal/core/domain"
)

// NavigationPublisher broadcasts navigation readings to a message broker.
type NavigationPublisher interface {
	PublishNavigation(ctx context.Context, reading *domain.NavigationReading) error
}

// NavigationSubscriber consumes navigation readings from a message broker.
type NavigationSubscriber interface {
	SubscribeNavigation(ctx context.Context, handler func(ctx context.Context, reading *domain.NavigationReading) error) error
}

// FixHandler receives one GPS fix for a vessel, with the compass heading
// reported alongside it when the source has one.
type FixHandler func(ctx context.Context, vesselID string, fix domain.GPSPosition, compassHeading *float64) error

// FixSource produces GPS fixes until ctx is cancelled or the source fails.
type FixSource interface {
	Run(ctx context.Context, handler FixHandler) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
