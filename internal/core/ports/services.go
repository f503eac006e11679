package ports

import (
	"context"

	"github.com/nishat1/Instock/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishAvailability(ctx context.Context, event *domain.AvailabilityEvent) error
	PublishStore(ctx context.Context, event *domain.StoreEvent) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeStoreEvents(ctx context.Context, handler func(ctx context.Context, event *domain.StoreEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// Geocoder resolves a free-form address to a position.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*domain.GeocodeResult, error)
}
