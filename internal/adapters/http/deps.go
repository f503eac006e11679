package http

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/nishat1/Instock/internal/core/domain"
	"github.com/nishat1/Instock/internal/core/usecases"
)

// Pinger is a backing service that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreOnboarder starts store creation in the background and returns a handle
// the caller can use to follow it.
type StoreOnboarder interface {
	StartOnboarding(ctx context.Context, in domain.StoreInput) (string, error)
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Shopping     *usecases.ShoppingService
	Stores       *usecases.StoreService
	Items        *usecases.ItemService
	Availability *usecases.AvailabilityService
	Onboarding   StoreOnboarder // nil when Temporal is disabled

	// Defaults fill in the center and radius of /stores/nearby queries.
	Defaults usecases.ShoppingDefaults

	NATS    *nats.Conn
	DB      Pinger // nil for the memory driver
	Cache   Pinger
	Storage string

	RequestTimeout time.Duration
	RateLimit      int // requests per minute per IP
}

func (d *Dependencies) requestTimeout() time.Duration {
	if d.RequestTimeout <= 0 {
		return 15 * time.Second
	}
	return d.RequestTimeout
}

func (d *Dependencies) rateLimit() int {
	if d.RateLimit <= 0 {
		return 120
	}
	return d.RateLimit
}
