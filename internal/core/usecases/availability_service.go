package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nishat1/Instock/internal/core/domain"
	"github.com/nishat1/Instock/internal/core/ports"
	"github.com/nishat1/Instock/internal/pkg/validation"
)

// AvailabilityService manages which items each store stocks.
type AvailabilityService struct {
	stock  ports.AvailabilityRepository
	stores ports.StoreRepository
	events ports.EventPublisher
}

// NewAvailabilityService creates a new AvailabilityService. events may be nil.
func NewAvailabilityService(stock ports.AvailabilityRepository, stores ports.StoreRepository, events ports.EventPublisher) *AvailabilityService {
	return &AvailabilityService{stock: stock, stores: stores, events: events}
}

// ListByStore returns the stock of a store.
func (s *AvailabilityService) ListByStore(ctx context.Context, storeID string) ([]domain.Availability, error) {
	if !validation.UUID(storeID) {
		return nil, fmt.Errorf("%w: malformed store id", domain.ErrInvalidRequest)
	}
	if _, err := s.stores.GetByID(ctx, storeID); err != nil {
		return nil, err
	}
	return s.stock.ListByStore(ctx, storeID)
}

// Add records that a store stocks an item. Missing quantity and price default
// to zero. It fails with domain.ErrConflict if the store already stocks the item.
func (s *AvailabilityService) Add(ctx context.Context, storeID string, in domain.AvailabilityInput) (*domain.Availability, error) {
	if !validation.UUID(storeID) {
		return nil, fmt.Errorf("%w: malformed store id", domain.ErrInvalidRequest)
	}
	if err := validation.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	a := &domain.Availability{StoreID: storeID, ItemID: in.ItemID, Price: decimal.Zero}
	if in.Quantity != nil {
		a.Quantity = *in.Quantity
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidRequest)
		}
		a.Price = *in.Price
	}

	if err := s.stock.Insert(ctx, a); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.AvailabilityAdded, a)
	return a, nil
}

// Update changes the quantity and price a store lists for an item.
func (s *AvailabilityService) Update(ctx context.Context, storeID, itemID string, quantity int, price decimal.Decimal) (*domain.Availability, error) {
	if !validation.UUID(storeID) || !validation.UUID(itemID) {
		return nil, fmt.Errorf("%w: malformed id", domain.ErrInvalidRequest)
	}
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", domain.ErrInvalidRequest)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidRequest)
	}

	if err := s.stock.Update(ctx, storeID, itemID, quantity, price); err != nil {
		return nil, err
	}
	a := &domain.Availability{StoreID: storeID, ItemID: itemID, Quantity: quantity, Price: price, UpdatedAt: time.Now().UTC()}
	s.publish(ctx, domain.AvailabilityUpdated, a)
	return a, nil
}

// Remove drops items from a store's stock and returns how many records were removed.
func (s *AvailabilityService) Remove(ctx context.Context, storeID string, itemIDs []string) (int64, error) {
	if !validation.UUID(storeID) {
		return 0, fmt.Errorf("%w: malformed store id", domain.ErrInvalidRequest)
	}
	if len(itemIDs) == 0 {
		return 0, fmt.Errorf("%w: itemIds is required", domain.ErrInvalidRequest)
	}
	for _, id := range itemIDs {
		if !validation.UUID(id) {
			return 0, fmt.Errorf("%w: malformed item id %q", domain.ErrInvalidRequest, id)
		}
	}

	removed, err := s.stock.DeleteMany(ctx, storeID, itemIDs)
	if err != nil {
		return 0, fmt.Errorf("remove availability: %w", err)
	}
	for _, id := range removed {
		s.publish(ctx, domain.AvailabilityRemoved, &domain.Availability{StoreID: storeID, ItemID: id, Price: decimal.Zero})
	}
	return int64(len(removed)), nil
}

func (s *AvailabilityService) publish(ctx context.Context, eventType string, a *domain.Availability) {
	if s.events == nil {
		return
	}
	ev := &domain.AvailabilityEvent{
		Type:     eventType,
		StoreID:  a.StoreID,
		ItemID:   a.ItemID,
		Quantity: a.Quantity,
		Price:    a.Price,
		At:       time.Now().UTC(),
	}
	if err := s.events.PublishAvailability(ctx, ev); err != nil {
		slog.WarnContext(ctx, "publish availability event failed",
			"type", eventType, "store_id", a.StoreID, "item_id", a.ItemID, "error", err)
	}
}
