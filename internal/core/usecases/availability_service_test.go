package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nishat1/Instock/internal/core/domain"
	"github.com/nishat1/Instock/internal/core/usecases"
)

func TestAvailabilityService_Add_Defaults(t *testing.T) {
	var inserted *domain.Availability
	stock := &mockStockRepo{insertFn: func(ctx context.Context, a *domain.Availability) error {
		inserted = a
		return nil
	}}
	pub := &mockPublisher{}
	svc := usecases.NewAvailabilityService(stock, &mockStoreRepo{}, pub)

	a, err := svc.Add(context.Background(), storeA, domain.AvailabilityInput{ItemID: itemA})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted == nil || inserted.Quantity != 0 || !inserted.Price.IsZero() {
		t.Errorf("expected zero quantity and price, got %+v", inserted)
	}
	if a.StoreID != storeA || a.ItemID != itemA {
		t.Errorf("unexpected record %+v", a)
	}
	if len(pub.availability) != 1 || pub.availability[0].Type != domain.AvailabilityAdded {
		t.Errorf("expected availability.added event, got %+v", pub.availability)
	}
}

func TestAvailabilityService_Add_Values(t *testing.T) {
	svc := usecases.NewAvailabilityService(&mockStockRepo{}, &mockStoreRepo{}, nil)

	price := decimal.RequireFromString("3.49")
	a, err := svc.Add(context.Background(), storeA, domain.AvailabilityInput{ItemID: itemA, Quantity: ptr(7), Price: &price})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Quantity != 7 || !a.Price.Equal(price) {
		t.Errorf("unexpected record %+v", a)
	}
}

func TestAvailabilityService_Add_Conflict(t *testing.T) {
	stock := &mockStockRepo{insertFn: func(ctx context.Context, a *domain.Availability) error {
		return domain.ErrConflict
	}}
	pub := &mockPublisher{}
	svc := usecases.NewAvailabilityService(stock, &mockStoreRepo{}, pub)

	_, err := svc.Add(context.Background(), storeA, domain.AvailabilityInput{ItemID: itemA})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	if len(pub.availability) != 0 {
		t.Error("no event expected on conflict")
	}
}

func TestAvailabilityService_Add_Invalid(t *testing.T) {
	svc := usecases.NewAvailabilityService(&mockStockRepo{}, &mockStoreRepo{}, nil)
	negative := decimal.NewFromInt(-1)

	cases := map[string]domain.AvailabilityInput{
		"missing item":      {},
		"malformed item":    {ItemID: "apple"},
		"negative quantity": {ItemID: itemA, Quantity: ptr(-2)},
		"negative price":    {ItemID: itemA, Price: &negative},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Add(context.Background(), storeA, in)
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestAvailabilityService_Update(t *testing.T) {
	stock := &mockStockRepo{updateFn: func(ctx context.Context, storeID, itemID string, quantity int, price decimal.Decimal) error {
		if storeID != storeA || itemID != itemB || quantity != 4 {
			t.Errorf("unexpected update %s %s %d", storeID, itemID, quantity)
		}
		return nil
	}}
	pub := &mockPublisher{}
	svc := usecases.NewAvailabilityService(stock, &mockStoreRepo{}, pub)

	a, err := svc.Update(context.Background(), storeA, itemB, 4, decimal.RequireFromString("1.25"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Quantity != 4 {
		t.Errorf("expected quantity 4, got %d", a.Quantity)
	}
	if len(pub.availability) != 1 || pub.availability[0].Type != domain.AvailabilityUpdated {
		t.Errorf("expected availability.updated event, got %+v", pub.availability)
	}
}

func TestAvailabilityService_Update_NotFound(t *testing.T) {
	stock := &mockStockRepo{updateFn: func(ctx context.Context, storeID, itemID string, quantity int, price decimal.Decimal) error {
		return domain.ErrNotFound
	}}
	svc := usecases.NewAvailabilityService(stock, &mockStoreRepo{}, nil)

	_, err := svc.Update(context.Background(), storeA, itemB, 1, decimal.Zero)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAvailabilityService_Remove(t *testing.T) {
	pub := &mockPublisher{}
	svc := usecases.NewAvailabilityService(&mockStockRepo{}, &mockStoreRepo{}, pub)

	n, err := svc.Remove(context.Background(), storeA, []string{itemA, itemB})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 removed, got %d", n)
	}
	if len(pub.availability) != 2 {
		t.Errorf("expected 2 events, got %d", len(pub.availability))
	}
}

func TestAvailabilityService_Remove_PublishesOnlyRemovedItems(t *testing.T) {
	pub := &mockPublisher{}
	stock := &mockStockRepo{
		deleteManyFn: func(ctx context.Context, storeID string, itemIDs []string) ([]string, error) {
			return []string{itemB}, nil
		},
	}
	svc := usecases.NewAvailabilityService(stock, &mockStoreRepo{}, pub)

	n, err := svc.Remove(context.Background(), storeA, []string{itemA, itemB})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 removed, got %d", n)
	}
	if len(pub.availability) != 1 || pub.availability[0].ItemID != itemB {
		t.Fatalf("expected one event for %s, got %+v", itemB, pub.availability)
	}
	if pub.availability[0].Type != domain.AvailabilityRemoved {
		t.Errorf("expected %s event, got %s", domain.AvailabilityRemoved, pub.availability[0].Type)
	}
}

func TestAvailabilityService_Remove_NothingStockedPublishesNothing(t *testing.T) {
	pub := &mockPublisher{}
	stock := &mockStockRepo{
		deleteManyFn: func(ctx context.Context, storeID string, itemIDs []string) ([]string, error) {
			return nil, nil
		},
	}
	svc := usecases.NewAvailabilityService(stock, &mockStoreRepo{}, pub)

	n, err := svc.Remove(context.Background(), storeA, []string{itemA})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 || len(pub.availability) != 0 {
		t.Errorf("expected no removals and no events, got n=%d events=%d", n, len(pub.availability))
	}
}

func TestAvailabilityService_Remove_RequiresIDs(t *testing.T) {
	svc := usecases.NewAvailabilityService(&mockStockRepo{}, &mockStoreRepo{}, nil)
	if _, err := svc.Remove(context.Background(), storeA, nil); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestAvailabilityService_ListByStore(t *testing.T) {
	stores := &mockStoreRepo{stores: []domain.Store{{ID: storeA}}}
	stock := &mockStockRepo{rows: []domain.Availability{
		{StoreID: storeA, ItemID: itemA, Quantity: 3},
		{StoreID: storeB, ItemID: itemA, Quantity: 9},
	}}
	svc := usecases.NewAvailabilityService(stock, stores, nil)

	rows, err := svc.ListByStore(context.Background(), storeA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Quantity != 3 {
		t.Errorf("unexpected rows %+v", rows)
	}

	if _, err := svc.ListByStore(context.Background(), storeB); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown store, got %v", err)
	}
}
