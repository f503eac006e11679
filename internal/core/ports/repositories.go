package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/nishat1/Instock/internal/core/domain"
)

// ItemRepository persists items.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	Update(ctx context.Context, item *domain.Item) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Item, error)
	// FindByNames returns items whose name equals one of names exactly,
	// ignoring case when caseInsensitive is set.
	FindByNames(ctx context.Context, names []string, caseInsensitive bool) ([]domain.Item, error)
	// Search returns items whose name contains term, ignoring case.
	Search(ctx context.Context, term string) ([]domain.Item, error)
}

// StoreRepository persists stores.
type StoreRepository interface {
	Create(ctx context.Context, store *domain.Store) error
	Update(ctx context.Context, store *domain.Store) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Store, error)
	List(ctx context.Context) ([]domain.Store, error)
	// FindWithinBox returns stores strictly inside box.
	FindWithinBox(ctx context.Context, box domain.BoundingBox) ([]domain.Store, error)
}

// AvailabilityRepository persists the store-has-item association.
type AvailabilityRepository interface {
	// Insert fails with domain.ErrConflict if the (store, item) pair exists.
	Insert(ctx context.Context, a *domain.Availability) error
	// Update fails with domain.ErrNotFound if the pair does not exist.
	Update(ctx context.Context, storeID, itemID string, quantity int, price decimal.Decimal) error
	DeleteMany(ctx context.Context, storeID string, itemIDs []string) ([]string, error)
	ListByStore(ctx context.Context, storeID string) ([]domain.Availability, error)
	FindByStoreAndItemIDs(ctx context.Context, storeIDs, itemIDs []string) ([]domain.Availability, error)
}
