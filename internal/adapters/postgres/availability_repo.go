package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/nishat1/Instock/internal/core/domain"
)

// Prices travel as text so that NUMERIC values round-trip exactly through decimal.Decimal.
const availabilityColumns = `store_id, item_id, quantity, price::text, updated_at`

// AvailabilityRepo implements ports.AvailabilityRepository over the store_items table.
type AvailabilityRepo struct {
	db *DB
}

// NewAvailabilityRepo creates a new AvailabilityRepo.
func NewAvailabilityRepo(db *DB) *AvailabilityRepo {
	return &AvailabilityRepo{db: db}
}

// Insert adds a (store, item) pair. The primary key turns duplicates into domain.ErrConflict.
func (r *AvailabilityRepo) Insert(ctx context.Context, a *domain.Availability) error {
	tag, err := r.db.Pool.Exec(ctx, `
		INSERT INTO store_items (store_id, item_id, quantity, price)
		VALUES ($1, $2, $3, $4::text::numeric)
		ON CONFLICT (store_id, item_id) DO NOTHING
	`, a.StoreID, a.ItemID, a.Quantity, a.Price.String())
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: store already stocks item", domain.ErrConflict)
	}
	return nil
}

// Update sets quantity and price for an existing pair.
func (r *AvailabilityRepo) Update(ctx context.Context, storeID, itemID string, quantity int, price decimal.Decimal) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE store_items SET quantity = $3, price = $4::text::numeric, updated_at = now()
		WHERE store_id = $1 AND item_id = $2
	`, storeID, itemID, quantity, price.String())
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteMany removes the given items from a store and returns the ids of the
// items it actually stocked.
func (r *AvailabilityRepo) DeleteMany(ctx context.Context, storeID string, itemIDs []string) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `
		DELETE FROM store_items WHERE store_id = $1 AND item_id = ANY($2)
		RETURNING item_id::text
	`, storeID, itemIDs)
	if err != nil {
		return nil, mapErr(err)
	}
	removed, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, mapErr(err)
	}
	return removed, nil
}

// ListByStore returns a store's stock ordered by item id.
func (r *AvailabilityRepo) ListByStore(ctx context.Context, storeID string) ([]domain.Availability, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+availabilityColumns+` FROM store_items WHERE store_id = $1 ORDER BY item_id
	`, storeID)
	if err != nil {
		return nil, mapErr(err)
	}
	return scanAvailability(rows)
}

// FindByStoreAndItemIDs returns the rows whose store and item are both in the given sets.
func (r *AvailabilityRepo) FindByStoreAndItemIDs(ctx context.Context, storeIDs, itemIDs []string) ([]domain.Availability, error) {
	if len(storeIDs) == 0 || len(itemIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+availabilityColumns+`
		FROM store_items
		WHERE store_id = ANY($1) AND item_id = ANY($2)
		ORDER BY store_id, item_id
	`, storeIDs, itemIDs)
	if err != nil {
		return nil, err
	}
	return scanAvailability(rows)
}

func scanAvailability(rows pgx.Rows) ([]domain.Availability, error) {
	defer rows.Close()

	var out []domain.Availability
	for rows.Next() {
		var (
			a     domain.Availability
			price string
		)
		if err := rows.Scan(&a.StoreID, &a.ItemID, &a.Quantity, &price, &a.UpdatedAt); err != nil {
			return nil, err
		}
		p, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("parse price %q: %w", price, err)
		}
		a.Price = p
		out = append(out, a)
	}
	return out, rows.Err()
}
