package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nishat1/Instock/internal/catalog"
)

const importBatchSize = 500

// ImportStats counts the rows written by an import.
type ImportStats struct {
	Items  int
	Stores int
	Stock  int
}

// Importer bulk-loads catalogs with pgx.Batch. Every statement is an upsert so
// imports can be re-run.
type Importer struct {
	db *DB
}

// NewImporter creates a new Importer.
func NewImporter(db *DB) *Importer {
	return &Importer{db: db}
}

// Import writes items, then stores, then stock. Stores without a position must
// have been geocoded by the caller; they are skipped otherwise.
func (im *Importer) Import(ctx context.Context, c *catalog.Catalog) (ImportStats, error) {
	var stats ImportStats

	batch := &pgx.Batch{}
	for _, it := range c.Items {
		batch.Queue(`
			INSERT INTO items (name, description, barcode, units)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT ((lower(name))) DO UPDATE
			SET description = EXCLUDED.description, barcode = EXCLUDED.barcode, units = EXCLUDED.units
		`, it.Name, it.Description, it.Barcode, it.Units)
		stats.Items++
		if batch.Len() >= importBatchSize {
			if err := flushBatch(ctx, im.db.Pool, batch); err != nil {
				return stats, fmt.Errorf("items: %w", err)
			}
			batch = &pgx.Batch{}
		}
	}
	if err := flushBatch(ctx, im.db.Pool, batch); err != nil {
		return stats, fmt.Errorf("items: %w", err)
	}

	batch = &pgx.Batch{}
	for _, s := range c.Stores {
		if !s.HasPosition {
			continue
		}
		batch.Queue(`
			INSERT INTO stores (name, address, city, province, lat, lng, place_id)
			VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
			ON CONFLICT ((lower(name)), (lower(address))) DO UPDATE
			SET city = EXCLUDED.city, province = EXCLUDED.province,
			    lat = EXCLUDED.lat, lng = EXCLUDED.lng, place_id = EXCLUDED.place_id
		`, s.Name, s.Address, s.City, s.Province, s.Lat, s.Lng, s.PlaceID)
		stats.Stores++
	}
	if err := flushBatch(ctx, im.db.Pool, batch); err != nil {
		return stats, fmt.Errorf("stores: %w", err)
	}

	// Resolve natural keys to UUIDs with subqueries; rows naming unknown
	// stores or items insert nothing.
	batch = &pgx.Batch{}
	for _, s := range c.Stock {
		batch.Queue(`
			INSERT INTO store_items (store_id, item_id, quantity, price)
			SELECT st.id, it.id, $4, $5::text::numeric
			FROM stores st, items it
			WHERE lower(st.name) = lower($1) AND lower(st.address) = lower($2) AND lower(it.name) = lower($3)
			ON CONFLICT (store_id, item_id) DO UPDATE
			SET quantity = EXCLUDED.quantity, price = EXCLUDED.price, updated_at = now()
		`, s.StoreName, s.StoreAddress, s.ItemName, s.Quantity, s.Price.String())
		stats.Stock++
		if batch.Len() >= importBatchSize {
			if err := flushBatch(ctx, im.db.Pool, batch); err != nil {
				return stats, fmt.Errorf("stock: %w", err)
			}
			batch = &pgx.Batch{}
		}
	}
	if err := flushBatch(ctx, im.db.Pool, batch); err != nil {
		return stats, fmt.Errorf("stock: %w", err)
	}

	return stats, nil
}
