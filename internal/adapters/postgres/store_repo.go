package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/nishat1/Instock/internal/core/domain"
)

const storeColumns = `id, name, address, city, province, lat, lng, COALESCE(place_id, ''), created_at`

// StoreRepo implements ports.StoreRepository with pgx.
type StoreRepo struct {
	db *DB
}

// NewStoreRepo creates a new StoreRepo.
func NewStoreRepo(db *DB) *StoreRepo {
	return &StoreRepo{db: db}
}

// Create inserts a store and fills in its id and creation time.
func (r *StoreRepo) Create(ctx context.Context, s *domain.Store) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO stores (name, address, city, province, lat, lng, place_id)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		RETURNING id, created_at
	`, s.Name, s.Address, s.City, s.Province, s.Lat, s.Lng, s.PlaceID).Scan(&s.ID, &s.CreatedAt)
	return mapErr(err)
}

// Update replaces the writable fields of a store.
func (r *StoreRepo) Update(ctx context.Context, s *domain.Store) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE stores
		SET name = $2, address = $3, city = $4, province = $5, lat = $6, lng = $7, place_id = NULLIF($8, '')
		WHERE id = $1
	`, s.ID, s.Name, s.Address, s.City, s.Province, s.Lat, s.Lng, s.PlaceID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a store. Its availability rows cascade.
func (r *StoreRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM stores WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID returns a store by UUID.
func (r *StoreRepo) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	var s domain.Store
	err := r.db.Pool.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = $1`, id).Scan(
		&s.ID, &s.Name, &s.Address, &s.City, &s.Province, &s.Lat, &s.Lng, &s.PlaceID, &s.CreatedAt,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

// List returns every store ordered by name.
func (r *StoreRepo) List(ctx context.Context) ([]domain.Store, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+storeColumns+` FROM stores ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	return scanStores(rows)
}

// FindWithinBox returns stores strictly inside box using the (lat, lng) index.
func (r *StoreRepo) FindWithinBox(ctx context.Context, box domain.BoundingBox) ([]domain.Store, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+storeColumns+`
		FROM stores
		WHERE lat > $1 AND lat < $2 AND lng > $3 AND lng < $4
		ORDER BY id
	`, box.South, box.North, box.West, box.East)
	if err != nil {
		return nil, err
	}
	return scanStores(rows)
}

func scanStores(rows pgx.Rows) ([]domain.Store, error) {
	defer rows.Close()

	var stores []domain.Store
	for rows.Next() {
		var s domain.Store
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Address, &s.City, &s.Province, &s.Lat, &s.Lng, &s.PlaceID, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}
