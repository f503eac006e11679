package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/nishat1/Instock/internal/core/domain"
)

const itemColumns = `id, name, description, barcode, units, created_at`

// ItemRepo implements ports.ItemRepository with pgx.
type ItemRepo struct {
	db *DB
}

// NewItemRepo creates a new ItemRepo.
func NewItemRepo(db *DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// Create inserts an item. Names are unique ignoring case.
func (r *ItemRepo) Create(ctx context.Context, it *domain.Item) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO items (name, description, barcode, units)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, it.Name, it.Description, it.Barcode, it.Units).Scan(&it.ID, &it.CreatedAt)
	return mapErr(err)
}

// Update replaces the writable fields of an item.
func (r *ItemRepo) Update(ctx context.Context, it *domain.Item) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE items SET name = $2, description = $3, barcode = $4, units = $5
		WHERE id = $1
	`, it.ID, it.Name, it.Description, it.Barcode, it.Units)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteMany removes items; their availability rows cascade.
func (r *ItemRepo) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM items WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, mapErr(err)
	}
	return tag.RowsAffected(), nil
}

// GetByIDs returns items by UUID, ordered by name.
func (r *ItemRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Pool.Query(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ANY($1) ORDER BY name`, ids)
	if err != nil {
		return nil, mapErr(err)
	}
	return scanItems(rows)
}

// FindByNames returns items whose name equals one of names.
func (r *ItemRepo) FindByNames(ctx context.Context, names []string, caseInsensitive bool) ([]domain.Item, error) {
	if len(names) == 0 {
		return nil, nil
	}

	query := `SELECT ` + itemColumns + ` FROM items WHERE name = ANY($1) ORDER BY id`
	if caseInsensitive {
		lowered := make([]string, len(names))
		for i, n := range names {
			lowered[i] = strings.ToLower(n)
		}
		names = lowered
		query = `SELECT ` + itemColumns + ` FROM items WHERE lower(name) = ANY($1) ORDER BY id`
	}

	rows, err := r.db.Pool.Query(ctx, query, names)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

// Search returns up to 50 items whose name contains term, ignoring case.
func (r *ItemRepo) Search(ctx context.Context, term string) ([]domain.Item, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE name ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY similarity(name, $2) DESC, name
		LIMIT 50
	`, escapeLike(term), term)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func scanItems(rows pgx.Rows) ([]domain.Item, error) {
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Barcode, &it.Units, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
