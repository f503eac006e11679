package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dhconnelly/rtreego"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nishat1/Instock/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Items
// ---------------------------------------------------------------------------

// ItemRepo implements ports.ItemRepository in memory.
type ItemRepo struct{ db *DB }

// NewItemRepo creates a new ItemRepo.
func NewItemRepo(db *DB) *ItemRepo { return &ItemRepo{db: db} }

func (r *ItemRepo) nameTaken(name, exceptID string) bool {
	for id, it := range r.db.items {
		if id != exceptID && strings.EqualFold(it.Name, name) {
			return true
		}
	}
	return false
}

// Create inserts an item. Names are unique ignoring case.
func (r *ItemRepo) Create(ctx context.Context, it *domain.Item) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.nameTaken(it.Name, "") {
		return fmt.Errorf("%w: item %q exists", domain.ErrConflict, it.Name)
	}
	it.ID = uuid.NewString()
	it.CreatedAt = time.Now().UTC()
	r.db.items[it.ID] = *it
	return nil
}

// Update replaces the writable fields of an item.
func (r *ItemRepo) Update(ctx context.Context, it *domain.Item) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	old, ok := r.db.items[it.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if r.nameTaken(it.Name, it.ID) {
		return fmt.Errorf("%w: item %q exists", domain.ErrConflict, it.Name)
	}
	it.CreatedAt = old.CreatedAt
	r.db.items[it.ID] = *it
	return nil
}

// DeleteMany removes items and their stock.
func (r *ItemRepo) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var n int64
	for _, id := range ids {
		if _, ok := r.db.items[id]; !ok {
			continue
		}
		delete(r.db.items, id)
		n++
		for k := range r.db.stock {
			if k.itemID == id {
				delete(r.db.stock, k)
			}
		}
	}
	return n, nil
}

// GetByIDs returns the known items among ids, ordered by name.
func (r *ItemRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Item, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []domain.Item
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if it, ok := r.db.items[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// FindByNames returns items whose name equals one of names.
func (r *ItemRepo) FindByNames(ctx context.Context, names []string, caseInsensitive bool) ([]domain.Item, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if caseInsensitive {
			n = strings.ToLower(n)
		}
		want[n] = true
	}

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []domain.Item
	for _, it := range r.db.items {
		key := it.Name
		if caseInsensitive {
			key = strings.ToLower(key)
		}
		if want[key] {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Search returns up to 50 items whose name contains term, ignoring case.
func (r *ItemRepo) Search(ctx context.Context, term string) ([]domain.Item, error) {
	term = strings.ToLower(term)

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []domain.Item
	for _, it := range r.db.items {
		if strings.Contains(strings.ToLower(it.Name), term) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > 50 {
		out = out[:50]
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Stores
// ---------------------------------------------------------------------------

// StoreRepo implements ports.StoreRepository over the R-tree.
type StoreRepo struct{ db *DB }

// NewStoreRepo creates a new StoreRepo.
func NewStoreRepo(db *DB) *StoreRepo { return &StoreRepo{db: db} }

func (r *StoreRepo) duplicate(s *domain.Store) bool {
	for id, e := range r.db.stores {
		if id != s.ID && strings.EqualFold(e.store.Name, s.Name) && strings.EqualFold(e.store.Address, s.Address) {
			return true
		}
	}
	return false
}

// Create inserts a store and fills in its id and creation time.
func (r *StoreRepo) Create(ctx context.Context, s *domain.Store) error {
	if !s.Location().Valid() {
		return domain.ErrInvalidCoordinates
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.duplicate(s) {
		return fmt.Errorf("%w: store %q at %q exists", domain.ErrConflict, s.Name, s.Address)
	}
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now().UTC()
	r.db.indexStore(*s)
	return nil
}

// Update replaces a store and re-indexes its position.
func (r *StoreRepo) Update(ctx context.Context, s *domain.Store) error {
	if !s.Location().Valid() {
		return domain.ErrInvalidCoordinates
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	old, ok := r.db.stores[s.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if r.duplicate(s) {
		return fmt.Errorf("%w: store %q at %q exists", domain.ErrConflict, s.Name, s.Address)
	}
	s.CreatedAt = old.store.CreatedAt
	r.db.indexStore(*s)
	return nil
}

// Delete removes a store and its stock.
func (r *StoreRepo) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if !r.db.dropStore(id) {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID returns a store by id.
func (r *StoreRepo) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	e, ok := r.db.stores[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	s := e.store
	return &s, nil
}

// List returns every store ordered by name.
func (r *StoreRepo) List(ctx context.Context) ([]domain.Store, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]domain.Store, 0, len(r.db.stores))
	for _, e := range r.db.stores {
		out = append(out, e.store)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// FindWithinBox returns stores strictly inside box, ordered by id.
func (r *StoreRepo) FindWithinBox(ctx context.Context, box domain.BoundingBox) ([]domain.Store, error) {
	// Strict containment leaves nothing inside a zero-area box.
	if box.Degenerate() {
		return nil, nil
	}
	bounds, err := rtreego.NewRect(
		rtreego.Point{box.South, box.West},
		[]float64{box.North - box.South, box.East - box.West},
	)
	if err != nil {
		return nil, fmt.Errorf("invalid bounding box: %w", err)
	}

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []domain.Store
	for _, sp := range r.db.tree.SearchIntersect(bounds) {
		e, ok := sp.(*storeEntry)
		if !ok {
			continue
		}
		if box.Contains(e.store.Lat, e.store.Lng) {
			out = append(out, e.store)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---------------------------------------------------------------------------
// Availability
// ---------------------------------------------------------------------------

// AvailabilityRepo implements ports.AvailabilityRepository in memory.
type AvailabilityRepo struct{ db *DB }

// NewAvailabilityRepo creates a new AvailabilityRepo.
func NewAvailabilityRepo(db *DB) *AvailabilityRepo { return &AvailabilityRepo{db: db} }

// Insert adds a (store, item) pair; both must exist and the pair must be new.
func (r *AvailabilityRepo) Insert(ctx context.Context, a *domain.Availability) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.stores[a.StoreID]; !ok {
		return fmt.Errorf("%w: store %s", domain.ErrNotFound, a.StoreID)
	}
	if _, ok := r.db.items[a.ItemID]; !ok {
		return fmt.Errorf("%w: item %s", domain.ErrNotFound, a.ItemID)
	}
	k := pairKey{a.StoreID, a.ItemID}
	if _, ok := r.db.stock[k]; ok {
		return fmt.Errorf("%w: store already stocks item", domain.ErrConflict)
	}
	a.UpdatedAt = time.Now().UTC()
	r.db.stock[k] = *a
	return nil
}

// Update sets quantity and price for an existing pair.
func (r *AvailabilityRepo) Update(ctx context.Context, storeID, itemID string, quantity int, price decimal.Decimal) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	k := pairKey{storeID, itemID}
	a, ok := r.db.stock[k]
	if !ok {
		return domain.ErrNotFound
	}
	a.Quantity = quantity
	a.Price = price
	a.UpdatedAt = time.Now().UTC()
	r.db.stock[k] = a
	return nil
}

// DeleteMany removes the given items from a store and returns the ids of the
// items it actually stocked.
func (r *AvailabilityRepo) DeleteMany(ctx context.Context, storeID string, itemIDs []string) ([]string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var removed []string
	for _, id := range itemIDs {
		k := pairKey{storeID, id}
		if _, ok := r.db.stock[k]; ok {
			delete(r.db.stock, k)
			removed = append(removed, id)
		}
	}
	return removed, nil
}

// ListByStore returns a store's stock ordered by item id.
func (r *AvailabilityRepo) ListByStore(ctx context.Context, storeID string) ([]domain.Availability, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []domain.Availability
	for k, a := range r.db.stock {
		if k.storeID == storeID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

// FindByStoreAndItemIDs returns the rows whose store and item are both in the given sets.
func (r *AvailabilityRepo) FindByStoreAndItemIDs(ctx context.Context, storeIDs, itemIDs []string) ([]domain.Availability, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var out []domain.Availability
	for _, s := range storeIDs {
		for _, i := range itemIDs {
			if a, ok := r.db.stock[pairKey{s, i}]; ok {
				out = append(out, a)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StoreID != out[j].StoreID {
			return out[i].StoreID < out[j].StoreID
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out, nil
}
