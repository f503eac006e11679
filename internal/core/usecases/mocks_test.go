package usecases_test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/nishat1/Instock/internal/core/domain"
)

// --- Mock ItemRepository ---

type mockItemRepo struct {
	items []domain.Item

	createFn      func(ctx context.Context, item *domain.Item) error
	updateFn      func(ctx context.Context, item *domain.Item) error
	deleteManyFn  func(ctx context.Context, ids []string) (int64, error)
	findByNamesFn func(ctx context.Context, names []string, caseInsensitive bool) ([]domain.Item, error)
	searchFn      func(ctx context.Context, term string) ([]domain.Item, error)
}

func (m *mockItemRepo) Create(ctx context.Context, item *domain.Item) error {
	if m.createFn != nil {
		return m.createFn(ctx, item)
	}
	return nil
}

func (m *mockItemRepo) Update(ctx context.Context, item *domain.Item) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, item)
	}
	return nil
}

func (m *mockItemRepo) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if m.deleteManyFn != nil {
		return m.deleteManyFn(ctx, ids)
	}
	return int64(len(ids)), nil
}

func (m *mockItemRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Item, error) {
	var out []domain.Item
	for _, it := range m.items {
		for _, id := range ids {
			if it.ID == id {
				out = append(out, it)
			}
		}
	}
	return out, nil
}

func (m *mockItemRepo) FindByNames(ctx context.Context, names []string, caseInsensitive bool) ([]domain.Item, error) {
	if m.findByNamesFn != nil {
		return m.findByNamesFn(ctx, names, caseInsensitive)
	}
	var out []domain.Item
	for _, it := range m.items {
		for _, n := range names {
			if it.Name == n || (caseInsensitive && strings.EqualFold(it.Name, n)) {
				out = append(out, it)
				break
			}
		}
	}
	return out, nil
}

func (m *mockItemRepo) Search(ctx context.Context, term string) ([]domain.Item, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, term)
	}
	return nil, nil
}

// --- Mock StoreRepository ---

type mockStoreRepo struct {
	stores []domain.Store

	createFn        func(ctx context.Context, store *domain.Store) error
	updateFn        func(ctx context.Context, store *domain.Store) error
	deleteFn        func(ctx context.Context, id string) error
	getByIDFn       func(ctx context.Context, id string) (*domain.Store, error)
	listFn          func(ctx context.Context) ([]domain.Store, error)
	findWithinBoxFn func(ctx context.Context, box domain.BoundingBox) ([]domain.Store, error)
}

func (m *mockStoreRepo) Create(ctx context.Context, store *domain.Store) error {
	if m.createFn != nil {
		return m.createFn(ctx, store)
	}
	store.ID = "9f1c2d3e-0000-4000-8000-000000000001"
	return nil
}

func (m *mockStoreRepo) Update(ctx context.Context, store *domain.Store) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, store)
	}
	return nil
}

func (m *mockStoreRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockStoreRepo) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	for _, st := range m.stores {
		if st.ID == id {
			st := st
			return &st, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStoreRepo) List(ctx context.Context) ([]domain.Store, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return m.stores, nil
}

func (m *mockStoreRepo) FindWithinBox(ctx context.Context, box domain.BoundingBox) ([]domain.Store, error) {
	if m.findWithinBoxFn != nil {
		return m.findWithinBoxFn(ctx, box)
	}
	var out []domain.Store
	for _, st := range m.stores {
		if box.Contains(st.Lat, st.Lng) {
			out = append(out, st)
		}
	}
	return out, nil
}

// --- Mock AvailabilityRepository ---

type mockStockRepo struct {
	rows []domain.Availability

	insertFn     func(ctx context.Context, a *domain.Availability) error
	updateFn     func(ctx context.Context, storeID, itemID string, quantity int, price decimal.Decimal) error
	deleteManyFn func(ctx context.Context, storeID string, itemIDs []string) ([]string, error)
	findFn       func(ctx context.Context, storeIDs, itemIDs []string) ([]domain.Availability, error)
}

func (m *mockStockRepo) Insert(ctx context.Context, a *domain.Availability) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, a)
	}
	return nil
}

func (m *mockStockRepo) Update(ctx context.Context, storeID, itemID string, quantity int, price decimal.Decimal) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, storeID, itemID, quantity, price)
	}
	return nil
}

func (m *mockStockRepo) DeleteMany(ctx context.Context, storeID string, itemIDs []string) ([]string, error) {
	if m.deleteManyFn != nil {
		return m.deleteManyFn(ctx, storeID, itemIDs)
	}
	return itemIDs, nil
}

func (m *mockStockRepo) ListByStore(ctx context.Context, storeID string) ([]domain.Availability, error) {
	var out []domain.Availability
	for _, a := range m.rows {
		if a.StoreID == storeID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockStockRepo) FindByStoreAndItemIDs(ctx context.Context, storeIDs, itemIDs []string) ([]domain.Availability, error) {
	if m.findFn != nil {
		return m.findFn(ctx, storeIDs, itemIDs)
	}
	in := func(set []string, v string) bool {
		for _, s := range set {
			if s == v {
				return true
			}
		}
		return false
	}
	var out []domain.Availability
	for _, a := range m.rows {
		if in(storeIDs, a.StoreID) && in(itemIDs, a.ItemID) {
			out = append(out, a)
		}
	}
	return out, nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMockCache() *mockCache { return &mockCache{data: make(map[string][]byte)} }

func (c *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return v, nil
}

func (c *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.sets++
	return nil
}

func (c *mockCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu           sync.Mutex
	availability []domain.AvailabilityEvent
	stores       []domain.StoreEvent
	err          error
}

func (p *mockPublisher) PublishAvailability(ctx context.Context, ev *domain.AvailabilityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.availability = append(p.availability, *ev)
	return p.err
}

func (p *mockPublisher) PublishStore(ctx context.Context, ev *domain.StoreEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stores = append(p.stores, *ev)
	return p.err
}

// --- Mock Geocoder ---

type mockGeocoder struct {
	geocodeFn func(ctx context.Context, address string) (*domain.GeocodeResult, error)
}

func (g *mockGeocoder) Geocode(ctx context.Context, address string) (*domain.GeocodeResult, error) {
	if g.geocodeFn != nil {
		return g.geocodeFn(ctx, address)
	}
	return &domain.GeocodeResult{Lat: 49.2606, Lng: -123.2460, PlaceID: "ChIJ-test"}, nil
}
