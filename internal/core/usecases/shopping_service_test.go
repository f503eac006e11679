package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishat1/Instock/internal/core/domain"
	"github.com/nishat1/Instock/internal/core/usecases"
)

var ubc = domain.Coordinate{Lat: 49.262130, Lng: -123.250578}

func ptr[T any](v T) *T { return &v }

// groceryFixture holds four stores around UBC. store-far is downtown Vancouver,
// roughly 9.7 km east: inside a 15 km box, outside the 5 km default.
func groceryFixture() (*mockItemRepo, *mockStoreRepo, *mockStockRepo) {
	items := &mockItemRepo{items: []domain.Item{
		{ID: "item-1", Name: "Cookies"},
		{ID: "item-2", Name: "apple"},
		{ID: "item-3", Name: "Banana"},
		{ID: "item-4", Name: "butter"},
		{ID: "item-5", Name: "milk"},
	}}
	stores := &mockStoreRepo{stores: []domain.Store{
		{ID: "store-all", Name: "Save-On-Foods", Lat: 49.2606, Lng: -123.2460},
		{ID: "store-part", Name: "Wesbrook Market", Lat: 49.2650, Lng: -123.2500},
		{ID: "store-empty", Name: "Corner Store", Lat: 49.2580, Lng: -123.2400},
		{ID: "store-far", Name: "Downtown Grocer", Lat: 49.2827, Lng: -123.1207},
	}}
	row := func(store, item string, qty int, price string) domain.Availability {
		return domain.Availability{StoreID: store, ItemID: item, Quantity: qty, Price: decimal.RequireFromString(price)}
	}
	stock := &mockStockRepo{rows: []domain.Availability{
		row("store-all", "item-1", 12, "4.99"),
		row("store-all", "item-2", 40, "0.89"),
		row("store-all", "item-3", 30, "0.35"),
		row("store-all", "item-4", 8, "6.49"),
		row("store-all", "item-5", 10, "2.19"),
		row("store-part", "item-2", 20, "0.79"),
		row("store-part", "item-3", 25, "0.29"),
		row("store-far", "item-4", 3, "5.99"),
	}}
	return items, stores, stock
}

func newShopping(items *mockItemRepo, stores *mockStoreRepo, stock *mockStockRepo) *usecases.ShoppingService {
	return usecases.NewShoppingService(items, stores, stock, usecases.DefaultShoppingDefaults())
}

func TestShoppingService_FindStoresForList(t *testing.T) {
	svc := newShopping(groceryFixture())

	mapping, err := svc.FindStoresForList(context.Background(), domain.ShoppingQuery{
		List:     []string{"cookies", "apple", "banana", "butter"},
		Center:   &ubc,
		RadiusKm: ptr(15.0),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"item-1", "item-2", "item-3", "item-4"}, mapping["store-all"])
	assert.Equal(t, []string{"item-2", "item-3"}, mapping["store-part"])
	assert.Equal(t, []string{"item-4"}, mapping["store-far"])
	assert.Equal(t, []string{}, mapping["store-empty"])
	assert.Equal(t, []string{"store-all", "store-empty", "store-far", "store-part"}, mapping.StoreIDs())
}

func TestShoppingService_FindStoresForList_EveryCandidateIsKey(t *testing.T) {
	items, stores, stock := groceryFixture()
	var candidates []domain.Store
	stores.findWithinBoxFn = func(ctx context.Context, box domain.BoundingBox) ([]domain.Store, error) {
		candidates = nil
		for _, st := range stores.stores {
			if box.Contains(st.Lat, st.Lng) {
				candidates = append(candidates, st)
			}
		}
		return candidates, nil
	}
	svc := newShopping(items, stores, stock)

	mapping, err := svc.FindStoresForList(context.Background(), domain.ShoppingQuery{List: []string{"milk"}})
	require.NoError(t, err)

	require.Len(t, mapping, len(candidates))
	for _, st := range candidates {
		assert.Contains(t, mapping, st.ID)
	}
	assert.Equal(t, []string{"item-5"}, mapping["store-all"])
	assert.Empty(t, mapping["store-part"])
}

func TestShoppingService_FindStoresForList_Defaults(t *testing.T) {
	svc := newShopping(groceryFixture())

	mapping, err := svc.FindStoresForList(context.Background(), domain.ShoppingQuery{List: []string{"butter"}})
	require.NoError(t, err)

	assert.NotContains(t, mapping, "store-far", "5 km default radius should exclude downtown")
	assert.Equal(t, []string{"item-4"}, mapping["store-all"])
}

func TestShoppingService_FindStoresForList_Idempotent(t *testing.T) {
	svc := newShopping(groceryFixture())
	q := domain.ShoppingQuery{
		List:     []string{"butter", "Apple", "apple", "cookies"},
		Center:   &ubc,
		RadiusKm: ptr(15.0),
	}

	first, err := svc.FindStoresForList(context.Background(), q)
	require.NoError(t, err)
	second, err := svc.FindStoresForList(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestShoppingService_FindStoresForList_DuplicateRows(t *testing.T) {
	items, stores, stock := groceryFixture()
	stock.rows = append(stock.rows, stock.rows[0])
	svc := newShopping(items, stores, stock)

	mapping, err := svc.FindStoresForList(context.Background(), domain.ShoppingQuery{List: []string{"cookies"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"item-1"}, mapping["store-all"])
}

func TestShoppingService_FindStoresForList_Errors(t *testing.T) {
	tests := []struct {
		name    string
		query   domain.ShoppingQuery
		mutate  func(*mockItemRepo, *mockStoreRepo, *mockStockRepo)
		wantErr error
	}{
		{
			name:    "empty list",
			query:   domain.ShoppingQuery{List: []string{}, Center: &ubc},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "missing list",
			query:   domain.ShoppingQuery{Center: &ubc},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "blank names only",
			query:   domain.ShoppingQuery{List: []string{" ", ""}},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "invalid center",
			query:   domain.ShoppingQuery{List: []string{"apple"}, Center: &domain.Coordinate{Lat: -200, Lng: 200}},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "invalid center wins over empty list",
			query:   domain.ShoppingQuery{Center: &domain.Coordinate{Lat: -200, Lng: 200}},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "negative radius",
			query:   domain.ShoppingQuery{List: []string{"apple"}, RadiusKm: ptr(-1.0)},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "no items resolve",
			query:   domain.ShoppingQuery{List: []string{"caviar"}},
			wantErr: domain.ErrNotFound,
		},
		{
			name:  "no stores nearby",
			query: domain.ShoppingQuery{List: []string{"apple"}, Center: &domain.Coordinate{Lat: 43.263, Lng: -2.935}},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, stores, stock := groceryFixture()
			if tt.mutate != nil {
				tt.mutate(items, stores, stock)
			}
			_, err := newShopping(items, stores, stock).FindStoresForList(context.Background(), tt.query)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestShoppingService_FindStoresForList_CollaboratorFailure(t *testing.T) {
	boom := errors.New("connection reset")
	items, stores, stock := groceryFixture()
	stock.findFn = func(ctx context.Context, storeIDs, itemIDs []string) ([]domain.Availability, error) {
		return nil, boom
	}

	mapping, err := newShopping(items, stores, stock).FindStoresForList(context.Background(), domain.ShoppingQuery{List: []string{"apple"}})
	require.Error(t, err)
	assert.Nil(t, mapping)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestShoppingService_FindStoresForList_RestrictsAvailabilityQuery(t *testing.T) {
	items, stores, stock := groceryFixture()
	var gotStores, gotItems []string
	stock.findFn = func(ctx context.Context, storeIDs, itemIDs []string) ([]domain.Availability, error) {
		gotStores, gotItems = storeIDs, itemIDs
		return nil, nil
	}

	_, err := newShopping(items, stores, stock).FindStoresForList(context.Background(), domain.ShoppingQuery{List: []string{"apple", "BUTTER"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"store-all", "store-empty", "store-part"}, gotStores)
	assert.ElementsMatch(t, []string{"item-2", "item-4"}, gotItems)
}

func TestShoppingService_FindStoresForList_LowerCasesNames(t *testing.T) {
	items, stores, stock := groceryFixture()
	items.findByNamesFn = func(ctx context.Context, names []string, caseInsensitive bool) ([]domain.Item, error) {
		assert.True(t, caseInsensitive)
		assert.Equal(t, []string{"apple", "peanut butter"}, names)
		return nil, nil
	}

	_, err := newShopping(items, stores, stock).FindStoresForList(context.Background(), domain.ShoppingQuery{List: []string{" Apple ", "Peanut Butter", "APPLE"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShoppingService_FewestStores_SingleStore(t *testing.T) {
	svc := newShopping(groceryFixture())

	result, err := svc.FewestStores(context.Background(), domain.ShoppingQuery{
		List:     []string{"cookies", "apple", "banana", "butter"},
		Center:   &ubc,
		RadiusKm: ptr(15.0),
	})
	require.NoError(t, err)
	require.Len(t, result, 1)

	assert.Equal(t, "store-all", result[0].ID)
	require.Len(t, result[0].Items, 4)
	assert.Equal(t, "item-1", result[0].Items[0].ID)
	assert.Equal(t, 12, result[0].Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("4.99").Equal(result[0].Items[0].Price))
	for _, it := range result[0].Items {
		assert.NotEqual(t, "item-5", it.ID, "unrequested items must not be listed")
	}
}

func TestShoppingService_FewestStores_CombinesStores(t *testing.T) {
	items, stores, stock := groceryFixture()
	// Without store-all nobody sells cookies; give them to the corner store.
	var rows []domain.Availability
	for _, r := range stock.rows {
		if r.StoreID != "store-all" {
			rows = append(rows, r)
		}
	}
	rows = append(rows, domain.Availability{StoreID: "store-empty", ItemID: "item-1", Quantity: 1, Price: decimal.NewFromFloat(3.5)})
	stock.rows = rows

	result, err := newShopping(items, stores, stock).FewestStores(context.Background(), domain.ShoppingQuery{
		List:     []string{"cookies", "apple", "banana", "butter"},
		Center:   &ubc,
		RadiusKm: ptr(15.0),
	})
	require.NoError(t, err)

	ids := make([]string, len(result))
	for i, st := range result {
		ids[i] = st.ID
	}
	assert.Equal(t, []string{"store-empty", "store-far", "store-part"}, ids)
}

func TestShoppingService_FewestStores_TieBreakByStoreID(t *testing.T) {
	items := &mockItemRepo{items: []domain.Item{{ID: "i1", Name: "apple"}, {ID: "i2", Name: "banana"}}}
	stores := &mockStoreRepo{stores: []domain.Store{
		{ID: "c", Lat: 49.2610, Lng: -123.2500},
		{ID: "b", Lat: 49.2620, Lng: -123.2500},
		{ID: "a", Lat: 49.2630, Lng: -123.2500},
		{ID: "d", Lat: 49.2640, Lng: -123.2500},
	}}
	stock := &mockStockRepo{rows: []domain.Availability{
		{StoreID: "d", ItemID: "i1"}, {StoreID: "d", ItemID: "i2"},
		{StoreID: "c", ItemID: "i1"}, {StoreID: "c", ItemID: "i2"},
		{StoreID: "b", ItemID: "i1"},
		{StoreID: "a", ItemID: "i2"},
	}}

	result, err := newShopping(items, stores, stock).FewestStores(context.Background(), domain.ShoppingQuery{List: []string{"apple", "banana"}})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "c", result[0].ID)
}

func TestShoppingService_FewestStores_GreedyFallback(t *testing.T) {
	items, stores, stock := groceryFixture()
	svc := newShopping(items, stores, stock).WithCoverBudget(1)

	result, err := svc.FewestStores(context.Background(), domain.ShoppingQuery{
		List:     []string{"cookies", "apple", "banana", "butter"},
		Center:   &ubc,
		RadiusKm: ptr(15.0),
	})
	require.NoError(t, err)

	covered := map[string]bool{}
	for _, st := range result {
		for _, it := range st.Items {
			covered[it.ID] = true
		}
	}
	assert.Len(t, covered, 4)
}

func TestShoppingService_FewestStores_Errors(t *testing.T) {
	t.Run("unknown item on list", func(t *testing.T) {
		_, err := newShopping(groceryFixture()).FewestStores(context.Background(), domain.ShoppingQuery{List: []string{"apple", "caviar"}})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("no covering subset", func(t *testing.T) {
		// Cookies are only sold by store-all; drop that row.
		items, stores, stock := groceryFixture()
		stock.rows = stock.rows[1:]
		_, err := newShopping(items, stores, stock).FewestStores(context.Background(), domain.ShoppingQuery{List: []string{"cookies", "apple"}})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("empty list", func(t *testing.T) {
		_, err := newShopping(groceryFixture()).FewestStores(context.Background(), domain.ShoppingQuery{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("invalid center", func(t *testing.T) {
		_, err := newShopping(groceryFixture()).FewestStores(context.Background(), domain.ShoppingQuery{
			List:   []string{"apple"},
			Center: &domain.Coordinate{Lat: 91, Lng: 0},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}
