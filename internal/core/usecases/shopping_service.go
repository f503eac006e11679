package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nishat1/Instock/internal/core/domain"
	"github.com/nishat1/Instock/internal/core/ports"
	"github.com/nishat1/Instock/internal/pkg/geospatial"
	"github.com/nishat1/Instock/internal/pkg/metrics"
	"github.com/nishat1/Instock/internal/pkg/telemetry"
)

const defaultCoverBudget = 1_000_000

var tracer = otel.Tracer("github.com/nishat1/Instock/internal/core/usecases")

// ShoppingDefaults apply when a shopping request omits the center or the radius.
type ShoppingDefaults struct {
	RadiusKm float64
	Center   domain.Coordinate
}

// DefaultShoppingDefaults centers searches on the UBC campus with a 5 km radius.
func DefaultShoppingDefaults() ShoppingDefaults {
	return ShoppingDefaults{
		RadiusKm: 5.0,
		Center:   domain.Coordinate{Lat: 49.262130, Lng: -123.250578},
	}
}

// ShoppingService matches shopping lists against the stock of nearby stores.
// It only reads from its repositories.
type ShoppingService struct {
	items       ports.ItemRepository
	stores      ports.StoreRepository
	stock       ports.AvailabilityRepository
	defaults    ShoppingDefaults
	coverBudget int
}

// NewShoppingService creates a new ShoppingService.
func NewShoppingService(
	items ports.ItemRepository,
	stores ports.StoreRepository,
	stock ports.AvailabilityRepository,
	defaults ShoppingDefaults,
) *ShoppingService {
	return &ShoppingService{
		items:       items,
		stores:      stores,
		stock:       stock,
		defaults:    defaults,
		coverBudget: defaultCoverBudget,
	}
}

// WithCoverBudget caps the number of store combinations FewestStores examines
// before falling back to a greedy cover.
func (s *ShoppingService) WithCoverBudget(n int) *ShoppingService {
	if n > 0 {
		s.coverBudget = n
	}
	return s
}

// candidates holds the results of the three lookups shared by both policies.
type candidates struct {
	names  []string               // requested names, lower-cased, de-duplicated, in list order
	items  map[string]domain.Item // resolved items by id
	stores []domain.Store         // stores inside the box, by ascending id
	stock  []domain.Availability  // restricted to the store and item id sets
}

// FindStoresForList returns, for every store inside the search box, the ids of
// the requested items it stocks. Stores stocking nothing map to an empty list.
func (s *ShoppingService) FindStoresForList(ctx context.Context, q domain.ShoppingQuery) (domain.StoreItemMapping, error) {
	ctx, span := tracer.Start(ctx, "ShoppingService.FindStoresForList")
	defer span.End()

	c, err := s.gather(ctx, q)
	if err != nil {
		observe(span, "shoppingtrip", err)
		return nil, err
	}

	mapping := make(domain.StoreItemMapping, len(c.stores))
	for _, st := range c.stores {
		mapping[st.ID] = []string{}
	}

	seen := make(map[[2]string]bool, len(c.stock))
	for _, a := range c.stock {
		if _, ok := mapping[a.StoreID]; !ok {
			continue
		}
		if _, ok := c.items[a.ItemID]; !ok {
			continue
		}
		pair := [2]string{a.StoreID, a.ItemID}
		if seen[pair] {
			continue
		}
		seen[pair] = true
		mapping[a.StoreID] = append(mapping[a.StoreID], a.ItemID)
	}
	for id := range mapping {
		sort.Strings(mapping[id])
	}

	observe(span, "shoppingtrip", nil)
	return mapping, nil
}

// FewestStores returns the smallest set of nearby stores that together stock
// every item on the list. Ties go to the ascending list of store ids. Each store
// carries the requested items it stocks with quantity and price.
func (s *ShoppingService) FewestStores(ctx context.Context, q domain.ShoppingQuery) ([]domain.StoreWithItems, error) {
	ctx, span := tracer.Start(ctx, "ShoppingService.FewestStores")
	defer span.End()

	result, err := s.fewestStores(ctx, q)
	observe(span, "feweststores", err)
	return result, err
}

func (s *ShoppingService) fewestStores(ctx context.Context, q domain.ShoppingQuery) ([]domain.StoreWithItems, error) {
	c, err := s.gather(ctx, q)
	if err != nil {
		return nil, err
	}

	nameIdx := make(map[string]int, len(c.names))
	for i, n := range c.names {
		nameIdx[n] = i
	}
	resolved := newBitset(len(c.names))
	for _, it := range c.items {
		if i, ok := nameIdx[strings.ToLower(it.Name)]; ok {
			resolved.set(i)
		}
	}
	full := fullBitset(len(c.names))
	if !resolved.equal(full) {
		return nil, fmt.Errorf("%w: not every item on the list exists", domain.ErrNotFound)
	}

	storeIdx := make(map[string]int, len(c.stores))
	for i, st := range c.stores {
		storeIdx[st.ID] = i
	}
	masks := make([]bitset, len(c.stores))
	for i := range masks {
		masks[i] = newBitset(len(c.names))
	}
	stocked := make(map[string][]domain.Availability, len(c.stores))
	for _, a := range c.stock {
		si, ok := storeIdx[a.StoreID]
		if !ok {
			continue
		}
		it, ok := c.items[a.ItemID]
		if !ok {
			continue
		}
		ni, ok := nameIdx[strings.ToLower(it.Name)]
		if !ok {
			continue
		}
		masks[si].set(ni)
		stocked[a.StoreID] = append(stocked[a.StoreID], a)
	}

	// Keep stores that stock something, dropping later stores whose stock
	// duplicates an earlier one: swapping in the lower id never loses a tie.
	var (
		sets   []bitset
		owners []int
		union  = newBitset(len(c.names))
		byKey  = make(map[string]bool)
	)
	for i, m := range masks {
		if m.empty() || byKey[m.key()] {
			continue
		}
		byKey[m.key()] = true
		sets = append(sets, m)
		owners = append(owners, i)
		union.or(m)
	}
	if !union.equal(full) {
		return nil, fmt.Errorf("%w: no combination of nearby stores stocks the whole list", domain.ErrNotFound)
	}

	chosen, exact := minimumCover(sets, full, s.coverBudget)
	trace.SpanFromContext(ctx).SetAttributes(telemetry.AttrCoverExact.Bool(exact))
	if !exact {
		slog.WarnContext(ctx, "cover search budget exhausted, using greedy cover",
			"stores", len(sets), "items", len(c.names), "budget", s.coverBudget)
	}
	if chosen == nil {
		return nil, fmt.Errorf("%w: no covering set of stores", domain.ErrNotFound)
	}
	sort.Ints(chosen)

	result := make([]domain.StoreWithItems, 0, len(chosen))
	for _, ci := range chosen {
		st := c.stores[owners[ci]]
		entry := domain.StoreWithItems{Store: st, Items: []domain.StockedItem{}}
		for _, a := range stocked[st.ID] {
			entry.Items = append(entry.Items, domain.StockedItem{
				Item:     c.items[a.ItemID],
				Quantity: a.Quantity,
				Price:    a.Price,
			})
		}
		sort.Slice(entry.Items, func(i, j int) bool {
			return entry.Items[i].ID < entry.Items[j].ID
		})
		result = append(result, entry)
	}
	return result, nil
}

// gather validates the query and runs the item, store and availability lookups in order.
func (s *ShoppingService) gather(ctx context.Context, q domain.ShoppingQuery) (*candidates, error) {
	center := s.defaults.Center
	if q.Center != nil {
		center = *q.Center
	}
	radius := s.defaults.RadiusKm
	if q.RadiusKm != nil {
		radius = *q.RadiusKm
	}

	box, err := geospatial.ComputeBounds(center.Lat, center.Lng, radius)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	names := normalizeList(q.List)
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: shopping list is empty", domain.ErrNotFound)
	}

	items, err := s.items.FindByNames(ctx, names, true)
	if err != nil {
		return nil, fmt.Errorf("find items by name: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no items match the shopping list", domain.ErrNotFound)
	}

	stores, err := s.stores.FindWithinBox(ctx, box)
	if err != nil {
		return nil, fmt.Errorf("find stores in box: %w", err)
	}
	if len(stores) == 0 {
		return nil, fmt.Errorf("%w: no stores within %.2f km", domain.ErrNotFound, radius)
	}
	sort.Slice(stores, func(i, j int) bool { return stores[i].ID < stores[j].ID })

	byID := make(map[string]domain.Item, len(items))
	itemIDs := make([]string, 0, len(items))
	for _, it := range items {
		if _, dup := byID[it.ID]; dup {
			continue
		}
		byID[it.ID] = it
		itemIDs = append(itemIDs, it.ID)
	}
	storeIDs := make([]string, len(stores))
	for i, st := range stores {
		storeIDs[i] = st.ID
	}

	stock, err := s.stock.FindByStoreAndItemIDs(ctx, storeIDs, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("find availability: %w", err)
	}

	metrics.ShoppingCandidateStores.Observe(float64(len(stores)))
	trace.SpanFromContext(ctx).SetAttributes(
		telemetry.AttrShoppingListSize.Int(len(names)),
		telemetry.AttrResolvedItems.Int(len(itemIDs)),
		telemetry.AttrCandidateStores.Int(len(stores)),
	)
	return &candidates{names: names, items: byID, stores: stores, stock: stock}, nil
}

// normalizeList trims, lower-cases and de-duplicates names, keeping list order.
func normalizeList(list []string) []string {
	seen := make(map[string]bool, len(list))
	names := make([]string, 0, len(list))
	for _, n := range list {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	return names
}

func observe(span trace.Span, op string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidRequest):
		outcome = "invalid"
	case errors.Is(err, domain.ErrNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(telemetry.AttrShoppingOutcome.String(outcome))
	metrics.ShoppingRequests.WithLabelValues(op, outcome).Inc()
}
