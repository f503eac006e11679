package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/nishat1/Instock/internal/core/domain"
	"github.com/nishat1/Instock/internal/core/ports"
	"github.com/nishat1/Instock/internal/pkg/geospatial"
	"github.com/nishat1/Instock/internal/pkg/metrics"
	"github.com/nishat1/Instock/internal/pkg/validation"
)

const storeCacheTTL = 300

// StoreService handles store-related business logic.
type StoreService struct {
	stores   ports.StoreRepository
	geocoder ports.Geocoder
	events   ports.EventPublisher
	cache    ports.CacheService
}

// NewStoreService creates a new StoreService. geocoder, events and cache may be nil.
func NewStoreService(stores ports.StoreRepository, geocoder ports.Geocoder, events ports.EventPublisher, cache ports.CacheService) *StoreService {
	return &StoreService{stores: stores, geocoder: geocoder, events: events, cache: cache}
}

// List returns every store.
func (s *StoreService) List(ctx context.Context) ([]domain.Store, error) {
	var stores []domain.Store
	if s.cacheGet(ctx, "stores:all", "stores_list", &stores) {
		return stores, nil
	}

	stores, err := s.stores.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, "stores:all", stores)
	return stores, nil
}

// GetByID returns a single store.
func (s *StoreService) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	if !validation.UUID(id) {
		return nil, fmt.Errorf("%w: malformed store id", domain.ErrInvalidRequest)
	}

	var cached domain.Store
	if s.cacheGet(ctx, storeKey(id), "store_get", &cached) {
		return &cached, nil
	}

	store, err := s.stores.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, storeKey(id), store)
	return store, nil
}

// Geocode resolves the address of in to a position.
func (s *StoreService) Geocode(ctx context.Context, in domain.StoreInput) (*domain.GeocodeResult, error) {
	if s.geocoder == nil {
		return nil, fmt.Errorf("%w: geocoding is not configured", domain.ErrInvalidRequest)
	}
	res, err := s.geocoder.Geocode(ctx, in.GeocodeQuery())
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", in.GeocodeQuery(), err)
	}
	return res, nil
}

// Create validates and geocodes a store, stores it and announces it.
func (s *StoreService) Create(ctx context.Context, in domain.StoreInput) (*domain.Store, error) {
	if err := validation.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	pos, err := s.Geocode(ctx, in)
	if err != nil {
		return nil, err
	}
	store, err := s.Insert(ctx, in, pos)
	if err != nil {
		return nil, err
	}
	if err := s.Announce(ctx, domain.StoreCreated, store.ID); err != nil {
		slog.WarnContext(ctx, "publish store event failed", "store_id", store.ID, "error", err)
	}
	return store, nil
}

// Insert stores a store at an already resolved position.
func (s *StoreService) Insert(ctx context.Context, in domain.StoreInput, pos *domain.GeocodeResult) (*domain.Store, error) {
	if !geospatial.IsValidCoordinates(pos.Lat, pos.Lng) {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, domain.ErrInvalidCoordinates)
	}
	store := &domain.Store{
		Name:     strings.TrimSpace(in.Name),
		Address:  strings.TrimSpace(in.Address),
		City:     strings.TrimSpace(in.City),
		Province: strings.TrimSpace(in.Province),
		Lat:      pos.Lat,
		Lng:      pos.Lng,
		PlaceID:  pos.PlaceID,
	}
	if err := s.stores.Create(ctx, store); err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	s.cacheDelete(ctx, "stores:all")
	return store, nil
}

// Announce publishes a store event.
func (s *StoreService) Announce(ctx context.Context, eventType, storeID string) error {
	if s.events == nil {
		return nil
	}
	return s.events.PublishStore(ctx, &domain.StoreEvent{
		Type:    eventType,
		StoreID: storeID,
		At:      time.Now().UTC(),
	})
}

// Update re-geocodes and replaces a store.
func (s *StoreService) Update(ctx context.Context, id string, in domain.StoreInput) (*domain.Store, error) {
	if !validation.UUID(id) {
		return nil, fmt.Errorf("%w: malformed store id", domain.ErrInvalidRequest)
	}
	if err := validation.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	pos, err := s.Geocode(ctx, in)
	if err != nil {
		return nil, err
	}
	store := &domain.Store{
		ID:       id,
		Name:     strings.TrimSpace(in.Name),
		Address:  strings.TrimSpace(in.Address),
		City:     strings.TrimSpace(in.City),
		Province: strings.TrimSpace(in.Province),
		Lat:      pos.Lat,
		Lng:      pos.Lng,
		PlaceID:  pos.PlaceID,
	}
	if err := s.stores.Update(ctx, store); err != nil {
		return nil, err
	}
	s.Invalidate(ctx, id)
	if err := s.Announce(ctx, domain.StoreUpdated, id); err != nil {
		slog.WarnContext(ctx, "publish store event failed", "store_id", id, "error", err)
	}
	return store, nil
}

// Delete removes a store together with its availability records.
func (s *StoreService) Delete(ctx context.Context, id string) error {
	if !validation.UUID(id) {
		return fmt.Errorf("%w: malformed store id", domain.ErrInvalidRequest)
	}
	if err := s.stores.Delete(ctx, id); err != nil {
		return err
	}
	s.Invalidate(ctx, id)
	if err := s.Announce(ctx, domain.StoreDeleted, id); err != nil {
		slog.WarnContext(ctx, "publish store event failed", "store_id", id, "error", err)
	}
	return nil
}

// FindNearby returns stores within radiusKm of center, nearest first, with
// Distance set in metres.
func (s *StoreService) FindNearby(ctx context.Context, center domain.Coordinate, radiusKm float64, limit int) ([]domain.Store, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	box, err := geospatial.ComputeBounds(center.Lat, center.Lng, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	stores, err := s.stores.FindWithinBox(ctx, box)
	if err != nil {
		return nil, err
	}

	// The box over-approximates the circle; trim the corners.
	maxMeters := radiusKm * 1000
	nearby := stores[:0]
	for _, st := range stores {
		d := geospatial.Haversine(center.Lat, center.Lng, st.Lat, st.Lng)
		if d > maxMeters {
			continue
		}
		st.Distance = &d
		nearby = append(nearby, st)
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		if *nearby[i].Distance != *nearby[j].Distance {
			return *nearby[i].Distance < *nearby[j].Distance
		}
		return nearby[i].ID < nearby[j].ID
	})
	if len(nearby) > limit {
		nearby = nearby[:limit]
	}
	return nearby, nil
}

// Invalidate drops cached copies of a store.
func (s *StoreService) Invalidate(ctx context.Context, id string) {
	s.cacheDelete(ctx, storeKey(id))
	s.cacheDelete(ctx, "stores:all")
}

func storeKey(id string) string { return "stores:id:" + id }

func (s *StoreService) cacheGet(ctx context.Context, key, op string, dst any) bool {
	if s.cache == nil {
		return false
	}
	if data, err := s.cache.Get(ctx, key); err == nil {
		if err := json.Unmarshal(data, dst); err == nil {
			metrics.CacheHits.WithLabelValues(op).Inc()
			return true
		}
	}
	metrics.CacheMisses.WithLabelValues(op).Inc()
	return false
}

func (s *StoreService) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	if data, err := json.Marshal(v); err == nil {
		_ = s.cache.Set(ctx, key, data, storeCacheTTL)
	}
}

func (s *StoreService) cacheDelete(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, key)
}
