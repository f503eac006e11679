package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nishat1/Instock/internal/core/domain"
	"github.com/nishat1/Instock/internal/core/ports"
	"github.com/nishat1/Instock/internal/pkg/metrics"
	"github.com/nishat1/Instock/internal/pkg/validation"
)

// ItemService handles item-related business logic.
type ItemService struct {
	items ports.ItemRepository
	cache ports.CacheService
}

// NewItemService creates a new ItemService.
func NewItemService(items ports.ItemRepository, cache ports.CacheService) *ItemService {
	return &ItemService{items: items, cache: cache}
}

// Create validates and stores a new item.
func (s *ItemService) Create(ctx context.Context, in domain.ItemInput) (*domain.Item, error) {
	if err := validation.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	item := &domain.Item{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Barcode:     in.Barcode,
		Units:       in.Units,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	s.invalidateSearch(ctx)
	return item, nil
}

// Update replaces the writable fields of an item.
func (s *ItemService) Update(ctx context.Context, id string, in domain.ItemInput) error {
	if !validation.UUID(id) {
		return fmt.Errorf("%w: malformed item id", domain.ErrInvalidRequest)
	}
	if err := validation.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	item := &domain.Item{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Barcode:     in.Barcode,
		Units:       in.Units,
	}
	if err := s.items.Update(ctx, item); err != nil {
		return err
	}
	s.invalidateSearch(ctx)
	return nil
}

// Delete removes the given items and their availability records.
func (s *ItemService) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: itemIds is required", domain.ErrInvalidRequest)
	}
	for _, id := range ids {
		if !validation.UUID(id) {
			return 0, fmt.Errorf("%w: malformed item id %q", domain.ErrInvalidRequest, id)
		}
	}
	n, err := s.items.DeleteMany(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("delete items: %w", err)
	}
	s.invalidateSearch(ctx)
	return n, nil
}

// GetByIDs returns the items with the given ids, skipping unknown ones.
func (s *ItemService) GetByIDs(ctx context.Context, ids []string) ([]domain.Item, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: itemIds is required", domain.ErrInvalidRequest)
	}
	for _, id := range ids {
		if !validation.UUID(id) {
			return nil, fmt.Errorf("%w: malformed item id %q", domain.ErrInvalidRequest, id)
		}
	}
	return s.items.GetByIDs(ctx, ids)
}

// Search returns items whose name contains term, ignoring case.
func (s *ItemService) Search(ctx context.Context, term string) ([]domain.Item, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: search term must not be empty", domain.ErrInvalidRequest)
	}

	cacheKey := "items:search:" + s.searchGeneration(ctx) + ":" + strings.ToLower(term)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var items []domain.Item
			if err := json.Unmarshal(data, &items); err == nil {
				metrics.CacheHits.WithLabelValues("items_search").Inc()
				return items, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("items_search").Inc()
	}

	items, err := s.items.Search(ctx, term)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(items); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 60)
		}
	}
	return items, nil
}

const searchGenerationKey = "items:search:gen"

// searchGeneration returns the current search cache generation. Bumping it
// orphans every cached search; orphans expire with their TTL.
func (s *ItemService) searchGeneration(ctx context.Context) string {
	if s.cache == nil {
		return "0"
	}
	gen, err := s.cache.Get(ctx, searchGenerationKey)
	if err != nil || len(gen) == 0 {
		return "0"
	}
	return string(gen)
}

func (s *ItemService) invalidateSearch(ctx context.Context) {
	if s.cache == nil {
		return
	}
	gen := strconv.FormatInt(time.Now().UnixNano(), 36)
	_ = s.cache.Set(ctx, searchGenerationKey, []byte(gen), 0)
}
