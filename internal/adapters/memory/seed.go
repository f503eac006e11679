package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nishat1/Instock/internal/catalog"
	"github.com/nishat1/Instock/internal/core/domain"
)

// Seed loads a catalog, upserting items by name and stores by name and address.
// Stores without a position and stock rows naming unknown stores or items are skipped.
func (db *DB) Seed(ctx context.Context, c *catalog.Catalog) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := time.Now().UTC()

	itemByName := make(map[string]string, len(db.items))
	for id, it := range db.items {
		itemByName[strings.ToLower(it.Name)] = id
	}
	for _, it := range c.Items {
		key := strings.ToLower(it.Name)
		if id, ok := itemByName[key]; ok {
			it.ID = id
			it.CreatedAt = db.items[id].CreatedAt
		} else {
			it.ID = uuid.NewString()
			it.CreatedAt = now
			itemByName[key] = it.ID
		}
		db.items[it.ID] = it
	}

	storeKey := func(name, address string) string {
		return strings.ToLower(name) + "\x00" + strings.ToLower(address)
	}
	storeByKey := make(map[string]string, len(db.stores))
	for id, e := range db.stores {
		storeByKey[storeKey(e.store.Name, e.store.Address)] = id
	}
	for _, rec := range c.Stores {
		if !rec.HasPosition {
			continue
		}
		s := rec.Store
		k := storeKey(s.Name, s.Address)
		if id, ok := storeByKey[k]; ok {
			s.ID = id
			s.CreatedAt = db.stores[id].store.CreatedAt
		} else {
			s.ID = uuid.NewString()
			s.CreatedAt = now
			storeByKey[k] = s.ID
		}
		db.indexStore(s)
	}

	for _, row := range c.Stock {
		if err := ctx.Err(); err != nil {
			return err
		}
		storeID, ok := storeByKey[storeKey(row.StoreName, row.StoreAddress)]
		if !ok {
			continue
		}
		itemID, ok := itemByName[strings.ToLower(row.ItemName)]
		if !ok {
			continue
		}
		db.stock[pairKey{storeID, itemID}] = domain.Availability{
			StoreID:   storeID,
			ItemID:    itemID,
			Quantity:  row.Quantity,
			Price:     row.Price,
			UpdatedAt: now,
		}
	}
	return nil
}
