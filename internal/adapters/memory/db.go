// Package memory implements the repositories in process. Stores are indexed in
// an R-tree so box queries do not scan every store.
package memory

import (
	"sync"

	"github.com/dhconnelly/rtreego"

	"github.com/nishat1/Instock/internal/core/domain"
)

const (
	dimensions  = 2
	minChildren = 25
	maxChildren = 50
	tolerance   = 1e-9
)

// storeEntry wraps a store for R-tree indexing.
type storeEntry struct {
	store domain.Store
	rect  *rtreego.Rect
}

func (e *storeEntry) Bounds() *rtreego.Rect {
	return e.rect
}

type pairKey struct {
	storeID string
	itemID  string
}

// DB holds every collection behind a single lock so cascading deletes are atomic.
type DB struct {
	mu     sync.RWMutex
	items  map[string]domain.Item
	stores map[string]*storeEntry
	tree   *rtreego.Rtree
	stock  map[pairKey]domain.Availability
}

// New creates an empty in-memory database.
func New() *DB {
	return &DB{
		items:  make(map[string]domain.Item),
		stores: make(map[string]*storeEntry),
		tree:   rtreego.NewTree(dimensions, minChildren, maxChildren),
		stock:  make(map[pairKey]domain.Availability),
	}
}

// Counts reports the size of each collection.
func (db *DB) Counts() (items, stores, stock int) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.items), len(db.stores), len(db.stock)
}

func newEntry(s domain.Store) *storeEntry {
	return &storeEntry{
		store: s,
		rect:  rtreego.Point{s.Lat, s.Lng}.ToRect(tolerance),
	}
}

// indexStore inserts or replaces a store. Callers hold the write lock.
func (db *DB) indexStore(s domain.Store) {
	if old, ok := db.stores[s.ID]; ok {
		db.tree.Delete(old)
	}
	e := newEntry(s)
	db.stores[s.ID] = e
	db.tree.Insert(e)
}

// dropStore removes a store and its stock. Callers hold the write lock.
func (db *DB) dropStore(id string) bool {
	e, ok := db.stores[id]
	if !ok {
		return false
	}
	db.tree.Delete(e)
	delete(db.stores, id)
	for k := range db.stock {
		if k.storeID == id {
			delete(db.stock, k)
		}
	}
	return true
}
