package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Item is a product that stores can stock (e.g. "apple", "butter").
type Item struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Barcode     string    `json:"barcode"`
	Units       string    `json:"units"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is a physical grocery store with a geocoded position.
type Store struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Province  string    `json:"province"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	PlaceID   string    `json:"place_id"`
	Distance  *float64  `json:"distance,omitempty"` // computed field, metres
	CreatedAt time.Time `json:"created_at"`
}

// Location returns the store position as a Coordinate.
func (s Store) Location() Coordinate {
	return Coordinate{Lat: s.Lat, Lng: s.Lng}
}

// Availability records that a store stocks an item. (StoreID, ItemID) is unique.
type Availability struct {
	StoreID   string          `json:"storeId"`
	ItemID    string          `json:"itemId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StockedItem is an item together with a store's quantity and price for it.
type StockedItem struct {
	Item
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// StoreWithItems is a store and the requested items it stocks.
type StoreWithItems struct {
	Store
	Items []StockedItem `json:"items"`
}

// StoreItemMapping maps a store id to the ids of requested items it stocks.
// Every candidate store is a key, possibly with an empty slice.
type StoreItemMapping map[string][]string

// StoreIDs returns the mapping keys in ascending order.
func (m StoreItemMapping) StoreIDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
