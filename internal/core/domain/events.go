package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types published on the message bus.
const (
	AvailabilityAdded   = "availability.added"
	AvailabilityUpdated = "availability.updated"
	AvailabilityRemoved = "availability.removed"

	StoreCreated = "store.created"
	StoreUpdated = "store.updated"
	StoreDeleted = "store.deleted"
)

// AvailabilityEvent is emitted whenever a store's stock of an item changes.
type AvailabilityEvent struct {
	Type     string          `json:"type"`
	StoreID  string          `json:"store_id"`
	ItemID   string          `json:"item_id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	At       time.Time       `json:"at"`
}

// StoreEvent is emitted when a store is created, updated or deleted.
type StoreEvent struct {
	Type    string    `json:"type"`
	StoreID string    `json:"store_id"`
	At      time.Time `json:"at"`
}
