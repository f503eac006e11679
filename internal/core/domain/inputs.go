package domain

import "github.com/shopspring/decimal"

// ItemInput carries the writable fields of an item.
type ItemInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Barcode     string `json:"barcode" validate:"omitempty,max=64"`
	Units       string `json:"units" validate:"max=64"`
}

// StoreInput carries the writable fields of a store. Position is resolved by geocoding.
type StoreInput struct {
	Name     string `json:"name" validate:"required,max=200"`
	Address  string `json:"address" validate:"required,max=300"`
	City     string `json:"city" validate:"required,max=100"`
	Province string `json:"province" validate:"required,max=100"`
}

// GeocodeQuery returns the free-form address sent to the geocoder.
func (in StoreInput) GeocodeQuery() string {
	return in.Address + " " + in.City + " " + in.Province
}

// AvailabilityInput adds an item to a store. Absent quantity and price default to zero.
type AvailabilityInput struct {
	ItemID   string           `json:"itemId" validate:"required,uuid"`
	Quantity *int             `json:"quantity" validate:"omitempty,min=0"`
	Price    *decimal.Decimal `json:"price"`
}

// ShoppingQuery is a request to match a shopping list against nearby stores.
// Nil Center and RadiusKm mean the field was absent and the configured default applies.
type ShoppingQuery struct {
	List     []string
	Center   *Coordinate
	RadiusKm *float64
}

// GeocodeResult is the position resolved for an address.
type GeocodeResult struct {
	Lat     float64
	Lng     float64
	PlaceID string
}
