package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nishat1/Instock/internal/core/domain"
)

func TestStruct_ItemInput(t *testing.T) {
	assert.NoError(t, Struct(domain.ItemInput{Name: "apple", Units: "0.5 kg"}))

	err := Struct(domain.ItemInput{})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "Name must satisfy required")
	}
}

func TestStruct_StoreInputListsEveryField(t *testing.T) {
	err := Struct(domain.StoreInput{Name: "Gastown's"})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "Address")
		assert.Contains(t, err.Error(), "City")
		assert.Contains(t, err.Error(), "Province")
	}
}

func TestStruct_AvailabilityInput(t *testing.T) {
	neg := -1
	err := Struct(domain.AvailabilityInput{ItemID: "5db025340f8f222d3c27943f", Quantity: &neg})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "ItemID must satisfy uuid")
		assert.Contains(t, err.Error(), "Quantity must satisfy min=0")
	}
}

func TestUUID(t *testing.T) {
	assert.True(t, UUID("0b6f9c1e-6a4a-4d8e-9a57-2d7f3c8f1a10"))
	assert.False(t, UUID("not-a-uuid"))
	assert.False(t, UUID(""))
}
