package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/nishat1/Instock/internal/core/domain"
)

// idsBody names items by id. itemIds is the documented field; ids is still read
// for clients of the first /v1 release.
type idsBody struct {
	ItemIDs []string `json:"itemIds"`
	IDs     []string `json:"ids"`
}

func (b idsBody) list() []string {
	if len(b.ItemIDs) > 0 {
		return b.ItemIDs
	}
	return b.IDs
}

// SearchItemsHandler returns items whose name contains ?search_term.
func SearchItemsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := deps.Items.Search(c.UserContext(), c.Query("search_term"))
		if err != nil {
			return writeError(c, err)
		}
		if items == nil {
			items = []domain.Item{}
		}
		return c.JSON(items)
	}
}

// CreateItemHandler creates an item.
func CreateItemHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in domain.ItemInput
		if err := decodeBody(c, &in); err != nil {
			return writeError(c, err)
		}
		item, err := deps.Items.Create(c.UserContext(), in)
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

// GetItemsHandler returns the items named by {"itemIds": [...]}.
func GetItemsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body idsBody
		if err := decodeBody(c, &body); err != nil {
			return writeError(c, err)
		}
		items, err := deps.Items.GetByIDs(c.UserContext(), body.list())
		if err != nil {
			return writeError(c, err)
		}
		if items == nil {
			items = []domain.Item{}
		}
		return c.JSON(items)
	}
}

// UpdateItemHandler replaces an item's details.
func UpdateItemHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in domain.ItemInput
		if err := decodeBody(c, &in); err != nil {
			return writeError(c, err)
		}
		if err := deps.Items.Update(c.UserContext(), c.Params("id"), in); err != nil {
			return writeError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DeleteItemsHandler deletes the items named by {"itemIds": [...]}.
func DeleteItemsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body idsBody
		if err := decodeBody(c, &body); err != nil {
			return writeError(c, err)
		}
		n, err := deps.Items.Delete(c.UserContext(), body.list())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"deleted": n})
	}
}

// StoreStockHandler lists what a store stocks.
func StoreStockHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stock, err := deps.Availability.ListByStore(c.UserContext(), c.Params("storeId"))
		if err != nil {
			return writeError(c, err)
		}
		if stock == nil {
			stock = []domain.Availability{}
		}
		c.Set("Cache-Control", "no-cache")
		return c.JSON(stock)
	}
}

// AddStockHandler records that a store stocks an item.
func AddStockHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in domain.AvailabilityInput
		if err := decodeBody(c, &in); err != nil {
			return writeError(c, err)
		}
		a, err := deps.Availability.Add(c.UserContext(), c.Params("storeId"), in)
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	}
}

type stockUpdateBody struct {
	Quantity *int             `json:"quantity"`
	Price    *decimal.Decimal `json:"price"`
}

// UpdateStockHandler sets the quantity and price a store lists for an item.
func UpdateStockHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body stockUpdateBody
		if err := decodeBody(c, &body); err != nil {
			return writeError(c, err)
		}
		if body.Quantity == nil || body.Price == nil {
			return writeError(c, fmt.Errorf("%w: quantity and price are required", domain.ErrInvalidRequest))
		}
		a, err := deps.Availability.Update(c.UserContext(), c.Params("storeId"), c.Params("itemId"), *body.Quantity, *body.Price)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(a)
	}
}

// RemoveStockHandler drops {"itemIds": [...]} from a store's stock.
func RemoveStockHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			ItemIDs []string `json:"itemIds"`
		}
		if err := decodeBody(c, &body); err != nil {
			return writeError(c, err)
		}
		n, err := deps.Availability.Remove(c.UserContext(), c.Params("storeId"), body.ItemIDs)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"deleted": n})
	}
}
