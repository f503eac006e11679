package http

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/nishat1/Instock/internal/core/domain"
	"github.com/nishat1/Instock/internal/pkg/validation"
)

// decodeBody unmarshals a JSON request body into dst. An empty body leaves
// dst untouched so that absent fields fall back to their defaults.
func decodeBody(c *fiber.Ctx, dst any) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := c.App().Config().JSONDecoder(body, dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidRequest)
	}
	return nil
}

type locationBody struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// shoppingRequest is the body of both shopping endpoints. Absent location
// and radius select the configured defaults.
type shoppingRequest struct {
	ShoppingList []string      `json:"shoppingList"`
	Location     *locationBody `json:"location"`
	Radius       *float64      `json:"radius"`
}

func (r shoppingRequest) query() (domain.ShoppingQuery, error) {
	q := domain.ShoppingQuery{List: r.ShoppingList, RadiusKm: r.Radius}
	if r.Location != nil {
		if r.Location.Latitude == nil || r.Location.Longitude == nil {
			return q, fmt.Errorf("%w: location needs both latitude and longitude", domain.ErrInvalidRequest)
		}
		q.Center = &domain.Coordinate{Lat: *r.Location.Latitude, Lng: *r.Location.Longitude}
	}
	return q, nil
}

func parseShopping(c *fiber.Ctx) (domain.ShoppingQuery, error) {
	var req shoppingRequest
	if err := decodeBody(c, &req); err != nil {
		return domain.ShoppingQuery{}, err
	}
	return req.query()
}

// ShoppingTripHandler maps every store near the requested location to the
// items of the shopping list it stocks.
func ShoppingTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseShopping(c)
		if err != nil {
			return writeError(c, err)
		}
		mapping, err := deps.Shopping.FindStoresForList(c.UserContext(), q)
		if err != nil {
			return writeError(c, err)
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(fiber.Map{"storeItemMapping": mapping})
	}
}

// FewestStoresHandler returns the smallest set of nearby stores that together
// stock the whole shopping list.
func FewestStoresHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseShopping(c)
		if err != nil {
			return writeError(c, err)
		}
		stores, err := deps.Shopping.FewestStores(c.UserContext(), q)
		if err != nil {
			return writeError(c, err)
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(fiber.Map{"stores": stores})
	}
}

// ListStoresHandler returns every store.
func ListStoresHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stores, err := deps.Stores.List(c.UserContext())
		if err != nil {
			return writeError(c, err)
		}
		if stores == nil {
			stores = []domain.Store{}
		}
		return c.JSON(stores)
	}
}

// NearbyStoresHandler returns stores around lat/lng, nearest first.
// Query: lat, lng, radius (km), limit.
func NearbyStoresHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		center := domain.Coordinate{
			Lat: c.QueryFloat("lat", deps.Defaults.Center.Lat),
			Lng: c.QueryFloat("lng", deps.Defaults.Center.Lng),
		}
		radius := c.QueryFloat("radius", deps.Defaults.RadiusKm)
		limit := c.QueryInt("limit", 20)

		stores, err := deps.Stores.FindNearby(c.UserContext(), center, radius, limit)
		if err != nil {
			return writeError(c, err)
		}
		if stores == nil {
			stores = []domain.Store{}
		}
		return c.JSON(stores)
	}
}

// GetStoreHandler returns a single store.
func GetStoreHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		store, err := deps.Stores.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(store)
	}
}

// CreateStoreHandler geocodes and creates a store. With ?async=true the work is
// handed to the onboarding workflow and the response is 202 with its id.
func CreateStoreHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in domain.StoreInput
		if err := decodeBody(c, &in); err != nil {
			return writeError(c, err)
		}

		if c.QueryBool("async") {
			if deps.Onboarding == nil {
				return errUnavailable(c, "asynchronous onboarding is not enabled")
			}
			if err := validation.Struct(in); err != nil {
				return errBadRequest(c, err.Error())
			}
			id, err := deps.Onboarding.StartOnboarding(c.UserContext(), in)
			if err != nil {
				return writeError(c, err)
			}
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"workflow_id": id, "status": "accepted"})
		}

		store, err := deps.Stores.Create(c.UserContext(), in)
		if err != nil {
			return writeError(c, err)
		}
		c.Location("/v1/stores/" + store.ID)
		return c.Status(fiber.StatusCreated).JSON(store)
	}
}

// UpdateStoreHandler replaces a store's details and re-geocodes it.
func UpdateStoreHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in domain.StoreInput
		if err := decodeBody(c, &in); err != nil {
			return writeError(c, err)
		}
		store, err := deps.Stores.Update(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(store)
	}
}

// DeleteStoreHandler removes a store and its stock.
func DeleteStoreHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Stores.Delete(c.UserContext(), c.Params("id")); err != nil {
			return writeError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
