package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/nishat1/Instock/internal/core/domain"
)

func storeMap(s domain.Store) map[string]interface{} {
	m := map[string]interface{}{
		"id":       s.ID,
		"name":     s.Name,
		"address":  s.Address,
		"city":     s.City,
		"province": s.Province,
		"lat":      s.Lat,
		"lng":      s.Lng,
		"place_id": s.PlaceID,
	}
	if s.Distance != nil {
		m["distance"] = *s.Distance
	}
	return m
}

func itemMap(it domain.Item) map[string]interface{} {
	return map[string]interface{}{
		"id":          it.ID,
		"name":        it.Name,
		"description": it.Description,
		"barcode":     it.Barcode,
		"units":       it.Units,
	}
}

func storeMaps(stores []domain.Store) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(stores))
	for _, s := range stores {
		out = append(out, storeMap(s))
	}
	return out
}

// shoppingArgs converts GraphQL arguments into a query. lat and lng must be
// given together; both absent selects the configured default center.
func shoppingArgs(p graphql.ResolveParams) (domain.ShoppingQuery, error) {
	var q domain.ShoppingQuery
	if raw, ok := p.Args["list"].([]interface{}); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				q.List = append(q.List, s)
			}
		}
	}
	lat, hasLat := p.Args["lat"].(float64)
	lng, hasLng := p.Args["lng"].(float64)
	switch {
	case hasLat && hasLng:
		q.Center = &domain.Coordinate{Lat: lat, Lng: lng}
	case hasLat || hasLng:
		return q, fmt.Errorf("%w: location needs both lat and lng", domain.ErrInvalidRequest)
	}
	if r, ok := p.Args["radius"].(float64); ok {
		q.RadiusKm = &r
	}
	return q, nil
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	storeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Store",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"address":  &graphql.Field{Type: graphql.String},
			"city":     &graphql.Field{Type: graphql.String},
			"province": &graphql.Field{Type: graphql.String},
			"lat":      &graphql.Field{Type: graphql.Float},
			"lng":      &graphql.Field{Type: graphql.Float},
			"place_id": &graphql.Field{Type: graphql.String},
			"distance": &graphql.Field{Type: graphql.Float, Description: "Metres from the query center"},
		},
	})

	itemType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Item",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"barcode":     &graphql.Field{Type: graphql.String},
			"units":       &graphql.Field{Type: graphql.String},
		},
	})

	stockedItemType := graphql.NewObject(graphql.ObjectConfig{
		Name: "StockedItem",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"units":    &graphql.Field{Type: graphql.String},
			"quantity": &graphql.Field{Type: graphql.Int},
			"price":    &graphql.Field{Type: graphql.String, Description: "Decimal price with two places"},
		},
	})

	storeItemsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "StoreItems",
		Fields: graphql.Fields{
			"store_id": &graphql.Field{Type: graphql.String},
			"item_ids": &graphql.Field{Type: graphql.NewList(graphql.String)},
		},
	})

	storeWithItemsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "StoreWithItems",
		Fields: graphql.Fields{
			"store": &graphql.Field{Type: storeType},
			"items": &graphql.Field{Type: graphql.NewList(stockedItemType)},
		},
	})

	shoppingArgsConfig := func() graphql.FieldConfigArgument {
		return graphql.FieldConfigArgument{
			"list":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
			"lat":    &graphql.ArgumentConfig{Type: graphql.Float},
			"lng":    &graphql.ArgumentConfig{Type: graphql.Float},
			"radius": &graphql.ArgumentConfig{Type: graphql.Float, Description: "Kilometres"},
		}
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"shoppingTrip": &graphql.Field{
				Type:        graphql.NewList(storeItemsType),
				Description: "Requested items stocked by each nearby store",
				Args:        shoppingArgsConfig(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q, err := shoppingArgs(p)
					if err != nil {
						return nil, err
					}
					mapping, err := deps.Shopping.FindStoresForList(p.Context, q)
					if err != nil {
						return nil, err
					}
					out := make([]map[string]interface{}, 0, len(mapping))
					for _, id := range mapping.StoreIDs() {
						out = append(out, map[string]interface{}{"store_id": id, "item_ids": mapping[id]})
					}
					return out, nil
				},
			},
			"fewestStores": &graphql.Field{
				Type:        graphql.NewList(storeWithItemsType),
				Description: "Smallest set of nearby stores covering the list",
				Args:        shoppingArgsConfig(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q, err := shoppingArgs(p)
					if err != nil {
						return nil, err
					}
					stores, err := deps.Shopping.FewestStores(p.Context, q)
					if err != nil {
						return nil, err
					}
					out := make([]map[string]interface{}, 0, len(stores))
					for _, s := range stores {
						items := make([]map[string]interface{}, 0, len(s.Items))
						for _, it := range s.Items {
							items = append(items, map[string]interface{}{
								"id":       it.ID,
								"name":     it.Name,
								"units":    it.Units,
								"quantity": it.Quantity,
								"price":    it.Price.StringFixed(2),
							})
						}
						out = append(out, map[string]interface{}{"store": storeMap(s.Store), "items": items})
					}
					return out, nil
				},
			},
			"stores": &graphql.Field{
				Type:        graphql.NewList(storeType),
				Description: "List all stores",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					stores, err := deps.Stores.List(p.Context)
					if err != nil {
						return nil, err
					}
					return storeMaps(stores), nil
				},
			},
			"store": &graphql.Field{
				Type:        storeType,
				Description: "Get a store by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s, err := deps.Stores.GetByID(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return storeMap(*s), nil
				},
			},
			"storesNearby": &graphql.Field{
				Type:        graphql.NewList(storeType),
				Description: "Stores near a location, nearest first",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, Description: "Kilometres; defaults to the configured search radius"},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					center := domain.Coordinate{Lat: p.Args["lat"].(float64), Lng: p.Args["lng"].(float64)}
					radius := deps.Defaults.RadiusKm
					if r, ok := p.Args["radius"].(float64); ok {
						radius = r
					}
					stores, err := deps.Stores.FindNearby(p.Context, center, radius, p.Args["limit"].(int))
					if err != nil {
						return nil, err
					}
					return storeMaps(stores), nil
				},
			},
			"searchItems": &graphql.Field{
				Type:        graphql.NewList(itemType),
				Description: "Items whose name contains the term",
				Args: graphql.FieldConfigArgument{
					"term": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					items, err := deps.Items.Search(p.Context, p.Args["term"].(string))
					if err != nil {
						return nil, err
					}
					out := make([]map[string]interface{}, 0, len(items))
					for _, it := range items {
						out = append(out, itemMap(it))
					}
					return out, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := decodeBody(c, &req); err != nil || req.Query == "" {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		c.Set(fiber.HeaderCacheControl, "private, max-age=0")
		return c.JSON(result)
	}
}
