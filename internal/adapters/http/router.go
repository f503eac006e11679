package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/nishat1/Instock/internal/pkg/metrics"
)

// legacySunset is when the unversioned /api aliases stop being served.
var legacySunset = time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)

type route struct {
	method  string
	path    string
	handler func(*Dependencies) fiber.Handler
}

// apiRoutes is the REST surface, relative to its version prefix.
// Static segments are registered before parameters that would shadow them.
var apiRoutes = []route{
	{fiber.MethodPost, "/stores/shoppingtrip", ShoppingTripHandler},
	{fiber.MethodPost, "/stores/feweststores", FewestStoresHandler},
	{fiber.MethodGet, "/stores", ListStoresHandler},
	{fiber.MethodGet, "/stores/nearby", NearbyStoresHandler},
	{fiber.MethodGet, "/stores/:id", GetStoreHandler},
	{fiber.MethodPost, "/stores", CreateStoreHandler},
	{fiber.MethodPut, "/stores/:id", UpdateStoreHandler},
	{fiber.MethodDelete, "/stores/:id", DeleteStoreHandler},

	{fiber.MethodGet, "/items", SearchItemsHandler},
	{fiber.MethodPost, "/items", CreateItemHandler},
	{fiber.MethodPost, "/items/multiple", GetItemsHandler},
	{fiber.MethodDelete, "/items", DeleteItemsHandler},
	{fiber.MethodGet, "/items/store/:storeId", StoreStockHandler},
	{fiber.MethodPost, "/items/store/:storeId", AddStockHandler},
	{fiber.MethodDelete, "/items/store/:storeId", RemoveStockHandler},
	{fiber.MethodPut, "/items/store/:storeId/:itemId", UpdateStockHandler},
	{fiber.MethodPut, "/items/:id", UpdateItemHandler},
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	app.Use(limiter.New(limiter.Config{
		Max:        deps.rateLimit(),
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	register(v1, deps)

	// Unversioned aliases kept for existing clients.
	deprecated := make([]DeprecatedRoute, 0, len(apiRoutes))
	for _, r := range apiRoutes {
		deprecated = append(deprecated, DeprecatedRoute{
			Path:        "/api" + r.path,
			SunsetDate:  legacySunset,
			Alternative: "/v1" + r.path,
		})
	}
	legacy := app.Group("/api", DeprecationMiddleware(deprecated))
	register(legacy, deps)

	app.Post("/graphql", timeout.NewWithContext(GraphQLHandler(deps), deps.requestTimeout()))

	SetupDocs(app)

	// WebSocket relay of stock changes
	if deps.NATS != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
	}
}

func register(r fiber.Router, deps *Dependencies) {
	for _, rt := range apiRoutes {
		r.Add(rt.method, rt.path, timeout.NewWithContext(rt.handler(deps), deps.requestTimeout()))
	}
}
