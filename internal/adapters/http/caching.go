package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers that set their own header win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		// Legacy aliases share the v1 policy.
		path := c.Path()
		if strings.HasPrefix(path, "/api/") {
			path = "/v1/" + strings.TrimPrefix(path, "/api/")
		}

		var ttl string
		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		case strings.HasPrefix(path, "/v1/items/store/"):
			ttl = "no-cache" // stock changes constantly

		case strings.HasPrefix(path, "/v1/stores/nearby"):
			ttl = "public, max-age=60"

		case strings.HasPrefix(path, "/v1/stores"):
			ttl = "public, max-age=300"

		case strings.HasPrefix(path, "/v1/items"):
			ttl = "public, max-age=60"

		case strings.HasPrefix(path, "/docs"):
			ttl = "public, max-age=3600"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
