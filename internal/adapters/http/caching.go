package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control on GET responses when the handler
// did not. Job state changes on every activation and is never cached.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string
		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"
		case path == "/metrics", strings.HasPrefix(path, "/v1/jobs/"):
			ttl = "no-store"
		case strings.HasPrefix(path, "/v1/artifacts/"):
			// one artifact per job; a rerun upserts it
			ttl = "public, max-age=300"
		case path == "/v1/artifacts":
			ttl = "public, max-age=30"
		case path == "/docs" || path == "/docs/openapi.yaml":
			ttl = "public, max-age=3600"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}
