package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/ndfdanim/internal/pkg/logging"
)

// RequestIDLogMiddleware puts a logger carrying the Fiber request ID into the
// user context so usecases and adapters log with it via logging.FromContext.
// A nil base uses slog.Default().
func RequestIDLogMiddleware(base *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logger := base
		if logger == nil {
			logger = slog.Default()
		}
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			logger = logger.With("request_id", rid)
		}
		c.SetUserContext(logging.WithLogger(c.UserContext(), logger))
		return c.Next()
	}
}
