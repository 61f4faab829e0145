package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Version is reported by the health endpoint. Set with -ldflags at build time.
var Version = "dev"

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": Version,
		})
	}
}

func pingCheck(ctx context.Context, p Pinger, required bool) (string, bool) {
	if p == nil {
		return "not configured", !required
	}
	if err := p.Ping(ctx); err != nil {
		return "error: " + err.Error(), false
	}
	return "ok", true
}

// ReadyHandler checks the job store, NATS, and the artifact catalog.
// The catalog is optional; the job store is not.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		allOK := true

		var ok bool
		checks["database"], ok = pingCheck(ctx, deps.DB, false)
		allOK = allOK && ok
		checks["cache"], ok = pingCheck(ctx, deps.Cache, true)
		allOK = allOK && ok

		switch {
		case deps.NATS == nil:
			checks["nats"] = "not configured"
		case deps.NATS.IsConnected():
			checks["nats"] = "ok"
		default:
			checks["nats"] = "disconnected"
			allOK = false
		}

		status := "ready"
		code := fiber.StatusOK
		if !allOK {
			status = "not ready"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
