package middleware

import (
	"time"

	"classifieds/internal/metrics"

	"github.com/gofiber/fiber/v3"
)

// Metrics records request counts and latency labelled by the matched route pattern.
func Metrics() fiber.Handler {
	return func(c fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		start := time.Now()
		metrics.HTTPStarted()

		err := c.Next()

		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPFinished(c.Method(), route, c.Response().StatusCode(), time.Since(start))
		return err
	}
}
