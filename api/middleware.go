package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// requestLogger logs each request at debug level once the handler chain returns.
func requestLogger(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status, _ = toErrorResponse(err)
		}
		log.Debug("HTTP request",
			"method", c.Method(),
			"path", c.Path(),
			"user", c.Get(userHeader),
			"status", status,
			"latency", time.Since(start),
		)
		return err
	}
}
