package middlewares

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// AuthRateLimit throttles the auth endpoints per client IP, more tightly
// than the global limiter, to slow credential stuffing.
func AuthRateLimit() fiber.Handler {
	max := 20
	if v := strings.TrimSpace(os.Getenv("AUTH_RATE_LIMIT_MAX")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			max = n
		}
	}
	window := 900
	if v := strings.TrimSpace(os.Getenv("AUTH_RATE_LIMIT_WINDOW_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			window = n
		}
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Duration(window) * time.Second,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many auth attempts, try again later",
			})
		},
	})
}
