package middlewares

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// AIRateLimit throttles the assistant endpoints separately from the global
// limiter. LLM calls are slow and metered, so the window is keyed per
// authenticated user rather than per client IP.
func AIRateLimit() fiber.Handler {
	max := 20
	if v := strings.TrimSpace(os.Getenv("AI_RATE_LIMIT_MAX")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			max = n
		}
	}
	window := 60
	if v := strings.TrimSpace(os.Getenv("AI_RATE_LIMIT_WINDOW_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			window = n
		}
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Duration(window) * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userID, ok := c.Locals("userID").(string); ok && userID != "" {
				return userID
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many AI requests, slow down",
			})
		},
	})
}
