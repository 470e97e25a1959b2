package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ctroy978/umadex-sub002/internal/utils"
)

// RateLimit budgets an action per authenticated user per window. Requests
// arriving before authentication fall back to an IP bucket. A breached
// budget answers with the API's error envelope so clients can surface it
// like any other rejection.
func RateLimit(action string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userID, ok := c.Locals(LocalsUserID).(uint); ok && userID > 0 {
				return fmt.Sprintf("debate:limit:%s:user:%d", action, userID)
			}
			return fmt.Sprintf("debate:limit:%s:ip:%s", action, c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusTooManyRequests, "too many requests, slow down")
		},
	})
}
