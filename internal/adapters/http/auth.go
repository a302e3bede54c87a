package http

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// APIKeyHeader carries the shared secret.
const APIKeyHeader = "x-api-key"

// APIKeyAuth rejects requests whose x-api-key header does not exactly match
// expected. An empty expected key rejects everything.
func APIKeyAuth(expected string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if expected == "" || !safeEqual(c.Get(APIKeyHeader), expected) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid API key",
			})
		}
		return c.Next()
	}
}

// safeEqual compares in constant time without leaking the secret length.
func safeEqual(a, b string) bool {
	lenMatch := subtle.ConstantTimeEq(int32(len(a)), int32(len(b)))
	cmp := subtle.ConstantTimeCompare([]byte(a), []byte(b))
	return subtle.ConstantTimeSelect(lenMatch, cmp, 0) == 1
}
