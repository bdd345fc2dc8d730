package middleware

import (
	"strings"

	"lettertrack/utils"

	"github.com/gofiber/fiber/v2"
)

// APIAuth requires a bearer token signed with secret. An empty secret leaves the API open.
func APIAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return c.Next()
		}

		header := c.Get(fiber.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			return utils.UnauthorizedError("Authentication required", nil)
		}

		claims, err := utils.VerifyAPIToken(secret, raw)
		if err != nil {
			return utils.UnauthorizedError("Invalid token", err)
		}

		c.Locals("api_subject", claims.Subject)
		return c.Next()
	}
}
