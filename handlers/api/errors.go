package api

import (
	"errors"
	"strings"

	"lettertrack/utils"

	"github.com/gofiber/fiber/v2"
)

// IsAPIPath reports whether the request targets the /api routes
func IsAPIPath(c *fiber.Ctx) bool {
	if c == nil {
		return false
	}
	path := c.Path()
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

// IsAPIRequest reports whether the request expects a JSON response.
// It only selects the error format; use IsAPIPath to decide access rules.
func IsAPIRequest(c *fiber.Ctx) bool {
	if c == nil {
		return false
	}
	return IsAPIPath(c) || strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
}

// ErrorHandler writes {error: message} with the status carried by err.
// Only the user-facing message leaves the process; details go to the log.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := utils.ErrorCode(err)
	message := utils.PublicMessage(err)

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	if code >= 500 {
		utils.Log.WithField("path", c.Path()).Error("Request failed: %v", err)
	} else {
		utils.Log.WithField("path", c.Path()).Debug("Request rejected: %v", err)
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}
