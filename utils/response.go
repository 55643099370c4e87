// utils/response.go - JSON response helpers shared by the handlers
package utils

import (
	"github.com/gofiber/fiber/v2"
)

// Fail reports a domain failure: HTTP 200 with success=false.
func Fail(c *fiber.Ctx, message string) error {
	return c.JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// BadRequest reports a body that could not be parsed or validated.
func BadRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// Success sends success=true merged with data.
func Success(c *fiber.Ctx, data fiber.Map) error {
	response := fiber.Map{"success": true}
	for k, v := range data {
		response[k] = v
	}
	return c.JSON(response)
}

// ParseBody decodes the JSON body into v, answering 400 on failure. The
// returned bool is false when the response has already been written.
func ParseBody(c *fiber.Ctx, v interface{}) (bool, error) {
	if err := c.BodyParser(v); err != nil {
		return false, BadRequest(c, "Invalid request body")
	}
	return true, nil
}

// NonNil turns a nil slice into an empty one so lists encode as [] rather
// than null.
func NonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
