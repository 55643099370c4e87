package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const Version = "1.0.0"

// Health check endpoint
// GET /health
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"version":   Version,
	})
}
