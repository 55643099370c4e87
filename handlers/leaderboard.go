// handlers/leaderboard.go - Class and global rankings
package handlers

import (
	"mathking/utils"

	"github.com/gofiber/fiber/v2"
)

// GetClassRank ranks one class by level
// GET /api/rank/class/:className
func GetClassRank(c *fiber.Ctx) error {
	users, err := gameService.ClassRank(c.UserContext(), c.Params("className"))
	if err != nil {
		return err
	}
	return c.JSON(utils.NonNil(users))
}

// GetTotalRank returns the global top 50
// GET /api/rank/total
func GetTotalRank(c *fiber.Ctx) error {
	users, err := gameService.TotalRank(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(utils.NonNil(users))
}
