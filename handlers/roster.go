// handlers/roster.go - Class and student listings for the login screen
package handlers

import (
	"mathking/utils"

	"github.com/gofiber/fiber/v2"
)

// GetClasses lists the distinct class names
// GET /api/classes
func GetClasses(c *fiber.Ctx) error {
	classes, err := gameService.Classes(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(utils.NonNil(classes))
}

// GetStudents lists a class roster
// GET /api/students/:className
func GetStudents(c *fiber.Ctx) error {
	students, err := gameService.Students(c.UserContext(), c.Params("className"))
	if err != nil {
		return err
	}
	return c.JSON(utils.NonNil(students))
}
