package admin

import (
	"mathking/services"
	"mathking/utils"

	"github.com/gofiber/fiber/v2"
)

// GetUsers returns every progress record
// GET /api/admin/users
func GetUsers(c *fiber.Ctx) error {
	users, err := adminService.Users(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(utils.NonNil(users))
}

// UpdateUser edits level and element counts
// PUT /api/admin/users/:id
func UpdateUser(c *fiber.Ctx) error {
	var edit services.UserEdit
	if ok, err := utils.ParseBody(c, &edit); !ok {
		return err
	}

	user, err := adminService.UpdateUser(c.UserContext(), c.Params("id"), edit)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"user": user})
}

// DeleteUser removes a progress record
// DELETE /api/admin/users/:id
func DeleteUser(c *fiber.Ctx) error {
	if err := adminService.DeleteUser(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, nil)
}
