package admin

import (
	"fmt"
	"time"

	"mathking/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Backup writes a snapshot file on the server
// GET /api/admin/backup
func Backup(c *fiber.Ctx) error {
	name, err := adminService.Backup(c.UserContext(), backupDir)
	if err != nil {
		zap.L().Error("manual backup failed", zap.Error(err))
		return utils.Fail(c, "Backup failed")
	}
	return utils.Success(c, fiber.Map{"filename": name})
}

// Export returns every store in one document
// GET /api/admin/export
func Export(c *fiber.Ctx) error {
	snap, err := adminService.Export(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(snap)
}

// DownloadData serves users and broadcasts as a file download
// GET /api/admin/download-data
func DownloadData(c *fiber.Ctx) error {
	data, err := adminService.GameData(c.UserContext())
	if err != nil {
		return err
	}
	filename := fmt.Sprintf("data_%s.json", time.Now().UTC().Format("20060102-150405"))
	c.Attachment(filename)
	return c.JSON(data)
}
