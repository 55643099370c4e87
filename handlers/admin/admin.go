// handlers/admin/admin.go - Shared state for the admin API
package admin

import (
	"errors"
	"fmt"

	"mathking/game"
	"mathking/services"
	"mathking/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	JWTSecret         string
	AdminPassword     string
	AdminPasswordHash string
	BackupDir         string
}

var (
	adminService *services.AdminService
	jwtSecret    []byte
	passwordHash []byte
	backupDir    string
)

// InitAdminHandlers wires the admin service and prepares the password hash.
// A plain ADMIN_PASSWORD is hashed once here so logins always go through bcrypt.
func InitAdminHandlers(svc *services.AdminService, cfg Config) error {
	if svc == nil {
		return errors.New("admin service not initialized before InitAdminHandlers")
	}

	switch {
	case cfg.AdminPasswordHash != "":
		passwordHash = []byte(cfg.AdminPasswordHash)
	case cfg.AdminPassword != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		passwordHash = hash
	default:
		return errors.New("admin password not configured")
	}

	adminService = svc
	jwtSecret = []byte(cfg.JWTSecret)
	backupDir = cfg.BackupDir
	return nil
}

var failureMessages = []struct {
	err     error
	message string
}{
	{services.ErrStudentExists, "Student already exists"},
	{services.ErrStudentNotFound, "Student not found"},
	{services.ErrQuestionNotFound, "Question not found"},
	{services.ErrUserNotFound, "User not found"},
	{services.ErrInvalidDifficulty, "Difficulty must be easy, medium or hard"},
	{services.ErrEmptyBatch, "No records to import"},
	{game.ErrUnknownElement, "Unknown element"},
}

func respondError(c *fiber.Ctx, err error) error {
	var batchErr *services.BatchError
	if errors.As(err, &batchErr) {
		return utils.Fail(c, fmt.Sprintf("Entry %d is invalid: %s", batchErr.Index+1, batchErr.Reason))
	}
	for _, f := range failureMessages {
		if errors.Is(err, f.err) {
			return utils.Fail(c, f.message)
		}
	}
	return err
}

func paramID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}
