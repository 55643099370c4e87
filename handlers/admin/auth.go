package admin

import (
	"time"

	"mathking/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// Login exchanges the admin password for a token
// POST /api/admin/login
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if ok, err := utils.ParseBody(c, &req); !ok {
		return err
	}
	if req.Password == "" {
		return utils.BadRequest(c, "Password is required")
	}

	if err := bcrypt.CompareHashAndPassword(passwordHash, []byte(req.Password)); err != nil {
		zap.L().Warn("failed admin login", zap.String("ip", c.IP()))
		return c.Status(401).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid credentials",
		})
	}

	token, expiresAt, err := generateAdminToken(time.Now())
	if err != nil {
		return err
	}

	return c.JSON(LoginResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// VerifyToken confirms the bearer token is still valid
// GET /api/admin/verify
func VerifyToken(c *fiber.Ctx) error {
	// Token is already validated by middleware
	return c.JSON(fiber.Map{
		"valid":      true,
		"is_admin":   c.Locals("isAdmin"),
		"expires_at": c.Locals("tokenExpiresAt"),
	})
}

func generateAdminToken(now time.Time) (string, int64, error) {
	expiresAt := now.Add(tokenTTL).Unix()

	claims := jwt.MapClaims{
		"sub":      "admin",
		"is_admin": true,
		"exp":      expiresAt,
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", 0, err
	}
	return tokenString, expiresAt, nil
}
