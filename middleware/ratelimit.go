// middleware/ratelimit.go
package middleware

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Limits are read from the environment when the middleware is built.
// Windows are given in milliseconds.
type limitConfig struct {
	max    int
	window time.Duration
}

func loadLimit(maxKey, windowKey string, defMax int, defWindow time.Duration) limitConfig {
	cfg := limitConfig{
		max:    getEnvInt(maxKey, defMax),
		window: time.Duration(getEnvInt(windowKey, int(defWindow/time.Millisecond))) * time.Millisecond,
	}
	if cfg.max <= 0 {
		cfg.max = defMax
	}
	if cfg.window <= 0 {
		cfg.window = defWindow
	}
	return cfg
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return def
}

func rateLimitDisabled() bool {
	// RATE_LIMIT_ENABLED=false disables limiter
	val := strings.ToLower(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")))
	return val == "false" || val == "0" || val == "no"
}

// unlimitedPaths are never counted: health probes and the long-lived ticker socket.
var unlimitedPaths = map[string]bool{
	"/health":           true,
	"/api/broadcast/ws": true,
}

// FiberRateLimitMiddleware applies general per-IP rate limiting
// (RATE_LIMIT_MAX_REQUESTS per RATE_LIMIT_WINDOW_MS, default 300 per minute).
func FiberRateLimitMiddleware() fiber.Handler {
	cfg := loadLimit("RATE_LIMIT_MAX_REQUESTS", "RATE_LIMIT_WINDOW_MS", 300, time.Minute)
	return limiter.New(limiter.Config{
		Max:        cfg.max,
		Expiration: cfg.window,
		Next: func(c *fiber.Ctx) bool {
			return rateLimitDisabled() || unlimitedPaths[c.Path()]
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Rate limit exceeded. Please try again later.",
			})
		},
	})
}

// FiberAuthRateLimitMiddleware applies stricter rate limiting to the admin
// login (AUTH_RATE_LIMIT_MAX per AUTH_RATE_LIMIT_WINDOW_MS, default 5 per 5
// minutes), counted over a sliding window.
func FiberAuthRateLimitMiddleware() fiber.Handler {
	cfg := loadLimit("AUTH_RATE_LIMIT_MAX", "AUTH_RATE_LIMIT_WINDOW_MS", 5, 5*time.Minute)
	return limiter.New(limiter.Config{
		Max:               cfg.max,
		Expiration:        cfg.window,
		LimiterMiddleware: limiter.SlidingWindow{},
		Next: func(c *fiber.Ctx) bool {
			return rateLimitDisabled()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many authentication attempts. Please try again later.",
			})
		},
	})
}

// userIDBody is used only to extract userId from a POST body for rate limiting.
type userIDBody struct {
	UserID string `json:"userId"`
}

// BodyUserIDMiddleware stores the userId of a JSON POST body in Locals so the
// answer limiter can key by player.
func BodyUserIDMiddleware(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Next()
	}
	body := c.Body()
	if len(body) == 0 {
		return c.Next()
	}
	var req userIDBody
	if err := json.Unmarshal(body, &req); err != nil {
		return c.Next()
	}
	if req.UserID != "" {
		c.Locals("rateLimitUserId", req.UserID)
	}
	return c.Next()
}

// RateLimitKeyByUser keys per user when a userId is known, else per IP.
func RateLimitKeyByUser(c *fiber.Ctx) string {
	if uid, ok := c.Locals("rateLimitUserId").(string); ok && uid != "" {
		return "user:" + uid
	}
	if q := c.Query("userId"); q != "" {
		return "user:" + q
	}
	return c.IP()
}

// AnswerRateLimiter caps answer submissions per player.
func AnswerRateLimiter(maxAnswers int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        maxAnswers,
		Expiration: window,
		Next: func(c *fiber.Ctx) bool {
			return rateLimitDisabled()
		},
		KeyGenerator: RateLimitKeyByUser,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Too many answers. Please slow down.",
			})
		},
	})
}
