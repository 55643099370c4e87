// main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mathking/cache"
	"mathking/config"
	"mathking/database"
	"mathking/handlers"
	"mathking/handlers/admin"
	"mathking/logger"
	"mathking/middleware"
	"mathking/natsclient"
	"mathking/repository"
	"mathking/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.Init(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg.Validate()

	if err := database.InitDB(cfg); err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer database.CloseDB()

	store := repository.NewStore(database.GetDB())

	// Optional infrastructure: both run fine without their servers.
	rankCache := newCache(cfg)
	defer rankCache.Close()

	hub := services.NewBroadcastHub()
	defer hub.Close()
	if cfg.NATSURL != "" {
		nc, err := natsclient.NewNatsClient(cfg.NATSURL)
		if err != nil {
			log.Warn("NATS unavailable, broadcasts stay local", zap.Error(err))
		} else {
			defer nc.Close()
			if err := hub.AttachRelay(nc); err != nil {
				log.Warn("failed to subscribe to broadcast relay", zap.Error(err))
			}
		}
	}

	gameService := services.NewGameService(store, hub, rankCache, services.GameConfig{
		DailyLimit: cfg.DailyLimit,
		Location:   cfg.Location,
	})
	adminService := services.NewAdminService(store, gameService)

	handlers.InitGameHandlers(gameService, hub)
	if err := admin.InitAdminHandlers(adminService, admin.Config{
		JWTSecret:         cfg.JWTSecret,
		AdminPassword:     cfg.AdminPassword,
		AdminPasswordHash: cfg.AdminPasswordHash,
		BackupDir:         cfg.BackupDir,
	}); err != nil {
		log.Fatal("failed to initialize admin handlers", zap.Error(err))
	}

	maintenance, err := services.InitMaintenanceService(adminService, services.MaintenanceConfig{
		BackupDir:      cfg.BackupDir,
		BackupSchedule: cfg.BackupSchedule,
		Location:       cfg.Location,
	})
	if err != nil {
		log.Fatal("invalid BACKUP_SCHEDULE", zap.Error(err))
	}
	maintenance.Start()
	defer maintenance.Stop()

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler(cfg.IsProduction()),
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		UnescapePath: true, // class names may contain spaces or CJK characters
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.FiberRateLimitMiddleware())

	setupRoutes(app, cfg)

	go func() {
		log.Info("HTTP server starting",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.AppEnv),
			zap.String("db_driver", cfg.DBDriver),
			zap.Bool("redis", cfg.RedisURL != ""),
			zap.Bool("nats", cfg.NATSURL != ""))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
}

func setupRoutes(app *fiber.App, cfg config.Config) {
	app.Get("/health", handlers.Health)

	api := app.Group("/api")

	// Roster
	api.Get("/classes", handlers.GetClasses)
	api.Get("/students/:className", handlers.GetStudents)

	// Play
	api.Post("/login", handlers.Login)
	api.Get("/question", handlers.GetQuestion)
	api.Post("/answer",
		middleware.BodyUserIDMiddleware,
		middleware.AnswerRateLimiter(60, time.Minute),
		handlers.SubmitAnswer)
	api.Post("/challenge/start", handlers.StartChallenge)
	api.Post("/gift", handlers.Gift)
	api.Post("/upgrade", handlers.Upgrade)
	api.Post("/update-usage", handlers.UpdateUsage)
	api.Get("/answer-history/:userId", handlers.GetAnswerHistory)
	api.Get("/wrong-questions/:userId", handlers.GetWrongQuestions)

	// Rankings and ticker
	api.Get("/rank/class/:className", handlers.GetClassRank)
	api.Get("/rank/total", handlers.GetTotalRank)
	api.Get("/broadcast", handlers.GetBroadcasts)
	api.Use("/broadcast/ws", handlers.WebSocketUpgrade)
	api.Get("/broadcast/ws", websocket.New(handlers.BroadcastSocket))

	// Admin routes
	adminGroup := api.Group("/admin")
	adminGroup.Post("/login", middleware.FiberAuthRateLimitMiddleware(), admin.Login)

	adminProtected := adminGroup.Group("", middleware.AdminAuthMiddleware(cfg.JWTSecret))
	adminProtected.Get("/verify", admin.VerifyToken)

	adminProtected.Get("/students", admin.GetStudents)
	adminProtected.Post("/students", admin.CreateStudent)
	adminProtected.Post("/students/batch", admin.ImportStudents)
	adminProtected.Put("/students/:id", admin.UpdateStudent)
	adminProtected.Delete("/students/:id", admin.DeleteStudent)

	adminProtected.Get("/questions", admin.GetQuestions)
	adminProtected.Post("/questions", admin.CreateQuestion)
	adminProtected.Post("/questions/batch", admin.ImportQuestions)
	adminProtected.Put("/questions/:id", admin.UpdateQuestion)
	adminProtected.Delete("/questions/:id", admin.DeleteQuestion)

	adminProtected.Get("/users", admin.GetUsers)
	adminProtected.Put("/users/:id", admin.UpdateUser)
	adminProtected.Delete("/users/:id", admin.DeleteUser)

	adminProtected.Get("/backup", admin.Backup)
	adminProtected.Get("/export", admin.Export)
	adminProtected.Get("/download-data", admin.DownloadData)
}

func newCache(cfg config.Config) cache.Cache {
	if cfg.RedisURL == "" {
		return cache.Noop{}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, "mathking:")
	if err != nil {
		zap.L().Warn("Redis unavailable, rankings are not cached", zap.Error(err))
		return cache.Noop{}
	}
	return rc
}

func customErrorHandler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		} else {
			zap.L().Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
			message = err.Error()
		}

		// Don't expose internal errors in production
		if production && code == fiber.StatusInternalServerError {
			message = "An error occurred. Please try again later."
		}

		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   message,
		})
	}
}
