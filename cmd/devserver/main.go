// Package main runs the development backend the check-in engine talks to.
// It implements token validation, check-in processing, geofence checks and
// scan logging over PostgreSQL and Redis.
package main

import (
	"log"
	"time"

	"clockin/internal/config"
	"clockin/internal/repositories"
	"clockin/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadEnv()

	db, err := repositories.InitDB()
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	redisClient, err := repositories.InitRedis()
	if err != nil {
		log.Fatalf("redis init failed: %v", err)
	}

	handler := server.NewHandler(
		repositories.NewScanTokenRepository(db),
		repositories.NewAttendanceRepository(db),
		repositories.NewStoreRepository(db),
		repositories.NewEmployeeRepository(db),
		server.NewRedisRateLimiter(redisClient, time.Minute, config.GetIntEnv("REMOTE_RATE_LIMIT_MAX", 10)),
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        config.GetIntEnv("HTTP_RATE_LIMIT", 120),
		Expiration: time.Minute,
	}))

	server.SetupRoutes(app, handler)

	addr := ":" + config.GetEnv("PORT", "8080")
	log.Printf("devserver listening on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
