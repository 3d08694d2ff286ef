package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"

	config "github.com/edaline/tutorhub/configs"
	"github.com/edaline/tutorhub/database"
	"github.com/edaline/tutorhub/handlers"
	"github.com/edaline/tutorhub/jobs"
	"github.com/edaline/tutorhub/lock"
	"github.com/edaline/tutorhub/notifications"
	"github.com/edaline/tutorhub/routes"
	"github.com/edaline/tutorhub/scheduling"
)

func main() {
	database.ConnectDB()
	database.Migrate()
	database.SeedAdmin()
	notifications.InitEmailService()

	var locker lock.Locker
	if addr := config.Config("REDIS_ADDR"); addr != "" {
		rl, err := lock.NewRedisLock(addr)
		if err != nil {
			log.Fatalf("🔥 Failed to connect to Redis: %v", err)
		}
		locker = rl
		log.Println("✅ Using Redis slot locks")
	} else {
		locker = lock.NewKeyMutex()
		log.Println("⚠️ REDIS_ADDR not set, using in-process slot locks")
	}

	engine := scheduling.NewEngine(database.NewStore(database.DB), locker, scheduling.Config{
		CutoffHour: config.ConfigInt("BOOKING_CUTOFF_HOUR", 0),
		HoldTTL:    time.Duration(config.ConfigInt("HOLD_TTL_MINUTES", 15)) * time.Minute,
	})
	handlers.SetEngine(engine)

	c := cron.New()
	c.AddFunc("* * * * *", jobs.SweepExpiredHolds)
	c.AddFunc("*/5 * * * *", jobs.CompleteFinishedClasses)
	c.AddFunc("*/5 * * * *", jobs.SendClassReminders)
	go c.Start()
	log.Println("✅ Cron jobs scheduled successfully.")

	app := fiber.New(fiber.Config{
		Prefork:       false,
		AppName:       "TutorHub",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.AuthRoutes(app)
	routes.TeacherRoutes(app)
	routes.BookingRoutes(app)
	routes.AdminRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	log.Println("✅ Server is running on port 8080")
	if err := app.Listen(":8080"); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
