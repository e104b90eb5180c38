package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/meddesk/clinic-booking/config"
	"github.com/meddesk/clinic-booking/cron"
	"github.com/meddesk/clinic-booking/db"
	"github.com/meddesk/clinic-booking/notifications"
	redisclient "github.com/meddesk/clinic-booking/redis"
	"github.com/meddesk/clinic-booking/routes"
	"github.com/meddesk/clinic-booking/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db.Init(cfg.DatabaseURL)
	db.Migrate()
	redisclient.Init(cfg.RedisAddr, cfg.RedisPassword)

	notifier := notifications.NewFromConfig(cfg)
	scheduler.Default = scheduler.NewService(
		scheduler.NewGormRepository(db.DB),
		redisclient.NewScheduleLocker(redisclient.Client, cfg.LockTTL),
		notifier,
		scheduler.SystemClock(),
		scheduler.DefaultConfig(),
	)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Clinic booking API")
	})
	routes.SetupAuthRoutes(app)
	routes.SetupDoctorRoutes(app)
	routes.SetupPatientRoutes(app)

	cron.StartCronJobs(notifier)

	fmt.Println("Server starting on port " + cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
