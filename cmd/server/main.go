package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/railbook/train-reservation/internal/config"
	"github.com/railbook/train-reservation/internal/database"
	"github.com/railbook/train-reservation/internal/handler"
	"github.com/railbook/train-reservation/internal/notifier"
	"github.com/railbook/train-reservation/internal/processor"
	"github.com/railbook/train-reservation/internal/queue"
	"github.com/railbook/train-reservation/internal/repository"
	"github.com/railbook/train-reservation/internal/router"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: with a nil client the cache and rate-limit
	// middleware degrade to no-ops.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}

	jobRepo := repository.NewScheduledJobRepo(db)
	trainRepo := repository.NewTrainRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	passengerRepo := repository.NewPassengerRepo(db)
	reminderRepo := repository.NewReminderRepo(db)

	proc := processor.New(jobRepo, trainRepo, bookingRepo, passengerRepo, reminderRepo,
		notifier.NewPublisher(), processor.Config{
			Interval:         cfg.ProcessorInterval,
			PaymentDueWindow: cfg.PaymentDueWindow,
			ReminderLead:     cfg.ReminderLead,
		})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Background sweep loop: runs once at startup for prompt recovery
	// of jobs that became due while the process was down, then on the
	// configured cadence.
	go func() {
		if err := proc.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("processor stopped: %v", err)
		}
	}()

	// Notification consumer: stands in for the external email/SMS
	// sender, reading booking.processed events off the broker.
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterCatalog(e, handler.NewCatalogHandler(trainRepo), rdb)
	router.RegisterScheduledBookings(e,
		handler.NewScheduledBookingHandler(jobRepo, trainRepo, bookingRepo, passengerRepo, proc),
		cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
