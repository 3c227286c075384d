package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/event-reminder-api/internal/application/notification"
	"github.com/event-reminder-api/internal/application/reminder"
	"github.com/event-reminder-api/internal/application/token"
	"github.com/event-reminder-api/internal/config"
	"github.com/event-reminder-api/internal/infrastructure/dynamo"
	s3infra "github.com/event-reminder-api/internal/infrastructure/s3"
	"github.com/event-reminder-api/internal/infrastructure/sns"
	transporthttp "github.com/event-reminder-api/internal/transport/http"
	"github.com/event-reminder-api/internal/worker"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	loc, err := time.LoadLocation(cfg.ReminderTimezone)
	if err != nil {
		log.Fatalf("invalid REMINDER_TIMEZONE %q: %v", cfg.ReminderTimezone, err)
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// SNS push gateway. The service cannot deliver anything without it.
	pushSender, err := sns.NewSender(cfg)
	if err != nil {
		log.Fatalf("push gateway not available: %v", err)
	}

	// S3 archive store for finished reminders.
	s3Client := s3infra.NewClient(cfg)
	archiveStore := s3infra.NewStore(s3Client, cfg.ArchiveBucket)

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	reminderRepo := dynamo.NewReminderRepo(dynamoClient, cfg.DynamoTables.Reminders)

	notifSvc := notification.NewService(notification.ServiceDeps{
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		UserRepo:         userRepo,
		EventRepo:        dynamo.NewEventRepo(dynamoClient, cfg.DynamoTables.Events),
		AttendanceRepo:   dynamo.NewAttendanceRepo(dynamoClient, cfg.DynamoTables.Attendances),
		Gateway:          pushSender,
	})
	reminderSvc := reminder.NewService(reminder.ServiceDeps{
		ReminderRepo:  reminderRepo,
		Dispatcher:    notifSvc,
		ArchiveStore:  archiveStore,
		Location:      loc,
		IntervalDays:  cfg.ReminderIntervalDays,
		RetentionDays: cfg.ArchiveRetentionDays,
	})
	tokenSvc := token.NewService(userRepo)

	// Background worker: due-reminder scan + daily archive export.
	w := worker.NewReminderWorker(reminderSvc, loc, cfg.ReminderScanLimit)
	if err := w.Start(cfg.ReminderScanSpec, cfg.ArchiveSpec); err != nil {
		log.Fatalf("could not start reminder worker: %v", err)
	}

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		NotificationSvc: notifSvc,
		ReminderSvc:     reminderSvc,
		TokenSvc:        tokenSvc,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	w.Stop(ctx)
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
