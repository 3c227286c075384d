package http

import (
	"net/http"

	"github.com/event-reminder-api/internal/config"
	"github.com/event-reminder-api/internal/transport/http/handler"
	appmiddleware "github.com/event-reminder-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to the fan-out endpoints so a
	// misbehaving client can't spam pushes or reminder seeds.
	sendRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	healthH := handler.NewHealthHandler()
	notifH := handler.NewNotificationHandler(deps.NotificationSvc)
	reminderH := handler.NewReminderHandler(deps.ReminderSvc)
	tokenH := handler.NewTokenHandler(deps.TokenSvc)
	eventH := handler.NewEventHandler(deps.NotificationSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.With(sendRL.Limit).Post("/reminders/seed", reminderH.Seed)
		r.Get("/reminders/{id}", reminderH.Get)

		r.Post("/tokens", tokenH.Register)
		r.Get("/tokens/{uid}", tokenH.Lookup)

		r.With(sendRL.Limit).Post("/notifications/send", notifH.Send)
		r.Post("/notifications", notifH.Record)
		r.Get("/notifications/{uid}", notifH.List)
		r.Put("/notifications/{id}/read", notifH.MarkAsRead)

		r.With(sendRL.Limit).Post("/events/{eventID}/notify-registration", eventH.NotifyRegistration)
		r.With(sendRL.Limit).Post("/events/{eventID}/notify-change", eventH.NotifyChange)
	})

	return r
}
