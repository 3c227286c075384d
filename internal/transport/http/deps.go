package http

import (
	"github.com/event-reminder-api/internal/application/notification"
	"github.com/event-reminder-api/internal/application/reminder"
	"github.com/event-reminder-api/internal/application/token"
)

// Deps holds the application services the router exposes. They are built once
// at startup and shared with the background worker, so construction happens
// in main rather than here.
type Deps struct {
	NotificationSvc notification.Service
	ReminderSvc     reminder.Service
	TokenSvc        token.Service
}
