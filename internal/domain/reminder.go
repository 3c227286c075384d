package domain

import "time"

// Reminder statuses. A record moves pending → processing → sent|failed and
// transitions exactly once; the intermediate processing state is the claim
// that keeps two concurrent runners from double-sending the same row.
const (
	ReminderPending    = "pending"
	ReminderProcessing = "processing"
	ReminderSent       = "sent"
	ReminderFailed     = "failed"
)

// ReminderRecord is one scheduled send for an event. Rows are created in bulk
// by the scheduler and mutated exactly once by the runner; they are never
// deleted, a failed row stays failed until an operator reseeds or replays it.
type ReminderRecord struct {
	ReminderID string     `json:"id" dynamodbav:"reminder_id"`
	UID        string     `json:"uid" dynamodbav:"uid"`
	EventID    string     `json:"event_id" dynamodbav:"event_id"`
	EventTitle string     `json:"event_title" dynamodbav:"event_title"`
	SendAt     time.Time  `json:"send_at" dynamodbav:"send_at"`
	Status     string     `json:"status" dynamodbav:"status"`
	CreatedAt  time.Time  `json:"created_at" dynamodbav:"created_at"`
	SentAt     *time.Time `json:"sent_at,omitempty" dynamodbav:"sent_at"`
	Error      string     `json:"error,omitempty" dynamodbav:"error"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty" dynamodbav:"updated_at"`
}

type SeedRemindersRequest struct {
	UID        string `json:"uid" validate:"required"`
	EventID    string `json:"event_id" validate:"required"`
	EventTitle string `json:"event_title" validate:"required"`
	// EventDate accepts RFC 3339, e.g. "2024-06-10T18:00:00Z".
	EventDate        time.Time `json:"event_date" validate:"required"`
	IntervalDays     int       `json:"interval_days" validate:"omitempty,min=1"`
	TestEveryMinutes int       `json:"test_every_minutes" validate:"omitempty,min=1"`
}
