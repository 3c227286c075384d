package domain

import "time"

// Event is owned by the events platform; this service only reads it to
// resolve the organizer.
type Event struct {
	EventID      string    `json:"id" dynamodbav:"event_id"`
	OrganizerUID string    `json:"organizer_uid" dynamodbav:"organizer_uid"`
	Title        string    `json:"title" dynamodbav:"title"`
	StartsAt     time.Time `json:"starts_at" dynamodbav:"starts_at"`
}

// Attendance is the read-only join row enumerating registered users per event.
type Attendance struct {
	AttendanceID string `json:"id" dynamodbav:"attendance_id"`
	EventID      string `json:"event_id" dynamodbav:"event_id"`
	UID          string `json:"uid" dynamodbav:"uid"`
}

type RegistrationNoticeRequest struct {
	ActorUID   string `json:"actor_uid" validate:"required"`
	ActorName  string `json:"actor_name" validate:"required"`
	EventTitle string `json:"event_title" validate:"required"`
}

type EventChangeNoticeRequest struct {
	EventTitle string `json:"event_title" validate:"required"`
	Message    string `json:"message"`
	NewDate    string `json:"new_date"`
}
