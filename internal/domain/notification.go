package domain

import (
	"fmt"
	"time"
)

// Payload is the opaque key/value metadata attached to a push notification.
// The messaging gateway only accepts string-typed metadata, so values are
// coerced to text via Strings before transmission.
type Payload map[string]interface{}

// Strings returns a copy of the payload with every value rendered as text.
func (p Payload) Strings() map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = fmt.Sprint(v)
	}
	return out
}

// NotificationRecord is one row in the per-user notification center.
// Immutable after creation except the Read flag.
type NotificationRecord struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	UID            string    `json:"uid" dynamodbav:"uid"`
	Title          string    `json:"title" dynamodbav:"title"`
	Body           string    `json:"body" dynamodbav:"body"`
	Data           Payload   `json:"data" dynamodbav:"data"`
	Read           bool      `json:"read" dynamodbav:"read"`
	SentAt         time.Time `json:"sent_at" dynamodbav:"sent_at"`
}

// TokenResult is the gateway's outcome for a single device token.
type TokenResult struct {
	Token   string `json:"token"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// PushResult aggregates a multicast send.
type PushResult struct {
	SuccessCount int           `json:"success_count"`
	FailureCount int           `json:"failure_count"`
	Responses    []TokenResult `json:"responses"`
}

// DispatchResult is what a fan-out returns: the notification rows persisted
// (when save was requested) and the per-token push outcome. Reason is set
// instead when the audience could not be resolved at all (no organizer,
// no attendees) and nothing was sent.
type DispatchResult struct {
	Saved  []NotificationRecord `json:"saved"`
	Sent   *PushResult          `json:"sent"`
	Reason string               `json:"reason,omitempty"`
}

type SendNotificationRequest struct {
	UIDs  []string `json:"uids" validate:"required,min=1,dive,required"`
	Title string   `json:"title" validate:"required"`
	Body  string   `json:"body" validate:"required"`
	Data  Payload  `json:"data"`
	Save  *bool    `json:"save"` // defaults to true
}

type RecordNotificationRequest struct {
	UID   string  `json:"uid" validate:"required"`
	Title string  `json:"title" validate:"required"`
	Body  string  `json:"body" validate:"required"`
	Data  Payload `json:"data"`
}
