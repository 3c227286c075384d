package domain

import "time"

// User carries the single push-delivery token the mobile app registers for a
// uid. The rest of the user document belongs to other services.
type User struct {
	UID            string     `json:"uid" dynamodbav:"uid"`
	PushToken      string     `json:"push_token,omitempty" dynamodbav:"push_token"`
	TokenUpdatedAt *time.Time `json:"token_updated_at,omitempty" dynamodbav:"token_updated_at"`
}

type RegisterTokenRequest struct {
	UID   string `json:"uid" validate:"required"`
	Token string `json:"token" validate:"required"`
}
