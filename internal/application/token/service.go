package token

import (
	"context"

	"github.com/event-reminder-api/internal/domain"
)

// Service registers the push-delivery token a device reports for a uid.
type Service interface {
	Register(ctx context.Context, req domain.RegisterTokenRequest) error
	// Lookup returns the user's current token registration, or ErrNotFound
	// when the uid has never registered a device.
	Lookup(ctx context.Context, uid string) (*domain.User, error)
}

type tokenStore interface {
	PutToken(ctx context.Context, uid, token string) error
	Get(ctx context.Context, uid string) (*domain.User, error)
}

type service struct {
	repo tokenStore
}

func NewService(repo tokenStore) Service {
	return &service{repo: repo}
}

// Register upserts the token; re-registering the same device simply refreshes
// token_updated_at.
func (s *service) Register(ctx context.Context, req domain.RegisterTokenRequest) error {
	return s.repo.PutToken(ctx, req.UID, req.Token)
}

func (s *service) Lookup(ctx context.Context, uid string) (*domain.User, error) {
	return s.repo.Get(ctx, uid)
}
