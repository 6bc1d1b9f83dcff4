package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is one issued JWT, keyed by its jti claim. Revoking a session
// blacklists the token id until the token would have expired anyway.
type Session struct {
	TokenID   string    `json:"token_id"`
	UserID    uuid.UUID `json:"user_id"`
	UserAgent string    `json:"user_agent"`
	IP        string    `json:"ip"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
}

var ErrSessionNotFound = errors.New("session not found")

type SessionStore interface {
	Record(ctx context.Context, userID uuid.UUID, tokenID, userAgent, ip string) error
	List(ctx context.Context, userID uuid.UUID) ([]Session, error)
	Revoke(ctx context.Context, userID uuid.UUID, tokenID string) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	Touch(ctx context.Context, userID uuid.UUID, tokenID string) error
}
