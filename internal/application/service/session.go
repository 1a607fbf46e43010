package service

import (
	"context"

	"github.com/google/uuid"
)

// SessionRevoker invalidates every outstanding token of a user.
type SessionRevoker interface {
	Revoke(ctx context.Context, userID uuid.UUID) error
	IsRevoked(ctx context.Context, userID uuid.UUID) (bool, error)
}
