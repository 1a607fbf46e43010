package post

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the slice of the post store this service touches: posts are
// written elsewhere and only cleaned up here after an account is deleted.
type Repository interface {
	// DeleteByUser removes every post of userID and reports how many went.
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
