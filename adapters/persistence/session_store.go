package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hurmain7/devconnect/internal/application/service"
)

const revokedSessionPrefix = "session:revoked:"

type redisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionStore keeps a revocation marker per user for ttl, which
// should match the token lifespan: older tokens have expired by then anyway.
func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) service.SessionRevoker {
	return &redisSessionStore{rdb: rdb, ttl: ttl}
}

func revokedKey(userID uuid.UUID) string {
	return revokedSessionPrefix + userID.String()
}

func (s *redisSessionStore) Revoke(ctx context.Context, userID uuid.UUID) error {
	if err := s.rdb.Set(ctx, revokedKey(userID), time.Now().UTC().Unix(), s.ttl).Err(); err != nil {
		return fmt.Errorf("revoke sessions of %s: %w", userID, err)
	}
	return nil
}

func (s *redisSessionStore) IsRevoked(ctx context.Context, userID uuid.UUID) (bool, error) {
	err := s.rdb.Get(ctx, revokedKey(userID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check revoked sessions of %s: %w", userID, err)
	}
	return true, nil
}
