package post

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hurmain7/devconnect/internal/application/service"
	"github.com/hurmain7/devconnect/internal/domain/post"
	"github.com/hurmain7/devconnect/pkg/logger"
)

// PurgeUserPostsUseCase finishes an account deletion by removing the posts
// the deleted user left behind.
type PurgeUserPostsUseCase struct {
	postRepo post.Repository
	logger   logger.Logger
}

func NewPurgeUserPostsUseCase(pr post.Repository, log logger.Logger) *PurgeUserPostsUseCase {
	return &PurgeUserPostsUseCase{postRepo: pr, logger: log}
}

func (uc *PurgeUserPostsUseCase) Execute(ctx context.Context, e service.Event) error {
	if e.EventType != service.EventAccountDeleted {
		uc.logger.Debug("Skipping event", zap.String("event_type", string(e.EventType)))
		return nil
	}

	removed, err := uc.postRepo.DeleteByUser(ctx, e.UserID)
	if err != nil {
		return fmt.Errorf("delete posts of user %s failed: %w", e.UserID, err)
	}

	uc.logger.Info("Purged posts of deleted account",
		zap.String("user_id", e.UserID.String()),
		zap.Int64("posts_removed", removed),
	)
	return nil
}
