package persistence

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hurmain7/devconnect/internal/domain/post"
	"github.com/hurmain7/devconnect/pkg/apperror"
	"github.com/hurmain7/devconnect/pkg/logger"
)

type postgresPostRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresPostRepo(db *pgxpool.Pool, logger logger.Logger) post.Repository {
	return &postgresPostRepo{db: db, logger: logger}
}

func (r *postgresPostRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	query, args, err := psql.Delete("posts").Where(sq.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return 0, apperror.NewInternal("failed to build delete posts query", err)
	}
	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, apperror.NewInternal("failed to delete posts of user", err)
	}
	return cmdTag.RowsAffected(), nil
}
