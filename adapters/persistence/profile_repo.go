package persistence

import (
	"context"
	"encoding/json"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hurmain7/devconnect/internal/domain/profile"
	"github.com/hurmain7/devconnect/internal/domain/user"
	"github.com/hurmain7/devconnect/pkg/apperror"
	"github.com/hurmain7/devconnect/pkg/logger"
)

const pgForeignKeyViolation = "23503"

type postgresProfileRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProfileRepo(db *pgxpool.Pool, logger logger.Logger) profile.Repository {
	return &postgresProfileRepo{db: db, logger: logger}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// selectProfiles joins the owning user so name and avatar come back populated.
func selectProfiles() sq.SelectBuilder {
	return psql.Select(
		"p.user_id",
		"COALESCE(u.name, '')",
		"COALESCE(u.avatar, '')",
		"COALESCE(p.profile_name, '')",
		"COALESCE(p.company, '')",
		"COALESCE(p.website, '')",
		"COALESCE(p.location, '')",
		"COALESCE(p.bio, '')",
		"COALESCE(p.status, '')",
		"COALESCE(p.githubusername, '')",
		"p.skills",
		"p.social",
		"p.experience",
		"p.education",
		"p.created_at",
		"p.updated_at",
	).From("profiles p").LeftJoin("users u ON u.id = p.user_id")
}

func scanProfile(row pgx.Row, l logger.Logger) (*profile.Profile, error) {
	p := &profile.Profile{}
	var socialBytes, experienceBytes, educationBytes []byte

	err := row.Scan(
		&p.UserID, &p.User.Name, &p.User.Avatar,
		&p.ProfileName, &p.Company, &p.Website, &p.Location, &p.Bio, &p.Status, &p.GithubUsername,
		&p.Skills, &socialBytes, &experienceBytes, &educationBytes,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, profile.ErrProfileNotFound
		}
		return nil, apperror.NewInternal("failed to scan profile row", err)
	}
	p.User.ID = p.UserID

	if err := json.Unmarshal(socialBytes, &p.Social); err != nil {
		l.Warn("Failed to unmarshal social", zap.String("user_id", p.UserID.String()), zap.Error(err))
		p.Social = profile.Social{}
	}
	if err := json.Unmarshal(experienceBytes, &p.Experience); err != nil || p.Experience == nil {
		if err != nil {
			l.Warn("Failed to unmarshal experience", zap.String("user_id", p.UserID.String()), zap.Error(err))
		}
		p.Experience = []profile.Experience{}
	}
	if err := json.Unmarshal(educationBytes, &p.Education); err != nil || p.Education == nil {
		if err != nil {
			l.Warn("Failed to unmarshal education", zap.String("user_id", p.UserID.String()), zap.Error(err))
		}
		p.Education = []profile.Education{}
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return p, nil
}

func scanProfiles(rows pgx.Rows, l logger.Logger) ([]*profile.Profile, error) {
	defer rows.Close()
	profiles := make([]*profile.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows, l)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating profile rows", err)
	}
	return profiles, nil
}

func (r *postgresProfileRepo) queryOne(ctx context.Context, q pgx.Tx, builder sq.SelectBuilder) (*profile.Profile, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build profile query", err)
	}
	if q != nil {
		return scanProfile(q.QueryRow(ctx, query, args...), r.logger)
	}
	return scanProfile(r.db.QueryRow(ctx, query, args...), r.logger)
}

func (r *postgresProfileRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	return r.queryOne(ctx, nil, selectProfiles().Where(sq.Eq{"p.user_id": userID}))
}

func (r *postgresProfileRepo) FindAllByUser(ctx context.Context, userID uuid.UUID) ([]*profile.Profile, error) {
	query, args, err := selectProfiles().Where(sq.Eq{"p.user_id": userID}).ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build profiles by user query", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query profiles by user", err)
	}
	return scanProfiles(rows, r.logger)
}

func (r *postgresProfileRepo) ListAll(ctx context.Context) ([]*profile.Profile, error) {
	query, args, err := selectProfiles().OrderBy("p.created_at DESC").ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list profiles query", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query profiles", err)
	}
	return scanProfiles(rows, r.logger)
}

// Upsert is one INSERT ... ON CONFLICT statement, so concurrent writes for the
// same user are serialized by the primary key. Absent fields are sent as NULL
// and keep the stored value.
func (r *postgresProfileRepo) Upsert(ctx context.Context, f profile.Fields) (*profile.Profile, error) {
	socialBytes, err := json.Marshal(f.Social)
	if err != nil {
		return nil, apperror.NewInternal("failed to marshal social", err)
	}
	var skills any
	if f.Skills != nil {
		skills = f.Skills
	}

	query := `
		INSERT INTO profiles (user_id, profile_name, company, website, location, bio, status, githubusername, skills, social, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9::text[], '{}'), $10, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			profile_name = COALESCE(EXCLUDED.profile_name, profiles.profile_name),
			company = COALESCE(EXCLUDED.company, profiles.company),
			website = COALESCE(EXCLUDED.website, profiles.website),
			location = COALESCE(EXCLUDED.location, profiles.location),
			bio = COALESCE(EXCLUDED.bio, profiles.bio),
			status = COALESCE(EXCLUDED.status, profiles.status),
			githubusername = COALESCE(EXCLUDED.githubusername, profiles.githubusername),
			skills = COALESCE($9::text[], profiles.skills),
			social = EXCLUDED.social,
			updated_at = NOW()
	`

	var saved *profile.Profile
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			f.UserID, f.ProfileName, f.Company, f.Website, f.Location, f.Bio, f.Status, f.GithubUsername,
			skills, socialBytes,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
				return user.ErrUserNotFound
			}
			return apperror.NewInternal("failed to upsert profile", err)
		}

		saved, err = r.queryOne(ctx, tx, selectProfiles().Where(sq.Eq{"p.user_id": f.UserID}))
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *postgresProfileRepo) Update(ctx context.Context, userID uuid.UUID, fn func(p *profile.Profile) error) (*profile.Profile, error) {
	var updated *profile.Profile
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		p, err := r.queryOne(ctx, tx, selectProfiles().Where(sq.Eq{"p.user_id": userID}).Suffix("FOR UPDATE OF p"))
		if err != nil {
			return err
		}

		if err := fn(p); err != nil {
			return err
		}

		socialBytes, err := json.Marshal(p.Social)
		if err != nil {
			return apperror.NewInternal("failed to marshal social", err)
		}
		experienceBytes, err := json.Marshal(p.Experience)
		if err != nil {
			return apperror.NewInternal("failed to marshal experience", err)
		}
		educationBytes, err := json.Marshal(p.Education)
		if err != nil {
			return apperror.NewInternal("failed to marshal education", err)
		}

		query := `
			UPDATE profiles SET
				profile_name = $2, company = $3, website = $4, location = $5, bio = $6,
				status = $7, githubusername = $8, skills = $9, social = $10,
				experience = $11, education = $12, updated_at = NOW()
			WHERE user_id = $1
			RETURNING updated_at
		`
		err = tx.QueryRow(ctx, query,
			userID, p.ProfileName, p.Company, p.Website, p.Location, p.Bio,
			p.Status, p.GithubUsername, p.Skills, socialBytes,
			experienceBytes, educationBytes,
		).Scan(&p.UpdatedAt)
		if err != nil {
			return apperror.NewInternal("failed to update profile", err)
		}

		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *postgresProfileRepo) Remove(ctx context.Context, userID uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	if err != nil {
		return apperror.NewInternal("failed to delete profile", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return profile.ErrProfileNotFound
	}
	return nil
}
