package profile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/hurmain7/devconnect/internal/application/service"
	"github.com/hurmain7/devconnect/internal/domain/profile"
	"github.com/hurmain7/devconnect/internal/domain/user"
	"github.com/hurmain7/devconnect/pkg/apperror"
	"github.com/hurmain7/devconnect/pkg/logger"
)

const publishTimeout = 5 * time.Second

var tracer = otel.Tracer("profile_usecase")

type ProfileUseCase struct {
	profileRepo profile.Repository
	userRepo    user.Repository
	revoker     service.SessionRevoker
	events      service.EventPublisher
	logger      logger.Logger
}

func NewProfileUseCase(
	profileRepo profile.Repository,
	userRepo user.Repository,
	revoker service.SessionRevoker,
	events service.EventPublisher,
	log logger.Logger,
) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		revoker:     revoker,
		events:      events,
		logger:      log,
	}
}

func errNoProfileForUser(userID uuid.UUID) *apperror.AppError {
	return apperror.NewNotFoundMessage(
		"There is no profile for this user",
		fmt.Sprintf("no profile for user '%s'", userID),
	).WithStatus(http.StatusBadRequest).AsErrorList()
}

type GetProfileInput struct {
	UserID uuid.UUID
}

type GetProfileOutput struct {
	Profile *profile.Profile
}

func (uc *ProfileUseCase) ExecuteGetProfile(ctx context.Context, input GetProfileInput) (*GetProfileOutput, error) {
	ctx, span := tracer.Start(ctx, "ExecuteGetProfile")
	defer span.End()

	p, err := uc.profileRepo.FindByUser(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return nil, errNoProfileForUser(input.UserID)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("get profile failed: %w", err)
	}
	return &GetProfileOutput{Profile: p}, nil
}

type UpsertProfileOutput struct {
	Profile *profile.Profile
}

func (uc *ProfileUseCase) ExecuteUpsertProfile(ctx context.Context, input UpsertProfileInput) (*UpsertProfileOutput, error) {
	ctx, span := tracer.Start(ctx, "ExecuteUpsertProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", input.UserID.String()))

	fields := ProjectFields(input)

	p, err := uc.profileRepo.Upsert(ctx, fields)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperror.NewNotFound("User", input.UserID.String())
		}
		span.RecordError(err)
		return nil, fmt.Errorf("upsert profile failed: %w", err)
	}

	uc.publishProfileEvent(service.EventProfileUpserted, input.UserID, nil)
	return &UpsertProfileOutput{Profile: p}, nil
}

type ListProfilesOutput struct {
	Profiles []*profile.Profile
}

func (uc *ProfileUseCase) ExecuteListProfiles(ctx context.Context) (*ListProfilesOutput, error) {
	ctx, span := tracer.Start(ctx, "ExecuteListProfiles")
	defer span.End()

	profiles, err := uc.profileRepo.ListAll(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list profiles failed: %w", err)
	}
	return &ListProfilesOutput{Profiles: profiles}, nil
}

// GetProfilesByUserInput takes the raw path value; a malformed id is treated
// like an unknown one.
type GetProfilesByUserInput struct {
	UserID string
}

type GetProfilesByUserOutput struct {
	Profiles []*profile.Profile
}

func (uc *ProfileUseCase) ExecuteGetProfilesByUser(ctx context.Context, input GetProfilesByUserInput) (*GetProfilesByUserOutput, error) {
	ctx, span := tracer.Start(ctx, "ExecuteGetProfilesByUser")
	defer span.End()

	notFound := apperror.NewNotFoundMessage(
		"Profile not found",
		fmt.Sprintf("no profile for user id '%s'", input.UserID),
	).WithStatus(http.StatusBadRequest)

	userID, err := uuid.Parse(input.UserID)
	if err != nil {
		return nil, notFound
	}

	profiles, err := uc.profileRepo.FindAllByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("get profiles by user failed: %w", err)
	}
	if len(profiles) == 0 {
		return nil, notFound
	}
	return &GetProfilesByUserOutput{Profiles: profiles}, nil
}

type DeleteAccountInput struct {
	UserID uuid.UUID
}

// ExecuteDeleteAccount removes the profile, then the user. Posts are removed
// asynchronously by the consumer of the account.deleted event. If the user
// row survives a successful profile removal the account is left without a
// profile; that state is logged and reported as an internal error.
func (uc *ProfileUseCase) ExecuteDeleteAccount(ctx context.Context, input DeleteAccountInput) error {
	ctx, span := tracer.Start(ctx, "ExecuteDeleteAccount")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", input.UserID.String()))

	log := uc.logger.With(zap.String("user_id", input.UserID.String()))

	profileRemoved := true
	if err := uc.profileRepo.Remove(ctx, input.UserID); err != nil {
		if !errors.Is(err, profile.ErrProfileNotFound) {
			span.RecordError(err)
			return fmt.Errorf("remove profile failed: %w", err)
		}
		profileRemoved = false
	}

	if err := uc.userRepo.Delete(ctx, input.UserID); err != nil && !errors.Is(err, user.ErrUserNotFound) {
		span.RecordError(err)
		if profileRemoved {
			log.Error("inconsistent account state: profile removed but user kept", err)
		}
		return apperror.NewInternal("failed to delete user", err)
	}

	if err := uc.revoker.Revoke(ctx, input.UserID); err != nil {
		log.Warn("Failed to revoke sessions of deleted user", zap.Error(err))
	}

	if profileRemoved {
		uc.publishProfileEvent(service.EventProfileDeleted, input.UserID, nil)
	}
	uc.publishAccountEvent(service.EventAccountDeleted, input.UserID)

	log.Info("Account deleted", zap.Bool("had_profile", profileRemoved))
	return nil
}

func (uc *ProfileUseCase) publishProfileEvent(t service.EventType, userID uuid.UUID, entryID *uuid.UUID) {
	e := service.Event{EventType: t, UserID: userID, EntryID: entryID, OccurredAt: time.Now().UTC()}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := uc.events.PublishProfileEvent(ctx, e); err != nil {
			uc.logger.Error("Failed to publish profile event", err,
				zap.String("event_type", string(t)), zap.String("user_id", userID.String()))
		}
	}()
}

func (uc *ProfileUseCase) publishAccountEvent(t service.EventType, userID uuid.UUID) {
	e := service.Event{EventType: t, UserID: userID, OccurredAt: time.Now().UTC()}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := uc.events.PublishAccountEvent(ctx, e); err != nil {
			uc.logger.Error("Failed to publish account event", err,
				zap.String("event_type", string(t)), zap.String("user_id", userID.String()))
		}
	}()
}
