package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hurmain7/devconnect/internal/application/service"
	"github.com/hurmain7/devconnect/internal/domain/profile"
	"github.com/hurmain7/devconnect/pkg/apperror"
)

type AddExperienceInput struct {
	UserID      uuid.UUID
	Title       string
	Company     string
	Location    string
	From        time.Time
	To          *time.Time
	Current     bool
	Description string
}

type AddEducationInput struct {
	UserID       uuid.UUID
	School       string
	Degree       string
	FieldOfStudy string
	From         time.Time
	To           *time.Time
	Current      bool
	Description  string
}

type RemoveEntryInput struct {
	UserID uuid.UUID
	// EntryID is the raw path value.
	EntryID string
}

type EntryOutput struct {
	Profile *profile.Profile
	EntryID uuid.UUID
}

func (uc *ProfileUseCase) ExecuteAddExperience(ctx context.Context, input AddExperienceInput) (*EntryOutput, error) {
	ctx, span := tracer.Start(ctx, "ExecuteAddExperience")
	defer span.End()

	var added profile.Experience
	p, err := uc.profileRepo.Update(ctx, input.UserID, func(p *profile.Profile) error {
		added = p.AddExperience(profile.Experience{
			Title:       input.Title,
			Company:     input.Company,
			Location:    input.Location,
			From:        input.From,
			To:          input.To,
			Current:     input.Current,
			Description: input.Description,
		})
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, uc.translateEntryError(input.UserID, "", err)
	}

	span.SetAttributes(attribute.String("experience_id", added.ID.String()))
	uc.publishProfileEvent(service.EventExperienceAdded, input.UserID, &added.ID)
	return &EntryOutput{Profile: p, EntryID: added.ID}, nil
}

func (uc *ProfileUseCase) ExecuteRemoveExperience(ctx context.Context, input RemoveEntryInput) (*EntryOutput, error) {
	ctx, span := tracer.Start(ctx, "ExecuteRemoveExperience")
	defer span.End()

	entryID, err := uuid.Parse(input.EntryID)
	if err != nil {
		return nil, apperror.NewNotFound("Experience", input.EntryID)
	}

	p, err := uc.profileRepo.Update(ctx, input.UserID, func(p *profile.Profile) error {
		return p.RemoveExperience(entryID)
	})
	if err != nil {
		span.RecordError(err)
		return nil, uc.translateEntryError(input.UserID, input.EntryID, err)
	}

	uc.publishProfileEvent(service.EventExperienceRemoved, input.UserID, &entryID)
	return &EntryOutput{Profile: p, EntryID: entryID}, nil
}

func (uc *ProfileUseCase) ExecuteAddEducation(ctx context.Context, input AddEducationInput) (*EntryOutput, error) {
	ctx, span := tracer.Start(ctx, "ExecuteAddEducation")
	defer span.End()

	var added profile.Education
	p, err := uc.profileRepo.Update(ctx, input.UserID, func(p *profile.Profile) error {
		added = p.AddEducation(profile.Education{
			School:       input.School,
			Degree:       input.Degree,
			FieldOfStudy: input.FieldOfStudy,
			From:         input.From,
			To:           input.To,
			Current:      input.Current,
			Description:  input.Description,
		})
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, uc.translateEntryError(input.UserID, "", err)
	}

	span.SetAttributes(attribute.String("education_id", added.ID.String()))
	uc.publishProfileEvent(service.EventEducationAdded, input.UserID, &added.ID)
	return &EntryOutput{Profile: p, EntryID: added.ID}, nil
}

func (uc *ProfileUseCase) ExecuteRemoveEducation(ctx context.Context, input RemoveEntryInput) (*EntryOutput, error) {
	ctx, span := tracer.Start(ctx, "ExecuteRemoveEducation")
	defer span.End()

	entryID, err := uuid.Parse(input.EntryID)
	if err != nil {
		return nil, apperror.NewNotFound("Education", input.EntryID)
	}

	p, err := uc.profileRepo.Update(ctx, input.UserID, func(p *profile.Profile) error {
		return p.RemoveEducation(entryID)
	})
	if err != nil {
		span.RecordError(err)
		return nil, uc.translateEntryError(input.UserID, input.EntryID, err)
	}

	uc.publishProfileEvent(service.EventEducationRemoved, input.UserID, &entryID)
	return &EntryOutput{Profile: p, EntryID: entryID}, nil
}

func (uc *ProfileUseCase) translateEntryError(userID uuid.UUID, entryID string, err error) error {
	switch {
	case errors.Is(err, profile.ErrProfileNotFound):
		return errNoProfileForUser(userID)
	case errors.Is(err, profile.ErrExperienceNotFound):
		return apperror.NewNotFound("Experience", entryID)
	case errors.Is(err, profile.ErrEducationNotFound):
		return apperror.NewNotFound("Education", entryID)
	}
	return fmt.Errorf("update profile entries failed: %w", err)
}
