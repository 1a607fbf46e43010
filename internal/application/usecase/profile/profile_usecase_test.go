package profile

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/hurmain7/devconnect/adapters/persistence/memory"
	"github.com/hurmain7/devconnect/internal/application/service"
	"github.com/hurmain7/devconnect/internal/domain/user"
	"github.com/hurmain7/devconnect/pkg/apperror"
	"github.com/hurmain7/devconnect/pkg/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []service.Event
}

func (p *recordingPublisher) PublishProfileEvent(_ context.Context, e service.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) PublishAccountEvent(_ context.Context, e service.Event) error {
	return p.PublishProfileEvent(context.Background(), e)
}

func (p *recordingPublisher) has(t service.EventType, userID uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.events {
		if e.EventType == t && e.UserID == userID {
			return true
		}
	}
	return false
}

type ProfileUseCaseTestSuite struct {
	suite.Suite
	store     *memory.Store
	publisher *recordingPublisher
	uc        *ProfileUseCase
	owner     *user.User
	ctx       context.Context
}

func (s *ProfileUseCaseTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.publisher = &recordingPublisher{}
	s.uc = NewProfileUseCase(s.store.Profiles(), s.store.Users(), s.store.Sessions(), s.publisher, logger.NewNop())

	s.owner = &user.User{ID: uuid.New(), Name: "Ada Lovelace", Email: "ada@example.com", Avatar: "//gravatar/ada", CreatedAt: time.Now()}
	s.Require().NoError(s.store.Users().Save(s.ctx, s.owner))
}

func TestProfileUseCase(t *testing.T) {
	suite.Run(t, new(ProfileUseCaseTestSuite))
}

func (s *ProfileUseCaseTestSuite) upsert(in UpsertProfileInput) *UpsertProfileOutput {
	in.UserID = s.owner.ID
	out, err := s.uc.ExecuteUpsertProfile(s.ctx, in)
	s.Require().NoError(err)
	return out
}

func (s *ProfileUseCaseTestSuite) TestGetProfile_NoProfile() {
	_, err := s.uc.ExecuteGetProfile(s.ctx, GetProfileInput{UserID: s.owner.ID})

	var appErr *apperror.AppError
	s.Require().ErrorAs(err, &appErr)
	s.Equal("There is no profile for this user", appErr.Message)
	s.True(appErr.Listed)
	s.Equal(http.StatusBadRequest, apperror.ToHTTPStatus(err))
}

func (s *ProfileUseCaseTestSuite) TestUpsert_CreatesWithOwnerPopulated() {
	out := s.upsert(UpsertProfileInput{ProfileName: ptr("Ada"), Skills: ptr("HTML, CSS"), Status: ptr("Developer")})

	p := out.Profile
	s.Equal("Ada", p.ProfileName)
	s.Equal([]string{"HTML", "CSS"}, p.Skills)
	s.Equal("Developer", p.Status)
	s.Equal(s.owner.Name, p.User.Name)
	s.Equal(s.owner.Avatar, p.User.Avatar)
	s.Empty(p.Experience)
	s.Empty(p.Education)

	s.Eventually(func() bool { return s.publisher.has(service.EventProfileUpserted, s.owner.ID) }, time.Second, 10*time.Millisecond)
}

func (s *ProfileUseCaseTestSuite) TestUpsert_KeepsAbsentFieldsAndLists() {
	s.upsert(UpsertProfileInput{ProfileName: ptr("Ada"), Skills: ptr("go"), Company: ptr("Analytical"), Twitter: ptr("@ada")})
	_, err := s.uc.ExecuteAddExperience(s.ctx, AddExperienceInput{UserID: s.owner.ID, Title: "Dev", Company: "A", From: time.Now()})
	s.Require().NoError(err)

	out := s.upsert(UpsertProfileInput{ProfileName: ptr("Ada L."), Skills: ptr("")})

	p := out.Profile
	s.Equal("Ada L.", p.ProfileName)
	s.Equal("Analytical", p.Company)
	s.Equal([]string{"go"}, p.Skills)
	s.Empty(p.Social.Twitter, "social is replaced on every write")
	s.Len(p.Experience, 1)
}

func (s *ProfileUseCaseTestSuite) TestUpsert_IsIdempotent() {
	in := UpsertProfileInput{ProfileName: ptr("Ada"), Skills: ptr("go, sql"), Bio: ptr("hi")}
	first := s.upsert(in).Profile
	second := s.upsert(in).Profile

	s.Equal(first.ProfileName, second.ProfileName)
	s.Equal(first.Skills, second.Skills)
	s.Equal(first.Bio, second.Bio)
	s.Equal(first.CreatedAt, second.CreatedAt)

	list, err := s.uc.ExecuteListProfiles(s.ctx)
	s.Require().NoError(err)
	s.Len(list.Profiles, 1)
}

func (s *ProfileUseCaseTestSuite) TestUpsert_UnknownUser() {
	_, err := s.uc.ExecuteUpsertProfile(s.ctx, UpsertProfileInput{UserID: uuid.New(), ProfileName: ptr("x"), Skills: ptr("x")})
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *ProfileUseCaseTestSuite) TestExperience_AddAndRemove() {
	s.upsert(UpsertProfileInput{ProfileName: ptr("Ada"), Skills: ptr("go")})

	first, err := s.uc.ExecuteAddExperience(s.ctx, AddExperienceInput{UserID: s.owner.ID, Title: "Dev", Company: "A", From: time.Now()})
	s.Require().NoError(err)
	second, err := s.uc.ExecuteAddExperience(s.ctx, AddExperienceInput{UserID: s.owner.ID, Title: "Lead", Company: "B", From: time.Now()})
	s.Require().NoError(err)
	s.Equal(second.EntryID, second.Profile.Experience[0].ID)

	out, err := s.uc.ExecuteRemoveExperience(s.ctx, RemoveEntryInput{UserID: s.owner.ID, EntryID: first.EntryID.String()})
	s.Require().NoError(err)
	s.Require().Len(out.Profile.Experience, 1)
	s.Equal(second.EntryID, out.Profile.Experience[0].ID)

	s.Eventually(func() bool { return s.publisher.has(service.EventExperienceRemoved, s.owner.ID) }, time.Second, 10*time.Millisecond)
}

func (s *ProfileUseCaseTestSuite) TestExperience_RemoveUnknownLeavesListUnchanged() {
	s.upsert(UpsertProfileInput{ProfileName: ptr("Ada"), Skills: ptr("go")})
	_, err := s.uc.ExecuteAddExperience(s.ctx, AddExperienceInput{UserID: s.owner.ID, Title: "Dev", Company: "A", From: time.Now()})
	s.Require().NoError(err)

	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		_, err = s.uc.ExecuteRemoveExperience(s.ctx, RemoveEntryInput{UserID: s.owner.ID, EntryID: id})
		s.ErrorIs(err, apperror.ErrNotFound)
		s.Equal(http.StatusNotFound, apperror.ToHTTPStatus(err))
	}

	got, err := s.uc.ExecuteGetProfile(s.ctx, GetProfileInput{UserID: s.owner.ID})
	s.Require().NoError(err)
	s.Len(got.Profile.Experience, 1)
}

func (s *ProfileUseCaseTestSuite) TestEducation_AddAndRemove() {
	s.upsert(UpsertProfileInput{ProfileName: ptr("Ada"), Skills: ptr("go")})

	added, err := s.uc.ExecuteAddEducation(s.ctx, AddEducationInput{
		UserID: s.owner.ID, School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: time.Now(),
	})
	s.Require().NoError(err)
	s.Len(added.Profile.Education, 1)

	_, err = s.uc.ExecuteRemoveEducation(s.ctx, RemoveEntryInput{UserID: s.owner.ID, EntryID: uuid.NewString()})
	s.ErrorIs(err, apperror.ErrNotFound)

	out, err := s.uc.ExecuteRemoveEducation(s.ctx, RemoveEntryInput{UserID: s.owner.ID, EntryID: added.EntryID.String()})
	s.Require().NoError(err)
	s.Empty(out.Profile.Education)
}

func (s *ProfileUseCaseTestSuite) TestEntries_WithoutProfile() {
	_, err := s.uc.ExecuteAddExperience(s.ctx, AddExperienceInput{UserID: s.owner.ID, Title: "Dev", Company: "A", From: time.Now()})
	s.Equal(http.StatusBadRequest, apperror.ToHTTPStatus(err))

	_, err = s.uc.ExecuteAddEducation(s.ctx, AddEducationInput{UserID: s.owner.ID, School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: time.Now()})
	s.Equal(http.StatusBadRequest, apperror.ToHTTPStatus(err))
}

func (s *ProfileUseCaseTestSuite) TestConcurrentAddsAreAllKept() {
	s.upsert(UpsertProfileInput{ProfileName: ptr("Ada"), Skills: ptr("go")})

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.uc.ExecuteAddExperience(s.ctx, AddExperienceInput{UserID: s.owner.ID, Title: "Dev", Company: "A", From: time.Now()})
			assert.NoError(s.T(), err)
		}()
	}
	wg.Wait()

	got, err := s.uc.ExecuteGetProfile(s.ctx, GetProfileInput{UserID: s.owner.ID})
	s.Require().NoError(err)
	s.Len(got.Profile.Experience, n)
}

func (s *ProfileUseCaseTestSuite) TestGetProfilesByUser() {
	s.upsert(UpsertProfileInput{ProfileName: ptr("Ada"), Skills: ptr("go")})

	out, err := s.uc.ExecuteGetProfilesByUser(s.ctx, GetProfilesByUserInput{UserID: s.owner.ID.String()})
	s.Require().NoError(err)
	s.Len(out.Profiles, 1)

	for _, id := range []string{uuid.NewString(), "abc"} {
		_, err := s.uc.ExecuteGetProfilesByUser(s.ctx, GetProfilesByUserInput{UserID: id})
		var appErr *apperror.AppError
		s.Require().ErrorAs(err, &appErr)
		s.Equal("Profile not found", appErr.Message)
		s.Equal(http.StatusBadRequest, apperror.ToHTTPStatus(err))
	}
}

func (s *ProfileUseCaseTestSuite) TestListProfiles_Empty() {
	out, err := s.uc.ExecuteListProfiles(s.ctx)
	s.Require().NoError(err)
	s.NotNil(out.Profiles)
	s.Empty(out.Profiles)
}

func (s *ProfileUseCaseTestSuite) TestDeleteAccount() {
	s.upsert(UpsertProfileInput{ProfileName: ptr("Ada"), Skills: ptr("go")})

	s.Require().NoError(s.uc.ExecuteDeleteAccount(s.ctx, DeleteAccountInput{UserID: s.owner.ID}))

	_, err := s.store.Users().FindByID(s.ctx, s.owner.ID)
	s.ErrorIs(err, user.ErrUserNotFound)
	_, err = s.uc.ExecuteGetProfile(s.ctx, GetProfileInput{UserID: s.owner.ID})
	s.Error(err)

	revoked, err := s.store.Sessions().IsRevoked(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.True(revoked)

	s.Eventually(func() bool {
		return s.publisher.has(service.EventProfileDeleted, s.owner.ID) &&
			s.publisher.has(service.EventAccountDeleted, s.owner.ID)
	}, time.Second, 10*time.Millisecond)
}

func (s *ProfileUseCaseTestSuite) TestDeleteAccount_WithoutProfile() {
	s.Require().NoError(s.uc.ExecuteDeleteAccount(s.ctx, DeleteAccountInput{UserID: s.owner.ID}))

	_, err := s.store.Users().FindByID(s.ctx, s.owner.ID)
	s.ErrorIs(err, user.ErrUserNotFound)
	s.Eventually(func() bool { return s.publisher.has(service.EventAccountDeleted, s.owner.ID) }, time.Second, 10*time.Millisecond)
	s.False(s.publisher.has(service.EventProfileDeleted, s.owner.ID))
}

func (s *ProfileUseCaseTestSuite) TestDeleteAccount_StoreFailure() {
	s.store.WithError(errors.New("connection reset"))
	defer s.store.WithError(nil)

	err := s.uc.ExecuteDeleteAccount(s.ctx, DeleteAccountInput{UserID: s.owner.ID})
	s.Require().Error(err)
	s.Equal(http.StatusInternalServerError, apperror.ToHTTPStatus(err))
}

func TestDeleteAccount_SecondCallSucceeds(t *testing.T) {
	store := memory.NewStore()
	uc := NewProfileUseCase(store.Profiles(), store.Users(), store.Sessions(), &recordingPublisher{}, logger.NewNop())
	id := uuid.New()
	require.NoError(t, store.Users().Save(context.Background(), &user.User{ID: id, Name: "x", Email: "x@example.com"}))

	require.NoError(t, uc.ExecuteDeleteAccount(context.Background(), DeleteAccountInput{UserID: id}))
	assert.NoError(t, uc.ExecuteDeleteAccount(context.Background(), DeleteAccountInput{UserID: id}))
}
