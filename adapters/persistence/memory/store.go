// Package memory holds in-process implementations of the profile and user
// repositories and the session revoker. They back unit tests and the
// "memory" storage driver.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hurmain7/devconnect/internal/application/service"
	"github.com/hurmain7/devconnect/internal/domain/profile"
	"github.com/hurmain7/devconnect/internal/domain/user"
)

// Store is one lock around every collection, which also serializes writes
// for a single user.
type Store struct {
	mu       sync.Mutex
	users    map[uuid.UUID]user.User
	profiles map[uuid.UUID]*profile.Profile
	revoked  map[uuid.UUID]time.Time

	err error
}

func NewStore() *Store {
	return &Store{
		users:    make(map[uuid.UUID]user.User),
		profiles: make(map[uuid.UUID]*profile.Profile),
		revoked:  make(map[uuid.UUID]time.Time),
	}
}

// WithError makes every later repository call fail with err. Passing nil
// clears it. Sessions are not affected.
func (s *Store) WithError(err error) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	return s
}

func (s *Store) Profiles() profile.Repository { return &profileRepo{s: s} }
func (s *Store) Users() user.Repository { return &userRepo{s: s} }
func (s *Store) Sessions() service.SessionRevoker {
	return &sessionStore{s: s}
}

func clone(p *profile.Profile) *profile.Profile {
	c := *p
	c.Skills = append([]string{}, p.Skills...)
	c.Experience = append([]profile.Experience{}, p.Experience...)
	c.Education = append([]profile.Education{}, p.Education...)
	return &c
}

// populated returns a copy of p carrying its owner's name and avatar.
// Callers hold s.mu.
func (s *Store) populated(p *profile.Profile) *profile.Profile {
	c := clone(p)
	c.User = profile.UserSummary{ID: p.UserID}
	if u, ok := s.users[p.UserID]; ok {
		c.User.Name = u.Name
		c.User.Avatar = u.Avatar
	}
	return c
}

type profileRepo struct{ s *Store }

func (r *profileRepo) FindByUser(_ context.Context, userID uuid.UUID) (*profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	return r.s.populated(p), nil
}

func (r *profileRepo) FindAllByUser(_ context.Context, userID uuid.UUID) ([]*profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	out := make([]*profile.Profile, 0, 1)
	if p, ok := r.s.profiles[userID]; ok {
		out = append(out, r.s.populated(p))
	}
	return out, nil
}

func (r *profileRepo) ListAll(_ context.Context) ([]*profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	out := make([]*profile.Profile, 0, len(r.s.profiles))
	for _, p := range r.s.profiles {
		out = append(out, r.s.populated(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *profileRepo) Upsert(_ context.Context, f profile.Fields) (*profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	if _, ok := r.s.users[f.UserID]; !ok {
		return nil, user.ErrUserNotFound
	}

	now := time.Now().UTC()
	p, ok := r.s.profiles[f.UserID]
	if !ok {
		p = profile.New(f.UserID)
		p.CreatedAt = now
	} else {
		p = clone(p)
	}
	f.Apply(p)
	p.UpdatedAt = now
	r.s.profiles[f.UserID] = p
	return r.s.populated(p), nil
}

func (r *profileRepo) Update(_ context.Context, userID uuid.UUID, fn func(p *profile.Profile) error) (*profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	stored, ok := r.s.profiles[userID]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}

	p := r.s.populated(stored)
	if err := fn(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now().UTC()
	r.s.profiles[userID] = clone(p)
	return p, nil
}

func (r *profileRepo) Remove(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return r.s.err
	}
	if _, ok := r.s.profiles[userID]; !ok {
		return profile.ErrProfileNotFound
	}
	delete(r.s.profiles, userID)
	return nil
}

type userRepo struct{ s *Store }

func (r *userRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return nil, r.s.err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (r *userRepo) Save(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return r.s.err
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *userRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.err != nil {
		return r.s.err
	}
	if _, ok := r.s.users[id]; !ok {
		return user.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}

type sessionStore struct{ s *Store }

func (r *sessionStore) Revoke(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.revoked[userID] = time.Now().UTC()
	return nil
}

func (r *sessionStore) IsRevoked(_ context.Context, userID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.revoked[userID]
	return ok, nil
}
