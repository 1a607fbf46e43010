package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrExperienceNotFound = errors.New("experience not found")
	ErrEducationNotFound  = errors.New("education not found")
)

// UserSummary is the part of the owning user that is shown with a profile.
type UserSummary struct {
	ID     uuid.UUID `json:"_id"`
	Name   string    `json:"name"`
	Avatar string    `json:"avatar"`
}

type Social struct {
	Youtube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Linkedin  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

type Experience struct {
	ID          uuid.UUID  `json:"_id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

type Education struct {
	ID           uuid.UUID  `json:"_id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldofstudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

// Profile is the single professional record owned by a user. Experience and
// Education are kept newest first.
type Profile struct {
	UserID         uuid.UUID    `json:"-"`
	User           UserSummary  `json:"user"`
	ProfileName    string       `json:"profileName"`
	Company        string       `json:"company,omitempty"`
	Website        string       `json:"website,omitempty"`
	Location       string       `json:"location,omitempty"`
	Bio            string       `json:"bio,omitempty"`
	Status         string       `json:"status,omitempty"`
	GithubUsername string       `json:"githubusername,omitempty"`
	Skills         []string     `json:"skills"`
	Social         Social       `json:"social"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education"`
	CreatedAt      time.Time    `json:"date"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Fields is a partial profile write. A nil pointer means "leave the stored
// value as it is"; Social is always written as a whole.
type Fields struct {
	UserID         uuid.UUID
	ProfileName    *string
	Company        *string
	Website        *string
	Location       *string
	Bio            *string
	Status         *string
	GithubUsername *string
	Skills         []string
	Social         Social
}

// Apply copies the present fields onto p.
func (f Fields) Apply(p *Profile) {
	p.UserID = f.UserID
	setIfPresent(&p.ProfileName, f.ProfileName)
	setIfPresent(&p.Company, f.Company)
	setIfPresent(&p.Website, f.Website)
	setIfPresent(&p.Location, f.Location)
	setIfPresent(&p.Bio, f.Bio)
	setIfPresent(&p.Status, f.Status)
	setIfPresent(&p.GithubUsername, f.GithubUsername)
	if f.Skills != nil {
		p.Skills = append([]string(nil), f.Skills...)
	}
	p.Social = f.Social
}

func setIfPresent(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// New returns an empty profile for userID with non-nil lists.
func New(userID uuid.UUID) *Profile {
	return &Profile{
		UserID:     userID,
		User:       UserSummary{ID: userID},
		Skills:     []string{},
		Experience: []Experience{},
		Education:  []Education{},
	}
}

// AddExperience assigns e a fresh id and puts it at the front of the list.
func (p *Profile) AddExperience(e Experience) Experience {
	e.ID = uuid.New()
	p.Experience = append([]Experience{e}, p.Experience...)
	return e
}

// RemoveExperience deletes exactly the entry with the given id.
func (p *Profile) RemoveExperience(id uuid.UUID) error {
	for i, e := range p.Experience {
		if e.ID == id {
			p.Experience = append(p.Experience[:i:i], p.Experience[i+1:]...)
			return nil
		}
	}
	return ErrExperienceNotFound
}

// AddEducation assigns e a fresh id and puts it at the front of the list.
func (p *Profile) AddEducation(e Education) Education {
	e.ID = uuid.New()
	p.Education = append([]Education{e}, p.Education...)
	return e
}

// RemoveEducation deletes exactly the entry with the given id.
func (p *Profile) RemoveEducation(id uuid.UUID) error {
	for i, e := range p.Education {
		if e.ID == id {
			p.Education = append(p.Education[:i:i], p.Education[i+1:]...)
			return nil
		}
	}
	return ErrEducationNotFound
}

type Repository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*Profile, error)
	// FindAllByUser never returns ErrProfileNotFound; no match is an empty slice.
	FindAllByUser(ctx context.Context, userID uuid.UUID) ([]*Profile, error)
	ListAll(ctx context.Context) ([]*Profile, error)
	// Upsert creates the profile or overwrites the fields present in f, atomically per user.
	Upsert(ctx context.Context, f Fields) (*Profile, error)
	// Update loads the profile, applies fn and persists the result while
	// holding the user's profile exclusively.
	Update(ctx context.Context, userID uuid.UUID, fn func(p *Profile) error) (*Profile, error)
	Remove(ctx context.Context, userID uuid.UUID) error
}
