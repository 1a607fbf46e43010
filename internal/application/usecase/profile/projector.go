package profile

import (
	"strings"

	"github.com/google/uuid"

	"github.com/hurmain7/devconnect/internal/domain/profile"
)

// UpsertProfileInput mirrors the request body. A nil field was not sent.
type UpsertProfileInput struct {
	UserID         uuid.UUID
	ProfileName    *string
	Company        *string
	Website        *string
	Location       *string
	Bio            *string
	Status         *string
	GithubUsername *string
	Skills         *string
	Youtube        *string
	Twitter        *string
	Facebook       *string
	Linkedin       *string
	Instagram      *string
}

// ProjectFields turns a request into the partial write for the store.
// Scalars are carried only when sent, skills only when non-empty, and social
// holds just the non-empty links because it replaces the stored record.
func ProjectFields(in UpsertProfileInput) profile.Fields {
	f := profile.Fields{
		UserID:         in.UserID,
		ProfileName:    in.ProfileName,
		Company:        in.Company,
		Website:        in.Website,
		Location:       in.Location,
		Bio:            in.Bio,
		Status:         in.Status,
		GithubUsername: in.GithubUsername,
	}

	if in.Skills != nil && *in.Skills != "" {
		f.Skills = SplitSkills(*in.Skills)
	}

	f.Social = profile.Social{
		Youtube:   nonEmpty(in.Youtube),
		Twitter:   nonEmpty(in.Twitter),
		Facebook:  nonEmpty(in.Facebook),
		Linkedin:  nonEmpty(in.Linkedin),
		Instagram: nonEmpty(in.Instagram),
	}
	return f
}

// SplitSkills splits a comma separated list and trims every element.
func SplitSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, len(parts))
	for i, s := range parts {
		skills[i] = strings.TrimSpace(s)
	}
	return skills
}

func nonEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
