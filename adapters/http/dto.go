package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/hurmain7/devconnect/internal/domain/profile"
	"github.com/hurmain7/devconnect/pkg/apperror"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(param, value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperror.NewValidation(apperror.FieldError{
		Param: param,
		Msg:   "Date must be YYYY-MM-DD or RFC3339",
	})
}

func parseOptionalDate(param string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := parseDate(param, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Profile DTOs

type UpsertProfileRequest struct {
	ProfileName    string  `json:"profileName" binding:"required" msg:"ProfileName is required"`
	Skills         string  `json:"skills" binding:"required" msg:"Skills are required"`
	Company        *string `json:"company"`
	Website        *string `json:"website"`
	Location       *string `json:"location"`
	Bio            *string `json:"bio"`
	Status         *string `json:"status"`
	GithubUsername *string `json:"githubusername"`
	Youtube        *string `json:"youtube"`
	Twitter        *string `json:"twitter"`
	Facebook       *string `json:"facebook"`
	Linkedin       *string `json:"linkedin"`
	Instagram      *string `json:"instagram"`
}

type AddExperienceRequest struct {
	Title       string  `json:"title" binding:"required" msg:"Title is required"`
	Company     string  `json:"company" binding:"required" msg:"Company is required"`
	From        string  `json:"from" binding:"required" msg:"From date is required"`
	Location    string  `json:"location"`
	To          *string `json:"to"`
	Current     bool    `json:"current"`
	Description string  `json:"description"`
}

type AddEducationRequest struct {
	School       string  `json:"school" binding:"required" msg:"School is required"`
	Degree       string  `json:"degree" binding:"required" msg:"Degree is required"`
	FieldOfStudy string  `json:"fieldofstudy" binding:"required" msg:"Field of study is required"`
	From         string  `json:"from" binding:"required" msg:"From date is required"`
	To           *string `json:"to"`
	Current      bool    `json:"current"`
	Description  string  `json:"description"`
}

type UserSummaryDTO struct {
	ID     uuid.UUID `json:"_id"`
	Name   string    `json:"name"`
	Avatar string    `json:"avatar"`
}

type SocialDTO struct {
	Youtube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Linkedin  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

type ExperienceDTO struct {
	ID          uuid.UUID  `json:"_id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

type EducationDTO struct {
	ID           uuid.UUID  `json:"_id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldofstudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

type ProfileDTO struct {
	User           UserSummaryDTO  `json:"user"`
	ProfileName    string          `json:"profileName"`
	Company        string          `json:"company,omitempty"`
	Website        string          `json:"website,omitempty"`
	Location       string          `json:"location,omitempty"`
	Bio            string          `json:"bio,omitempty"`
	Status         string          `json:"status,omitempty"`
	GithubUsername string          `json:"githubusername,omitempty"`
	Skills         []string        `json:"skills"`
	Social         SocialDTO       `json:"social"`
	Experience     []ExperienceDTO `json:"experience"`
	Education      []EducationDTO  `json:"education"`
	Date           time.Time       `json:"date"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func ToProfileDTO(p *profile.Profile) ProfileDTO {
	dto := ProfileDTO{
		User: UserSummaryDTO{
			ID:     p.UserID,
			Name:   p.User.Name,
			Avatar: p.User.Avatar,
		},
		ProfileName:    p.ProfileName,
		Company:        p.Company,
		Website:        p.Website,
		Location:       p.Location,
		Bio:            p.Bio,
		Status:         p.Status,
		GithubUsername: p.GithubUsername,
		Skills:         append([]string{}, p.Skills...),
		Social:         SocialDTO(p.Social),
		Date:           p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}

	dto.Experience = make([]ExperienceDTO, len(p.Experience))
	for i, e := range p.Experience {
		dto.Experience[i] = ExperienceDTO(e)
	}
	dto.Education = make([]EducationDTO, len(p.Education))
	for i, e := range p.Education {
		dto.Education[i] = EducationDTO(e)
	}
	return dto
}

func ToProfileDTOs(profiles []*profile.Profile) []ProfileDTO {
	dtos := make([]ProfileDTO, len(profiles))
	for i, p := range profiles {
		dtos[i] = ToProfileDTO(p)
	}
	return dtos
}
