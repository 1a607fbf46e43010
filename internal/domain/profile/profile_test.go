package profile

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNew_ListsAreNonNil(t *testing.T) {
	id := uuid.New()
	p := New(id)

	assert.Equal(t, id, p.UserID)
	assert.Equal(t, id, p.User.ID)
	assert.NotNil(t, p.Skills)
	assert.NotNil(t, p.Experience)
	assert.NotNil(t, p.Education)
}

func TestAddExperience_PrependsWithFreshID(t *testing.T) {
	p := New(uuid.New())

	first := p.AddExperience(Experience{Title: "Dev", Company: "A", From: time.Now()})
	second := p.AddExperience(Experience{Title: "Lead", Company: "B", From: time.Now()})

	require.Len(t, p.Experience, 2)
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, second.ID, p.Experience[0].ID)
	assert.Equal(t, first.ID, p.Experience[1].ID)
}

func TestRemoveExperience(t *testing.T) {
	p := New(uuid.New())
	a := p.AddExperience(Experience{Title: "a"})
	b := p.AddExperience(Experience{Title: "b"})
	c := p.AddExperience(Experience{Title: "c"})

	t.Run("removes only the matching entry", func(t *testing.T) {
		require.NoError(t, p.RemoveExperience(b.ID))
		require.Len(t, p.Experience, 2)
		assert.Equal(t, c.ID, p.Experience[0].ID)
		assert.Equal(t, a.ID, p.Experience[1].ID)
	})

	t.Run("unknown id leaves the list untouched", func(t *testing.T) {
		err := p.RemoveExperience(uuid.New())
		assert.ErrorIs(t, err, ErrExperienceNotFound)
		assert.Len(t, p.Experience, 2)
	})

	t.Run("removing the first entry of a shared backing array", func(t *testing.T) {
		before := p.Experience
		require.NoError(t, p.RemoveExperience(c.ID))
		assert.Equal(t, c.ID, before[0].ID, "previous slice must not be rewritten")
		require.Len(t, p.Experience, 1)
		assert.Equal(t, a.ID, p.Experience[0].ID)
	})
}

func TestEducation_AddAndRemove(t *testing.T) {
	p := New(uuid.New())
	a := p.AddEducation(Education{School: "MIT", Degree: "BSc", FieldOfStudy: "CS"})
	b := p.AddEducation(Education{School: "ETH", Degree: "MSc", FieldOfStudy: "CS"})

	require.Len(t, p.Education, 2)
	assert.Equal(t, b.ID, p.Education[0].ID)

	assert.ErrorIs(t, p.RemoveEducation(uuid.New()), ErrEducationNotFound)
	require.NoError(t, p.RemoveEducation(a.ID))
	require.Len(t, p.Education, 1)
	assert.Equal(t, b.ID, p.Education[0].ID)
}

func TestFieldsApply(t *testing.T) {
	p := New(uuid.New())
	p.Company = "Old Co"
	p.Bio = "old bio"
	p.Skills = []string{"go"}
	p.Social = Social{Twitter: "t", Youtube: "y"}

	Fields{
		UserID:      p.UserID,
		ProfileName: strPtr("Ada"),
		Company:     strPtr(""),
		Social:      Social{Linkedin: "l"},
	}.Apply(p)

	assert.Equal(t, "Ada", p.ProfileName)
	assert.Equal(t, "", p.Company, "a sent empty string overwrites")
	assert.Equal(t, "old bio", p.Bio, "an absent field is kept")
	assert.Equal(t, []string{"go"}, p.Skills, "nil skills are kept")
	assert.Equal(t, Social{Linkedin: "l"}, p.Social, "social is replaced as a whole")
}
