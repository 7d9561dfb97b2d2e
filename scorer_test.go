package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scoreNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func fullSeeker() *CandidateView {
	return &CandidateView{
		Identity: Identity{ID: 1, FullName: "Seeker", Gender: "male", BirthDate: datePtr(1995, 3, 10)},
		Personal: &Personal{UserID: 1, Religion: strPtr("Hindu"), SubCaste: strPtr("Patel")},
	}
}

func fullExpectations() *Expectations {
	return &Expectations{
		UserID:          1,
		AgeFrom:         intPtr(25),
		AgeTo:           intPtr(32),
		MaritalStatus:   strPtr("never_married"),
		AlcoholPref:     strPtr("no"),
		EducationLevels: []string{"Masters", "PhD"},
		Communities:     []string{"Patel"},
		States:          []string{"Gujarat"},
		Professions:     []string{"engineer"},
		Diets:           []string{"vegetarian"},
	}
}

func fullCandidate() *CandidateView {
	return &CandidateView{
		Identity: Identity{ID: 2, FullName: "Candidate", Gender: "female", BirthDate: datePtr(1998, 1, 15)},
		Personal: &Personal{
			UserID: 2, Religion: strPtr("Hindu"), SubCaste: strPtr("Patel"),
			State: strPtr("Gujarat"), MaritalStatus: strPtr("never_married"),
		},
		Health:     &Health{UserID: 2, Diet: strPtr("Vegetarian"), Alcohol: strPtr("No")},
		Education:  &Education{UserID: 2, HighestLevel: strPtr("Masters")},
		Profession: &Profession{UserID: 2, Occupation: strPtr("Software Engineer")},
	}
}

func TestScoreCompatibility(t *testing.T) {
	t.Run("Full Match Sums Weight Table", func(t *testing.T) {
		detail := scoreCompatibility(fullSeeker(), fullExpectations(), fullCandidate(), scoreNow)
		assert.Equal(t, 100, detail.Score)
		assert.Len(t, detail.Reasons, 9)
		assert.Equal(t, weightAge, detail.Breakdown["age"])
		assert.Equal(t, weightReligion, detail.Breakdown["religion"])
		assert.Equal(t, weightLocale, detail.Breakdown["locale"])
	})

	t.Run("Absent Attribute Contributes Zero Never Negative", func(t *testing.T) {
		candidate := fullCandidate()
		candidate.Health = nil
		candidate.Education = nil

		detail := scoreCompatibility(fullSeeker(), fullExpectations(), candidate, scoreNow)

		assert.Equal(t, 0, detail.Breakdown["diet"])
		assert.Equal(t, 0, detail.Breakdown["alcohol"])
		assert.Equal(t, 0, detail.Breakdown["education"])
		assert.Equal(t, 100-weightDiet-weightAlcohol-weightEducation, detail.Score)
		for criterion, points := range detail.Breakdown {
			assert.GreaterOrEqual(t, points, 0, "criterion %s went negative", criterion)
		}
	})

	t.Run("Missing Birth Date Is Neutral For Age", func(t *testing.T) {
		candidate := fullCandidate()
		candidate.Identity.BirthDate = nil

		detail := scoreCompatibility(fullSeeker(), fullExpectations(), candidate, scoreNow)
		assert.Equal(t, 0, detail.Breakdown["age"])
	})

	t.Run("Empty Preference List Is No Preference", func(t *testing.T) {
		expect := fullExpectations()
		expect.Diets = nil

		detail := scoreCompatibility(fullSeeker(), expect, fullCandidate(), scoreNow)
		assert.Equal(t, 0, detail.Breakdown["diet"])
	})

	t.Run("Reasons Only On Positive Contribution", func(t *testing.T) {
		candidate := fullCandidate()
		candidate.Personal.Religion = strPtr("Jain")

		detail := scoreCompatibility(fullSeeker(), fullExpectations(), candidate, scoreNow)
		for _, reason := range detail.Reasons {
			assert.NotEqual(t, "Same religion", reason)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		a := scoreCompatibility(fullSeeker(), fullExpectations(), fullCandidate(), scoreNow)
		b := scoreCompatibility(fullSeeker(), fullExpectations(), fullCandidate(), scoreNow)
		require.Equal(t, a, b)
	})

	t.Run("Neutral When Expectations Absent", func(t *testing.T) {
		detail := scoreCompatibility(fullSeeker(), nil, fullCandidate(), scoreNow)
		assert.Equal(t, 0, detail.Score)
		assert.NotNil(t, detail.Reasons)
		assert.Empty(t, detail.Reasons)
		assert.Empty(t, detail.Breakdown)
	})

	t.Run("Neutral When Seeker Absent", func(t *testing.T) {
		detail := scoreCompatibility(nil, fullExpectations(), fullCandidate(), scoreNow)
		assert.Equal(t, 0, detail.Score)
		assert.Empty(t, detail.Reasons)
	})

	t.Run("Age Boundary Inclusive", func(t *testing.T) {
		candidate := fullCandidate()
		// Exactly 32 at the evaluation instant: still in [25,32].
		birth := scoreNow.AddDate(-32, 0, 0)
		candidate.Identity.BirthDate = &birth

		detail := scoreCompatibility(fullSeeker(), fullExpectations(), candidate, scoreNow)
		assert.Equal(t, weightAge, detail.Breakdown["age"])

		// A year older: 33 at the evaluation instant, out of range.
		older := birth.AddDate(-1, 0, 0)
		candidate2 := fullCandidate()
		candidate2.Identity.BirthDate = &older
		detail2 := scoreCompatibility(fullSeeker(), fullExpectations(), candidate2, scoreNow)
		assert.Equal(t, 0, detail2.Breakdown["age"])
	})

	t.Run("Profession Substring Match", func(t *testing.T) {
		expect := fullExpectations()
		expect.Professions = []string{"Engineer"}
		detail := scoreCompatibility(fullSeeker(), expect, fullCandidate(), scoreNow)
		assert.Equal(t, weightProfession, detail.Breakdown["profession"])
	})
}

func TestCandidateViewAge(t *testing.T) {
	view := &CandidateView{Identity: Identity{BirthDate: datePtr(2000, 6, 2)}}
	// Birthday is tomorrow relative to scoreNow.
	assert.Equal(t, 25, view.Age(scoreNow))

	view = &CandidateView{Identity: Identity{BirthDate: datePtr(2000, 6, 1)}}
	assert.Equal(t, 26, view.Age(scoreNow))

	view = &CandidateView{Identity: Identity{}}
	assert.Equal(t, -1, view.Age(scoreNow))
}
