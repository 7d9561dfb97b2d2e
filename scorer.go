package main

import (
	"fmt"
	"strings"
	"time"
)

// Fixed criterion weights. They sum to 100 so scores are directly
// comparable across candidates and across requests; changing a weight
// changes ranking semantics for every stored listing, so the table is
// append-only in practice.
const (
	weightAge        = 20
	weightReligion   = 12
	weightCommunity  = 8
	weightLocale     = 15
	weightEducation  = 10
	weightProfession = 10
	weightDiet       = 10
	weightAlcohol    = 5
	weightMarital    = 10
)

// scoreCompatibility evaluates the fixed criterion list for one
// seeker/candidate pair. It is a pure function of its arguments: no I/O,
// no clock reads (the evaluation instant is passed in), so identical
// inputs always produce identical results.
//
// Absence is neutral: a criterion whose attribute is missing on either
// side contributes exactly 0, never a penalty. Reasons are appended only
// for positive contributions, in fixed criterion order.
func scoreCompatibility(seeker *CandidateView, expect *Expectations, candidate *CandidateView, now time.Time) ScoreDetail {
	detail := ScoreDetail{Reasons: []string{}, Breakdown: map[string]int{}}
	if seeker == nil || expect == nil || candidate == nil {
		// Unauthenticated or preference-less context: neutral, never nil.
		return detail
	}

	add := func(criterion string, points int, reason string) {
		detail.Breakdown[criterion] = points
		if points > 0 {
			detail.Score += points
			detail.Reasons = append(detail.Reasons, reason)
		}
	}

	// Age-range fit against the seeker's stated preference.
	agePoints := 0
	age := candidate.Age(now)
	if age >= 0 && expect.AgeFrom != nil && expect.AgeTo != nil &&
		age >= *expect.AgeFrom && age <= *expect.AgeTo {
		agePoints = weightAge
	}
	add("age", agePoints, fmt.Sprintf("Age %d is within your preferred range", age))

	// Same religion.
	religionPoints := 0
	if r := sharedString(personalReligion(seeker.Personal), personalReligion(candidate.Personal)); r != "" {
		religionPoints = weightReligion
	}
	add("religion", religionPoints, "Same religion")

	// Community preference list vs candidate sub-caste.
	communityPoints := 0
	if candidate.Personal != nil && candidate.Personal.SubCaste != nil &&
		containsFold(expect.Communities, *candidate.Personal.SubCaste) {
		communityPoints = weightCommunity
	}
	add("community", communityPoints, "Preferred community")

	// Locale: preferred state, or preferred country of residence.
	localePoints := 0
	localeReason := ""
	if candidate.Personal != nil {
		if candidate.Personal.State != nil && containsFold(expect.States, *candidate.Personal.State) {
			localePoints = weightLocale
			localeReason = "Lives in a preferred state"
		} else if candidate.Personal.ResidencyStatus != nil && containsFold(expect.Countries, *candidate.Personal.ResidencyStatus) {
			localePoints = weightLocale
			localeReason = "Lives in a preferred country"
		}
	}
	add("locale", localePoints, localeReason)

	// Education level preference.
	educationPoints := 0
	if candidate.Education != nil && candidate.Education.HighestLevel != nil &&
		containsFold(expect.EducationLevels, *candidate.Education.HighestLevel) {
		educationPoints = weightEducation
	}
	add("education", educationPoints, "Preferred education level")

	// Profession preference: substring match so "engineer" covers
	// "software engineer".
	professionPoints := 0
	if candidate.Profession != nil && candidate.Profession.Occupation != nil {
		occupation := strings.ToLower(*candidate.Profession.Occupation)
		for _, pref := range expect.Professions {
			if pref != "" && strings.Contains(occupation, strings.ToLower(pref)) {
				professionPoints = weightProfession
				break
			}
		}
	}
	add("profession", professionPoints, "Preferred profession")

	// Diet preference.
	dietPoints := 0
	if candidate.Health != nil && candidate.Health.Diet != nil &&
		containsFold(expect.Diets, *candidate.Health.Diet) {
		dietPoints = weightDiet
	}
	add("diet", dietPoints, "Matching diet")

	// Alcohol preference.
	alcoholPoints := 0
	if expect.AlcoholPref != nil && candidate.Health != nil && candidate.Health.Alcohol != nil &&
		strings.EqualFold(*expect.AlcoholPref, *candidate.Health.Alcohol) {
		alcoholPoints = weightAlcohol
	}
	add("alcohol", alcoholPoints, "Matching alcohol preference")

	// Marital status preference.
	maritalPoints := 0
	if expect.MaritalStatus != nil && candidate.Personal != nil && candidate.Personal.MaritalStatus != nil &&
		strings.EqualFold(*expect.MaritalStatus, *candidate.Personal.MaritalStatus) {
		maritalPoints = weightMarital
	}
	add("marital_status", maritalPoints, "Preferred marital status")

	return detail
}

func personalReligion(p *Personal) string {
	if p == nil || p.Religion == nil {
		return ""
	}
	return *p.Religion
}

// sharedString returns a when a and b are the same non-empty value,
// case-insensitively.
func sharedString(a, b string) string {
	if a != "" && strings.EqualFold(a, b) {
		return a
	}
	return ""
}

// containsFold reports whether list has value, case-insensitively. An
// empty list never matches: an empty preference list means "no
// preference" and the criterion stays neutral.
func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}
