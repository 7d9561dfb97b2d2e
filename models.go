package main

import "time"

// Identity is the always-present core record of a user. Every other
// attribute record may independently be missing.
type Identity struct {
	ID        int
	Email     string
	FullName  string
	Gender    string
	BirthDate *time.Time
	CreatedAt time.Time
}

// Personal holds physical and community attributes. Pointer fields
// distinguish "absent" from an explicit empty value.
type Personal struct {
	UserID          int
	HeightCM        *int
	WeightKG        *int
	Religion        *string
	SubCaste        *string
	City            *string
	State           *string
	ResidencyStatus *string
	MaritalStatus   *string
}

type Family struct {
	UserID           int
	FatherOccupation *string
	MotherOccupation *string
	Siblings         *int
	FamilyType       *string
}

// Health carries lifestyle and disclosed medical attributes. HIVStatus is
// kept as the raw stored text because historical rows encode it as any of
// "true"/"yes"/"1" (and their negatives); see parseDisclosure.
type Health struct {
	UserID     int
	Diet       *string
	Alcohol    *string
	Tobacco    *string
	HIVStatus  *string
	Conditions *string
}

type Education struct {
	UserID       int
	HighestLevel *string
	FieldOfStudy *string
}

type Profession struct {
	UserID       int
	Occupation   *string
	Organization *string
	IncomeBand   *string
}

// Expectations is the seeker's stored preference record. Empty lists mean
// "no preference".
type Expectations struct {
	UserID          int
	AgeFrom         *int
	AgeTo           *int
	MaritalStatus   *string
	AlcoholPref     *string
	EducationLevels []string
	Communities     []string
	Countries       []string
	States          []string
	Professions     []string
	Diets           []string
}

// CandidateView is the per-request join of one user's attribute records.
// Identity is always present; the sub-records are nil when the user never
// filled them in. Views are rebuilt per request and never mutated.
type CandidateView struct {
	Identity   Identity
	Personal   *Personal
	Family     *Family
	Health     *Health
	Education  *Education
	Profession *Profession
}

// Age returns the candidate's age in whole years at the given instant, or
// -1 when the birth date is missing.
func (v *CandidateView) Age(now time.Time) int {
	if v.Identity.BirthDate == nil {
		return -1
	}
	b := *v.Identity.BirthDate
	age := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		age--
	}
	return age
}

// ScoreDetail is the explanatory compatibility result. It is derived data:
// recomputed per request, never the source of truth for filtering.
type ScoreDetail struct {
	Score     int            `json:"score"`
	Reasons   []string       `json:"reasons"`
	Breakdown map[string]int `json:"breakdown"`
}

// FilterRequest is the untrusted, all-optional search input.
type FilterRequest struct {
	Name          string `json:"name"`
	RecencyBucket string `json:"recency"` // last1week | last3week | last1month | all
	AgeFrom       int    `json:"age_from"`
	AgeTo         int    `json:"age_to"`
	HeightFrom    int    `json:"height_from"`
	HeightTo      int    `json:"height_to"`
	Religion      string `json:"religion"`
	Caste         string `json:"caste"`
	City          string `json:"city"`
	Profession    string `json:"profession"`
	Gender        string `json:"gender"`
	SortBy        string `json:"sort_by"` // age | newest
}

// Listing is the user-facing search result row.
type Listing struct {
	UserID     int          `json:"user_id"`
	FullName   string       `json:"full_name"`
	Age        int          `json:"age,omitempty"`
	Religion   string       `json:"religion,omitempty"`
	City       string       `json:"city,omitempty"`
	Occupation string       `json:"occupation,omitempty"`
	Score      *ScoreDetail `json:"compatibility,omitempty"`
}

// Pagination is the envelope around a result page. Total always reflects
// the full predicate match count, not the page window.
type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// SearchResult is what the search operation returns to the API layer.
type SearchResult struct {
	Data       []Listing  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ComparisonRow is one hydrated entry of a user's comparison set.
type ComparisonRow struct {
	UserID     int    `json:"user_id"`
	FullName   string `json:"full_name"`
	Age        int    `json:"age,omitempty"`
	HeightCM   int    `json:"height_cm,omitempty"`
	Religion   string `json:"religion,omitempty"`
	City       string `json:"city,omitempty"`
	Education  string `json:"education,omitempty"`
	Occupation string `json:"occupation,omitempty"`
	IncomeBand string `json:"income_band,omitempty"`
	Diet       string `json:"diet,omitempty"`
}
