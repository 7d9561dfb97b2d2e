package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var compileNow = time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

func findPredicate(plan QueryPlan, field string) (predicate, bool) {
	for _, pr := range plan.Predicates {
		if pr.Field == field {
			return pr, true
		}
	}
	return predicate{}, false
}

func TestCompileSearch(t *testing.T) {
	t.Run("Empty Request Compiles To Bare Plan", func(t *testing.T) {
		plan := compileSearch(FilterRequest{}, 0, disclosureUnknown, 1, 20, compileNow)
		assert.Empty(t, plan.Predicates)
		assert.Equal(t, sortNewest, plan.Sort)
	})

	t.Run("Phases Are Assigned", func(t *testing.T) {
		req := FilterRequest{
			Gender:     "female",
			Name:       "pri",
			Religion:   "hindu",
			City:       "ahmedabad",
			Profession: "engineer",
			HeightFrom: 150,
		}
		plan := compileSearch(req, 42, disclosureAffirmative, 1, 20, compileNow)

		gender, ok := findPredicate(plan, "gender")
		require.True(t, ok)
		assert.Equal(t, phasePreJoin, gender.Phase)
		assert.Equal(t, opEq, gender.Op)

		religion, ok := findPredicate(plan, "religion")
		require.True(t, ok)
		assert.Equal(t, phasePostJoin, religion.Phase)
		assert.Equal(t, opSubstr, religion.Op)

		profession, ok := findPredicate(plan, "occupation")
		require.True(t, ok)
		assert.Equal(t, opSubstrEither, profession.Op)
		assert.Equal(t, "organization", profession.AltField)

		privacy := plan.predicatesIn(phasePrivacy)
		require.Len(t, privacy, 1)
		assert.Equal(t, opDisclosure, privacy[0].Op)
	})

	t.Run("Recency Buckets", func(t *testing.T) {
		for bucket, days := range map[string]int{"last1week": 7, "last3week": 21, "last1month": 30} {
			plan := compileSearch(FilterRequest{RecencyBucket: bucket}, 0, disclosureUnknown, 1, 20, compileNow)
			pr, ok := findPredicate(plan, "created_at")
			require.True(t, ok, bucket)
			assert.Equal(t, compileNow.AddDate(0, 0, -days), pr.From, bucket)
		}

		plan := compileSearch(FilterRequest{RecencyBucket: "all"}, 0, disclosureUnknown, 1, 20, compileNow)
		_, ok := findPredicate(plan, "created_at")
		assert.False(t, ok, "bucket 'all' adds no bound")
	})

	t.Run("Age Range Becomes Birth Date Window", func(t *testing.T) {
		plan := compileSearch(FilterRequest{AgeFrom: 25, AgeTo: 35}, 0, disclosureUnknown, 1, 20, compileNow)
		window, ok := findPredicate(plan, "birth_date")
		require.True(t, ok)
		assert.Equal(t, phasePreJoin, window.Phase)
		assert.Equal(t, compileNow.AddDate(-35, 0, 0), window.From)
		assert.Equal(t, compileNow.AddDate(-25, 0, 0), window.To)

		// Boundary semantics the executor renders as birth_date >= From
		// AND birth_date <= To:
		inRange := func(birth time.Time) bool {
			return !birth.Before(window.From) && !birth.After(window.To)
		}
		// Born exactly now-35y: included.
		assert.True(t, inRange(compileNow.AddDate(-35, 0, 0)))
		// Born one day before now-35y: outside the window.
		assert.False(t, inRange(compileNow.AddDate(-35, 0, 0).AddDate(0, 0, -1)))
		// Born exactly now-25y: included; one day after: outside.
		assert.True(t, inRange(compileNow.AddDate(-25, 0, 0)))
		assert.False(t, inRange(compileNow.AddDate(-25, 0, 0).AddDate(0, 0, 1)))
	})

	t.Run("Open Ended Age Range", func(t *testing.T) {
		plan := compileSearch(FilterRequest{AgeFrom: 30}, 0, disclosureUnknown, 1, 20, compileNow)
		window, _ := findPredicate(plan, "birth_date")
		assert.True(t, window.From.IsZero())
		assert.Equal(t, compileNow.AddDate(-30, 0, 0), window.To)
	})

	t.Run("Block Exclusion Only When Authenticated", func(t *testing.T) {
		plan := compileSearch(FilterRequest{}, 42, disclosureUnknown, 1, 20, compileNow)
		blocked, ok := findPredicate(plan, "blocks")
		require.True(t, ok)
		assert.Equal(t, 42, blocked.UserID)

		anon := compileSearch(FilterRequest{}, 0, disclosureUnknown, 1, 20, compileNow)
		_, ok = findPredicate(anon, "blocks")
		assert.False(t, ok)
	})

	t.Run("Privacy Phase Symmetry", func(t *testing.T) {
		affirmative := compileSearch(FilterRequest{}, 42, disclosureAffirmative, 1, 20, compileNow)
		pr, ok := findPredicate(affirmative, "hiv_status")
		require.True(t, ok)
		assert.Equal(t, phasePrivacy, pr.Phase)
		assert.Equal(t, []string{"true", "yes", "1"}, pr.Literals)

		negative := compileSearch(FilterRequest{}, 42, disclosureNegative, 1, 20, compileNow)
		pr, ok = findPredicate(negative, "hiv_status")
		require.True(t, ok)
		assert.Equal(t, []string{"false", "no", "0"}, pr.Literals)

		// Seeker with no record: no restriction at all.
		unknown := compileSearch(FilterRequest{}, 42, disclosureUnknown, 1, 20, compileNow)
		_, ok = findPredicate(unknown, "hiv_status")
		assert.False(t, ok)
	})

	t.Run("Page And Limit Floored To One", func(t *testing.T) {
		plan := compileSearch(FilterRequest{}, 0, disclosureUnknown, 0, -3, compileNow)
		assert.Equal(t, 1, plan.Page)
		assert.Equal(t, 1, plan.Limit)
	})

	t.Run("Sort Mapping", func(t *testing.T) {
		assert.Equal(t, sortAge, compileSearch(FilterRequest{SortBy: "age"}, 0, disclosureUnknown, 1, 20, compileNow).Sort)
		assert.Equal(t, sortNewest, compileSearch(FilterRequest{SortBy: "newest"}, 0, disclosureUnknown, 1, 20, compileNow).Sort)
		assert.Equal(t, sortNewest, compileSearch(FilterRequest{}, 0, disclosureUnknown, 1, 20, compileNow).Sort)
	})
}
