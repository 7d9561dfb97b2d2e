package main

import (
	"time"
)

// Evaluation phases of a compiled predicate. Pre-join predicates only
// touch the identity record; post-join predicates need joined attribute
// data; the privacy phase is appended last and only when the seeker's own
// disclosure requires it.
type phase int

const (
	phasePreJoin phase = iota
	phasePostJoin
	phasePrivacy
)

// Predicate operators. Each predicate is one typed variant rather than an
// ad-hoc map so the compiler can be tested without a storage engine.
type predicateOp int

const (
	opEq predicateOp = iota
	opSubstr
	opSubstrEither // substring over a primary-or-alternate field pair
	opMin
	opMax
	opDateMin
	opDateWindow
	opNotBlocked
	opDisclosure
)

type predicate struct {
	Phase phase
	Op    predicateOp
	Field string

	Str      string
	AltField string
	Value    int
	From, To time.Time
	UserID   int
	Literals []string
}

type sortOrder int

const (
	sortNewest sortOrder = iota // created_at DESC, id ASC
	sortAge                     // birth_date DESC, id ASC
)

// QueryPlan is the staged, typed representation of one search request.
// Predicates are ordered by phase; Page is 1-indexed.
type QueryPlan struct {
	Predicates []predicate
	Sort       sortOrder
	Page       int
	Limit      int
}

// Recency buckets the filter accepts, mapped to a created_at lower bound.
var recencyDays = map[string]int{
	"last1week":  7,
	"last3week":  21,
	"last1month": 30,
}

// compileSearch translates an untrusted filter request into a QueryPlan.
// The seeker's own disclosure drives the privacy phase; authUserID 0 means
// unauthenticated (no block exclusion, no privacy phase).
func compileSearch(req FilterRequest, authUserID int, seekerDisc disclosure, page, limit int, now time.Time) QueryPlan {
	plan := QueryPlan{Page: page, Limit: limit}
	if plan.Page < 1 {
		plan.Page = 1
	}
	if plan.Limit < 1 {
		plan.Limit = 1
	}

	// --- Pre-join phase: identity-only predicates ---

	if req.Gender != "" {
		plan.Predicates = append(plan.Predicates, predicate{
			Phase: phasePreJoin, Op: opEq, Field: "gender", Str: req.Gender,
		})
	}
	if req.Name != "" {
		plan.Predicates = append(plan.Predicates, predicate{
			Phase: phasePreJoin, Op: opSubstr, Field: "full_name", Str: req.Name,
		})
	}
	if days, ok := recencyDays[req.RecencyBucket]; ok {
		plan.Predicates = append(plan.Predicates, predicate{
			Phase: phasePreJoin, Op: opDateMin, Field: "created_at",
			From: now.AddDate(0, 0, -days),
		})
	}
	if req.AgeFrom > 0 || req.AgeTo > 0 {
		// The age range becomes a birth-date window evaluated at the
		// request instant: born on exactly now-ageTo years is still in
		// range, born one day earlier is out.
		p := predicate{Phase: phasePreJoin, Op: opDateWindow, Field: "birth_date"}
		if req.AgeTo > 0 {
			p.From = now.AddDate(-req.AgeTo, 0, 0)
		}
		if req.AgeFrom > 0 {
			p.To = now.AddDate(-req.AgeFrom, 0, 0)
		}
		plan.Predicates = append(plan.Predicates, p)
	}
	if authUserID > 0 {
		// Two-way exclusion: candidates the seeker blocked and
		// candidates who blocked the seeker both disappear.
		plan.Predicates = append(plan.Predicates, predicate{
			Phase: phasePreJoin, Op: opNotBlocked, Field: "blocks", UserID: authUserID,
		})
	}

	// --- Post-join phase: attribute predicates ---

	if req.HeightFrom > 0 {
		plan.Predicates = append(plan.Predicates, predicate{
			Phase: phasePostJoin, Op: opMin, Field: "height_cm", Value: req.HeightFrom,
		})
	}
	if req.HeightTo > 0 {
		plan.Predicates = append(plan.Predicates, predicate{
			Phase: phasePostJoin, Op: opMax, Field: "height_cm", Value: req.HeightTo,
		})
	}
	if req.Religion != "" {
		plan.Predicates = append(plan.Predicates, predicate{
			Phase: phasePostJoin, Op: opSubstr, Field: "religion", Str: req.Religion,
		})
	}
	if req.Caste != "" {
		plan.Predicates = append(plan.Predicates, predicate{
			Phase: phasePostJoin, Op: opSubstr, Field: "sub_caste", Str: req.Caste,
		})
	}
	if req.City != "" {
		plan.Predicates = append(plan.Predicates, predicate{
			Phase: phasePostJoin, Op: opSubstr, Field: "city", Str: req.City,
		})
	}
	if req.Profession != "" {
		plan.Predicates = append(plan.Predicates, predicate{
			Phase: phasePostJoin, Op: opSubstrEither,
			Field: "occupation", AltField: "organization", Str: req.Profession,
		})
	}

	// --- Privacy phase: symmetric disclosure gate ---

	if authUserID > 0 {
		if lits := disclosureLiterals(seekerDisc); lits != nil {
			plan.Predicates = append(plan.Predicates, predicate{
				Phase: phasePrivacy, Op: opDisclosure, Field: "hiv_status", Literals: lits,
			})
		}
	}

	switch req.SortBy {
	case "age":
		// birth_date DESC: youngest first.
		plan.Sort = sortAge
	default:
		plan.Sort = sortNewest
	}

	return plan
}

// predicatesIn returns the plan's predicates belonging to the given phase,
// preserving compile order.
func (p QueryPlan) predicatesIn(ph phase) []predicate {
	var out []predicate
	for _, pr := range p.Predicates {
		if pr.Phase == ph {
			out = append(out, pr)
		}
	}
	return out
}
