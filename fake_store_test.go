package main

import (
	"context"
	"errors"
	"time"
)

// fakeStore is an in-memory AttributeStore for pipeline tests. Each
// record map plays the role of one attribute table; failKind forces the
// named batch lookup to fail so partial-join behavior can be exercised.
type fakeStore struct {
	identities  map[int]Identity
	personals   map[int]Personal
	families    map[int]Family
	healths     map[int]Health
	educations  map[int]Education
	professions map[int]Profession
	expect      map[int]*Expectations

	failKind string

	// searchIDs/searchTotal drive RunSearch; lastPlan records what the
	// pipeline compiled.
	searchIDs   []int
	searchTotal int
	lastPlan    QueryPlan
}

var errFakeLookup = errors.New("fake lookup failure")

func newFakeStore() *fakeStore {
	return &fakeStore{
		identities:  map[int]Identity{},
		personals:   map[int]Personal{},
		families:    map[int]Family{},
		healths:     map[int]Health{},
		educations:  map[int]Education{},
		professions: map[int]Profession{},
		expect:      map[int]*Expectations{},
	}
}

func pick[T any](all map[int]T, ids []int) map[int]T {
	out := make(map[int]T, len(ids))
	for _, id := range ids {
		if rec, ok := all[id]; ok {
			out[id] = rec
		}
	}
	return out
}

func (f *fakeStore) GetIdentities(_ context.Context, ids []int) (map[int]Identity, error) {
	if f.failKind == "identity" {
		return nil, errFakeLookup
	}
	return pick(f.identities, ids), nil
}

func (f *fakeStore) GetPersonals(_ context.Context, ids []int) (map[int]Personal, error) {
	if f.failKind == "personal" {
		return nil, errFakeLookup
	}
	return pick(f.personals, ids), nil
}

func (f *fakeStore) GetFamilies(_ context.Context, ids []int) (map[int]Family, error) {
	if f.failKind == "family" {
		return nil, errFakeLookup
	}
	return pick(f.families, ids), nil
}

func (f *fakeStore) GetHealthRecords(_ context.Context, ids []int) (map[int]Health, error) {
	if f.failKind == "health" {
		return nil, errFakeLookup
	}
	return pick(f.healths, ids), nil
}

func (f *fakeStore) GetEducations(_ context.Context, ids []int) (map[int]Education, error) {
	if f.failKind == "education" {
		return nil, errFakeLookup
	}
	return pick(f.educations, ids), nil
}

func (f *fakeStore) GetProfessions(_ context.Context, ids []int) (map[int]Profession, error) {
	if f.failKind == "profession" {
		return nil, errFakeLookup
	}
	return pick(f.professions, ids), nil
}

func (f *fakeStore) GetExpectations(_ context.Context, id int) (*Expectations, error) {
	return f.expect[id], nil
}

func (f *fakeStore) RunSearch(_ context.Context, plan QueryPlan) ([]int, int, error) {
	f.lastPlan = plan
	// Serve the requested window over the configured id list, the way
	// the real executor pages over the full predicate match.
	offset := (plan.Page - 1) * plan.Limit
	if offset >= len(f.searchIDs) {
		return nil, f.searchTotal, nil
	}
	end := offset + plan.Limit
	if end > len(f.searchIDs) {
		end = len(f.searchIDs)
	}
	return f.searchIDs[offset:end], f.searchTotal, nil
}

// addUser seeds an identity with the given birth date (nil allowed).
func (f *fakeStore) addUser(id int, name string, birth *time.Time) {
	f.identities[id] = Identity{
		ID: id, Email: name + "@example.com", FullName: name,
		Gender: "female", BirthDate: birth, CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func datePtr(year, month, day int) *time.Time {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}
