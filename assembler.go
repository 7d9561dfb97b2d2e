package main

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// AttributeStore is the read contract the assembler and the search
// pipeline consume. *Store implements it over Postgres; tests implement
// it in memory.
type AttributeStore interface {
	GetIdentities(ctx context.Context, ids []int) (map[int]Identity, error)
	GetPersonals(ctx context.Context, ids []int) (map[int]Personal, error)
	GetFamilies(ctx context.Context, ids []int) (map[int]Family, error)
	GetHealthRecords(ctx context.Context, ids []int) (map[int]Health, error)
	GetEducations(ctx context.Context, ids []int) (map[int]Education, error)
	GetProfessions(ctx context.Context, ids []int) (map[int]Profession, error)
	GetExpectations(ctx context.Context, id int) (*Expectations, error)
	RunSearch(ctx context.Context, plan QueryPlan) ([]int, int, error)
}

// Fields selects which attribute kinds a candidate view needs. Kinds not
// requested stay nil on the view regardless of stored data.
type Fields struct {
	Personal   bool
	Family     bool
	Health     bool
	Education  bool
	Profession bool
}

func allFields() Fields {
	return Fields{Personal: true, Family: true, Health: true, Education: true, Profession: true}
}

// listingFields is what a search page needs to format and score listings.
func listingFields() Fields {
	return Fields{Personal: true, Health: true, Education: true, Profession: true}
}

// assembleCandidates joins identity plus the requested attribute kinds
// into one view per user id. One batch lookup is issued per kind, all
// kinds concurrently; if any lookup fails the whole call fails rather
// than returning a partially joined result.
//
// Ids without a live identity record are silently dropped: a user deleted
// mid-pagination disappears from the page instead of failing it. Missing
// optional records leave the view's sub-record nil.
func assembleCandidates(ctx context.Context, store AttributeStore, ids []int, fields Fields) (map[int]*CandidateView, error) {
	var (
		identities  map[int]Identity
		personals   map[int]Personal
		families    map[int]Family
		healths     map[int]Health
		educations  map[int]Education
		professions map[int]Profession
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		identities, err = store.GetIdentities(gctx, ids)
		return err
	})
	if fields.Personal {
		g.Go(func() error {
			var err error
			personals, err = store.GetPersonals(gctx, ids)
			return err
		})
	}
	if fields.Family {
		g.Go(func() error {
			var err error
			families, err = store.GetFamilies(gctx, ids)
			return err
		})
	}
	if fields.Health {
		g.Go(func() error {
			var err error
			healths, err = store.GetHealthRecords(gctx, ids)
			return err
		})
	}
	if fields.Education {
		g.Go(func() error {
			var err error
			educations, err = store.GetEducations(gctx, ids)
			return err
		})
	}
	if fields.Profession {
		g.Go(func() error {
			var err error
			professions, err = store.GetProfessions(gctx, ids)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	views := make(map[int]*CandidateView, len(identities))
	for id, ident := range identities {
		view := &CandidateView{Identity: ident}
		if p, ok := personals[id]; ok {
			p := p
			view.Personal = &p
		}
		if f, ok := families[id]; ok {
			f := f
			view.Family = &f
		}
		if h, ok := healths[id]; ok {
			h := h
			view.Health = &h
		}
		if e, ok := educations[id]; ok {
			e := e
			view.Education = &e
		}
		if pr, ok := professions[id]; ok {
			pr := pr
			view.Profession = &pr
		}
		views[id] = view
	}
	return views, nil
}

// assembleCandidate is the single-user convenience form. It returns
// ErrNotFound when no identity record exists.
func assembleCandidate(ctx context.Context, store AttributeStore, id int, fields Fields) (*CandidateView, error) {
	views, err := assembleCandidates(ctx, store, []int{id}, fields)
	if err != nil {
		return nil, err
	}
	view, ok := views[id]
	if !ok {
		return nil, ErrNotFound
	}
	return view, nil
}
