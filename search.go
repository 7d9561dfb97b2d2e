package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// runSearch is the full pipeline behind POST /search: compile the filter,
// execute the plan, hydrate only the returned page, attach compatibility
// scores, format listings. seekerID 0 runs the anonymous variant: no
// block exclusion, no privacy gate, neutral scores.
func runSearch(ctx context.Context, store AttributeStore, seekerID int, req FilterRequest, page, limit int, now time.Time) (*SearchResult, error) {
	var (
		seekerView   *CandidateView
		expectations *Expectations
		seekerDisc   = disclosureUnknown
	)
	if seekerID > 0 {
		var err error
		seekerView, err = assembleCandidate(ctx, store, seekerID, allFields())
		if err != nil {
			return nil, err
		}
		expectations, err = store.GetExpectations(ctx, seekerID)
		if err != nil {
			return nil, err
		}
		seekerDisc = seekerDisclosure(seekerView.Health)
	}

	plan := compileSearch(req, seekerID, seekerDisc, page, limit, now)

	ids, total, err := store.RunSearch(ctx, plan)
	if err != nil {
		return nil, err
	}

	views, err := assembleCandidates(ctx, store, ids, listingFields())
	if err != nil {
		return nil, err
	}

	listings := make([]Listing, 0, len(ids))
	for _, id := range ids {
		view, ok := views[id]
		if !ok {
			// Identity vanished between the plan run and hydration;
			// drop the row, keep the page.
			continue
		}
		listing := formatListing(view, now)
		if seekerView != nil && expectations != nil {
			detail := scoreCompatibility(seekerView, expectations, view, now)
			listing.Score = &detail
		}
		listings = append(listings, listing)
	}

	return &SearchResult{
		Data: listings,
		Pagination: Pagination{
			Page:    plan.Page,
			Limit:   plan.Limit,
			Total:   total,
			HasMore: plan.Page*plan.Limit < total,
		},
	}, nil
}

// formatListing shapes one candidate view into the listing row the client
// renders. Absent attributes stay zero-valued and are omitted from JSON.
func formatListing(view *CandidateView, now time.Time) Listing {
	listing := Listing{
		UserID:   view.Identity.ID,
		FullName: view.Identity.FullName,
	}
	if age := view.Age(now); age >= 0 {
		listing.Age = age
	}
	if view.Personal != nil {
		if view.Personal.Religion != nil {
			listing.Religion = *view.Personal.Religion
		}
		if view.Personal.City != nil {
			listing.City = *view.Personal.City
		}
	}
	if view.Profession != nil && view.Profession.Occupation != nil {
		listing.Occupation = *view.Profession.Occupation
	}
	return listing
}

// computeMatchScore scores one candidate against the seeker's stored
// expectations. A missing candidate identity is ErrNotFound for this item
// only; callers batching several candidates drop the failing one.
func computeMatchScore(ctx context.Context, store AttributeStore, seekerID, candidateID int, now time.Time) (*ScoreDetail, error) {
	seekerView, err := assembleCandidate(ctx, store, seekerID, allFields())
	if err != nil {
		return nil, err
	}
	expectations, err := store.GetExpectations(ctx, seekerID)
	if err != nil {
		return nil, err
	}
	candidateView, err := assembleCandidate(ctx, store, candidateID, listingFields())
	if err != nil {
		return nil, err
	}
	detail := scoreCompatibility(seekerView, expectations, candidateView, now)
	return &detail, nil
}

func searchHandler(store AttributeStore) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		userID := r.Context().Value(userIDKey).(int)

		var req FilterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		page := queryInt(r, "page", 1)
		limit := queryInt(r, "limit", 20)

		result, err := runSearch(r.Context(), store, userID, req, page, limit, time.Now())
		if err != nil {
			writeTaxonomyError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})
}

func matchScoreHandler(store AttributeStore) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		userID := r.Context().Value(userIDKey).(int)
		candidateID := queryInt(r, "candidate", 0)
		if candidateID <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_candidate")
			return
		}

		detail, err := computeMatchScore(r.Context(), store, userID, candidateID, time.Now())
		if err != nil {
			writeTaxonomyError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	})
}
