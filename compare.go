package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// compareSetCap bounds how many profiles one user may hold side by side.
const compareSetCap = 5

// compareSetMaxRetries bounds the optimistic update loop before the race
// is surfaced as ErrConflict.
const compareSetMaxRetries = 3

// compareSetStore is the storage contract for the capped set: a plain
// read plus a compare-and-swap write. The cap and union logic live above
// this contract so they can be tested without Postgres.
type compareSetStore interface {
	ReadCompareSet(ctx context.Context, userID int) ([]int, error)
	// SwapCompareSet writes next only when the stored value still equals
	// old (nil old means "no row yet"). Returns false when the guard
	// failed because a concurrent writer got there first.
	SwapCompareSet(ctx context.Context, userID int, old, next []int) (bool, error)
}

// addToCompareSet unions the requested ids into the user's stored set
// under the cap. Never a plain read-then-write: the swap is guarded
// against the value that was read, and retried a bounded number of times
// before surfacing ErrConflict. A rejected request leaves the stored set
// exactly as it was.
func addToCompareSet(ctx context.Context, store compareSetStore, userID int, ids []int) error {
	if len(ids) == 0 {
		return ErrValidation
	}
	for attempt := 0; attempt < compareSetMaxRetries; attempt++ {
		current, err := store.ReadCompareSet(ctx, userID)
		if err != nil {
			return err
		}

		next := unionInts(current, ids)
		if len(next) > compareSetCap {
			return &CapExceededError{Cap: compareSetCap, Requested: len(next)}
		}
		if len(next) == len(current) {
			return nil // every id already present
		}

		swapped, err := store.SwapCompareSet(ctx, userID, current, next)
		if err != nil {
			return err
		}
		if swapped {
			return nil
		}
	}
	return ErrConflict
}

// unionInts appends the new ids to base, keeping order and dropping
// duplicates.
func unionInts(base, add []int) []int {
	seen := make(map[int]struct{}, len(base)+len(add))
	out := make([]int, 0, len(base)+len(add))
	for _, id := range base {
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	for _, id := range add {
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// compareProfiles hydrates the given ids into comparison rows. More than
// compareSetCap ids is a rejected request, never a silent truncation. Ids
// whose identity record has gone away are dropped; the siblings still
// return.
func compareProfiles(ctx context.Context, store AttributeStore, ids []int) ([]ComparisonRow, error) {
	if len(ids) == 0 {
		return []ComparisonRow{}, nil
	}
	if len(ids) > compareSetCap {
		return nil, &CapExceededError{Cap: compareSetCap, Requested: len(ids)}
	}

	views, err := assembleCandidates(ctx, store, ids, allFields())
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rows := make([]ComparisonRow, 0, len(ids))
	for _, id := range ids {
		view, ok := views[id]
		if !ok {
			continue
		}
		row := ComparisonRow{
			UserID:   view.Identity.ID,
			FullName: view.Identity.FullName,
		}
		if age := view.Age(now); age >= 0 {
			row.Age = age
		}
		if view.Personal != nil {
			if view.Personal.HeightCM != nil {
				row.HeightCM = *view.Personal.HeightCM
			}
			if view.Personal.Religion != nil {
				row.Religion = *view.Personal.Religion
			}
			if view.Personal.City != nil {
				row.City = *view.Personal.City
			}
		}
		if view.Education != nil && view.Education.HighestLevel != nil {
			row.Education = *view.Education.HighestLevel
		}
		if view.Profession != nil {
			if view.Profession.Occupation != nil {
				row.Occupation = *view.Profession.Occupation
			}
			if view.Profession.IncomeBand != nil {
				row.IncomeBand = *view.Profession.IncomeBand
			}
		}
		if view.Health != nil && view.Health.Diet != nil {
			row.Diet = *view.Health.Diet
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// --- Postgres side of the compare-set contract ---

func (s *Store) ReadCompareSet(ctx context.Context, userID int) ([]int, error) {
	var arr pq.Int64Array
	err := s.db.QueryRowContext(ctx,
		"SELECT member_ids FROM compare_sets WHERE user_id = $1", userID).Scan(&arr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, dependencyError("read compare set", err)
	}
	out := make([]int, len(arr))
	for i, v := range arr {
		out[i] = int(v)
	}
	return out, nil
}

func (s *Store) SwapCompareSet(ctx context.Context, userID int, old, next []int) (bool, error) {
	if old == nil {
		// First write for this user; a concurrent first writer makes the
		// insert conflict, which reads as a failed swap.
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO compare_sets (user_id, member_ids, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (user_id) DO NOTHING
		`, userID, int64Array(next))
		if err != nil {
			return false, dependencyError("insert compare set", err)
		}
		n, _ := res.RowsAffected()
		return n == 1, nil
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE compare_sets
		SET member_ids = $2, updated_at = NOW()
		WHERE user_id = $1 AND member_ids = $3
	`, userID, int64Array(next), int64Array(old))
	if err != nil {
		return false, dependencyError("swap compare set", err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// RemoveFromCompareSet drops one id; removing an id that is not present
// is a no-op.
func (s *Store) RemoveFromCompareSet(ctx context.Context, userID, memberID int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE compare_sets
		SET member_ids = array_remove(member_ids, $2), updated_at = NOW()
		WHERE user_id = $1
	`, userID, memberID)
	if err != nil {
		return dependencyError("remove from compare set", err)
	}
	return nil
}

func int64Array(ids []int) pq.Int64Array {
	out := make(pq.Int64Array, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

// --- Handlers ---

// compareHandler serves GET /compare (hydrated rows of the stored set)
// and POST /compare (add ids under the cap).
func compareHandler(store *Store) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(userIDKey).(int)

		switch r.Method {
		case http.MethodGet:
			ids, err := store.ReadCompareSet(r.Context(), userID)
			if err != nil {
				writeTaxonomyError(w, err)
				return
			}
			rows, err := compareProfiles(r.Context(), store, ids)
			if err != nil {
				writeTaxonomyError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{"profiles": rows})

		case http.MethodPost:
			var req struct {
				IDs []int `json:"ids"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_json")
				return
			}
			if err := addToCompareSet(r.Context(), store, userID, req.IDs); err != nil {
				writeTaxonomyError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})

		default:
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
		}
	})
}

// compareMemberHandler serves DELETE /compare/{id}.
func compareMemberHandler(store *Store) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 2 || parts[0] != "compare" {
			http.NotFound(w, r)
			return
		}
		memberID, err := strconv.Atoi(parts[1])
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_id")
			return
		}
		userID := r.Context().Value(userIDKey).(int)
		if err := store.RemoveFromCompareSet(r.Context(), userID, memberID); err != nil {
			writeTaxonomyError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
