package main

import (
	"net/http"
	"strconv"
	"strings"
)

// Block management. Blocks feed the search pipeline's pre-join exclusion:
// a blocked candidate never appears in either party's results.

// GET /blocks lists the ids this user has blocked.
func blocksHandler(store *Store) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		userID := r.Context().Value(userIDKey).(int)

		rows, err := store.db.QueryContext(r.Context(), `
			SELECT blocked_user_id FROM blocks WHERE user_id = $1 ORDER BY created_at DESC
		`, userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		defer rows.Close()

		var blocked []int
		for rows.Next() {
			var id int
			if err := rows.Scan(&id); err == nil {
				blocked = append(blocked, id)
			}
		}
		writeJSON(w, http.StatusOK, map[string][]int{"blocked": blocked})
	})
}

// POST /blocks/{id} blocks a user, DELETE /blocks/{id} unblocks.
func blockActionHandler(store *Store) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 2 || parts[0] != "blocks" {
			http.NotFound(w, r)
			return
		}
		targetID, err := strconv.Atoi(parts[1])
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_id")
			return
		}
		userID := r.Context().Value(userIDKey).(int)
		if targetID == userID {
			writeError(w, http.StatusBadRequest, "self_block")
			return
		}

		switch r.Method {
		case http.MethodPost:
			if _, err := store.GetIdentity(r.Context(), targetID); err != nil {
				writeTaxonomyError(w, err)
				return
			}
			_, err := store.db.ExecContext(r.Context(), `
				INSERT INTO blocks (user_id, blocked_user_id) VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, userID, targetID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "block_error")
				return
			}
			writeJSON(w, http.StatusCreated, map[string]bool{"blocked": true})

		case http.MethodDelete:
			_, err := store.db.ExecContext(r.Context(),
				"DELETE FROM blocks WHERE user_id = $1 AND blocked_user_id = $2", userID, targetID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "unblock_error")
				return
			}
			writeJSON(w, http.StatusOK, map[string]bool{"blocked": false})

		default:
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
		}
	})
}
