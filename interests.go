package main

import (
	"database/sql"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Interest lifecycle
//
// TERMINOLOGY
// send: create pending interest toward another user.
// accept: pending → accepted (by the receiver).
// decline: pending → declined (by the receiver).
// A sender may not re-send while a row exists in any state.

// InterestRow represents one interest request between two users.
type InterestRow struct {
	ID         int
	SenderID   int
	ReceiverID int
	Status     string
	CreatedAt  time.Time
}

// loadInterestForUpdate returns the interest row from sender to receiver
// and takes a row lock so concurrent responses cannot double-transition
// it. Returns (nil, nil) when no row exists.
func loadInterestForUpdate(tx *sql.Tx, senderID, receiverID int) (*InterestRow, error) {
	row := tx.QueryRow(`
		SELECT id, sender_id, receiver_id, status, created_at
		FROM interests
		WHERE sender_id = $1 AND receiver_id = $2
		FOR UPDATE
	`, senderID, receiverID)

	var in InterestRow
	if err := row.Scan(&in.ID, &in.SenderID, &in.ReceiverID, &in.Status, &in.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &in, nil
}

// interestsRouter dispatches /interests/{id} and /interests/{id}/(accept|decline).
func interestsRouter(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) < 2 || parts[0] != "interests" {
			http.NotFound(w, r)
			return
		}
		if parts[1] == "pending" {
			pendingInterestsHandler(store).ServeHTTP(w, r)
			return
		}

		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		if len(parts) == 2 {
			sendInterestHandler(store).ServeHTTP(w, r)
			return
		}
		if len(parts) == 3 {
			switch parts[2] {
			case "accept":
				respondInterestHandler(store, "accepted").ServeHTTP(w, r)
			case "decline":
				respondInterestHandler(store, "declined").ServeHTTP(w, r)
			default:
				http.NotFound(w, r)
			}
			return
		}
		http.NotFound(w, r)
	}
}

// POST /interests/{id} sends an interest to user {id}.
func sendInterestHandler(store *Store) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		targetID, err := strconv.Atoi(parts[1])
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_id")
			return
		}
		userID := r.Context().Value(userIDKey).(int)
		if targetID == userID {
			writeError(w, http.StatusBadRequest, "self_interest")
			return
		}

		// The target must still exist.
		if _, err := store.GetIdentity(r.Context(), targetID); err != nil {
			writeTaxonomyError(w, err)
			return
		}

		err = withTx(r.Context(), store.db, func(tx *sql.Tx) error {
			existing, err := loadInterestForUpdate(tx, userID, targetID)
			if err != nil {
				return err
			}
			if existing != nil {
				return ErrConflict
			}
			_, err = tx.Exec(`
				INSERT INTO interests (sender_id, receiver_id, status)
				VALUES ($1, $2, 'pending')
			`, userID, targetID)
			return err
		})
		if err != nil {
			writeTaxonomyError(w, err)
			log.Println("Error sending interest:", err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "pending"})
	})
}

// POST /interests/{id}/accept|decline responds to an interest from user {id}.
func respondInterestHandler(store *Store, newStatus string) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		senderID, err := strconv.Atoi(parts[1])
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_id")
			return
		}
		userID := r.Context().Value(userIDKey).(int)

		err = withTx(r.Context(), store.db, func(tx *sql.Tx) error {
			existing, err := loadInterestForUpdate(tx, senderID, userID)
			if err != nil {
				return err
			}
			if existing == nil || existing.Status != "pending" {
				return ErrNotFound
			}
			_, err = tx.Exec("UPDATE interests SET status = $1 WHERE id = $2", newStatus, existing.ID)
			return err
		})
		if err != nil {
			writeTaxonomyError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": newStatus})
	})
}

// GET /interests/pending lists users whose interests await this user's
// response; GET /interests/pending/count returns the sender-side pending
// count.
func pendingInterestsHandler(store *Store) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		userID := r.Context().Value(userIDKey).(int)

		if strings.HasSuffix(strings.Trim(r.URL.Path, "/"), "/count") {
			n, err := store.CountPendingInterests(r.Context(), userID)
			if err != nil {
				writeTaxonomyError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]int{"pending": n})
			return
		}

		rows, err := store.db.QueryContext(r.Context(), `
			SELECT sender_id
			FROM interests
			WHERE receiver_id = $1 AND status = 'pending'
			ORDER BY created_at DESC, id DESC
		`, userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		defer rows.Close()

		var senders []int
		for rows.Next() {
			var id int
			if err := rows.Scan(&id); err == nil {
				senders = append(senders, id)
			}
		}
		writeJSON(w, http.StatusOK, map[string][]int{"requests": senders})
	})
}
