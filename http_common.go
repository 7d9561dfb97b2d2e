package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

// --- Response helpers ---
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeTaxonomyError maps the engine's error taxonomy to HTTP statuses.
// Dependency failures surface as 502: the store failed, not the request.
func writeTaxonomyError(w http.ResponseWriter, err error) {
	var cap *CapExceededError
	switch {
	case errors.As(err, &cap):
		writeError(w, http.StatusBadRequest, "cap_exceeded")
	case errors.Is(err, ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid_input")
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	case errors.Is(err, ErrDependency):
		writeError(w, http.StatusBadGateway, "store_error")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

// queryInt reads an integer query parameter, falling back when missing or
// malformed.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// withTx wraps a function in a database transaction.
// - Ensures COMMIT on success, ROLLBACK on errors or panics.
// - Keeps handler bodies tiny and all state changes atomic.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}

	defer func() {
		// If the callback panics, make sure to rollback before re-panicking
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
