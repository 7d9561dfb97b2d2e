package main

import (
	"log"
	"net/http"
	"os"
)

// JWT secret from environment variable or fallback
func getJWTSecret() []byte {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return []byte(secret)
	}
	return []byte("your_secret_key_please_change_in_production")
}

var jwtSecret = getJWTSecret()

func main() {
	initDB()
	store := NewStore(db)

	mux := http.NewServeMux()

	// Core auth & user endpoints
	mux.Handle("/register", registerHandler(db))
	mux.Handle("/login", loginHandler(db))
	mux.Handle("/me", meHandler(store))

	// Search & matching
	mux.Handle("/search", searchHandler(store))
	mux.Handle("/matches/score", matchScoreHandler(store))

	// Comparison set (capped at 5 profiles)
	mux.Handle("/compare", compareHandler(store))
	mux.Handle("/compare/", compareMemberHandler(store)) // DELETE /compare/{id}
	// Interests
	mux.Handle("/interests/", interestsRouter(store)) // POST /interests/{id}/..., GET /interests/pending[/count]

	// Blocks feeding the search exclusion
	mux.Handle("/blocks", blocksHandler(store))
	mux.Handle("/blocks/", blockActionHandler(store))

	// Users dispatcher (candidate profile views)
	mux.Handle("/users/", usersDispatcher(store))

	// Health check endpoint for Docker
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	handler := withCORS(dataLoaderMiddleware(store)(mux))
	log.Default().Println("Starting Match Backend on port " + port + "...")
	http.ListenAndServe(":"+port, handler)
}
