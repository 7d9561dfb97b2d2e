package main

import (
	"database/sql"
	"log"
	"os"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var db *sql.DB

func initDB() {
	// Get database URL from environment variable, fallback to default for development
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		connStr = "user=admin password=password dbname=matchdb sslmode=disable"
		log.Default().Println("Warning: DATABASE_URL not set, using default connection string")
	}

	var err error
	db, err = sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Error connecting to the database:", err)
	}
	err = db.Ping()
	if err != nil {
		log.Fatal("Cannot reach the database:", err)
	}
	log.Default().Println("Database connection established successfully")

	// The schema (users, personals, families, health_records, educations,
	// professions, expectations, blocks, interests, compare_sets) is
	// created out-of-band.
}
