// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Instead, use
// setupTestDB() and the seed* helpers.
package sqlite_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/cadastre/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// This is the single shared test database setup function for all repository tests.
// Uses db.GetSchemaSQL() to prevent test schemas from drifting.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Every pooled connection to :memory: is a separate database.
	testDB.SetMaxOpenConns(1)

	// Use the authoritative schema from schema.go
	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// setupFileDB opens a file-backed database through db.Open so concurrent
// tests exercise the production connection settings.
func setupFileDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.Open(filepath.Join(t.TempDir(), "cadastre.db"))
	if err != nil {
		t.Fatalf("failed to open file db: %v", err)
	}
	t.Cleanup(func() {
		testDB.Close()
	})
	return testDB
}

// seedSurveyor inserts a verified test surveyor and returns its ID.
func seedSurveyor(t *testing.T, db *sql.DB, id, userID string) string {
	t.Helper()
	if id == "" {
		id = "SRV-0001"
	}
	if userID == "" {
		userID = "user-1"
	}
	_, err := db.Exec(
		"INSERT INTO surveyors (id, user_id, full_name, surcon_number, nis_number, status, verified_at) VALUES (?, ?, ?, ?, ?, 'VERIFIED', ?)",
		id, userID, "Test Surveyor", "SURCON-"+id, "NIS-"+id, time.Now(),
	)
	if err != nil {
		t.Fatalf("failed to seed surveyor: %v", err)
	}
	return id
}

// seedJob inserts a test job in the given status and returns its ID.
func seedJob(t *testing.T, db *sql.DB, id, surveyorID, status string) string {
	t.Helper()
	if id == "" {
		id = "JOB-000001"
	}
	if surveyorID == "" {
		surveyorID = "SRV-0001"
	}
	if status == "" {
		status = "SUBMITTED"
	}
	now := time.Now()
	_, err := db.Exec(
		"INSERT INTO survey_jobs (id, surveyor_id, submitted_by, client_name, location_description, pillar_numbers_required, status, submitted_at, updated_at) VALUES (?, ?, 'user-1', 'Client', 'Plot 7', 2, ?, ?, ?)",
		id, surveyorID, status, now, now,
	)
	if err != nil {
		t.Fatalf("failed to seed job: %v", err)
	}
	return id
}
