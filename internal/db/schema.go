package db

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the version recorded for the schema below.
const SchemaVersion = 1

// SchemaSQL is the complete schema for a fresh cadastre database.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// this schema via GetSchemaSQL(); if repository code references a column that
// doesn't exist here, tests fail immediately with "no such column".
const SchemaSQL = `
-- Surveyors (verification lifecycle; never hard-deleted)
CREATE TABLE IF NOT EXISTS surveyors (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL UNIQUE,
	full_name TEXT NOT NULL,
	email TEXT,
	phone TEXT,
	surcon_number TEXT NOT NULL UNIQUE,
	nis_number TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL CHECK(status IN ('PENDING_NIS_REVIEW', 'NIS_APPROVED', 'VERIFIED', 'NIS_REJECTED', 'ADMIN_REJECTED')) DEFAULT 'PENDING_NIS_REVIEW',
	verified_at DATETIME,
	rejection_reason TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_surveyors_status ON surveyors(status);

-- Survey jobs
CREATE TABLE IF NOT EXISTS survey_jobs (
	id TEXT PRIMARY KEY,
	surveyor_id TEXT NOT NULL,
	submitted_by TEXT NOT NULL,
	client_name TEXT NOT NULL,
	client_phone TEXT,
	client_email TEXT,
	location_description TEXT NOT NULL,
	requested_coordinates TEXT,
	pillar_numbers_required INTEGER NOT NULL CHECK(pillar_numbers_required > 0),
	plan_number TEXT,
	blue_copy_uploaded INTEGER NOT NULL DEFAULT 0,
	blue_copy_uploaded_at DATETIME,
	ro_document_uploaded INTEGER NOT NULL DEFAULT 0,
	ro_document_uploaded_at DATETIME,
	status TEXT NOT NULL CHECK(status IN ('SUBMITTED', 'NIS_REVIEW', 'ADMIN_REVIEW', 'COMPLETED', 'NIS_REJECTED', 'ADMIN_REJECTED')) DEFAULT 'SUBMITTED',
	rejection_reason TEXT,
	submitted_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	date_approved DATETIME,
	FOREIGN KEY (surveyor_id) REFERENCES surveyors(id)
);

CREATE INDEX IF NOT EXISTS idx_survey_jobs_status ON survey_jobs(status);
CREATE INDEX IF NOT EXISTS idx_survey_jobs_surveyor ON survey_jobs(surveyor_id);

-- Workflow steps (fixed catalog, created in full at submission)
CREATE TABLE IF NOT EXISTS workflow_steps (
	job_id TEXT NOT NULL,
	step_name TEXT NOT NULL,
	step_order INTEGER NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('Pending', 'InProgress', 'Completed', 'Rejected')) DEFAULT 'Pending',
	completed_at DATETIME,
	note TEXT,
	PRIMARY KEY (job_id, step_name),
	UNIQUE (job_id, step_order),
	FOREIGN KEY (job_id) REFERENCES survey_jobs(id)
);

-- Pillar numbering series (one counter per prefix; only ever advances)
CREATE TABLE IF NOT EXISTS pillar_systems (
	series_prefix TEXT PRIMARY KEY,
	last_issued_number INTEGER NOT NULL DEFAULT 0 CHECK(last_issued_number >= 0),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Issued pillar numbers (immutable)
CREATE TABLE IF NOT EXISTS pillar_numbers (
	pillar_number TEXT PRIMARY KEY,
	series_prefix TEXT NOT NULL,
	sequence INTEGER NOT NULL,
	easting TEXT,
	northing TEXT,
	job_id TEXT NOT NULL,
	surveyor_id TEXT NOT NULL,
	issued_at DATETIME NOT NULL,
	UNIQUE (series_prefix, sequence),
	FOREIGN KEY (job_id) REFERENCES survey_jobs(id),
	FOREIGN KEY (surveyor_id) REFERENCES surveyors(id)
);

CREATE INDEX IF NOT EXISTS idx_pillar_numbers_job ON pillar_numbers(job_id);

-- Uploaded document references
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	job_id TEXT NOT NULL,
	kind TEXT NOT NULL CHECK(kind IN ('BLUE_COPY', 'RO_DOCUMENT')),
	url TEXT NOT NULL,
	file_name TEXT NOT NULL,
	size_bytes INTEGER NOT NULL,
	mime_type TEXT,
	uploaded_by TEXT NOT NULL,
	uploaded_at DATETIME NOT NULL,
	UNIQUE (job_id, kind),
	FOREIGN KEY (job_id) REFERENCES survey_jobs(id)
);

-- Audit log of workflow actions
CREATE TABLE IF NOT EXISTS audit_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	actor_id TEXT,
	actor_role TEXT,
	entity_type TEXT NOT NULL CHECK(entity_type IN ('job', 'surveyor')),
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL,
	old_value TEXT,
	new_value TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs(entity_type, entity_id);

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// InitSchema creates the schema on a fresh database and records its version.
// Running it against an initialized database is a no-op.
func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	var current int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	if current > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than this binary (%d)", current, SchemaVersion)
	}
	if current < SchemaVersion {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", SchemaVersion); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
