package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SeedFixtures populates the database with development fixtures: surveyors in
// every verification state, one job per workflow stage, and the pillars of
// the completed job.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().UTC()

	// Surveyors
	surveyors := []struct{ id, user, name, surcon, nis, status string }{
		{"SRV-0001", "user-1", "Adaeze Okafor", "SC-1042", "NIS-2211", "VERIFIED"},
		{"SRV-0002", "user-2", "Musa Bello", "SC-1187", "NIS-2290", "NIS_APPROVED"},
		{"SRV-0003", "user-3", "Tunde Ajayi", "SC-1201", "NIS-2305", "PENDING_NIS_REVIEW"},
	}
	for _, s := range surveyors {
		var verifiedAt any
		if s.status == "VERIFIED" {
			verifiedAt = now
		}
		if _, err := database.Exec(
			`INSERT INTO surveyors (id, user_id, full_name, surcon_number, nis_number, status, verified_at, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.id, s.user, s.name, s.surcon, s.nis, s.status, verifiedAt, now, now,
		); err != nil {
			return fmt.Errorf("seed surveyors: %w", err)
		}
	}

	// Jobs - one per stage, all owned by the verified surveyor
	jobs := []struct {
		id, status, client, location, coords, plan string
		required                                  int
	}{
		{"JOB-000001", "SUBMITTED", "Ngozi Eze", "Plot 12, Rayfield, Jos",
			`[{"easting":"331245.000","northing":"712004.000"}]`, "", 1},
		{"JOB-000002", "ADMIN_REVIEW", "Ibrahim Sani", "Block C, Bukuru Layout",
			`[{"easting":"331300.000","northing":"715004.000"},{"easting":"331420.000","northing":"715080.000"}]`, "", 2},
		{"JOB-000003", "COMPLETED", "Grace Danjuma", "Farmland east of Vom road",
			`[{"easting":"331245.000","northing":"712104.000"},{"easting":"331345.000","northing":"712104.000"}]`, "PLAN/PL/2025/001", 2},
	}
	for _, j := range jobs {
		var plan, approved any
		if j.status == "COMPLETED" {
			plan, approved = j.plan, now
		}
		if _, err := database.Exec(
			`INSERT INTO survey_jobs (id, surveyor_id, submitted_by, client_name, location_description, requested_coordinates,
			 pillar_numbers_required, plan_number, status, submitted_at, updated_at, date_approved)
			 VALUES (?, 'SRV-0001', 'user-1', ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			j.id, j.client, j.location, j.coords, j.required, plan, j.status, now, now, approved,
		); err != nil {
			return fmt.Errorf("seed jobs: %w", err)
		}
		if err := seedSteps(database, j.id, j.status, now); err != nil {
			return err
		}
	}

	// Pillars of the completed job and their series counter
	pillars := []struct {
		number             string
		seq                int
		easting, northing string
	}{
		{"SC/CN 1", 1, "331245.000", "712104.000"},
		{"SC/CN 2", 2, "331345.000", "712104.000"},
	}
	for _, p := range pillars {
		if _, err := database.Exec(
			`INSERT INTO pillar_numbers (pillar_number, series_prefix, sequence, easting, northing, job_id, surveyor_id, issued_at)
			 VALUES (?, 'SC/CN', ?, ?, ?, 'JOB-000003', 'SRV-0001', ?)`,
			p.number, p.seq, p.easting, p.northing, now,
		); err != nil {
			return fmt.Errorf("seed pillars: %w", err)
		}
	}
	if _, err := database.Exec(
		"INSERT INTO pillar_systems (series_prefix, last_issued_number, created_at, updated_at) VALUES ('SC/CN', 2, ?, ?)",
		now, now,
	); err != nil {
		return fmt.Errorf("seed pillar systems: %w", err)
	}

	return nil
}

// seedSteps writes the step catalog of a job as it stands at status.
func seedSteps(database *sql.DB, jobID, status string, now time.Time) error {
	names := []string{"Submitted", "NIS Review", "Admin Review", "Pillar Number Assignment", "Blue Copy Upload", "R of O Document Upload", "Completed"}

	// Steps completed so far, and the step in progress
	done, current := 1, 0
	switch status {
	case "ADMIN_REVIEW":
		done, current = 2, 3
	case "COMPLETED":
		done = 4
	}

	for i, name := range names {
		order := i + 1
		stepStatus := "Pending"
		var completedAt any
		switch {
		case order <= done:
			stepStatus, completedAt = "Completed", now
		case order == current:
			stepStatus = "InProgress"
		}
		if _, err := database.Exec(
			"INSERT INTO workflow_steps (job_id, step_name, step_order, status, completed_at) VALUES (?, ?, ?, ?, ?)",
			jobID, name, order, stepStatus, completedAt,
		); err != nil {
			return fmt.Errorf("seed steps for %s: %w", jobID, err)
		}
	}
	return nil
}
