package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is portable between the sqlite3 and pgx drivers: TEXT/REAL/INTEGER
// column types, no serial columns, composite keys on child tables.
const Schema = `
CREATE TABLE IF NOT EXISTS students (
	id TEXT PRIMARY KEY,
	student_name TEXT NOT NULL,
	gender TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS academic_terms (
	id TEXT PRIMARY KEY,
	term_start_date TEXT NOT NULL,
	term_end_date TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS student_groups (
	id TEXT PRIMARY KEY,
	program TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS student_group_students (
	group_id TEXT NOT NULL REFERENCES student_groups(id),
	student_id TEXT NOT NULL REFERENCES students(id),
	idx INTEGER NOT NULL,
	PRIMARY KEY (group_id, student_id)
);

CREATE TABLE IF NOT EXISTS program_enrollments (
	id TEXT PRIMARY KEY,
	student_id TEXT NOT NULL,
	program TEXT NOT NULL,
	academic_year TEXT NOT NULL,
	academic_term TEXT NOT NULL,
	docstatus INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS assessment_results (
	id TEXT PRIMARY KEY,
	student_id TEXT NOT NULL,
	course TEXT NOT NULL,
	academic_year TEXT NOT NULL,
	academic_term TEXT NOT NULL,
	assessment_group TEXT NOT NULL,
	total_score REAL,
	grade TEXT NOT NULL DEFAULT '',
	docstatus INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS assessment_result_details (
	result_id TEXT NOT NULL REFERENCES assessment_results(id),
	idx INTEGER NOT NULL,
	assessment_criteria TEXT NOT NULL,
	score REAL NOT NULL DEFAULT 0,
	maximum_score REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (result_id, idx)
);

CREATE TABLE IF NOT EXISTS generator_configs (
	id TEXT PRIMARY KEY,
	assessment_group TEXT NOT NULL DEFAULT '',
	academic_year TEXT NOT NULL DEFAULT '',
	academic_term TEXT NOT NULL DEFAULT '',
	student_group TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS grading_scale_bands (
	idx INTEGER PRIMARY KEY,
	min_percentage REAL NOT NULL,
	max_percentage REAL NOT NULL,
	grade_code TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS assessment_criteria_items (
	criteria_name TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS assessment_criteria (
	name TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS term_results (
	id TEXT PRIMARY KEY,
	student_id TEXT NOT NULL,
	assessment_group TEXT NOT NULL,
	academic_year TEXT NOT NULL,
	academic_term TEXT NOT NULL,
	student_group TEXT NOT NULL DEFAULT '',
	gender TEXT NOT NULL DEFAULT '',
	student_admission_id TEXT NOT NULL DEFAULT '',
	term_start_date TEXT NOT NULL DEFAULT '',
	term_end_date TEXT NOT NULL DEFAULT '',
	group_size INTEGER NOT NULL DEFAULT 0,
	program_cohort_size INTEGER NOT NULL DEFAULT 0,
	total_marks_obtained REAL NOT NULL DEFAULT 0,
	total_max_marks REAL NOT NULL DEFAULT 0,
	term_average REAL,
	overall_grade TEXT NOT NULL DEFAULT '',
	group_position INTEGER,
	program_position INTEGER,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS term_result_subjects (
	result_id TEXT NOT NULL REFERENCES term_results(id),
	idx INTEGER NOT NULL,
	subject TEXT NOT NULL,
	total_score REAL NOT NULL DEFAULT 0,
	grade TEXT NOT NULL DEFAULT '',
	position TEXT NOT NULL DEFAULT '',
	class_highest_score REAL NOT NULL DEFAULT 0,
	class_lowest_score REAL NOT NULL DEFAULT 0,
	class_average_score REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (result_id, idx)
);

CREATE TABLE IF NOT EXISTS term_result_components (
	result_id TEXT NOT NULL REFERENCES term_results(id),
	idx INTEGER NOT NULL,
	criteria TEXT NOT NULL,
	score_obtained REAL NOT NULL DEFAULT 0,
	max_score REAL NOT NULL DEFAULT 0,
	subject TEXT NOT NULL,
	PRIMARY KEY (result_id, idx)
);
`

// EnsureSchema creates all tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
