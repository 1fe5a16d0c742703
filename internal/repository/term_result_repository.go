package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Tim1119/school-results-server/internal/repository/models"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// Flavor selects the SQL placeholder style for the connected driver.
type Flavor string

const (
	FlavorSQLite   Flavor = "sqlite"
	FlavorPostgres Flavor = "postgres"
)

type TermResultRepository struct {
	db     *sql.DB
	flavor Flavor
}

func NewTermResultRepository(db *sql.DB, flavor Flavor) *TermResultRepository {
	if flavor == "" {
		flavor = FlavorSQLite
	}
	return &TermResultRepository{db: db, flavor: flavor}
}

// rebind rewrites ? placeholders to $1..$n for the pgx driver. Queries in
// this package are authored in ? style.
func (r *TermResultRepository) rebind(query string) string {
	if r.flavor != FlavorPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// GetGeneratorConfig loads the batch-generation filter record.
func (r *TermResultRepository) GetGeneratorConfig(ctx context.Context, id string) (models.GeneratorConfig, error) {
	const query = `
		SELECT id, assessment_group, academic_year, academic_term, student_group
		FROM generator_configs
		WHERE id = ?
	`
	var cfg models.GeneratorConfig
	err := r.db.QueryRowContext(ctx, r.rebind(query), id).Scan(
		&cfg.ID, &cfg.AssessmentGroup, &cfg.AcademicYear, &cfg.AcademicTerm, &cfg.StudentGroup)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.GeneratorConfig{}, fmt.Errorf("generator config %q: %w", id, ErrNotFound)
		}
		return models.GeneratorConfig{}, fmt.Errorf("query GetGeneratorConfig: %w", err)
	}
	return cfg, nil
}

// ListGroupStudents returns the students of a group in enrollment listing order.
func (r *TermResultRepository) ListGroupStudents(ctx context.Context, groupID string) ([]string, error) {
	const query = `
		SELECT student_id
		FROM student_group_students
		WHERE group_id = ?
		ORDER BY idx
	`
	return r.queryStrings(ctx, "ListGroupStudents", query, groupID)
}

// FindStudentGroups returns every group a student belongs to, ordered by
// group id so that "first match" is deterministic.
func (r *TermResultRepository) FindStudentGroups(ctx context.Context, studentID string) ([]string, error) {
	const query = `
		SELECT group_id
		FROM student_group_students
		WHERE student_id = ?
		ORDER BY group_id
	`
	return r.queryStrings(ctx, "FindStudentGroups", query, studentID)
}

func (r *TermResultRepository) CountGroupStudents(ctx context.Context, groupID string) (int, error) {
	const query = `SELECT COUNT(*) FROM student_group_students WHERE group_id = ?`
	var count int
	if err := r.db.QueryRowContext(ctx, r.rebind(query), groupID).Scan(&count); err != nil {
		return 0, fmt.Errorf("query CountGroupStudents: %w", err)
	}
	return count, nil
}

// GroupProgram returns the program a group belongs to, or "" when the group
// has none (or does not exist).
func (r *TermResultRepository) GroupProgram(ctx context.Context, groupID string) (string, error) {
	const query = `SELECT program FROM student_groups WHERE id = ?`
	var program string
	err := r.db.QueryRowContext(ctx, r.rebind(query), groupID).Scan(&program)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("query GroupProgram: %w", err)
	}
	return program, nil
}

// CountProgramEnrollments counts submitted enrollments (docstatus = 1) for
// the program in the given year/term.
func (r *TermResultRepository) CountProgramEnrollments(ctx context.Context, program, year, term string) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM program_enrollments
		WHERE program = ? AND academic_year = ? AND academic_term = ? AND docstatus = 1
	`
	var count int
	if err := r.db.QueryRowContext(ctx, r.rebind(query), program, year, term).Scan(&count); err != nil {
		return 0, fmt.Errorf("query CountProgramEnrollments: %w", err)
	}
	return count, nil
}

func (r *TermResultRepository) GetStudent(ctx context.Context, id string) (models.Student, error) {
	const query = `SELECT id, student_name, gender FROM students WHERE id = ?`
	var s models.Student
	err := r.db.QueryRowContext(ctx, r.rebind(query), id).Scan(&s.ID, &s.Name, &s.Gender)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Student{}, fmt.Errorf("student %q: %w", id, ErrNotFound)
		}
		return models.Student{}, fmt.Errorf("query GetStudent: %w", err)
	}
	return s, nil
}

func (r *TermResultRepository) GetAcademicTerm(ctx context.Context, id string) (models.AcademicTerm, error) {
	const query = `SELECT id, term_start_date, term_end_date FROM academic_terms WHERE id = ?`
	var t models.AcademicTerm
	err := r.db.QueryRowContext(ctx, r.rebind(query), id).Scan(&t.ID, &t.StartDate, &t.EndDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AcademicTerm{}, fmt.Errorf("academic term %q: %w", id, ErrNotFound)
		}
		return models.AcademicTerm{}, fmt.Errorf("query GetAcademicTerm: %w", err)
	}
	return t, nil
}

// FetchAssessmentDetails returns the joined assessment-result/detail rows for
// one student's term, draft or submitted, ordered by course then detail
// sequence. The per-course total score and grade repeat on every detail row.
func (r *TermResultRepository) FetchAssessmentDetails(ctx context.Context, student, year, term, assessmentGroup string) ([]models.AssessmentDetailRow, error) {
	const query = `
		SELECT
			ar.course,
			ar.total_score,
			ar.grade,
			ard.assessment_criteria,
			ard.score,
			ard.maximum_score
		FROM assessment_results AS ar
		JOIN assessment_result_details AS ard ON ard.result_id = ar.id
		WHERE ar.student_id = ?
		  AND ar.academic_year = ?
		  AND ar.academic_term = ?
		  AND ar.assessment_group = ?
		  AND ar.docstatus IN (0, 1)
		ORDER BY ar.course, ard.idx
	`
	rows, err := r.db.QueryContext(ctx, r.rebind(query), student, year, term, assessmentGroup)
	if err != nil {
		return nil, fmt.Errorf("query FetchAssessmentDetails: %w", err)
	}
	defer rows.Close()

	var results []models.AssessmentDetailRow
	for rows.Next() {
		var row models.AssessmentDetailRow
		var total sql.NullFloat64
		var score, maxScore sql.NullFloat64
		if err := rows.Scan(&row.Course, &total, &row.Grade, &row.Criteria, &score, &maxScore); err != nil {
			return nil, fmt.Errorf("scan FetchAssessmentDetails row: %w", err)
		}
		if total.Valid {
			v := total.Float64
			row.TotalScore = &v
		}
		row.Score = score.Float64
		row.MaximumScore = maxScore.Float64
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate FetchAssessmentDetails: %w", err)
	}
	return results, nil
}

// FetchClassScores returns the non-null total scores of every group member
// for one course in the given assessment group/term/year.
func (r *TermResultRepository) FetchClassScores(ctx context.Context, groupID, course, assessmentGroup, term, year string) ([]float64, error) {
	const query = `
		SELECT ar.total_score
		FROM assessment_results AS ar
		JOIN student_group_students AS sgs ON sgs.student_id = ar.student_id
		WHERE sgs.group_id = ?
		  AND ar.course = ?
		  AND ar.assessment_group = ?
		  AND ar.academic_term = ?
		  AND ar.academic_year = ?
		  AND ar.docstatus IN (0, 1)
		  AND ar.total_score IS NOT NULL
	`
	rows, err := r.db.QueryContext(ctx, r.rebind(query), groupID, course, assessmentGroup, term, year)
	if err != nil {
		return nil, fmt.Errorf("query FetchClassScores: %w", err)
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var s float64
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan FetchClassScores row: %w", err)
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate FetchClassScores: %w", err)
	}
	return scores, nil
}

// FetchGroupTotals sums each group member's total scores across all their
// assessment results for the term, ordered by descending sum.
func (r *TermResultRepository) FetchGroupTotals(ctx context.Context, groupID, assessmentGroup, term, year string) ([]models.StudentTotal, error) {
	const query = `
		SELECT ar.student_id, SUM(ar.total_score) AS total
		FROM assessment_results AS ar
		JOIN student_group_students AS sgs ON sgs.student_id = ar.student_id
		WHERE sgs.group_id = ?
		  AND ar.assessment_group = ?
		  AND ar.academic_term = ?
		  AND ar.academic_year = ?
		  AND ar.docstatus IN (0, 1)
		GROUP BY ar.student_id
		ORDER BY total DESC
	`
	return r.queryTotals(ctx, "FetchGroupTotals", query, groupID, assessmentGroup, term, year)
}

// FetchProgramTotals is FetchGroupTotals scoped to students with a submitted
// enrollment in the program for the same year/term.
func (r *TermResultRepository) FetchProgramTotals(ctx context.Context, program, assessmentGroup, term, year string) ([]models.StudentTotal, error) {
	const query = `
		SELECT ar.student_id, SUM(ar.total_score) AS total
		FROM assessment_results AS ar
		JOIN program_enrollments AS pe ON pe.student_id = ar.student_id
		WHERE pe.program = ?
		  AND pe.academic_year = ?
		  AND pe.academic_term = ?
		  AND pe.docstatus = 1
		  AND ar.assessment_group = ?
		  AND ar.academic_term = ?
		  AND ar.academic_year = ?
		  AND ar.docstatus IN (0, 1)
		GROUP BY ar.student_id
		ORDER BY total DESC
	`
	return r.queryTotals(ctx, "FetchProgramTotals", query, program, year, term, assessmentGroup, term, year)
}

// GradingScale returns the configured bands in declaration order. An empty
// slice means no scale is configured.
func (r *TermResultRepository) GradingScale(ctx context.Context) ([]models.GradeBand, error) {
	const query = `
		SELECT min_percentage, max_percentage, grade_code
		FROM grading_scale_bands
		ORDER BY idx
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query GradingScale: %w", err)
	}
	defer rows.Close()

	var bands []models.GradeBand
	for rows.Next() {
		var b models.GradeBand
		if err := rows.Scan(&b.MinPercentage, &b.MaxPercentage, &b.GradeCode); err != nil {
			return nil, fmt.Errorf("scan GradingScale row: %w", err)
		}
		bands = append(bands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GradingScale: %w", err)
	}
	return bands, nil
}

// AssessmentCriteriaNames returns the configured criteria whitelist. An
// empty slice means the whitelist is unset and no constraint applies.
func (r *TermResultRepository) AssessmentCriteriaNames(ctx context.Context) ([]string, error) {
	const query = `SELECT criteria_name FROM assessment_criteria_items ORDER BY criteria_name`
	return r.queryStrings(ctx, "AssessmentCriteriaNames", query)
}

func (r *TermResultRepository) InsertAssessmentCriteria(ctx context.Context, name string) error {
	const query = `INSERT INTO assessment_criteria (name) VALUES (?)`
	if _, err := r.db.ExecContext(ctx, r.rebind(query), name); err != nil {
		return fmt.Errorf("insert assessment criteria %q: %w", name, err)
	}
	return nil
}

// InsertTermResult persists one result record with its subject and component
// child rows inside a single transaction, committing before returning so the
// batch generator gets per-student durability. The record's ID is assigned
// here.
func (r *TermResultRepository) InsertTermResult(ctx context.Context, result *models.TermResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin InsertTermResult: %w", err)
	}
	defer tx.Rollback()

	result.ID = newResultID()

	const insertResult = `
		INSERT INTO term_results (
			id, student_id, assessment_group, academic_year, academic_term,
			student_group, gender, student_admission_id,
			term_start_date, term_end_date,
			group_size, program_cohort_size,
			total_marks_obtained, total_max_marks, term_average, overall_grade,
			group_position, program_position, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, r.rebind(insertResult),
		result.ID, result.Student, result.AssessmentGroup, result.AcademicYear, result.AcademicTerm,
		result.StudentGroup, result.Gender, result.StudentAdmissionID,
		result.TermStartDate, result.TermEndDate,
		result.GroupSize, result.ProgramCohortSize,
		result.TotalMarksObtained, result.TotalMaxMarks, nullFloat(result.TermAverage), result.OverallGrade,
		nullInt(result.GroupPosition), nullInt(result.ProgramPosition),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert term result: %w", err)
	}

	const insertSubject = `
		INSERT INTO term_result_subjects (
			result_id, idx, subject, total_score, grade, position,
			class_highest_score, class_lowest_score, class_average_score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, s := range result.Subjects {
		_, err = tx.ExecContext(ctx, r.rebind(insertSubject),
			result.ID, i+1, s.Subject, s.TotalScore, s.Grade, s.Position,
			s.ClassHighestScore, s.ClassLowestScore, s.ClassAverageScore)
		if err != nil {
			return fmt.Errorf("insert subject row %d: %w", i+1, err)
		}
	}

	const insertComponent = `
		INSERT INTO term_result_components (
			result_id, idx, criteria, score_obtained, max_score, subject
		) VALUES (?, ?, ?, ?, ?, ?)
	`
	for i, c := range result.Components {
		_, err = tx.ExecContext(ctx, r.rebind(insertComponent),
			result.ID, i+1, c.Criteria, c.ScoreObtained, c.MaxScore, c.Subject)
		if err != nil {
			return fmt.Errorf("insert component row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit InsertTermResult: %w", err)
	}
	return nil
}

func (r *TermResultRepository) queryStrings(ctx context.Context, op, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", op, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", op, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", op, err)
	}
	return out, nil
}

func (r *TermResultRepository) queryTotals(ctx context.Context, op, query string, args ...any) ([]models.StudentTotal, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", op, err)
	}
	defer rows.Close()

	var totals []models.StudentTotal
	for rows.Next() {
		var t models.StudentTotal
		var total sql.NullFloat64
		if err := rows.Scan(&t.Student, &total); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", op, err)
		}
		t.Total = total.Float64
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", op, err)
	}
	return totals, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func newResultID() string {
	buf := make([]byte, 5)
	_, _ = rand.Read(buf)
	return "STR-" + strings.ToUpper(hex.EncodeToString(buf))
}
