package models

// GeneratorConfig holds the four filters a batch generation run is scoped by.
// It is read-only reference data owned by the school administration UI.
type GeneratorConfig struct {
	ID              string
	AssessmentGroup string
	AcademicYear    string
	AcademicTerm    string
	StudentGroup    string
}

type Student struct {
	ID     string
	Name   string
	Gender string
}

// AcademicTerm dates are ISO "2006-01-02" strings as stored.
type AcademicTerm struct {
	ID        string
	StartDate string
	EndDate   string
}

// AssessmentDetailRow is one joined assessment-result/detail row for a
// student. TotalScore and Grade repeat per detail row of the same course.
type AssessmentDetailRow struct {
	Course       string
	TotalScore   *float64
	Grade        string
	Criteria     string
	Score        float64
	MaximumScore float64
}

// StudentTotal is a per-student sum of assessment total scores, used for
// group-local and program-wide ranking.
type StudentTotal struct {
	Student string
	Total   float64
}

// GradeBand is one row of the configured grading scale. Bands are checked
// in declaration order and the first match wins.
type GradeBand struct {
	MinPercentage float64 `json:"min_percentage"`
	MaxPercentage float64 `json:"max_percentage"`
	GradeCode     string  `json:"grade_code"`
}

// SubjectEntry is one per-course line of a term result, including class
// statistics computed over the student's group.
type SubjectEntry struct {
	Subject           string  `json:"subject"`
	TotalScore        float64 `json:"total_score"`
	Grade             string  `json:"grade"`
	Position          string  `json:"position"`
	ClassHighestScore float64 `json:"class_highest_score"`
	ClassLowestScore  float64 `json:"class_lowest_score"`
	ClassAverageScore float64 `json:"class_average_score"`
}

// AssessmentComponent is the per-criteria breakdown row of a subject's
// assessment result. Source ordering is preserved.
type AssessmentComponent struct {
	Criteria      string  `json:"criteria"`
	ScoreObtained float64 `json:"score_obtained"`
	MaxScore      float64 `json:"max_score"`
	Subject       string  `json:"subject"`
}

// TermResult is the record the populator fills in place and the batch
// generator persists, one per (student, assessment group, year, term).
//
// TermAverage is nil when the max-marks denominator is zero. GroupPosition
// and ProgramPosition are nil when the ranking step was skipped (no group
// membership, or no resolvable program).
type TermResult struct {
	ID              string `json:"id,omitempty"`
	Student         string `json:"student"`
	AssessmentGroup string `json:"assessment_group"`
	AcademicYear    string `json:"academic_year"`
	AcademicTerm    string `json:"academic_term"`

	TermStartDate      string `json:"term_start_date,omitempty"`
	TermEndDate        string `json:"term_end_date,omitempty"`
	Gender             string `json:"gender,omitempty"`
	StudentAdmissionID string `json:"student_admission_id,omitempty"`

	StudentGroup      string `json:"student_group,omitempty"`
	GroupSize         int    `json:"group_size"`
	ProgramCohortSize int    `json:"program_cohort_size"`

	Subjects   []SubjectEntry        `json:"subjects"`
	Components []AssessmentComponent `json:"assessment_components"`

	TotalMarksObtained float64  `json:"total_marks_obtained"`
	TotalMaxMarks      float64  `json:"total_max_marks"`
	TermAverage        *float64 `json:"term_average,omitempty"`
	OverallGrade       string   `json:"overall_grade,omitempty"`

	GroupPosition   *int `json:"group_position,omitempty"`
	ProgramPosition *int `json:"program_position,omitempty"`
}
