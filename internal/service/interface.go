package service

import (
	"context"

	"github.com/Tim1119/school-results-server/internal/repository/models"
)

// TermResultRepository defines the interface for database operations for service.
type TermResultRepository interface {
	GetGeneratorConfig(ctx context.Context, id string) (models.GeneratorConfig, error)
	ListGroupStudents(ctx context.Context, groupID string) ([]string, error)
	FindStudentGroups(ctx context.Context, studentID string) ([]string, error)
	CountGroupStudents(ctx context.Context, groupID string) (int, error)
	GroupProgram(ctx context.Context, groupID string) (string, error)
	CountProgramEnrollments(ctx context.Context, program, year, term string) (int, error)
	GetStudent(ctx context.Context, id string) (models.Student, error)
	GetAcademicTerm(ctx context.Context, id string) (models.AcademicTerm, error)
	FetchAssessmentDetails(ctx context.Context, student, year, term, assessmentGroup string) ([]models.AssessmentDetailRow, error)
	FetchClassScores(ctx context.Context, groupID, course, assessmentGroup, term, year string) ([]float64, error)
	FetchGroupTotals(ctx context.Context, groupID, assessmentGroup, term, year string) ([]models.StudentTotal, error)
	FetchProgramTotals(ctx context.Context, program, assessmentGroup, term, year string) ([]models.StudentTotal, error)
	GradingScale(ctx context.Context) ([]models.GradeBand, error)
	AssessmentCriteriaNames(ctx context.Context) ([]string, error)
	InsertAssessmentCriteria(ctx context.Context, name string) error
	InsertTermResult(ctx context.Context, result *models.TermResult) error
}
