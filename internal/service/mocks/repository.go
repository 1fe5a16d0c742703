package mocks

import (
	"context"
	"errors"

	"github.com/Tim1119/school-results-server/internal/repository/models"
)

// MockTermResultRepository is a mock implementation of the
// TermResultRepository interface for testing the service layer.
type MockTermResultRepository struct {
	GetGeneratorConfigFunc       func(ctx context.Context, id string) (models.GeneratorConfig, error)
	ListGroupStudentsFunc        func(ctx context.Context, groupID string) ([]string, error)
	FindStudentGroupsFunc        func(ctx context.Context, studentID string) ([]string, error)
	CountGroupStudentsFunc       func(ctx context.Context, groupID string) (int, error)
	GroupProgramFunc             func(ctx context.Context, groupID string) (string, error)
	CountProgramEnrollmentsFunc  func(ctx context.Context, program, year, term string) (int, error)
	GetStudentFunc               func(ctx context.Context, id string) (models.Student, error)
	GetAcademicTermFunc          func(ctx context.Context, id string) (models.AcademicTerm, error)
	FetchAssessmentDetailsFunc   func(ctx context.Context, student, year, term, assessmentGroup string) ([]models.AssessmentDetailRow, error)
	FetchClassScoresFunc         func(ctx context.Context, groupID, course, assessmentGroup, term, year string) ([]float64, error)
	FetchGroupTotalsFunc         func(ctx context.Context, groupID, assessmentGroup, term, year string) ([]models.StudentTotal, error)
	FetchProgramTotalsFunc       func(ctx context.Context, program, assessmentGroup, term, year string) ([]models.StudentTotal, error)
	GradingScaleFunc             func(ctx context.Context) ([]models.GradeBand, error)
	AssessmentCriteriaNamesFunc  func(ctx context.Context) ([]string, error)
	InsertAssessmentCriteriaFunc func(ctx context.Context, name string) error
	InsertTermResultFunc         func(ctx context.Context, result *models.TermResult) error
}

func (m *MockTermResultRepository) GetGeneratorConfig(ctx context.Context, id string) (models.GeneratorConfig, error) {
	if m.GetGeneratorConfigFunc != nil {
		return m.GetGeneratorConfigFunc(ctx, id)
	}
	return models.GeneratorConfig{}, errors.New("GetGeneratorConfigFunc not implemented")
}

func (m *MockTermResultRepository) ListGroupStudents(ctx context.Context, groupID string) ([]string, error) {
	if m.ListGroupStudentsFunc != nil {
		return m.ListGroupStudentsFunc(ctx, groupID)
	}
	return nil, errors.New("ListGroupStudentsFunc not implemented")
}

func (m *MockTermResultRepository) FindStudentGroups(ctx context.Context, studentID string) ([]string, error) {
	if m.FindStudentGroupsFunc != nil {
		return m.FindStudentGroupsFunc(ctx, studentID)
	}
	return nil, nil
}

func (m *MockTermResultRepository) CountGroupStudents(ctx context.Context, groupID string) (int, error) {
	if m.CountGroupStudentsFunc != nil {
		return m.CountGroupStudentsFunc(ctx, groupID)
	}
	return 0, nil
}

func (m *MockTermResultRepository) GroupProgram(ctx context.Context, groupID string) (string, error) {
	if m.GroupProgramFunc != nil {
		return m.GroupProgramFunc(ctx, groupID)
	}
	return "", nil
}

func (m *MockTermResultRepository) CountProgramEnrollments(ctx context.Context, program, year, term string) (int, error) {
	if m.CountProgramEnrollmentsFunc != nil {
		return m.CountProgramEnrollmentsFunc(ctx, program, year, term)
	}
	return 0, nil
}

func (m *MockTermResultRepository) GetStudent(ctx context.Context, id string) (models.Student, error) {
	if m.GetStudentFunc != nil {
		return m.GetStudentFunc(ctx, id)
	}
	return models.Student{ID: id}, nil
}

func (m *MockTermResultRepository) GetAcademicTerm(ctx context.Context, id string) (models.AcademicTerm, error) {
	if m.GetAcademicTermFunc != nil {
		return m.GetAcademicTermFunc(ctx, id)
	}
	return models.AcademicTerm{ID: id}, nil
}

func (m *MockTermResultRepository) FetchAssessmentDetails(ctx context.Context, student, year, term, assessmentGroup string) ([]models.AssessmentDetailRow, error) {
	if m.FetchAssessmentDetailsFunc != nil {
		return m.FetchAssessmentDetailsFunc(ctx, student, year, term, assessmentGroup)
	}
	return nil, nil
}

func (m *MockTermResultRepository) FetchClassScores(ctx context.Context, groupID, course, assessmentGroup, term, year string) ([]float64, error) {
	if m.FetchClassScoresFunc != nil {
		return m.FetchClassScoresFunc(ctx, groupID, course, assessmentGroup, term, year)
	}
	return nil, nil
}

func (m *MockTermResultRepository) FetchGroupTotals(ctx context.Context, groupID, assessmentGroup, term, year string) ([]models.StudentTotal, error) {
	if m.FetchGroupTotalsFunc != nil {
		return m.FetchGroupTotalsFunc(ctx, groupID, assessmentGroup, term, year)
	}
	return nil, nil
}

func (m *MockTermResultRepository) FetchProgramTotals(ctx context.Context, program, assessmentGroup, term, year string) ([]models.StudentTotal, error) {
	if m.FetchProgramTotalsFunc != nil {
		return m.FetchProgramTotalsFunc(ctx, program, assessmentGroup, term, year)
	}
	return nil, nil
}

func (m *MockTermResultRepository) GradingScale(ctx context.Context) ([]models.GradeBand, error) {
	if m.GradingScaleFunc != nil {
		return m.GradingScaleFunc(ctx)
	}
	return nil, nil
}

func (m *MockTermResultRepository) AssessmentCriteriaNames(ctx context.Context) ([]string, error) {
	if m.AssessmentCriteriaNamesFunc != nil {
		return m.AssessmentCriteriaNamesFunc(ctx)
	}
	return nil, nil
}

func (m *MockTermResultRepository) InsertAssessmentCriteria(ctx context.Context, name string) error {
	if m.InsertAssessmentCriteriaFunc != nil {
		return m.InsertAssessmentCriteriaFunc(ctx, name)
	}
	return errors.New("InsertAssessmentCriteriaFunc not implemented")
}

func (m *MockTermResultRepository) InsertTermResult(ctx context.Context, result *models.TermResult) error {
	if m.InsertTermResultFunc != nil {
		return m.InsertTermResultFunc(ctx, result)
	}
	return errors.New("InsertTermResultFunc not implemented")
}
