package mocks

import (
	"context"
	"errors"

	"github.com/Tim1119/school-results-server/internal/repository/models"
	"github.com/Tim1119/school-results-server/internal/service"
)

// MockResultService is a mock implementation of the handler-facing service
// interface.
type MockResultService struct {
	GenerateClassResultsFunc     func(ctx context.Context, configID string) (service.GenerateSummary, error)
	PopulateStudentResultFunc    func(ctx context.Context, doc *models.TermResult) ([]string, error)
	CreateAssessmentCriteriaFunc func(ctx context.Context, name string) error
	GetGradingScaleFunc          func(ctx context.Context) (service.GradingScaleView, error)
	GetGroupRankingFunc          func(ctx context.Context, groupID, assessmentGroup, year, term string) ([]service.RankedStudent, error)
}

func (m *MockResultService) GenerateClassResults(ctx context.Context, configID string) (service.GenerateSummary, error) {
	if m.GenerateClassResultsFunc != nil {
		return m.GenerateClassResultsFunc(ctx, configID)
	}
	return service.GenerateSummary{}, errors.New("GenerateClassResultsFunc not implemented")
}

func (m *MockResultService) PopulateStudentResult(ctx context.Context, doc *models.TermResult) ([]string, error) {
	if m.PopulateStudentResultFunc != nil {
		return m.PopulateStudentResultFunc(ctx, doc)
	}
	return nil, errors.New("PopulateStudentResultFunc not implemented")
}

func (m *MockResultService) CreateAssessmentCriteria(ctx context.Context, name string) error {
	if m.CreateAssessmentCriteriaFunc != nil {
		return m.CreateAssessmentCriteriaFunc(ctx, name)
	}
	return errors.New("CreateAssessmentCriteriaFunc not implemented")
}

func (m *MockResultService) GetGradingScale(ctx context.Context) (service.GradingScaleView, error) {
	if m.GetGradingScaleFunc != nil {
		return m.GetGradingScaleFunc(ctx)
	}
	return service.GradingScaleView{}, errors.New("GetGradingScaleFunc not implemented")
}

func (m *MockResultService) GetGroupRanking(ctx context.Context, groupID, assessmentGroup, year, term string) ([]service.RankedStudent, error) {
	if m.GetGroupRankingFunc != nil {
		return m.GetGroupRankingFunc(ctx, groupID, assessmentGroup, year, term)
	}
	return nil, errors.New("GetGroupRankingFunc not implemented")
}
