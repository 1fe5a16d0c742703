package http

import (
	"context"
	"time"

	"github.com/Tim1119/school-results-server/internal/repository/models"
	"github.com/Tim1119/school-results-server/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

type ResultService interface {
	GenerateClassResults(ctx context.Context, configID string) (service.GenerateSummary, error)
	PopulateStudentResult(ctx context.Context, doc *models.TermResult) ([]string, error)
	CreateAssessmentCriteria(ctx context.Context, name string) error
	GetGradingScale(ctx context.Context) (service.GradingScaleView, error)
	GetGroupRanking(ctx context.Context, groupID, assessmentGroup, year, term string) ([]service.RankedStudent, error)
}
