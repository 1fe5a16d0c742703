package service

import (
	"context"
	"fmt"

	"github.com/Tim1119/school-results-server/internal/repository/models"
)

const gradeNotApplicable = "N/A"

// fallbackScale applies when no grading scale is configured in settings.
var fallbackScale = []models.GradeBand{
	{MinPercentage: 80, MaxPercentage: 100, GradeCode: "A"},
	{MinPercentage: 70, MaxPercentage: 80, GradeCode: "B"},
	{MinPercentage: 60, MaxPercentage: 70, GradeCode: "C"},
	{MinPercentage: 50, MaxPercentage: 60, GradeCode: "D"},
	{MinPercentage: 0, MaxPercentage: 50, GradeCode: "F"},
}

// resolveOverallGrade scans the configured bands in declaration order and
// returns the first band containing the average. Without configured bands
// the fallback thresholds apply (>=80 A, >=70 B, >=60 C, >=50 D, else F).
func (s *ResultService) resolveOverallGrade(ctx context.Context, average float64) (string, error) {
	bands, err := s.storage.GradingScale(ctx)
	if err != nil {
		return "", fmt.Errorf("load grading scale: %w", err)
	}

	if len(bands) == 0 {
		return fallbackGrade(average), nil
	}

	for _, band := range bands {
		if band.MinPercentage <= average && average <= band.MaxPercentage {
			return band.GradeCode, nil
		}
	}
	return gradeNotApplicable, nil
}

func fallbackGrade(average float64) string {
	switch {
	case average >= 80:
		return "A"
	case average >= 70:
		return "B"
	case average >= 60:
		return "C"
	case average >= 50:
		return "D"
	default:
		return "F"
	}
}

// GetGradingScale returns the configured bands, or the fallback scale
// flagged as such when settings carry no bands.
func (s *ResultService) GetGradingScale(ctx context.Context) (GradingScaleView, error) {
	bands, err := s.storage.GradingScale(ctx)
	if err != nil {
		return GradingScaleView{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(bands) == 0 {
		return GradingScaleView{Bands: fallbackScale, Fallback: true}, nil
	}
	return GradingScaleView{Bands: bands}, nil
}
