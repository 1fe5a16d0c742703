package service

import "github.com/Tim1119/school-results-server/internal/repository/models"

// GenerateSummary reports the outcome of one batch generation run.
type GenerateSummary struct {
	GeneratedCount int      `json:"generated_count"`
	StudentGroup   string   `json:"student_group"`
	Notices        []string `json:"notices,omitempty"`
}

// RankedStudent is one line of a group ranking overview.
type RankedStudent struct {
	Student  string  `json:"student"`
	Total    float64 `json:"total"`
	Position int     `json:"position"`
}

// GradingScaleView is the configured grading scale, or the hardcoded
// fallback scale when none is configured.
type GradingScaleView struct {
	Bands    []models.GradeBand `json:"bands"`
	Fallback bool               `json:"fallback"`
}
