package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ValidateAssessmentCriteria checks the criteria name against the whitelist
// configured in school settings. An unset whitelist (no settings record, or
// no items) imposes no constraint.
func (s *ResultService) ValidateAssessmentCriteria(ctx context.Context, name string) error {
	valid, err := s.storage.AssessmentCriteriaNames(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(valid) == 0 {
		return nil
	}

	for _, v := range valid {
		if v == name {
			return nil
		}
	}
	return fmt.Errorf("%w: assessment criteria %q is not configured in school settings, please add it first", ErrUnknownCriteria, name)
}

// CreateAssessmentCriteria runs the whitelist validation hook and inserts the
// criteria record when it passes.
func (s *ResultService) CreateAssessmentCriteria(ctx context.Context, name string) error {
	if err := s.ValidateAssessmentCriteria(ctx, name); err != nil {
		return err
	}
	if err := s.storage.InsertAssessmentCriteria(ctx, name); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	s.logger.Info("assessment criteria created", zap.String("criteria", name))
	return nil
}
