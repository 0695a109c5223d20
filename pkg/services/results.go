package services

import (
	"context"
	"errors"

	"github.com/ekaya-inc/manpower-engine/pkg/apperrors"
	"github.com/ekaya-inc/manpower-engine/pkg/database"
	"github.com/ekaya-inc/manpower-engine/pkg/models"
	"github.com/ekaya-inc/manpower-engine/pkg/repositories"
)

// ResultService reads persisted staffing plans.
type ResultService interface {
	ListByRequirement(ctx context.Context, requirementID int64) ([]*models.PlanningResult, error)
}

type resultService struct {
	reader          database.Querier
	repo            repositories.ResultRepository
	requirementRepo repositories.RequirementRepository
}

// NewResultService creates a new ResultService.
func NewResultService(reader database.Querier, repo repositories.ResultRepository, requirementRepo repositories.RequirementRepository) ResultService {
	return &resultService{reader: reader, repo: repo, requirementRepo: requirementRepo}
}

var _ ResultService = (*resultService)(nil)

// ListByRequirement fails with apperrors.ErrNotFound for an unknown
// requirement and returns an empty list for one without results.
func (s *resultService) ListByRequirement(ctx context.Context, requirementID int64) ([]*models.PlanningResult, error) {
	if _, err := s.requirementRepo.Get(ctx, s.reader, requirementID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFoundf("Requirement not found with id %d", requirementID)
		}
		return nil, err
	}

	results, err := s.repo.ListByRequirement(ctx, s.reader, requirementID)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []*models.PlanningResult{}
	}
	return results, nil
}
