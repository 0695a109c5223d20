package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/manpower-engine/pkg/database"
	"github.com/ekaya-inc/manpower-engine/pkg/models"
	"github.com/ekaya-inc/manpower-engine/pkg/repositories"
)

// RequirementService reads stored planning requirements and cleans up the
// ones a failed planning run left without results.
type RequirementService interface {
	ListByWarehouse(ctx context.Context, warehouseID int64) ([]*models.InputRequirement, error)
	// CleanupOrphans finds requirements older than cutoff that have no
	// planning results and deletes them unless dryRun is set.
	CleanupOrphans(ctx context.Context, cutoff time.Time, dryRun bool) (*OrphanCleanup, error)
}

// OrphanCleanup reports what CleanupOrphans found and removed.
type OrphanCleanup struct {
	Orphans []*models.InputRequirement `json:"orphans"`
	Deleted int64                      `json:"deleted"`
	DryRun  bool                       `json:"dry_run"`
}

type requirementService struct {
	db     database.TxRunner
	reader database.Querier
	repo   repositories.RequirementRepository
	logger *zap.Logger
}

// NewRequirementService creates a new RequirementService.
func NewRequirementService(
	db database.TxRunner,
	reader database.Querier,
	repo repositories.RequirementRepository,
	logger *zap.Logger,
) RequirementService {
	return &requirementService{
		db:     db,
		reader: reader,
		repo:   repo,
		logger: logger.Named("requirement_service"),
	}
}

var _ RequirementService = (*requirementService)(nil)

func (s *requirementService) ListByWarehouse(ctx context.Context, warehouseID int64) ([]*models.InputRequirement, error) {
	requirements, err := s.repo.ListByWarehouse(ctx, s.reader, warehouseID)
	if err != nil {
		return nil, err
	}
	if requirements == nil {
		requirements = []*models.InputRequirement{}
	}
	return requirements, nil
}

func (s *requirementService) CleanupOrphans(ctx context.Context, cutoff time.Time, dryRun bool) (*OrphanCleanup, error) {
	report := &OrphanCleanup{DryRun: dryRun}

	err := s.db.InTx(ctx, func(uow database.UnitOfWork) error {
		orphans, err := s.repo.ListOrphans(ctx, uow, cutoff)
		if err != nil {
			return err
		}
		report.Orphans = orphans
		if dryRun || len(orphans) == 0 {
			return nil
		}

		ids := make([]int64, len(orphans))
		for i, o := range orphans {
			ids[i] = o.ID
		}
		report.Deleted, err = s.repo.Delete(ctx, uow, ids)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clean up orphaned requirements: %w", err)
	}

	s.logger.Info("Orphaned requirement cleanup",
		zap.Time("cutoff", cutoff),
		zap.Bool("dry_run", dryRun),
		zap.Int("found", len(report.Orphans)),
		zap.Int64("deleted", report.Deleted))
	return report, nil
}
