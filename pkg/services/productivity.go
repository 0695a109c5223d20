package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/manpower-engine/pkg/apperrors"
	"github.com/ekaya-inc/manpower-engine/pkg/auth"
	"github.com/ekaya-inc/manpower-engine/pkg/database"
	"github.com/ekaya-inc/manpower-engine/pkg/models"
	"github.com/ekaya-inc/manpower-engine/pkg/repositories"
)

// UpdateResult splits a batch of partial updates into the updated records
// and the rejected update requests.
type UpdateResult[T, U any] struct {
	Updated []T              `json:"updated"`
	Failed  []RecordError[U] `json:"failed"`
}

func newUpdateResult[T, U any]() *UpdateResult[T, U] {
	return &UpdateResult[T, U]{Updated: []T{}, Failed: []RecordError[U]{}}
}

// ProductivityService manages benchmark productivity.
type ProductivityService interface {
	// BulkAdd upserts each record by (warehouse, category).
	BulkAdd(ctx context.Context, records []*models.BenchmarkProductivity) (*BulkResult[*models.BenchmarkProductivity], error)
	ListByWarehouse(ctx context.Context, warehouseID int64) ([]*models.BenchmarkProductivity, error)
	// Update applies partial updates by ID. Unknown IDs are reported per item.
	Update(ctx context.Context, updates []models.BenchmarkProductivityUpdate) (*UpdateResult[*models.BenchmarkProductivity, models.BenchmarkProductivityUpdate], error)
}

type productivityService struct {
	db     database.TxRunner
	reader database.Querier
	repo   repositories.ProductivityRepository
	logger *zap.Logger
}

// NewProductivityService creates a new ProductivityService.
func NewProductivityService(
	db database.TxRunner,
	reader database.Querier,
	repo repositories.ProductivityRepository,
	logger *zap.Logger,
) ProductivityService {
	return &productivityService{
		db:     db,
		reader: reader,
		repo:   repo,
		logger: logger.Named("productivity_service"),
	}
}

var _ ProductivityService = (*productivityService)(nil)

func (s *productivityService) BulkAdd(ctx context.Context, records []*models.BenchmarkProductivity) (*BulkResult[*models.BenchmarkProductivity], error) {
	actor := auth.GetUserIDFromContext(ctx)
	result := newBulkResult[*models.BenchmarkProductivity]()
	var candidates []*models.BenchmarkProductivity
	for _, p := range records {
		if p.ProductivityExperienced < 0 || p.ProductivityNew < 0 {
			result.fail(p, fmt.Errorf("%w: productivity must not be negative", apperrors.ErrInvalidInput))
			continue
		}
		p.CreatedBy = actor
		candidates = append(candidates, p)
	}

	err := s.db.InTx(ctx, func(uow database.UnitOfWork) error {
		stored := Reconcile[*models.BenchmarkProductivity](ctx, uow, s.repo, candidates)
		result.Succeeded = stored.Succeeded
		result.Failed = append(result.Failed, stored.Failed...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add benchmark productivity: %w", err)
	}

	s.logger.Info("Stored benchmark productivity",
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

func (s *productivityService) ListByWarehouse(ctx context.Context, warehouseID int64) ([]*models.BenchmarkProductivity, error) {
	records, err := s.repo.ListByWarehouse(ctx, s.reader, warehouseID)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*models.BenchmarkProductivity{}
	}
	return records, nil
}

func (s *productivityService) Update(ctx context.Context, updates []models.BenchmarkProductivityUpdate) (*UpdateResult[*models.BenchmarkProductivity, models.BenchmarkProductivityUpdate], error) {
	actor := auth.GetUserIDFromContext(ctx)
	result := newUpdateResult[*models.BenchmarkProductivity, models.BenchmarkProductivityUpdate]()

	err := s.db.InTx(ctx, func(uow database.UnitOfWork) error {
		for _, u := range updates {
			if negative(u.ProductivityExperienced) || negative(u.ProductivityNew) {
				result.Failed = append(result.Failed, RecordError[models.BenchmarkProductivityUpdate]{
					Record: u, Error: fmt.Sprintf("%v: productivity must not be negative", apperrors.ErrInvalidInput),
				})
				continue
			}

			var updated *models.BenchmarkProductivity
			err := uow.Savepoint(ctx, func(sp database.UnitOfWork) error {
				var err error
				updated, err = s.repo.Update(ctx, sp, &u, actor)
				return err
			})
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					err = fmt.Errorf("benchmark productivity %d not found", u.ID)
				}
				result.Failed = append(result.Failed, RecordError[models.BenchmarkProductivityUpdate]{Record: u, Error: err.Error()})
				continue
			}
			result.Updated = append(result.Updated, updated)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update benchmark productivity: %w", err)
	}
	return result, nil
}

func negative[N int64 | float64](v *N) bool {
	return v != nil && *v < 0
}
