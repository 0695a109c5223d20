package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/manpower-engine/pkg/apperrors"
	"github.com/ekaya-inc/manpower-engine/pkg/auth"
	"github.com/ekaya-inc/manpower-engine/pkg/database"
	"github.com/ekaya-inc/manpower-engine/pkg/models"
	"github.com/ekaya-inc/manpower-engine/pkg/repositories"
	"github.com/ekaya-inc/manpower-engine/pkg/spreadsheet"
)

// DemandService manages demand forecasts.
type DemandService interface {
	// BulkAdd upserts each record by (warehouse, category, date). Dates in
	// the past and negative demand are rejected per record.
	BulkAdd(ctx context.Context, records []*models.InputDemand) (*BulkResult[*models.InputDemand], error)
	// Summary aggregates the demand of a warehouse over [start, end].
	Summary(ctx context.Context, warehouseID int64, start, end models.Date) (*models.DemandSummary, error)
	// Update applies partial updates by ID. Unknown IDs are reported per item.
	Update(ctx context.Context, updates []models.InputDemandUpdate) (*UpdateResult[*models.InputDemand, models.InputDemandUpdate], error)
	// WriteTemplate writes an .xlsx demand sheet for the warehouse with one
	// row per date of [start, end].
	WriteTemplate(ctx context.Context, w io.Writer, warehouseID int64, start, end models.Date) error
}

type demandService struct {
	db               database.TxRunner
	reader           database.Querier
	repo             repositories.DemandRepository
	warehouseRepo    repositories.WarehouseRepository
	productivityRepo repositories.ProductivityRepository
	registry         CategoryRegistry
	now              func() time.Time
	logger           *zap.Logger
}

// NewDemandService creates a new DemandService.
func NewDemandService(
	db database.TxRunner,
	reader database.Querier,
	repo repositories.DemandRepository,
	warehouseRepo repositories.WarehouseRepository,
	productivityRepo repositories.ProductivityRepository,
	registry CategoryRegistry,
	logger *zap.Logger,
) DemandService {
	return &demandService{
		db:               db,
		reader:           reader,
		repo:             repo,
		warehouseRepo:    warehouseRepo,
		productivityRepo: productivityRepo,
		registry:         registry,
		now:              time.Now,
		logger:           logger.Named("demand_service"),
	}
}

var _ DemandService = (*demandService)(nil)

func (s *demandService) BulkAdd(ctx context.Context, records []*models.InputDemand) (*BulkResult[*models.InputDemand], error) {
	actor := auth.GetUserIDFromContext(ctx)
	today := models.DateOf(s.now().UTC())
	result := newBulkResult[*models.InputDemand]()

	var candidates []*models.InputDemand
	for _, d := range records {
		switch {
		case d.Date.IsZero():
			result.fail(d, fmt.Errorf("%w: date is required", apperrors.ErrInvalidInput))
		case d.Date.Before(today):
			result.fail(d, fmt.Errorf("%w: date %s is before today", apperrors.ErrInvalidInput, d.Date))
		case d.Demand < 0:
			result.fail(d, fmt.Errorf("%w: demand must not be negative", apperrors.ErrInvalidInput))
		default:
			d.CreatedBy = actor
			candidates = append(candidates, d)
		}
	}

	if err := s.store(ctx, candidates, result); err != nil {
		return nil, err
	}
	return result, nil
}

// store reconciles candidates in one unit of work and merges the outcome
// into result.
func (s *demandService) store(ctx context.Context, candidates []*models.InputDemand, result *BulkResult[*models.InputDemand]) error {
	err := s.db.InTx(ctx, func(uow database.UnitOfWork) error {
		stored := Reconcile[*models.InputDemand](ctx, uow, s.repo, candidates)
		result.Succeeded = append(result.Succeeded, stored.Succeeded...)
		result.Failed = append(result.Failed, stored.Failed...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store demand: %w", err)
	}

	s.logger.Info("Stored demand",
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)))
	return nil
}

func (s *demandService) Summary(ctx context.Context, warehouseID int64, start, end models.Date) (*models.DemandSummary, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: start_date %s is after end_date %s", apperrors.ErrInvalidInput, start, end)
	}
	return demandSummary(ctx, s.reader, s.repo, warehouseID, start, end)
}

// demandSummary is shared with the planning orchestrator.
func demandSummary(ctx context.Context, q database.Querier, repo repositories.DemandRepository, warehouseID int64, start, end models.Date) (*models.DemandSummary, error) {
	rows, err := repo.ListRange(ctx, q, warehouseID, start, end)
	if err != nil {
		return nil, err
	}
	return Aggregate(rows), nil
}

func (s *demandService) Update(ctx context.Context, updates []models.InputDemandUpdate) (*UpdateResult[*models.InputDemand, models.InputDemandUpdate], error) {
	actor := auth.GetUserIDFromContext(ctx)
	result := newUpdateResult[*models.InputDemand, models.InputDemandUpdate]()

	err := s.db.InTx(ctx, func(uow database.UnitOfWork) error {
		for _, u := range updates {
			if negative(u.Demand) {
				result.Failed = append(result.Failed, RecordError[models.InputDemandUpdate]{
					Record: u, Error: fmt.Sprintf("%v: demand must not be negative", apperrors.ErrInvalidInput),
				})
				continue
			}

			var updated *models.InputDemand
			err := uow.Savepoint(ctx, func(sp database.UnitOfWork) error {
				var err error
				updated, err = s.repo.Update(ctx, sp, &u, actor)
				return err
			})
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					err = fmt.Errorf("demand %d not found", u.ID)
				}
				result.Failed = append(result.Failed, RecordError[models.InputDemandUpdate]{Record: u, Error: err.Error()})
				continue
			}
			result.Updated = append(result.Updated, updated)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update demand: %w", err)
	}
	return result, nil
}

// WriteTemplate uses the categories the warehouse has benchmark productivity
// for, or every category when it has none yet.
func (s *demandService) WriteTemplate(ctx context.Context, w io.Writer, warehouseID int64, start, end models.Date) error {
	if end.Before(start) {
		return fmt.Errorf("%w: start_date %s is after end_date %s", apperrors.ErrInvalidInput, start, end)
	}
	if _, err := s.warehouseRepo.Get(ctx, s.reader, warehouseID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFoundf("Warehouse not found with id %d", warehouseID)
		}
		return err
	}

	productivity, err := s.productivityRepo.ListByWarehouse(ctx, s.reader, warehouseID)
	if err != nil {
		return err
	}
	categories := make([]string, 0, len(productivity))
	for _, p := range productivity {
		categories = append(categories, p.CategoryName)
	}
	if len(categories) == 0 {
		names, err := s.registry.AllNames(ctx)
		if err != nil {
			return err
		}
		for name := range names {
			categories = append(categories, name)
		}
	}
	sort.Strings(categories)

	return spreadsheet.WriteDemandTemplate(w, categories, models.DateRange(start, end))
}
