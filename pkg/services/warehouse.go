package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/manpower-engine/pkg/apperrors"
	"github.com/ekaya-inc/manpower-engine/pkg/database"
	"github.com/ekaya-inc/manpower-engine/pkg/models"
	"github.com/ekaya-inc/manpower-engine/pkg/repositories"
	"github.com/ekaya-inc/manpower-engine/pkg/screening"
)

// WarehouseService manages warehouses.
type WarehouseService interface {
	// BulkAdd creates each warehouse independently; duplicates and invalid
	// names are reported per record.
	BulkAdd(ctx context.Context, records []models.NamedRecord) (*BulkResult[*models.Warehouse], error)
	List(ctx context.Context) ([]*models.Warehouse, error)
	Get(ctx context.Context, id int64) (*models.Warehouse, error)
}

type warehouseService struct {
	db       database.TxRunner
	reader   database.Querier
	repo     repositories.WarehouseRepository
	screener *screening.Screener
	logger   *zap.Logger
}

// NewWarehouseService creates a new WarehouseService.
func NewWarehouseService(
	db database.TxRunner,
	reader database.Querier,
	repo repositories.WarehouseRepository,
	screener *screening.Screener,
	logger *zap.Logger,
) WarehouseService {
	return &warehouseService{
		db:       db,
		reader:   reader,
		repo:     repo,
		screener: screener,
		logger:   logger.Named("warehouse_service"),
	}
}

var _ WarehouseService = (*warehouseService)(nil)

func (s *warehouseService) BulkAdd(ctx context.Context, records []models.NamedRecord) (*BulkResult[*models.Warehouse], error) {
	result := newBulkResult[*models.Warehouse]()
	var candidates []*models.Warehouse
	for _, rec := range records {
		w := &models.Warehouse{Name: strings.TrimSpace(rec.Name), Description: rec.Description}
		if err := checkNamed(ctx, s.screener, "warehouse", w.Name, w.Description); err != nil {
			result.fail(w, err)
			continue
		}
		candidates = append(candidates, w)
	}

	err := s.db.InTx(ctx, func(uow database.UnitOfWork) error {
		stored := insertEach[*models.Warehouse](ctx, uow, s.repo, candidates, func(w *models.Warehouse, err error) error {
			if errors.Is(err, apperrors.ErrConflict) {
				return fmt.Errorf("warehouse %q already exists", w.Name)
			}
			return err
		})
		result.Succeeded = stored.Succeeded
		result.Failed = append(result.Failed, stored.Failed...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add warehouses: %w", err)
	}

	s.logger.Info("Added warehouses",
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

func (s *warehouseService) List(ctx context.Context) ([]*models.Warehouse, error) {
	warehouses, err := s.repo.List(ctx, s.reader)
	if err != nil {
		return nil, err
	}
	if warehouses == nil {
		warehouses = []*models.Warehouse{}
	}
	return warehouses, nil
}

func (s *warehouseService) Get(ctx context.Context, id int64) (*models.Warehouse, error) {
	w, err := s.repo.Get(ctx, s.reader, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NotFoundf("Warehouse not found with id %d", id)
	}
	return w, err
}

// checkNamed validates the name and description of a bulk-added warehouse
// or category.
func checkNamed(ctx context.Context, screener *screening.Screener, source, name, description string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", apperrors.ErrInvalidInput)
	}
	return screener.Screen(ctx, source,
		screening.Field{Name: "name", Value: name},
		screening.Field{Name: "description", Value: description},
	)
}
