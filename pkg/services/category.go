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

// CategoryService manages categories.
type CategoryService interface {
	// BulkAdd creates each category independently; duplicates, invalid and
	// reserved names are reported per record.
	BulkAdd(ctx context.Context, records []models.NamedRecord) (*BulkResult[*models.Category], error)
	List(ctx context.Context) ([]*models.Category, error)
	// Ensure creates the categories that do not exist yet and leaves the
	// others untouched. Returns how many records were valid.
	Ensure(ctx context.Context, records []models.NamedRecord) (int, error)
}

type categoryService struct {
	db       database.TxRunner
	reader   database.Querier
	repo     repositories.CategoryRepository
	registry CategoryRegistry
	screener *screening.Screener
	logger   *zap.Logger
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(
	db database.TxRunner,
	reader database.Querier,
	repo repositories.CategoryRepository,
	registry CategoryRegistry,
	screener *screening.Screener,
	logger *zap.Logger,
) CategoryService {
	return &categoryService{
		db:       db,
		reader:   reader,
		repo:     repo,
		registry: registry,
		screener: screener,
		logger:   logger.Named("category_service"),
	}
}

var _ CategoryService = (*categoryService)(nil)

func (s *categoryService) BulkAdd(ctx context.Context, records []models.NamedRecord) (*BulkResult[*models.Category], error) {
	result := newBulkResult[*models.Category]()
	var candidates []*models.Category
	for _, rec := range records {
		c := &models.Category{Name: strings.TrimSpace(rec.Name), Description: rec.Description}
		if err := checkCategoryName(c.Name); err != nil {
			result.fail(c, err)
			continue
		}
		if err := checkNamed(ctx, s.screener, "category", c.Name, c.Description); err != nil {
			result.fail(c, err)
			continue
		}
		candidates = append(candidates, c)
	}

	err := s.db.InTx(ctx, func(uow database.UnitOfWork) error {
		stored := insertEach[*models.Category](ctx, uow, s.repo, candidates, func(c *models.Category, err error) error {
			if errors.Is(err, apperrors.ErrConflict) {
				return fmt.Errorf("category %q already exists", c.Name)
			}
			return err
		})
		result.Succeeded = stored.Succeeded
		result.Failed = append(result.Failed, stored.Failed...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add categories: %w", err)
	}
	if len(result.Succeeded) > 0 {
		s.registry.Invalidate()
	}

	s.logger.Info("Added categories",
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

func (s *categoryService) List(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.repo.List(ctx, s.reader)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []*models.Category{}
	}
	return categories, nil
}

func (s *categoryService) Ensure(ctx context.Context, records []models.NamedRecord) (int, error) {
	valid := make([]models.NamedRecord, 0, len(records))
	for _, rec := range records {
		rec.Name = strings.TrimSpace(rec.Name)
		if err := checkCategoryName(rec.Name); err != nil {
			return 0, err
		}
		if err := checkNamed(ctx, s.screener, "category", rec.Name, rec.Description); err != nil {
			return 0, fmt.Errorf("category %q: %w", rec.Name, err)
		}
		valid = append(valid, rec)
	}

	err := s.db.InTx(ctx, func(uow database.UnitOfWork) error {
		_, err := s.registry.EnsureCategories(ctx, uow, valid)
		return err
	})
	s.registry.Invalidate()
	if err != nil {
		return 0, fmt.Errorf("failed to ensure categories: %w", err)
	}
	return len(valid), nil
}

// checkCategoryName rejects names that would collide with the totals key.
func checkCategoryName(name string) error {
	if strings.EqualFold(name, models.TotalKey) {
		return fmt.Errorf("%w: %q cannot be used as a category name", apperrors.ErrReservedName, name)
	}
	return nil
}
