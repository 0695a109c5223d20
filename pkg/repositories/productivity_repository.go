package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/manpower-engine/pkg/apperrors"
	"github.com/ekaya-inc/manpower-engine/pkg/database"
	"github.com/ekaya-inc/manpower-engine/pkg/models"
)

// ProductivityRepository defines the interface for benchmark productivity data access.
type ProductivityRepository interface {
	// Create inserts a record. A duplicate (warehouse, category) is reported
	// as apperrors.ErrConflict.
	Create(ctx context.Context, q database.Querier, p *models.BenchmarkProductivity) error
	// UpdateByKey overwrites the productivity values of the record with the
	// same (warehouse, category) and fills in its ID and timestamps.
	UpdateByKey(ctx context.Context, q database.Querier, p *models.BenchmarkProductivity) error
	// Update applies a partial update by ID.
	Update(ctx context.Context, q database.Querier, u *models.BenchmarkProductivityUpdate, updatedBy string) (*models.BenchmarkProductivity, error)
	ListByWarehouse(ctx context.Context, q database.Querier, warehouseID int64) ([]*models.BenchmarkProductivity, error)
}

type productivityRepository struct{}

// NewProductivityRepository creates a new benchmark productivity repository.
func NewProductivityRepository() ProductivityRepository {
	return &productivityRepository{}
}

var _ ProductivityRepository = (*productivityRepository)(nil)

func (r *productivityRepository) Create(ctx context.Context, q database.Querier, p *models.BenchmarkProductivity) error {
	query := `
		INSERT INTO input_benchmark_productivity (
			warehouse_id, category_id,
			productivity_experienced_employee, productivity_new_employee,
			created_by, updated_by
		) VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id, created_at, updated_at`

	err := q.QueryRow(ctx, query,
		p.WarehouseID,
		p.CategoryID,
		p.ProductivityExperienced,
		p.ProductivityNew,
		p.CreatedBy,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create benchmark productivity: %w", database.ClassifyError(err))
	}
	p.UpdatedBy = p.CreatedBy
	return nil
}

func (r *productivityRepository) UpdateByKey(ctx context.Context, q database.Querier, p *models.BenchmarkProductivity) error {
	query := `
		UPDATE input_benchmark_productivity
		SET productivity_experienced_employee = $3,
		    productivity_new_employee = $4,
		    updated_by = $5,
		    updated_at = now()
		WHERE warehouse_id = $1 AND category_id = $2
		RETURNING id, created_by, created_at, updated_at`

	updatedBy := p.CreatedBy
	err := q.QueryRow(ctx, query,
		p.WarehouseID,
		p.CategoryID,
		p.ProductivityExperienced,
		p.ProductivityNew,
		updatedBy,
	).Scan(&p.ID, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to update benchmark productivity: %w", database.ClassifyError(err))
	}
	p.UpdatedBy = updatedBy
	return nil
}

func (r *productivityRepository) Update(ctx context.Context, q database.Querier, u *models.BenchmarkProductivityUpdate, updatedBy string) (*models.BenchmarkProductivity, error) {
	query := `
		UPDATE input_benchmark_productivity p
		SET productivity_experienced_employee = COALESCE($2::double precision, p.productivity_experienced_employee),
		    productivity_new_employee = COALESCE($3::double precision, p.productivity_new_employee),
		    updated_by = $4,
		    updated_at = now()
		FROM category c
		WHERE p.id = $1 AND c.id = p.category_id
		RETURNING p.id, p.warehouse_id, p.category_id, c.name,
		          p.productivity_experienced_employee, p.productivity_new_employee,
		          p.created_by, p.updated_by, p.created_at, p.updated_at`

	p, err := scanProductivity(q.QueryRow(ctx, query, u.ID, u.ProductivityExperienced, u.ProductivityNew, updatedBy))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update benchmark productivity %d: %w", u.ID, database.ClassifyError(err))
	}
	return p, nil
}

// ListByWarehouse returns every productivity record of a warehouse with its
// category name, ordered by category.
func (r *productivityRepository) ListByWarehouse(ctx context.Context, q database.Querier, warehouseID int64) ([]*models.BenchmarkProductivity, error) {
	query := `
		SELECT p.id, p.warehouse_id, p.category_id, c.name,
		       p.productivity_experienced_employee, p.productivity_new_employee,
		       p.created_by, p.updated_by, p.created_at, p.updated_at
		FROM input_benchmark_productivity p
		JOIN category c ON c.id = p.category_id
		WHERE p.warehouse_id = $1
		ORDER BY c.name`

	rows, err := q.Query(ctx, query, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list benchmark productivity: %w", err)
	}
	defer rows.Close()

	var result []*models.BenchmarkProductivity
	for rows.Next() {
		p, err := scanProductivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan benchmark productivity: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating benchmark productivity: %w", err)
	}
	return result, nil
}

func scanProductivity(row pgx.Row) (*models.BenchmarkProductivity, error) {
	var p models.BenchmarkProductivity
	err := row.Scan(
		&p.ID,
		&p.WarehouseID,
		&p.CategoryID,
		&p.CategoryName,
		&p.ProductivityExperienced,
		&p.ProductivityNew,
		&p.CreatedBy,
		&p.UpdatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
