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

// DemandRepository defines the interface for demand forecast data access.
type DemandRepository interface {
	// Create inserts a record. A duplicate (warehouse, category, date) is
	// reported as apperrors.ErrConflict.
	Create(ctx context.Context, q database.Querier, d *models.InputDemand) error
	// UpdateByKey overwrites the demand of the record with the same
	// (warehouse, category, date) and fills in its ID and timestamps.
	UpdateByKey(ctx context.Context, q database.Querier, d *models.InputDemand) error
	// Update applies a partial update by ID.
	Update(ctx context.Context, q database.Querier, u *models.InputDemandUpdate, updatedBy string) (*models.InputDemand, error)
	// ListRange returns the demand of a warehouse between start and end
	// inclusive, joined with category names, ordered by date then category.
	ListRange(ctx context.Context, q database.Querier, warehouseID int64, start, end models.Date) ([]models.DemandRow, error)
}

type demandRepository struct{}

// NewDemandRepository creates a new demand repository.
func NewDemandRepository() DemandRepository {
	return &demandRepository{}
}

var _ DemandRepository = (*demandRepository)(nil)

func (r *demandRepository) Create(ctx context.Context, q database.Querier, d *models.InputDemand) error {
	query := `
		INSERT INTO input_demand (warehouse_id, category_id, date, demand, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id, created_at, updated_at`

	err := q.QueryRow(ctx, query, d.WarehouseID, d.CategoryID, d.Date, d.Demand, d.CreatedBy).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create demand: %w", database.ClassifyError(err))
	}
	d.UpdatedBy = d.CreatedBy
	return nil
}

func (r *demandRepository) UpdateByKey(ctx context.Context, q database.Querier, d *models.InputDemand) error {
	query := `
		UPDATE input_demand
		SET demand = $4,
		    updated_by = $5,
		    updated_at = now()
		WHERE warehouse_id = $1 AND category_id = $2 AND date = $3
		RETURNING id, created_by, created_at, updated_at`

	updatedBy := d.CreatedBy
	err := q.QueryRow(ctx, query, d.WarehouseID, d.CategoryID, d.Date, d.Demand, updatedBy).
		Scan(&d.ID, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to update demand: %w", database.ClassifyError(err))
	}
	d.UpdatedBy = updatedBy
	return nil
}

func (r *demandRepository) Update(ctx context.Context, q database.Querier, u *models.InputDemandUpdate, updatedBy string) (*models.InputDemand, error) {
	query := `
		UPDATE input_demand
		SET demand = COALESCE($2::bigint, demand),
		    updated_by = $3,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, warehouse_id, category_id, date, demand, created_by, updated_by, created_at, updated_at`

	var d models.InputDemand
	err := q.QueryRow(ctx, query, u.ID, u.Demand, updatedBy).Scan(
		&d.ID,
		&d.WarehouseID,
		&d.CategoryID,
		&d.Date,
		&d.Demand,
		&d.CreatedBy,
		&d.UpdatedBy,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update demand %d: %w", u.ID, database.ClassifyError(err))
	}
	return &d, nil
}

func (r *demandRepository) ListRange(ctx context.Context, q database.Querier, warehouseID int64, start, end models.Date) ([]models.DemandRow, error) {
	query := `
		SELECT d.id, d.date, d.category_id, c.name, d.demand, d.created_at, d.updated_at
		FROM input_demand d
		JOIN category c ON c.id = d.category_id
		WHERE d.warehouse_id = $1 AND d.date BETWEEN $2 AND $3
		ORDER BY d.date, c.name`

	rows, err := q.Query(ctx, query, warehouseID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list demand: %w", err)
	}
	defer rows.Close()

	var result []models.DemandRow
	for rows.Next() {
		var row models.DemandRow
		if err := rows.Scan(
			&row.ID,
			&row.Date,
			&row.CategoryID,
			&row.CategoryName,
			&row.Demand,
			&row.CreatedAt,
			&row.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan demand: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating demand: %w", err)
	}
	return result, nil
}
