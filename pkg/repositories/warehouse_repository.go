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

// WarehouseRepository defines the interface for warehouse data access.
type WarehouseRepository interface {
	Create(ctx context.Context, q database.Querier, warehouse *models.Warehouse) error
	Get(ctx context.Context, q database.Querier, id int64) (*models.Warehouse, error)
	List(ctx context.Context, q database.Querier) ([]*models.Warehouse, error)
}

type warehouseRepository struct{}

// NewWarehouseRepository creates a new warehouse repository.
func NewWarehouseRepository() WarehouseRepository {
	return &warehouseRepository{}
}

var _ WarehouseRepository = (*warehouseRepository)(nil)

// Create inserts a warehouse. A duplicate name is reported as apperrors.ErrConflict.
func (r *warehouseRepository) Create(ctx context.Context, q database.Querier, warehouse *models.Warehouse) error {
	query := `
		INSERT INTO warehouse (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`

	err := q.QueryRow(ctx, query, warehouse.Name, warehouse.Description).
		Scan(&warehouse.ID, &warehouse.CreatedAt, &warehouse.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create warehouse: %w", database.ClassifyError(err))
	}
	return nil
}

// Get retrieves a warehouse by ID.
func (r *warehouseRepository) Get(ctx context.Context, q database.Querier, id int64) (*models.Warehouse, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM warehouse
		WHERE id = $1`

	var w models.Warehouse
	err := q.QueryRow(ctx, query, id).Scan(&w.ID, &w.Name, &w.Description, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get warehouse: %w", err)
	}
	return &w, nil
}

// List returns all warehouses ordered by ID.
func (r *warehouseRepository) List(ctx context.Context, q database.Querier) ([]*models.Warehouse, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM warehouse
		ORDER BY id`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list warehouses: %w", err)
	}
	defer rows.Close()

	var warehouses []*models.Warehouse
	for rows.Next() {
		var w models.Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.Description, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan warehouse: %w", err)
		}
		warehouses = append(warehouses, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating warehouses: %w", err)
	}
	return warehouses, nil
}
