package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/manpower-engine/pkg/apperrors"
	"github.com/ekaya-inc/manpower-engine/pkg/database"
	"github.com/ekaya-inc/manpower-engine/pkg/models"
)

// RequirementRepository defines the interface for planning requirement data access.
// Requirements are never updated once stored.
type RequirementRepository interface {
	Create(ctx context.Context, q database.Querier, req *models.InputRequirement) error
	Get(ctx context.Context, q database.Querier, id int64) (*models.InputRequirement, error)
	ListByWarehouse(ctx context.Context, q database.Querier, warehouseID int64) ([]*models.InputRequirement, error)
	// ListOrphans returns requirements created before cutoff that have no
	// planning results.
	ListOrphans(ctx context.Context, q database.Querier, cutoff time.Time) ([]*models.InputRequirement, error)
	// Delete removes requirements by ID and returns how many were removed.
	Delete(ctx context.Context, q database.Querier, ids []int64) (int64, error)
}

type requirementRepository struct{}

// NewRequirementRepository creates a new requirement repository.
func NewRequirementRepository() RequirementRepository {
	return &requirementRepository{}
}

var _ RequirementRepository = (*requirementRepository)(nil)

const requirementColumns = `
	id, warehouse_id, num_current_employees, plan_from_date, plan_to_date,
	percentage_absent_expected, day_working_hours, cost_per_employee_per_month,
	total_hiring_budget, created_by, created_at`

func (r *requirementRepository) Create(ctx context.Context, q database.Querier, req *models.InputRequirement) error {
	query := `
		INSERT INTO input_requirements (
			warehouse_id, num_current_employees, plan_from_date, plan_to_date,
			percentage_absent_expected, day_working_hours, cost_per_employee_per_month,
			total_hiring_budget, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := q.QueryRow(ctx, query,
		req.WarehouseID,
		req.NumCurrentEmployees,
		req.PlanFromDate,
		req.PlanToDate,
		req.PercentageAbsentExpected,
		req.DayWorkingHours,
		req.CostPerEmployeePerMonth,
		req.TotalHiringBudget,
		req.CreatedBy,
	).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create requirement: %w", database.ClassifyError(err))
	}
	return nil
}

func (r *requirementRepository) Get(ctx context.Context, q database.Querier, id int64) (*models.InputRequirement, error) {
	query := `SELECT` + requirementColumns + ` FROM input_requirements WHERE id = $1`

	req, err := scanRequirement(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get requirement: %w", err)
	}
	return req, nil
}

// ListByWarehouse returns the requirements of a warehouse, newest first.
func (r *requirementRepository) ListByWarehouse(ctx context.Context, q database.Querier, warehouseID int64) ([]*models.InputRequirement, error) {
	query := `SELECT` + requirementColumns + `
		FROM input_requirements
		WHERE warehouse_id = $1
		ORDER BY id DESC`

	return r.list(ctx, q, query, warehouseID)
}

func (r *requirementRepository) ListOrphans(ctx context.Context, q database.Querier, cutoff time.Time) ([]*models.InputRequirement, error) {
	query := `SELECT` + requirementColumns + `
		FROM input_requirements ir
		WHERE ir.created_at < $1
		  AND NOT EXISTS (
			SELECT 1 FROM result_manpower_planning_overall r WHERE r.requirement_id = ir.id
		  )
		ORDER BY ir.id`

	return r.list(ctx, q, query, cutoff)
}

func (r *requirementRepository) Delete(ctx context.Context, q database.Querier, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := q.Exec(ctx, `DELETE FROM input_requirements WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete requirements: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *requirementRepository) list(ctx context.Context, q database.Querier, query string, args ...any) ([]*models.InputRequirement, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requirements: %w", err)
	}
	defer rows.Close()

	var result []*models.InputRequirement
	for rows.Next() {
		req, err := scanRequirement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan requirement: %w", err)
		}
		result = append(result, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating requirements: %w", err)
	}
	return result, nil
}

func scanRequirement(row pgx.Row) (*models.InputRequirement, error) {
	var req models.InputRequirement
	err := row.Scan(
		&req.ID,
		&req.WarehouseID,
		&req.NumCurrentEmployees,
		&req.PlanFromDate,
		&req.PlanToDate,
		&req.PercentageAbsentExpected,
		&req.DayWorkingHours,
		&req.CostPerEmployeePerMonth,
		&req.TotalHiringBudget,
		&req.CreatedBy,
		&req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}
