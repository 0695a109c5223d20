package repositories

import (
	"context"
	"fmt"

	"github.com/ekaya-inc/manpower-engine/pkg/database"
	"github.com/ekaya-inc/manpower-engine/pkg/models"
)

// ResultRepository defines the interface for persisted staffing plans.
type ResultRepository interface {
	// CreateAll inserts every result line. A duplicate
	// (requirement, category, date) is reported as apperrors.ErrConflict.
	CreateAll(ctx context.Context, q database.Querier, results []*models.PlanningResult) error
	ListByRequirement(ctx context.Context, q database.Querier, requirementID int64) ([]*models.PlanningResult, error)
}

type resultRepository struct{}

// NewResultRepository creates a new planning result repository.
func NewResultRepository() ResultRepository {
	return &resultRepository{}
}

var _ ResultRepository = (*resultRepository)(nil)

func (r *resultRepository) CreateAll(ctx context.Context, q database.Querier, results []*models.PlanningResult) error {
	query := `
		INSERT INTO result_manpower_planning_overall (
			requirement_id, category_id, date,
			num_existing_to_be_deployed, num_new_to_be_deployed, created_by
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	for _, res := range results {
		err := q.QueryRow(ctx, query,
			res.RequirementID,
			res.CategoryID,
			res.Date,
			res.NumExistingToBeDeployed,
			res.NumNewToBeDeployed,
			res.CreatedBy,
		).Scan(&res.ID, &res.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create planning result for %s: %w", res.Date, database.ClassifyError(err))
		}
	}
	return nil
}

// ListByRequirement returns the staffing plan of a requirement with category
// names, ordered by date then category.
func (r *resultRepository) ListByRequirement(ctx context.Context, q database.Querier, requirementID int64) ([]*models.PlanningResult, error) {
	query := `
		SELECT r.id, r.requirement_id, r.category_id, c.name, r.date,
		       r.num_existing_to_be_deployed, r.num_new_to_be_deployed,
		       r.created_by, r.created_at
		FROM result_manpower_planning_overall r
		JOIN category c ON c.id = r.category_id
		WHERE r.requirement_id = $1
		ORDER BY r.date, c.name`

	rows, err := q.Query(ctx, query, requirementID)
	if err != nil {
		return nil, fmt.Errorf("failed to list planning results: %w", err)
	}
	defer rows.Close()

	var results []*models.PlanningResult
	for rows.Next() {
		var res models.PlanningResult
		if err := rows.Scan(
			&res.ID,
			&res.RequirementID,
			&res.CategoryID,
			&res.CategoryName,
			&res.Date,
			&res.NumExistingToBeDeployed,
			&res.NumNewToBeDeployed,
			&res.CreatedBy,
			&res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan planning result: %w", err)
		}
		results = append(results, &res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating planning results: %w", err)
	}
	return results, nil
}
