package repositories

import (
	"context"
	"fmt"

	"github.com/ekaya-inc/manpower-engine/pkg/database"
	"github.com/ekaya-inc/manpower-engine/pkg/models"
)

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	Create(ctx context.Context, q database.Querier, category *models.Category) error
	List(ctx context.Context, q database.Querier) ([]*models.Category, error)
	// EnsureNames inserts every record whose name does not exist yet and
	// leaves existing categories untouched. Returns the number inserted.
	EnsureNames(ctx context.Context, q database.Querier, records []models.NamedRecord) (int64, error)
	// IDsByName returns the IDs of the named categories that exist.
	IDsByName(ctx context.Context, q database.Querier, names []string) (map[string]int64, error)
}

type categoryRepository struct{}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository() CategoryRepository {
	return &categoryRepository{}
}

var _ CategoryRepository = (*categoryRepository)(nil)

// Create inserts a category. A duplicate name is reported as apperrors.ErrConflict
// and the reserved name as apperrors.ErrInvalidInput.
func (r *categoryRepository) Create(ctx context.Context, q database.Querier, category *models.Category) error {
	query := `
		INSERT INTO category (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`

	err := q.QueryRow(ctx, query, category.Name, category.Description).
		Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", database.ClassifyError(err))
	}
	return nil
}

// List returns all categories ordered by ID.
func (r *categoryRepository) List(ctx context.Context, q database.Querier) ([]*models.Category, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM category
		ORDER BY id`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) EnsureNames(ctx context.Context, q database.Querier, records []models.NamedRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	names := make([]string, len(records))
	descriptions := make([]string, len(records))
	for i, rec := range records {
		names[i] = rec.Name
		descriptions[i] = rec.Description
	}

	query := `
		INSERT INTO category (name, description)
		SELECT * FROM unnest($1::text[], $2::text[])
		ON CONFLICT (name) DO NOTHING`

	tag, err := q.Exec(ctx, query, names, descriptions)
	if err != nil {
		return 0, fmt.Errorf("failed to ensure categories: %w", database.ClassifyError(err))
	}
	return tag.RowsAffected(), nil
}

func (r *categoryRepository) IDsByName(ctx context.Context, q database.Querier, names []string) (map[string]int64, error) {
	ids := make(map[string]int64, len(names))
	if len(names) == 0 {
		return ids, nil
	}

	rows, err := q.Query(ctx, `SELECT name, id FROM category WHERE name = ANY($1)`, names)
	if err != nil {
		return nil, fmt.Errorf("failed to look up categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var id int64
		if err := rows.Scan(&name, &id); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		ids[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return ids, nil
}
