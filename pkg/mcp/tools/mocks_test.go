package tools

import (
	"context"
	"io"

	"github.com/ekaya-inc/manpower-engine/pkg/apperrors"
	"github.com/ekaya-inc/manpower-engine/pkg/database"
	"github.com/ekaya-inc/manpower-engine/pkg/models"
	"github.com/ekaya-inc/manpower-engine/pkg/services"
)

type mockWarehouseService struct {
	warehouses []*models.Warehouse
	err        error
}

func (m *mockWarehouseService) BulkAdd(context.Context, []models.NamedRecord) (*services.BulkResult[*models.Warehouse], error) {
	return nil, nil
}

func (m *mockWarehouseService) List(context.Context) ([]*models.Warehouse, error) {
	return m.warehouses, m.err
}

func (m *mockWarehouseService) Get(_ context.Context, id int64) (*models.Warehouse, error) {
	for _, w := range m.warehouses {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, apperrors.NotFoundf("Warehouse not found with id %d", id)
}

type mockCategoryService struct {
	categories []*models.Category
}

func (m *mockCategoryService) BulkAdd(context.Context, []models.NamedRecord) (*services.BulkResult[*models.Category], error) {
	return nil, nil
}

func (m *mockCategoryService) List(context.Context) ([]*models.Category, error) {
	return m.categories, nil
}

func (m *mockCategoryService) Ensure(context.Context, []models.NamedRecord) (int, error) {
	return 0, nil
}

type mockDemandService struct {
	summary    *models.DemandSummary
	err        error
	start, end models.Date
}

func (m *mockDemandService) BulkAdd(context.Context, []*models.InputDemand) (*services.BulkResult[*models.InputDemand], error) {
	return nil, nil
}

func (m *mockDemandService) Summary(_ context.Context, _ int64, start, end models.Date) (*models.DemandSummary, error) {
	m.start, m.end = start, end
	return m.summary, m.err
}

func (m *mockDemandService) Update(context.Context, []models.InputDemandUpdate) (*services.UpdateResult[*models.InputDemand, models.InputDemandUpdate], error) {
	return nil, nil
}

func (m *mockDemandService) WriteTemplate(context.Context, io.Writer, int64, models.Date, models.Date) error {
	return nil
}

type mockProductivityService struct {
	records []*models.BenchmarkProductivity
}

func (m *mockProductivityService) BulkAdd(context.Context, []*models.BenchmarkProductivity) (*services.BulkResult[*models.BenchmarkProductivity], error) {
	return nil, nil
}

func (m *mockProductivityService) ListByWarehouse(context.Context, int64) ([]*models.BenchmarkProductivity, error) {
	return m.records, nil
}

func (m *mockProductivityService) Update(context.Context, []models.BenchmarkProductivityUpdate) (*services.UpdateResult[*models.BenchmarkProductivity, models.BenchmarkProductivityUpdate], error) {
	return nil, nil
}

type mockResultService struct {
	results map[int64][]*models.PlanningResult
	err     error
}

func (m *mockResultService) ListByRequirement(_ context.Context, id int64) ([]*models.PlanningResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	results, ok := m.results[id]
	if !ok {
		return nil, apperrors.NotFoundf("Requirement not found with id %d", id)
	}
	return results, nil
}

type mockRegistry struct {
	ids map[string]int64
}

func (m *mockRegistry) Resolve(_ context.Context, name string) (int64, error) {
	id, ok := m.ids[name]
	if !ok {
		return 0, apperrors.ErrUnknownCategory
	}
	return id, nil
}

func (m *mockRegistry) AllNames(context.Context) (map[string]struct{}, error) {
	names := make(map[string]struct{}, len(m.ids))
	for name := range m.ids {
		names[name] = struct{}{}
	}
	return names, nil
}

func (m *mockRegistry) Mapping(context.Context) (map[string]int64, error) {
	return m.ids, nil
}

func (m *mockRegistry) EnsureCategories(context.Context, database.UnitOfWork, []models.NamedRecord) (map[string]int64, error) {
	return m.ids, nil
}

func (m *mockRegistry) Invalidate() {}
