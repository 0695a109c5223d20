package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ekaya-inc/manpower-engine/pkg/apperrors"
	"github.com/ekaya-inc/manpower-engine/pkg/auth"
	"github.com/ekaya-inc/manpower-engine/pkg/database"
	"github.com/ekaya-inc/manpower-engine/pkg/models"
)

// fakeUoW satisfies database.UnitOfWork for services whose repositories are
// mocked; it never touches a database.
type fakeUoW struct {
	savepoints int
}

func (f *fakeUoW) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("fakeUoW: Exec not supported")
}

func (f *fakeUoW) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("fakeUoW: Query not supported")
}

func (f *fakeUoW) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func (f *fakeUoW) Savepoint(_ context.Context, fn func(uow database.UnitOfWork) error) error {
	f.savepoints++
	return fn(f)
}

// fakeTxRunner hands out a single fakeUoW and counts transactions.
type fakeTxRunner struct {
	uow   *fakeUoW
	calls int
	// failOnCall makes the n-th InTx call (1-based) fail with err.
	failOnCall int
	err        error
}

func newFakeTxRunner() *fakeTxRunner {
	return &fakeTxRunner{uow: &fakeUoW{}}
}

func (f *fakeTxRunner) InTx(_ context.Context, fn func(uow database.UnitOfWork) error) error {
	f.calls++
	if f.err != nil && (f.failOnCall == 0 || f.failOnCall == f.calls) {
		return f.err
	}
	return fn(f.uow)
}

// mockWarehouseRepo is an in-memory repositories.WarehouseRepository.
type mockWarehouseRepo struct {
	warehouses []*models.Warehouse
	getErr     error
}

func (m *mockWarehouseRepo) Create(_ context.Context, _ database.Querier, w *models.Warehouse) error {
	for _, existing := range m.warehouses {
		if existing.Name == w.Name {
			return fmt.Errorf("failed to create warehouse: %w", apperrors.ErrConflict)
		}
	}
	w.ID = int64(len(m.warehouses) + 1)
	w.CreatedAt = time.Now()
	w.UpdatedAt = w.CreatedAt
	m.warehouses = append(m.warehouses, w)
	return nil
}

func (m *mockWarehouseRepo) Get(_ context.Context, _ database.Querier, id int64) (*models.Warehouse, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, w := range m.warehouses {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockWarehouseRepo) List(context.Context, database.Querier) ([]*models.Warehouse, error) {
	return m.warehouses, nil
}

// mockCategoryRepo is an in-memory repositories.CategoryRepository.
type mockCategoryRepo struct {
	mu         sync.Mutex
	categories []*models.Category
	listCalls  int
}

func (m *mockCategoryRepo) add(name string) *models.Category {
	c := &models.Category{ID: int64(len(m.categories) + 1), Name: name, Description: name}
	m.categories = append(m.categories, c)
	return c
}

func (m *mockCategoryRepo) find(name string) *models.Category {
	for _, c := range m.categories {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (m *mockCategoryRepo) Create(_ context.Context, _ database.Querier, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.find(c.Name) != nil {
		return fmt.Errorf("failed to create category: %w", apperrors.ErrConflict)
	}
	c.ID = int64(len(m.categories) + 1)
	m.categories = append(m.categories, c)
	return nil
}

func (m *mockCategoryRepo) List(context.Context, database.Querier) ([]*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	return append([]*models.Category(nil), m.categories...), nil
}

func (m *mockCategoryRepo) EnsureNames(_ context.Context, _ database.Querier, records []models.NamedRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var inserted int64
	for _, rec := range records {
		if m.find(rec.Name) == nil {
			m.add(rec.Name).Description = rec.Description
			inserted++
		}
	}
	return inserted, nil
}

func (m *mockCategoryRepo) IDsByName(_ context.Context, _ database.Querier, names []string) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make(map[string]int64)
	for _, name := range names {
		if c := m.find(name); c != nil {
			ids[name] = c.ID
		}
	}
	return ids, nil
}

type productivityKey struct {
	warehouseID, categoryID int64
}

// mockProductivityRepo is an in-memory repositories.ProductivityRepository.
type mockProductivityRepo struct {
	records map[productivityKey]*models.BenchmarkProductivity
	nextID  int64
	// failCategory makes Create fail for that category ID.
	failCategory int64
}

func newMockProductivityRepo() *mockProductivityRepo {
	return &mockProductivityRepo{records: make(map[productivityKey]*models.BenchmarkProductivity)}
}

func (m *mockProductivityRepo) Create(_ context.Context, _ database.Querier, p *models.BenchmarkProductivity) error {
	if m.failCategory != 0 && p.CategoryID == m.failCategory {
		return errors.New("failed to create benchmark productivity: boom")
	}
	key := productivityKey{p.WarehouseID, p.CategoryID}
	if _, ok := m.records[key]; ok {
		return fmt.Errorf("failed to create benchmark productivity: %w", apperrors.ErrConflict)
	}
	m.nextID++
	p.ID = m.nextID
	stored := *p
	m.records[key] = &stored
	return nil
}

func (m *mockProductivityRepo) UpdateByKey(_ context.Context, _ database.Querier, p *models.BenchmarkProductivity) error {
	existing, ok := m.records[productivityKey{p.WarehouseID, p.CategoryID}]
	if !ok {
		return apperrors.ErrNotFound
	}
	existing.ProductivityExperienced = p.ProductivityExperienced
	existing.ProductivityNew = p.ProductivityNew
	existing.UpdatedBy = p.CreatedBy
	p.ID = existing.ID
	return nil
}

func (m *mockProductivityRepo) Update(_ context.Context, _ database.Querier, u *models.BenchmarkProductivityUpdate, updatedBy string) (*models.BenchmarkProductivity, error) {
	for _, p := range m.records {
		if p.ID != u.ID {
			continue
		}
		if u.ProductivityExperienced != nil {
			p.ProductivityExperienced = *u.ProductivityExperienced
		}
		if u.ProductivityNew != nil {
			p.ProductivityNew = *u.ProductivityNew
		}
		p.UpdatedBy = updatedBy
		out := *p
		return &out, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockProductivityRepo) ListByWarehouse(_ context.Context, _ database.Querier, warehouseID int64) ([]*models.BenchmarkProductivity, error) {
	var out []*models.BenchmarkProductivity
	for key, p := range m.records {
		if key.warehouseID == warehouseID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type demandKey struct {
	warehouseID, categoryID int64
	date                    models.Date
}

// mockDemandRepo is an in-memory repositories.DemandRepository. Category
// names for ListRange come from categories.
type mockDemandRepo struct {
	records    map[demandKey]*models.InputDemand
	nextID     int64
	categories *mockCategoryRepo
	listErr    error
}

func newMockDemandRepo(categories *mockCategoryRepo) *mockDemandRepo {
	return &mockDemandRepo{records: make(map[demandKey]*models.InputDemand), categories: categories}
}

func (m *mockDemandRepo) Create(_ context.Context, _ database.Querier, d *models.InputDemand) error {
	key := demandKey{d.WarehouseID, d.CategoryID, d.Date}
	if _, ok := m.records[key]; ok {
		return fmt.Errorf("failed to create demand: %w", apperrors.ErrConflict)
	}
	m.nextID++
	d.ID = m.nextID
	stored := *d
	m.records[key] = &stored
	return nil
}

func (m *mockDemandRepo) UpdateByKey(_ context.Context, _ database.Querier, d *models.InputDemand) error {
	existing, ok := m.records[demandKey{d.WarehouseID, d.CategoryID, d.Date}]
	if !ok {
		return apperrors.ErrNotFound
	}
	existing.Demand = d.Demand
	existing.UpdatedBy = d.CreatedBy
	d.ID = existing.ID
	return nil
}

func (m *mockDemandRepo) Update(_ context.Context, _ database.Querier, u *models.InputDemandUpdate, updatedBy string) (*models.InputDemand, error) {
	for _, d := range m.records {
		if d.ID != u.ID {
			continue
		}
		if u.Demand != nil {
			d.Demand = *u.Demand
		}
		d.UpdatedBy = updatedBy
		out := *d
		return &out, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockDemandRepo) ListRange(_ context.Context, _ database.Querier, warehouseID int64, start, end models.Date) ([]models.DemandRow, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var rows []models.DemandRow
	for key, d := range m.records {
		if key.warehouseID != warehouseID || key.date.Before(start) || key.date.After(end) {
			continue
		}
		name := ""
		for _, c := range m.categories.categories {
			if c.ID == key.categoryID {
				name = c.Name
			}
		}
		rows = append(rows, models.DemandRow{
			ID: d.ID, Date: d.Date, CategoryID: d.CategoryID, CategoryName: name, Demand: d.Demand,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].CategoryName < rows[j].CategoryName
	})
	return rows, nil
}

// mockRequirementRepo is an in-memory repositories.RequirementRepository.
type mockRequirementRepo struct {
	requirements []*models.InputRequirement
	orphans      []*models.InputRequirement
	deleted      []int64
}

func (m *mockRequirementRepo) Create(_ context.Context, _ database.Querier, req *models.InputRequirement) error {
	req.ID = int64(len(m.requirements) + 1)
	req.CreatedAt = time.Now()
	m.requirements = append(m.requirements, req)
	return nil
}

func (m *mockRequirementRepo) Get(_ context.Context, _ database.Querier, id int64) (*models.InputRequirement, error) {
	for _, r := range m.requirements {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockRequirementRepo) ListByWarehouse(_ context.Context, _ database.Querier, warehouseID int64) ([]*models.InputRequirement, error) {
	var out []*models.InputRequirement
	for _, r := range m.requirements {
		if r.WarehouseID == warehouseID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRequirementRepo) ListOrphans(context.Context, database.Querier, time.Time) ([]*models.InputRequirement, error) {
	return m.orphans, nil
}

func (m *mockRequirementRepo) Delete(_ context.Context, _ database.Querier, ids []int64) (int64, error) {
	m.deleted = append(m.deleted, ids...)
	return int64(len(ids)), nil
}

// mockResultRepo is an in-memory repositories.ResultRepository.
type mockResultRepo struct {
	results   []*models.PlanningResult
	createErr error
}

func (m *mockResultRepo) CreateAll(_ context.Context, _ database.Querier, results []*models.PlanningResult) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, r := range results {
		r.ID = int64(len(m.results) + 1)
		m.results = append(m.results, r)
	}
	return nil
}

func (m *mockResultRepo) ListByRequirement(_ context.Context, _ database.Querier, requirementID int64) ([]*models.PlanningResult, error) {
	var out []*models.PlanningResult
	for _, r := range m.results {
		if r.RequirementID == requirementID {
			out = append(out, r)
		}
	}
	return out, nil
}

// userContext returns a context authenticated as userID.
func userContext(userID string) context.Context {
	claims := &auth.Claims{}
	claims.Subject = userID
	return auth.WithClaims(context.Background(), claims, "test-token")
}
