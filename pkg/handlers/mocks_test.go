package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/manpower-engine/pkg/auth"
	"github.com/ekaya-inc/manpower-engine/pkg/models"
	"github.com/ekaya-inc/manpower-engine/pkg/services"
)

// stubAuthService accepts every request unless err is set.
type stubAuthService struct {
	err error
}

func (s *stubAuthService) ValidateRequest(r *http.Request) (*auth.Claims, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "planner-1"}}, "test-token", nil
}

func newTestAuthMiddleware() *auth.Middleware {
	return auth.NewMiddleware(&stubAuthService{}, zap.NewNop())
}

func newRejectingAuthMiddleware() *auth.Middleware {
	return auth.NewMiddleware(&stubAuthService{err: errors.New("missing token")}, zap.NewNop())
}

// serve registers a handler's routes and sends one request through the mux.
func serve(t *testing.T, register func(*http.ServeMux), method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	register(mux)
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

var errDatabaseDown = errors.New("connection refused")

type mockWarehouseService struct {
	warehouses []*models.Warehouse
	added      []models.NamedRecord
	listErr    error
}

func (m *mockWarehouseService) BulkAdd(ctx context.Context, records []models.NamedRecord) (*services.BulkResult[*models.Warehouse], error) {
	m.added = records
	result := &services.BulkResult[*models.Warehouse]{}
	for i, r := range records {
		w := &models.Warehouse{ID: int64(i + 1), Name: r.Name, Description: r.Description}
		if r.Name == "" {
			result.Failed = append(result.Failed, services.RecordError[*models.Warehouse]{Record: w, Error: "invalid input: name is required"})
			continue
		}
		result.Succeeded = append(result.Succeeded, w)
	}
	return result, nil
}

func (m *mockWarehouseService) List(ctx context.Context) ([]*models.Warehouse, error) {
	return m.warehouses, m.listErr
}

func (m *mockWarehouseService) Get(ctx context.Context, id int64) (*models.Warehouse, error) {
	for _, w := range m.warehouses {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, errors.New("not found")
}

type mockCategoryService struct {
	categories []*models.Category
	result     *services.BulkResult[*models.Category]
}

func (m *mockCategoryService) BulkAdd(ctx context.Context, records []models.NamedRecord) (*services.BulkResult[*models.Category], error) {
	return m.result, nil
}

func (m *mockCategoryService) List(ctx context.Context) ([]*models.Category, error) {
	return m.categories, nil
}

func (m *mockCategoryService) Ensure(ctx context.Context, records []models.NamedRecord) (int, error) {
	return len(records), nil
}

type mockProductivityService struct {
	added   []*models.BenchmarkProductivity
	updates []models.BenchmarkProductivityUpdate
	records []*models.BenchmarkProductivity
	err     error
}

func (m *mockProductivityService) BulkAdd(ctx context.Context, records []*models.BenchmarkProductivity) (*services.BulkResult[*models.BenchmarkProductivity], error) {
	m.added = records
	if m.err != nil {
		return nil, m.err
	}
	return &services.BulkResult[*models.BenchmarkProductivity]{Succeeded: records}, nil
}

func (m *mockProductivityService) ListByWarehouse(ctx context.Context, warehouseID int64) ([]*models.BenchmarkProductivity, error) {
	return m.records, m.err
}

func (m *mockProductivityService) Update(ctx context.Context, updates []models.BenchmarkProductivityUpdate) (*services.UpdateResult[*models.BenchmarkProductivity, models.BenchmarkProductivityUpdate], error) {
	m.updates = updates
	return &services.UpdateResult[*models.BenchmarkProductivity, models.BenchmarkProductivityUpdate]{}, m.err
}

type mockDemandService struct {
	added       []*models.InputDemand
	updates     []models.InputDemandUpdate
	summary     *models.DemandSummary
	gotStart    models.Date
	gotEnd      models.Date
	template    []byte
	err         error
	templateErr error
}

func (m *mockDemandService) BulkAdd(ctx context.Context, records []*models.InputDemand) (*services.BulkResult[*models.InputDemand], error) {
	m.added = records
	if m.err != nil {
		return nil, m.err
	}
	result := &services.BulkResult[*models.InputDemand]{}
	for _, r := range records {
		if r.Demand < 0 {
			result.Failed = append(result.Failed, services.RecordError[*models.InputDemand]{Record: r, Error: "invalid input: demand must not be negative"})
			continue
		}
		result.Succeeded = append(result.Succeeded, r)
	}
	return result, nil
}

func (m *mockDemandService) Summary(ctx context.Context, warehouseID int64, start, end models.Date) (*models.DemandSummary, error) {
	m.gotStart, m.gotEnd = start, end
	return m.summary, m.err
}

func (m *mockDemandService) Update(ctx context.Context, updates []models.InputDemandUpdate) (*services.UpdateResult[*models.InputDemand, models.InputDemandUpdate], error) {
	m.updates = updates
	return &services.UpdateResult[*models.InputDemand, models.InputDemandUpdate]{}, m.err
}

func (m *mockDemandService) WriteTemplate(ctx context.Context, w io.Writer, warehouseID int64, start, end models.Date) error {
	if m.templateErr != nil {
		return m.templateErr
	}
	_, err := w.Write(m.template)
	return err
}

type mockPlanningService struct {
	req  *models.RequirementRequest
	resp *models.PlanningResponse
	err  error
}

func (m *mockPlanningService) Calculate(ctx context.Context, req *models.RequirementRequest) (*models.PlanningResponse, error) {
	m.req = req
	return m.resp, m.err
}

type mockRequirementService struct {
	requirements []*models.InputRequirement
	err          error
}

func (m *mockRequirementService) ListByWarehouse(ctx context.Context, warehouseID int64) ([]*models.InputRequirement, error) {
	return m.requirements, m.err
}

func (m *mockRequirementService) CleanupOrphans(ctx context.Context, cutoff time.Time, dryRun bool) (*services.OrphanCleanup, error) {
	return &services.OrphanCleanup{DryRun: dryRun}, nil
}

type mockResultService struct {
	results []*models.PlanningResult
	err     error
}

func (m *mockResultService) ListByRequirement(ctx context.Context, requirementID int64) ([]*models.PlanningResult, error) {
	return m.results, m.err
}

type mockUploadService struct {
	warehouseID int64
	fileName    string
	content     []byte
	gotFile     bool
	rawStart    string
	rawEnd      string
	result      *services.UploadResult
	err         error
}

func (m *mockUploadService) record(warehouseID int64, file *services.UploadFile) {
	m.warehouseID = warehouseID
	if file != nil {
		m.gotFile = true
		m.fileName = file.Name
		m.content, _ = io.ReadAll(file.Reader)
	}
}

func (m *mockUploadService) UploadProductivity(ctx context.Context, warehouseID int64, file *services.UploadFile) (*services.UploadResult, error) {
	m.record(warehouseID, file)
	return m.result, m.err
}

func (m *mockUploadService) UploadDemand(ctx context.Context, warehouseID int64, file *services.UploadFile, rawStart, rawEnd string) (*services.UploadResult, error) {
	m.record(warehouseID, file)
	m.rawStart, m.rawEnd = rawStart, rawEnd
	return m.result, m.err
}
