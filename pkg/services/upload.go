package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ekaya-inc/manpower-engine/pkg/apperrors"
	"github.com/ekaya-inc/manpower-engine/pkg/audit"
	"github.com/ekaya-inc/manpower-engine/pkg/auth"
	"github.com/ekaya-inc/manpower-engine/pkg/database"
	"github.com/ekaya-inc/manpower-engine/pkg/ingest"
	"github.com/ekaya-inc/manpower-engine/pkg/logging"
	"github.com/ekaya-inc/manpower-engine/pkg/models"
	"github.com/ekaya-inc/manpower-engine/pkg/repositories"
	"github.com/ekaya-inc/manpower-engine/pkg/screening"
	"github.com/ekaya-inc/manpower-engine/pkg/spreadsheet"
)

// Upload outcomes.
const (
	UploadSuccess = "success"
	UploadPartial = "partial"
	UploadFailed  = "failed"
)

// Upload kinds, as reported to the security auditor.
const (
	uploadKindProductivity = "productivity"
	uploadKindDemand       = "demand"
)

// UploadFile is an uploaded spreadsheet.
type UploadFile struct {
	Name   string
	Reader io.Reader
}

// UploadResult reports how much of a spreadsheet was stored. ErrorData lists
// every rejected row or cell.
type UploadResult struct {
	Status    string   `json:"status"`
	Stored    int      `json:"stored"`
	ErrorData []string `json:"error_data,omitempty"`
}

func newUploadResult(stored int, errs []string) *UploadResult {
	status := UploadSuccess
	switch {
	case stored == 0:
		status = UploadFailed
	case len(errs) > 0:
		status = UploadPartial
	}
	return &UploadResult{Status: status, Stored: stored, ErrorData: errs}
}

// UploadService ingests productivity and demand spreadsheets.
//
// Structural problems reject the file with an *ingest.ValidationError. Value
// problems are collected in UploadResult.ErrorData while the valid rows are
// stored.
type UploadService interface {
	UploadProductivity(ctx context.Context, warehouseID int64, file *UploadFile) (*UploadResult, error)
	// UploadDemand takes the planning window from the raw start_date and
	// end_date form values.
	UploadDemand(ctx context.Context, warehouseID int64, file *UploadFile, rawStart, rawEnd string) (*UploadResult, error)
}

type uploadService struct {
	db               database.TxRunner
	reader           database.Querier
	warehouseRepo    repositories.WarehouseRepository
	productivityRepo repositories.ProductivityRepository
	demandRepo       repositories.DemandRepository
	registry         CategoryRegistry
	screener         *screening.Screener
	auditor          *audit.SecurityAuditor
	logger           *zap.Logger
}

// NewUploadService creates a new UploadService.
func NewUploadService(
	db database.TxRunner,
	reader database.Querier,
	warehouseRepo repositories.WarehouseRepository,
	productivityRepo repositories.ProductivityRepository,
	demandRepo repositories.DemandRepository,
	registry CategoryRegistry,
	screener *screening.Screener,
	auditor *audit.SecurityAuditor,
	logger *zap.Logger,
) UploadService {
	return &uploadService{
		db:               db,
		reader:           reader,
		warehouseRepo:    warehouseRepo,
		productivityRepo: productivityRepo,
		demandRepo:       demandRepo,
		registry:         registry,
		screener:         screener,
		auditor:          auditor,
		logger:           logger.Named("upload"),
	}
}

var _ UploadService = (*uploadService)(nil)

func (s *uploadService) UploadProductivity(ctx context.Context, warehouseID int64, file *UploadFile) (*UploadResult, error) {
	table, err := s.open(ctx, uploadKindProductivity, warehouseID, file)
	if err != nil {
		return nil, err
	}

	validated, err := ingest.ValidateProductivity(table)
	if err != nil {
		return nil, s.reject(ctx, uploadKindProductivity, warehouseID, file, err)
	}

	errs := validated.Errors
	var rows []ingest.ProductivityRow
	for _, row := range validated.Rows {
		if err := checkCategoryName(row.Category); err != nil {
			errs = append(errs, fmt.Sprintf("Invalid value(s) for : %s", row.Category))
			continue
		}
		if err := s.screener.Screen(ctx, "productivity_upload", screening.Field{Name: "category", Value: row.Category}); err != nil {
			errs = append(errs, fmt.Sprintf("Invalid value(s) for : %s", logging.TruncateString(row.Category, 40)))
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return newUploadResult(0, errs), nil
	}

	records := make([]models.NamedRecord, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.Category]; ok {
			continue
		}
		seen[row.Category] = struct{}{}
		records = append(records, models.NamedRecord{Name: row.Category, Description: row.Category})
	}

	actor := auth.GetUserIDFromContext(ctx)
	var stored *BulkResult[*models.BenchmarkProductivity]
	err = s.db.InTx(ctx, func(uow database.UnitOfWork) error {
		ids, err := s.registry.EnsureCategories(ctx, uow, records)
		if err != nil {
			return err
		}

		candidates := make([]*models.BenchmarkProductivity, 0, len(rows))
		for _, row := range rows {
			candidates = append(candidates, &models.BenchmarkProductivity{
				WarehouseID:             warehouseID,
				CategoryID:              ids[row.Category],
				CategoryName:            row.Category,
				ProductivityExperienced: float64(row.Experienced),
				ProductivityNew:         float64(row.New),
				CreatedBy:               actor,
			})
		}
		stored = Reconcile[*models.BenchmarkProductivity](ctx, uow, s.productivityRepo, candidates)
		return nil
	})
	// Another request may have rebuilt the cache between insert and commit.
	s.registry.Invalidate()
	if err != nil {
		return nil, fmt.Errorf("failed to store productivity upload: %w", err)
	}

	for _, f := range stored.Failed {
		errs = append(errs, fmt.Sprintf("%s: %s", f.Record.CategoryName, f.Error))
	}

	s.logger.Info("Productivity spreadsheet ingested",
		zap.Int64("warehouse_id", warehouseID),
		zap.Int("stored", len(stored.Succeeded)),
		zap.Int("rejected", len(errs)))
	return newUploadResult(len(stored.Succeeded), errs), nil
}

func (s *uploadService) UploadDemand(ctx context.Context, warehouseID int64, file *UploadFile, rawStart, rawEnd string) (*UploadResult, error) {
	table, err := s.open(ctx, uploadKindDemand, warehouseID, file)
	if err != nil {
		return nil, err
	}

	categories, err := s.registry.Mapping(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := ingest.CheckDemandColumns(table, categories); err != nil {
		return nil, s.reject(ctx, uploadKindDemand, warehouseID, file, err)
	}
	start, end, err := ingest.ParseRange(rawStart, rawEnd)
	if err != nil {
		return nil, s.reject(ctx, uploadKindDemand, warehouseID, file, err)
	}

	validated, err := ingest.ValidateDemand(table, categories, start, end)
	if err != nil {
		return nil, s.reject(ctx, uploadKindDemand, warehouseID, file, err)
	}

	errs := validated.Errors
	if len(validated.Cells) == 0 {
		return newUploadResult(0, errs), nil
	}

	actor := auth.GetUserIDFromContext(ctx)
	candidates := make([]*models.InputDemand, 0, len(validated.Cells))
	for _, cell := range validated.Cells {
		candidates = append(candidates, &models.InputDemand{
			WarehouseID: warehouseID,
			CategoryID:  cell.CategoryID,
			Date:        cell.Date,
			Demand:      cell.Demand,
			CreatedBy:   actor,
		})
	}

	var stored *BulkResult[*models.InputDemand]
	err = s.db.InTx(ctx, func(uow database.UnitOfWork) error {
		stored = Reconcile[*models.InputDemand](ctx, uow, s.demandRepo, candidates)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store demand upload: %w", err)
	}

	for _, f := range stored.Failed {
		errs = append(errs, fmt.Sprintf("%s category %d: %s", f.Record.Date, f.Record.CategoryID, f.Error))
	}

	s.logger.Info("Demand spreadsheet ingested",
		zap.Int64("warehouse_id", warehouseID),
		zap.String("start_date", start.String()),
		zap.String("end_date", end.String()),
		zap.Int("stored", len(stored.Succeeded)),
		zap.Int("rejected", len(errs)))
	return newUploadResult(len(stored.Succeeded), errs), nil
}

// open checks the warehouse, then the presence and type of the file, and
// reads its first worksheet.
func (s *uploadService) open(ctx context.Context, kind string, warehouseID int64, file *UploadFile) (*spreadsheet.Table, error) {
	if _, err := s.warehouseRepo.Get(ctx, s.reader, warehouseID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFoundf("Warehouse not found with id %d", warehouseID)
		}
		return nil, err
	}
	if file == nil || file.Reader == nil {
		return nil, &ingest.ValidationError{Messages: []string{"No file uploaded."}}
	}

	table, err := spreadsheet.Read(file.Name, file.Reader)
	if err != nil {
		if errors.Is(err, spreadsheet.ErrUnsupportedExtension) {
			err = &ingest.ValidationError{Messages: []string{err.Error()}}
		} else {
			err = &ingest.ValidationError{Messages: []string{"Unable to read spreadsheet: " + err.Error()}}
		}
		return nil, s.reject(ctx, kind, warehouseID, file, err)
	}
	return table, nil
}

// reject audits a structural rejection and returns err unchanged.
func (s *uploadService) reject(ctx context.Context, kind string, warehouseID int64, file *UploadFile, err error) error {
	s.auditor.LogUploadRejected(ctx, audit.UploadRejectedDetails{
		Kind:        kind,
		WarehouseID: warehouseID,
		Filename:    file.Name,
		Reason:      err.Error(),
	})
	return err
}
