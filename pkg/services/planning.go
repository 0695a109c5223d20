package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/manpower-engine/pkg/apperrors"
	"github.com/ekaya-inc/manpower-engine/pkg/auth"
	"github.com/ekaya-inc/manpower-engine/pkg/database"
	"github.com/ekaya-inc/manpower-engine/pkg/models"
	"github.com/ekaya-inc/manpower-engine/pkg/repositories"
)

// PlanningService runs planning requests.
type PlanningService interface {
	// Calculate stores the requirement, builds a staffing plan from the
	// warehouse's demand and productivity, stores the plan and returns it.
	Calculate(ctx context.Context, req *models.RequirementRequest) (*models.PlanningResponse, error)
}

// PlanningRepositories groups the stores the orchestrator reads and writes.
type PlanningRepositories struct {
	Warehouses   repositories.WarehouseRepository
	Requirements repositories.RequirementRepository
	Demand       repositories.DemandRepository
	Productivity repositories.ProductivityRepository
	Results      repositories.ResultRepository
}

type planningService struct {
	db       database.TxRunner
	reader   database.Querier
	repos    PlanningRepositories
	strategy StaffingStrategy
	now      func() time.Time
	logger   *zap.Logger
}

// NewPlanningService creates a new PlanningService.
func NewPlanningService(
	db database.TxRunner,
	reader database.Querier,
	repos PlanningRepositories,
	strategy StaffingStrategy,
	logger *zap.Logger,
) PlanningService {
	return &planningService{
		db:       db,
		reader:   reader,
		repos:    repos,
		strategy: strategy,
		now:      time.Now,
		logger:   logger.Named("planning"),
	}
}

var _ PlanningService = (*planningService)(nil)

// Calculate runs strictly in order. The requirement is committed before
// anything else is read, so a failure later on leaves it without results.
func (s *planningService) Calculate(ctx context.Context, req *models.RequirementRequest) (*models.PlanningResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	requirement := req.Requirement(auth.GetUserIDFromContext(ctx))
	var warehouse *models.Warehouse

	// Step 1: store the requirement.
	err := s.db.InTx(ctx, func(uow database.UnitOfWork) error {
		var err error
		warehouse, err = s.repos.Warehouses.Get(ctx, uow, requirement.WarehouseID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NotFoundf("Warehouse not found with id %d", requirement.WarehouseID)
			}
			return err
		}
		return s.repos.Requirements.Create(ctx, uow, requirement)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store requirement: %w", err)
	}

	logger := s.logger.With(
		zap.Int64("requirement_id", requirement.ID),
		zap.Int64("warehouse_id", requirement.WarehouseID))

	// Steps 2 and 3: inputs.
	demand, err := demandSummary(ctx, s.reader, s.repos.Demand, requirement.WarehouseID, requirement.PlanFromDate, requirement.PlanToDate)
	if err != nil {
		logger.Error("Failed to load demand for stored requirement", zap.Error(err))
		return nil, fmt.Errorf("failed to load demand: %w", err)
	}
	productivity, err := s.repos.Productivity.ListByWarehouse(ctx, s.reader, requirement.WarehouseID)
	if err != nil {
		logger.Error("Failed to load productivity for stored requirement", zap.Error(err))
		return nil, fmt.Errorf("failed to load productivity: %w", err)
	}
	if productivity == nil {
		productivity = []*models.BenchmarkProductivity{}
	}

	input := &models.PlanningInput{
		InputRequirement: *requirement,
		ExpectedDemand:   demand,
		Productivity:     productivity,
	}

	// Steps 4 to 6: plan.
	dates := models.DateRange(requirement.PlanFromDate, requirement.PlanToDate)
	plan := s.strategy.Plan(input, dates)
	fulfillment := s.strategy.Fulfillment(demand)
	additional := s.strategy.Additional(requirement)

	// Step 7: store the plan.
	results := planResults(requirement, plan, dates)
	err = s.db.InTx(ctx, func(uow database.UnitOfWork) error {
		return s.repos.Results.CreateAll(ctx, uow, results)
	})
	if err != nil {
		logger.Error("Failed to store staffing plan for stored requirement", zap.Error(err))
		return nil, fmt.Errorf("failed to store planning results: %w", err)
	}

	logger.Info("Calculated staffing plan",
		zap.Int("dates", len(dates)),
		zap.Int("result_lines", len(results)))

	return &models.PlanningResponse{
		InputData:               input,
		RequirementID:           requirement.ID,
		Output:                  plan,
		DemandVsFulfillmentData: fulfillment,
		AdditionalData:          additional,
		WarehouseName:           warehouse.Name,
	}, nil
}

func (s *planningService) validate(req *models.RequirementRequest) error {
	today := models.DateOf(s.now().UTC())
	switch {
	case req.WarehouseID <= 0:
		return fmt.Errorf("%w: warehouse_id is required", apperrors.ErrInvalidInput)
	case req.PlanFromDate.IsZero() || req.PlanToDate.IsZero():
		return fmt.Errorf("%w: plan_from_date and plan_to_date are required", apperrors.ErrInvalidInput)
	case req.PlanFromDate.Before(today):
		return fmt.Errorf("%w: plan_from_date %s is before today", apperrors.ErrInvalidInput, req.PlanFromDate)
	case req.PlanToDate.Before(req.PlanFromDate):
		return fmt.Errorf("%w: plan_from_date must not be after plan_to_date", apperrors.ErrInvalidInput)
	case req.DayWorkingHours < 1 || req.DayWorkingHours > 24:
		return fmt.Errorf("%w: day_working_hours must be between 1 and 24", apperrors.ErrInvalidInput)
	case req.NumCurrentEmployees < 0:
		return fmt.Errorf("%w: num_current_employees must not be negative", apperrors.ErrInvalidInput)
	}
	return nil
}

// planResults flattens a plan into result lines ordered by date then category.
func planResults(req *models.InputRequirement, plan models.StaffingPlan, dates []models.Date) []*models.PlanningResult {
	var results []*models.PlanningResult
	for _, date := range dates {
		entries := plan[date]
		for _, name := range sortedNames(entries) {
			entry := entries[name]
			results = append(results, &models.PlanningResult{
				RequirementID:           req.ID,
				CategoryID:              entry.CategoryID,
				CategoryName:            name,
				Date:                    date,
				NumExistingToBeDeployed: entry.Existing,
				NumNewToBeDeployed:      entry.New,
				CreatedBy:               req.CreatedBy,
			})
		}
	}
	return results
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
