package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/manpower-engine/pkg/auth"
	"github.com/ekaya-inc/manpower-engine/pkg/models"
	"github.com/ekaya-inc/manpower-engine/pkg/services"
)

// PlanningHandler handles planning requests and their stored results.
type PlanningHandler struct {
	planningService    services.PlanningService
	requirementService services.RequirementService
	resultService      services.ResultService
	logger             *zap.Logger
}

// NewPlanningHandler creates a new planning handler.
func NewPlanningHandler(
	planningService services.PlanningService,
	requirementService services.RequirementService,
	resultService services.ResultService,
	logger *zap.Logger,
) *PlanningHandler {
	return &PlanningHandler{
		planningService:    planningService,
		requirementService: requirementService,
		resultService:      resultService,
		logger:             logger,
	}
}

// RegisterRoutes registers the planning handler's routes on the given mux.
func (h *PlanningHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/calculate", authMiddleware.RequireAuth(h.Calculate))
	mux.HandleFunc("GET /api/requirements/{warehouse_id}", authMiddleware.RequireAuth(h.ListRequirements))
	mux.HandleFunc("GET /api/results/{requirement_id}", authMiddleware.RequireAuth(h.ListResults))
}

// Calculate handles POST /api/calculate
func (h *PlanningHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req models.RequirementRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	resp, err := h.planningService.Calculate(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "calculate_failed")
		return
	}
	writeResponse(w, h.logger, http.StatusCreated, resp)
}

// ListRequirements handles GET /api/requirements/{warehouse_id}
func (h *PlanningHandler) ListRequirements(w http.ResponseWriter, r *http.Request) {
	warehouseID, ok := ParseWarehouseID(w, r, h.logger)
	if !ok {
		return
	}

	requirements, err := h.requirementService.ListByWarehouse(r.Context(), warehouseID)
	if err != nil {
		writeServiceError(w, h.logger, err, "list_requirements_failed")
		return
	}
	writeResponse(w, h.logger, http.StatusOK, requirements)
}

// ListResults handles GET /api/results/{requirement_id}
func (h *PlanningHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	requirementID, ok := ParseRequirementID(w, r, h.logger)
	if !ok {
		return
	}

	results, err := h.resultService.ListByRequirement(r.Context(), requirementID)
	if err != nil {
		writeServiceError(w, h.logger, err, "list_results_failed")
		return
	}
	writeResponse(w, h.logger, http.StatusOK, results)
}
