package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ekaya-inc/manpower-engine/pkg/auth"
	"github.com/ekaya-inc/manpower-engine/pkg/models"
	"github.com/ekaya-inc/manpower-engine/pkg/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DemandInput is one record of POST /api/demands
type DemandInput struct {
	WarehouseID int64       `json:"warehouse_id"`
	CategoryID  int64       `json:"category_id"`
	Date        models.Date `json:"date"`
	Demand      int64       `json:"demand"`
}

// AddDemandsRequest for POST /api/demands
type AddDemandsRequest struct {
	Demands []DemandInput `json:"demands"`
}

// UpdateDemandsRequest for PUT /api/demands
type UpdateDemandsRequest struct {
	Demands []models.InputDemandUpdate `json:"demands"`
}

// DemandHandler handles demand forecast HTTP requests.
type DemandHandler struct {
	demandService services.DemandService
	logger        *zap.Logger
}

// NewDemandHandler creates a new demand handler.
func NewDemandHandler(demandService services.DemandService, logger *zap.Logger) *DemandHandler {
	return &DemandHandler{
		demandService: demandService,
		logger:        logger,
	}
}

// RegisterRoutes registers the demand handler's routes on the given mux.
func (h *DemandHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/demands", authMiddleware.RequireAuth(h.Add))
	mux.HandleFunc("PUT /api/demands", authMiddleware.RequireAuth(h.Update))
	mux.HandleFunc("GET /api/demands/{warehouse_id}", authMiddleware.RequireAuth(h.Summary))
	mux.HandleFunc("GET /api/demand_template/{warehouse_id}", authMiddleware.RequireAuth(h.Template))
}

// Summary handles GET /api/demands/{warehouse_id}?start_date=&end_date=
func (h *DemandHandler) Summary(w http.ResponseWriter, r *http.Request) {
	warehouseID, ok := ParseWarehouseID(w, r, h.logger)
	if !ok {
		return
	}
	start, end, ok := ParseDateRange(w, r, h.logger)
	if !ok {
		return
	}

	summary, err := h.demandService.Summary(r.Context(), warehouseID, start, end)
	if err != nil {
		writeServiceError(w, h.logger, err, "get_demand_failed")
		return
	}
	writeResponse(w, h.logger, http.StatusOK, summary)
}

// Add handles POST /api/demands
func (h *DemandHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddDemandsRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if !requireRecords(w, len(req.Demands), "demands", h.logger) {
		return
	}

	records := make([]*models.InputDemand, len(req.Demands))
	for i, in := range req.Demands {
		records[i] = &models.InputDemand{
			WarehouseID: in.WarehouseID,
			CategoryID:  in.CategoryID,
			Date:        in.Date,
			Demand:      in.Demand,
		}
	}

	result, err := h.demandService.BulkAdd(r.Context(), records)
	if err != nil {
		writeServiceError(w, h.logger, err, "add_demands_failed")
		return
	}
	writeResponse(w, h.logger, bulkStatus(len(result.Succeeded), len(result.Failed)), result)
}

// Update handles PUT /api/demands
func (h *DemandHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateDemandsRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if !requireRecords(w, len(req.Demands), "demands", h.logger) {
		return
	}

	result, err := h.demandService.Update(r.Context(), req.Demands)
	if err != nil {
		writeServiceError(w, h.logger, err, "update_demands_failed")
		return
	}
	writeResponse(w, h.logger, http.StatusOK, result)
}

// Template handles GET /api/demand_template/{warehouse_id}?start_date=&end_date=
func (h *DemandHandler) Template(w http.ResponseWriter, r *http.Request) {
	warehouseID, ok := ParseWarehouseID(w, r, h.logger)
	if !ok {
		return
	}
	start, end, ok := ParseDateRange(w, r, h.logger)
	if !ok {
		return
	}

	// Buffered so that a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.demandService.WriteTemplate(r.Context(), &buf, warehouseID, start, end); err != nil {
		writeServiceError(w, h.logger, err, "demand_template_failed")
		return
	}

	filename := fmt.Sprintf("demand_%d_%s_%s.xlsx", warehouseID, start, end)
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("Failed to write demand template", zap.Error(err))
	}
}
