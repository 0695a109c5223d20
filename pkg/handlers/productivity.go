package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/manpower-engine/pkg/auth"
	"github.com/ekaya-inc/manpower-engine/pkg/models"
	"github.com/ekaya-inc/manpower-engine/pkg/services"
)

// ProductivityInput is one record of POST /api/benchmark_productivity
type ProductivityInput struct {
	WarehouseID             int64   `json:"warehouse_id"`
	CategoryID              int64   `json:"category_id"`
	ProductivityExperienced float64 `json:"productivity_experienced_employee"`
	ProductivityNew         float64 `json:"productivity_new_employee"`
}

// AddProductivityRequest for POST /api/benchmark_productivity
type AddProductivityRequest struct {
	Productivity []ProductivityInput `json:"productivity"`
}

// UpdateProductivityRequest for PUT /api/benchmark_productivity
type UpdateProductivityRequest struct {
	Productivity []models.BenchmarkProductivityUpdate `json:"productivity"`
}

// ProductivityHandler handles benchmark productivity HTTP requests.
type ProductivityHandler struct {
	productivityService services.ProductivityService
	logger              *zap.Logger
}

// NewProductivityHandler creates a new benchmark productivity handler.
func NewProductivityHandler(productivityService services.ProductivityService, logger *zap.Logger) *ProductivityHandler {
	return &ProductivityHandler{
		productivityService: productivityService,
		logger:              logger,
	}
}

// RegisterRoutes registers the productivity handler's routes on the given mux.
func (h *ProductivityHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	base := "/api/benchmark_productivity"

	mux.HandleFunc("POST "+base, authMiddleware.RequireAuth(h.Add))
	mux.HandleFunc("PUT "+base, authMiddleware.RequireAuth(h.Update))
	mux.HandleFunc("GET "+base+"/{warehouse_id}", authMiddleware.RequireAuth(h.List))
}

// List handles GET /api/benchmark_productivity/{warehouse_id}
func (h *ProductivityHandler) List(w http.ResponseWriter, r *http.Request) {
	warehouseID, ok := ParseWarehouseID(w, r, h.logger)
	if !ok {
		return
	}

	records, err := h.productivityService.ListByWarehouse(r.Context(), warehouseID)
	if err != nil {
		writeServiceError(w, h.logger, err, "list_productivity_failed")
		return
	}
	writeResponse(w, h.logger, http.StatusOK, records)
}

// Add handles POST /api/benchmark_productivity
func (h *ProductivityHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddProductivityRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if !requireRecords(w, len(req.Productivity), "productivity", h.logger) {
		return
	}

	records := make([]*models.BenchmarkProductivity, len(req.Productivity))
	for i, in := range req.Productivity {
		records[i] = &models.BenchmarkProductivity{
			WarehouseID:             in.WarehouseID,
			CategoryID:              in.CategoryID,
			ProductivityExperienced: in.ProductivityExperienced,
			ProductivityNew:         in.ProductivityNew,
		}
	}

	result, err := h.productivityService.BulkAdd(r.Context(), records)
	if err != nil {
		writeServiceError(w, h.logger, err, "add_productivity_failed")
		return
	}
	writeResponse(w, h.logger, bulkStatus(len(result.Succeeded), len(result.Failed)), result)
}

// Update handles PUT /api/benchmark_productivity
func (h *ProductivityHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductivityRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if !requireRecords(w, len(req.Productivity), "productivity", h.logger) {
		return
	}

	result, err := h.productivityService.Update(r.Context(), req.Productivity)
	if err != nil {
		writeServiceError(w, h.logger, err, "update_productivity_failed")
		return
	}
	writeResponse(w, h.logger, http.StatusOK, result)
}
