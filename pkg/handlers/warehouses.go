package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/manpower-engine/pkg/auth"
	"github.com/ekaya-inc/manpower-engine/pkg/models"
	"github.com/ekaya-inc/manpower-engine/pkg/services"
)

// AddWarehousesRequest for POST /api/warehouses
type AddWarehousesRequest struct {
	Warehouses []models.NamedRecord `json:"warehouses"`
}

// WarehouseHandler handles warehouse HTTP requests.
type WarehouseHandler struct {
	warehouseService services.WarehouseService
	logger           *zap.Logger
}

// NewWarehouseHandler creates a new warehouse handler.
func NewWarehouseHandler(warehouseService services.WarehouseService, logger *zap.Logger) *WarehouseHandler {
	return &WarehouseHandler{
		warehouseService: warehouseService,
		logger:           logger,
	}
}

// RegisterRoutes registers the warehouse handler's routes on the given mux.
func (h *WarehouseHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/warehouses", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/warehouses", authMiddleware.RequireAuth(h.Add))
}

// List handles GET /api/warehouses
func (h *WarehouseHandler) List(w http.ResponseWriter, r *http.Request) {
	warehouses, err := h.warehouseService.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "list_warehouses_failed")
		return
	}
	writeResponse(w, h.logger, http.StatusOK, warehouses)
}

// Add handles POST /api/warehouses
func (h *WarehouseHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddWarehousesRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if !requireRecords(w, len(req.Warehouses), "warehouses", h.logger) {
		return
	}

	result, err := h.warehouseService.BulkAdd(r.Context(), req.Warehouses)
	if err != nil {
		writeServiceError(w, h.logger, err, "add_warehouses_failed")
		return
	}
	writeResponse(w, h.logger, bulkStatus(len(result.Succeeded), len(result.Failed)), result)
}
