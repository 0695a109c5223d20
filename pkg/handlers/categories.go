package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/manpower-engine/pkg/auth"
	"github.com/ekaya-inc/manpower-engine/pkg/models"
	"github.com/ekaya-inc/manpower-engine/pkg/services"
)

// AddCategoriesRequest for POST /api/categories
type AddCategoriesRequest struct {
	Category []models.NamedRecord `json:"category"`
}

// CategoryHandler handles category HTTP requests.
type CategoryHandler struct {
	categoryService services.CategoryService
	logger          *zap.Logger
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(categoryService services.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// RegisterRoutes registers the category handler's routes on the given mux.
func (h *CategoryHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/categories", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/categories", authMiddleware.RequireAuth(h.Add))
}

// List handles GET /api/categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "list_categories_failed")
		return
	}
	writeResponse(w, h.logger, http.StatusOK, categories)
}

// Add handles POST /api/categories
func (h *CategoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddCategoriesRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if !requireRecords(w, len(req.Category), "category", h.logger) {
		return
	}

	result, err := h.categoryService.BulkAdd(r.Context(), req.Category)
	if err != nil {
		writeServiceError(w, h.logger, err, "add_categories_failed")
		return
	}
	writeResponse(w, h.logger, bulkStatus(len(result.Succeeded), len(result.Failed)), result)
}
