package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/manpower-engine/pkg/auth"
	"github.com/ekaya-inc/manpower-engine/pkg/services"
)

// uploadFormField is the multipart field holding the spreadsheet.
const uploadFormField = "file"

// UploadHandler handles spreadsheet uploads.
type UploadHandler struct {
	uploadService services.UploadService
	maxBytes      int64
	logger        *zap.Logger
}

// NewUploadHandler creates a new upload handler accepting files of at most
// maxBytes.
func NewUploadHandler(uploadService services.UploadService, maxBytes int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		maxBytes:      maxBytes,
		logger:        logger,
	}
}

// RegisterRoutes registers the upload handler's routes on the given mux.
func (h *UploadHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/upload_productivity_file/{warehouse_id}", authMiddleware.RequireAuth(h.UploadProductivity))
	mux.HandleFunc("POST /api/demand_forecast_file/{warehouse_id}", authMiddleware.RequireAuth(h.UploadDemand))
}

// UploadProductivity handles POST /api/upload_productivity_file/{warehouse_id}
func (h *UploadHandler) UploadProductivity(w http.ResponseWriter, r *http.Request) {
	warehouseID, ok := ParseWarehouseID(w, r, h.logger)
	if !ok {
		return
	}
	file, cleanup, ok := h.readFile(w, r)
	if !ok {
		return
	}
	defer cleanup()

	result, err := h.uploadService.UploadProductivity(r.Context(), warehouseID, file)
	h.respond(w, result, err)
}

// UploadDemand handles POST /api/demand_forecast_file/{warehouse_id}
// with start_date and end_date form values.
func (h *UploadHandler) UploadDemand(w http.ResponseWriter, r *http.Request) {
	warehouseID, ok := ParseWarehouseID(w, r, h.logger)
	if !ok {
		return
	}
	file, cleanup, ok := h.readFile(w, r)
	if !ok {
		return
	}
	defer cleanup()

	result, err := h.uploadService.UploadDemand(r.Context(), warehouseID, file,
		r.FormValue("start_date"), r.FormValue("end_date"))
	h.respond(w, result, err)
}

// readFile parses the multipart form. A missing file part yields a nil
// UploadFile so that the service reports it after checking the warehouse.
func (h *UploadHandler) readFile(w http.ResponseWriter, r *http.Request) (*services.UploadFile, func(), bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			if err := ErrorResponse(w, http.StatusRequestEntityTooLarge, "file_too_large", "Uploaded file is too large"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return nil, nil, false
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid multipart form"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return nil, nil, false
		}
	}
	cleanup := func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}

	f, header, err := r.FormFile(uploadFormField)
	if err != nil {
		return nil, cleanup, true
	}
	return &services.UploadFile{Name: header.Filename, Reader: f}, func() {
		_ = f.Close()
		cleanup()
	}, true
}

// respond maps an upload outcome to 201 (all stored), 200 (partial) or
// 400 (nothing stored).
func (h *UploadHandler) respond(w http.ResponseWriter, result *services.UploadResult, err error) {
	if err != nil {
		writeServiceError(w, h.logger, err, "upload_failed")
		return
	}

	status := http.StatusCreated
	switch result.Status {
	case services.UploadPartial:
		status = http.StatusOK
	case services.UploadFailed:
		status = http.StatusBadRequest
	}
	writeResponse(w, h.logger, status, result)
}
