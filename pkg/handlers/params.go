package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ekaya-inc/manpower-engine/pkg/ingest"
	"github.com/ekaya-inc/manpower-engine/pkg/models"
)

// maxJSONBodyBytes caps JSON request bodies.
const maxJSONBodyBytes = 4 << 20

// ParseWarehouseID extracts and validates the warehouse ID from the request path.
// Returns the ID and true on success, or 0 and false after writing an error response.
// Expects path parameter: warehouse_id
func ParseWarehouseID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int64, bool) {
	return parseID(w, r, "warehouse_id", "invalid_warehouse_id", "Invalid warehouse ID", logger)
}

// ParseRequirementID extracts and validates the requirement ID from the request path.
// Expects path parameter: requirement_id
func ParseRequirementID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int64, bool) {
	return parseID(w, r, "requirement_id", "invalid_requirement_id", "Invalid requirement ID", logger)
}

// parseID is the internal helper that does the actual parsing work.
func parseID(w http.ResponseWriter, r *http.Request, pathParam, errorCode, errorMessage string, logger *zap.Logger) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(pathParam), 10, 64)
	if err != nil || id <= 0 {
		if err := ErrorResponse(w, http.StatusBadRequest, errorCode, errorMessage); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return 0, false
	}
	return id, true
}

// ParseDateRange reads the start_date and end_date query parameters.
// Returns false after writing an error response.
func ParseDateRange(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (models.Date, models.Date, bool) {
	q := r.URL.Query()
	start, end, err := ingest.ParseRange(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeServiceError(w, logger, err, "invalid_date_range")
		return models.Date{}, models.Date{}, false
	}
	return start, end, true
}

// decodeJSON decodes a request body, rejecting unknown fields and trailing
// data. Returns false after writing an error response.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, logger *zap.Logger) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	if err == nil {
		if _, tokenErr := dec.Token(); !errors.Is(tokenErr, io.EOF) {
			err = errors.New("unexpected data after JSON body")
		}
	}
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", fmt.Sprintf("Invalid request body: %v", err)); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return false
	}
	return true
}
