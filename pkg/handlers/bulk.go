package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

// bulkStatus is 201 when every record was stored, 200 when some were and
// 400 when none were.
func bulkStatus(succeeded, failed int) int {
	switch {
	case failed == 0:
		return http.StatusCreated
	case succeeded > 0:
		return http.StatusOK
	default:
		return http.StatusBadRequest
	}
}

// requireRecords rejects an empty bulk request.
func requireRecords(w http.ResponseWriter, n int, field string, logger *zap.Logger) bool {
	if n > 0 {
		return true
	}
	if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", field+" must contain at least one record"); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
	return false
}
