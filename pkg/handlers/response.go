package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/manpower-engine/pkg/apperrors"
	"github.com/ekaya-inc/manpower-engine/pkg/ingest"
)

// ErrorDataResponse is the body of a rejected spreadsheet or request that
// carries a list of row-level messages.
type ErrorDataResponse struct {
	Error     string   `json:"error"`
	Message   string   `json:"message"`
	ErrorData []string `json:"error_data"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// writeServiceError maps a service error to a status code and writes it.
// failCode is used for unexpected errors, which are also logged.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error, failCode string) {
	var verr *ingest.ValidationError
	var writeErr error
	switch {
	case errors.As(err, &verr):
		writeErr = WriteJSON(w, http.StatusBadRequest, ErrorDataResponse{
			Error:     "validation_error",
			Message:   verr.Error(),
			ErrorData: verr.Messages,
		})
	case errors.Is(err, apperrors.ErrNotFound):
		writeErr = ErrorResponse(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, apperrors.ErrUnknownCategory):
		writeErr = ErrorResponse(w, http.StatusBadRequest, "unknown_category", err.Error())
	case errors.Is(err, apperrors.ErrReservedName):
		writeErr = ErrorResponse(w, http.StatusBadRequest, "reserved_name", err.Error())
	case errors.Is(err, apperrors.ErrInvalidInput):
		writeErr = ErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		logger.Error("Request failed", zap.String("error_code", failCode), zap.Error(err))
		writeErr = ErrorResponse(w, http.StatusInternalServerError, failCode, "Internal server error")
	}
	if writeErr != nil {
		logger.Error("Failed to write error response", zap.Error(writeErr))
	}
}

// writeResponse writes data and logs encoding failures.
func writeResponse(w http.ResponseWriter, logger *zap.Logger, statusCode int, data any) {
	if err := WriteJSON(w, statusCode, data); err != nil {
		logger.Error("Failed to write response", zap.Error(err))
	}
}
