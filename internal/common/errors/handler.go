package errors

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorHandler maps pipeline errors onto HTTP responses with standardized codes.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      ErrorCode `json:"code"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
}

// WriteHTTP normalizes err and writes it as a JSON error response.
func (h *ErrorHandler) WriteHTTP(w http.ResponseWriter, err error) {
	stdErr := h.normalizeError(err)

	h.logger.Error("request failed", map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"message":   stdErr.Message,
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusCode(stdErr.Code))
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:     stdErr.Message,
		Code:      stdErr.Code,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
	})
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// StatusCode maps an error code to an HTTP status.
func StatusCode(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrCodeChartNotFound, ErrCodeTableNotFound:
		return http.StatusNotFound
	case ErrCodeDatabaseConnectionFailed:
		return http.StatusServiceUnavailable
	case ErrCodeLLMTimeout, ErrCodeSQLTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
