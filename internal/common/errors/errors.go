// Package errors provides standardized error handling for the analysis pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeSQLGenerationFailed      ErrorCode = "SQL_GENERATION_FAILED"
	ErrCodeSQLValidationFailed      ErrorCode = "SQL_VALIDATION_FAILED"
	ErrCodeSQLExecutionFailed       ErrorCode = "SQL_EXECUTION_FAILED"
	ErrCodeSQLTimeout               ErrorCode = "SQL_TIMEOUT"

	ErrCodeLLMTimeout         ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMCallFailed      ErrorCode = "LLM_CALL_FAILED"
	ErrCodeLLMResponseInvalid ErrorCode = "LLM_RESPONSE_INVALID"

	ErrCodeChartConfigInvalid ErrorCode = "CHART_CONFIG_INVALID"
	ErrCodeChartRenderFailed  ErrorCode = "CHART_RENDER_FAILED"
	ErrCodeChartNotFound      ErrorCode = "CHART_NOT_FOUND"

	ErrCodeTableNotFound      ErrorCode = "TABLE_NOT_FOUND"
	ErrCodeHistoryStoreFailed ErrorCode = "HISTORY_STORE_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// CodeOf extracts the error code from err, walking the wrap chain.
// Returns the empty code for errors outside the taxonomy.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsRetryable reports whether the error is worth retrying.
func IsRetryable(err error) bool {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidRequestError creates a non-retryable request validation error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSQLGenerationFailedError creates a retryable SQL generation error.
func NewSQLGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSQLGenerationFailed,
		Message:   "Failed to generate SQL from the question",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSQLValidationFailedError creates a non-retryable SQL safety error.
func NewSQLValidationFailedError(sql, reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSQLValidationFailed,
		Message:   "Generated SQL failed safety validation",
		Details:   reason,
		Retryable: false,
		Metadata:  map[string]interface{}{"sql": sql},
		Timestamp: time.Now().UTC(),
	}
}

// NewSQLExecutionFailedError creates a non-retryable execution error; the SQL
// itself is wrong, retrying the same statement cannot help.
func NewSQLExecutionFailedError(sql string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSQLExecutionFailed,
		Message:   "SQL execution error",
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"sql": sql},
		Timestamp: time.Now().UTC(),
	}
}

// NewSQLTimeoutError creates a retryable query timeout error.
func NewSQLTimeoutError(sql string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSQLTimeout,
		Message:   "SQL query timed out",
		Retryable: true,
		Metadata:  map[string]interface{}{"sql": sql},
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTimeoutError creates a retryable LLM timeout error.
func NewLLMTimeoutError(stage string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "LLM call timed out",
		Details:   fmt.Sprintf("stage: %s", stage),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMCallFailedError creates a retryable LLM provider error.
func NewLLMCallFailedError(stage string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMCallFailed,
		Message:   "LLM provider call failed",
		Details:   fmt.Sprintf("stage: %s, error: %s", stage, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMResponseInvalidError creates a non-retryable parse error for an LLM response.
func NewLLMResponseInvalidError(stage, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMResponseInvalid,
		Message:   "LLM response could not be parsed",
		Details:   fmt.Sprintf("stage: %s, %s", stage, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewChartConfigInvalidError creates a non-retryable chart configuration error.
func NewChartConfigInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeChartConfigInvalid,
		Message:   "Chart configuration invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewChartRenderFailedError creates a non-retryable chart rendering error.
func NewChartRenderFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeChartRenderFailed,
		Message:   "Chart rendering failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewChartNotFoundError creates a non-retryable missing chart error.
func NewChartNotFoundError(filename string) *StandardError {
	return &StandardError{
		Code:      ErrCodeChartNotFound,
		Message:   "Chart not found",
		Details:   fmt.Sprintf("filename: %s", filename),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTableNotFoundError creates a non-retryable schema lookup error.
func NewTableNotFoundError(table string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTableNotFound,
		Message:   "Table does not exist",
		Details:   fmt.Sprintf("table: %s", table),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewHistoryStoreFailedError creates a retryable persistence error.
func NewHistoryStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHistoryStoreFailed,
		Message:   "Failed to persist conversation turn",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
