// Package errors provides standardized error handling for the NL-to-SQL pipeline.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeModelNotReady      ErrorCode = "MODEL_NOT_READY"
	ErrCodeNoSQLDerived       ErrorCode = "NO_SQL_DERIVED"
	ErrCodeSQLExecutionFailed ErrorCode = "SQL_EXECUTION_FAILED"
	ErrCodeSchemaReadFailed   ErrorCode = "SCHEMA_READ_FAILED"
	ErrCodeGenerationFailed   ErrorCode = "GENERATION_FAILED"
	ErrCodeGenerationTimeout  ErrorCode = "GENERATION_TIMEOUT"
	ErrCodeInvalidRequest     ErrorCode = "INVALID_REQUEST"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// HTTPStatus maps an error code to the status returned to the caller.
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeModelNotReady:
		return http.StatusServiceUnavailable
	case ErrCodeGenerationFailed, ErrCodeGenerationTimeout:
		return http.StatusBadGateway
	case ErrCodeSchemaReadFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// NewModelNotReadyError signals that the language model has not been loaded yet.
func NewModelNotReadyError() *StandardError {
	return &StandardError{
		Code:      ErrCodeModelNotReady,
		Message:   "Model not loaded yet",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoSQLDerivedError signals that no usable SQL candidate was produced.
func NewNoSQLDerivedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoSQLDerived,
		Message:   "Could not generate valid SQL for this question.",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSQLExecutionError wraps a database rejection. The message carries the
// offending SQL text so callers can see exactly what was executed.
func NewSQLExecutionError(cause error, sqlText string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSQLExecutionFailed,
		Message:   fmt.Sprintf("SQL execution error: %v. Generated SQL: %s", cause, sqlText),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSchemaReadError signals that table definitions could not be read.
func NewSchemaReadError(cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaReadFailed,
		Message:   "Failed to read database schema",
		Details:   cause.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationError signals that the model completion call failed.
func NewGenerationError(cause error) *StandardError {
	code := ErrCodeGenerationFailed
	if errors.Is(cause, ErrGenerationTimeout) {
		code = ErrCodeGenerationTimeout
	}
	return &StandardError{
		Code:      code,
		Message:   "Model generation failed",
		Details:   cause.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError signals a malformed request body.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Invalid request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Sentinel errors shared between packages; names match their wire codes.
var (
	ErrGenerationTimeout = errors.New("GENERATION_TIMEOUT")
	ErrGenerationFailed  = errors.New("GENERATION_FAILED")
)
