package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardError_Error(t *testing.T) {
	err := NewModelNotReadyError()
	assert.Equal(t, "StandardError[MODEL_NOT_READY]: Model not loaded yet", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      *StandardError
		expected int
	}{
		{
			name:     "model not ready maps to 503",
			err:      NewModelNotReadyError(),
			expected: http.StatusServiceUnavailable,
		},
		{
			name:     "no sql derived maps to 400",
			err:      NewNoSQLDerivedError("candidate too short"),
			expected: http.StatusBadRequest,
		},
		{
			name:     "sql execution failure maps to 400",
			err:      NewSQLExecutionError(errors.New("no such table: orders"), "SELECT * FROM orders"),
			expected: http.StatusBadRequest,
		},
		{
			name:     "schema read failure maps to 500",
			err:      NewSchemaReadError(errors.New("database locked")),
			expected: http.StatusInternalServerError,
		},
		{
			name:     "generation failure maps to 502",
			err:      NewGenerationError(errors.New("connection refused")),
			expected: http.StatusBadGateway,
		},
		{
			name:     "invalid request maps to 400",
			err:      NewInvalidRequestError("question is required"),
			expected: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.HTTPStatus())
		})
	}
}

func TestNewSQLExecutionError_CarriesOffendingSQL(t *testing.T) {
	sqlText := "SELECT nme FROM products"
	err := NewSQLExecutionError(errors.New("no such column: nme"), sqlText)

	assert.Equal(t, ErrCodeSQLExecutionFailed, err.Code)
	assert.Contains(t, err.Message, "no such column: nme")
	assert.Contains(t, err.Message, sqlText)
	assert.False(t, err.Retryable)
}

func TestNewGenerationError_TimeoutCode(t *testing.T) {
	err := NewGenerationError(fmt.Errorf("%w: deadline exceeded", ErrGenerationTimeout))
	assert.Equal(t, ErrCodeGenerationTimeout, err.Code)

	err = NewGenerationError(errors.New("status 500"))
	assert.Equal(t, ErrCodeGenerationFailed, err.Code)
}
