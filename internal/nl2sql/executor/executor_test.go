package executor

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/Violet0725/NLtoSQL/internal/common/logger"
)

func newMockedExecutor(t *testing.T) (*Executor, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	e := NewExecutor(&Config{DatabasePath: "ignored.db", Timeout: 5 * time.Second}, logger.NewTestLogger(t))
	e.openDB = func() (*sql.DB, error) { return db, nil }
	return e, mock
}

func TestExecute_MapsRowsToRecords(t *testing.T) {
	e, mock := newMockedExecutor(t)

	rows := sqlmock.NewRows([]string{"name", "price"}).
		AddRow("Gaming Laptop", 1499.99).
		AddRow([]byte("Hoodie"), 54.99)
	mock.ExpectQuery(`SELECT name, price FROM products`).WillReturnRows(rows)
	mock.ExpectClose()

	results, err := e.Execute(context.Background(), "SELECT name, price FROM products")
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "Gaming Laptop", results[0]["name"])
	assert.Equal(t, 1499.99, results[0]["price"])
	// []byte values are normalized to strings.
	assert.Equal(t, "Hoodie", results[1]["name"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_EmptyResultSet(t *testing.T) {
	e, mock := newMockedExecutor(t)

	mock.ExpectQuery(`SELECT \* FROM sales`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "region"}))
	mock.ExpectClose()

	results, err := e.Execute(context.Background(), "SELECT * FROM sales")
	assert.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_DatabaseErrorPropagates(t *testing.T) {
	e, mock := newMockedExecutor(t)

	mock.ExpectQuery(`SELECT nme FROM products`).
		WillReturnError(errors.New("no such column: nme"))
	mock.ExpectClose()

	results, err := e.Execute(context.Background(), "SELECT nme FROM products")
	assert.Nil(t, results)
	assert.ErrorIs(t, err, ErrSQLExecutionFailed)
	assert.Contains(t, err.Error(), "no such column: nme")

	// The connection is closed even when the statement fails.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_OpenFailure(t *testing.T) {
	e := NewExecutor(&Config{DatabasePath: "ignored.db"}, logger.NewNoOpLogger())
	e.openDB = func() (*sql.DB, error) { return nil, errors.New("disk unavailable") }

	results, err := e.Execute(context.Background(), "SELECT 1")
	assert.Nil(t, results)
	assert.ErrorIs(t, err, ErrSQLExecutionFailed)
}

func TestExecute_NoRetries(t *testing.T) {
	e, mock := newMockedExecutor(t)

	// Exactly one query expectation: a retry would trip sqlmock.
	mock.ExpectQuery(`SELECT 1`).WillReturnError(errors.New("database is locked"))
	mock.ExpectClose()

	_, err := e.Execute(context.Background(), "SELECT 1")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
