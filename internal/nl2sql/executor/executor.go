// internal/nl2sql/executor/executor.go
package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Violet0725/NLtoSQL/internal/common/logger"
	"github.com/Violet0725/NLtoSQL/internal/common/metrics"
)

var (
	ErrSQLExecutionFailed = errors.New("SQL_EXECUTION_FAILED")
)

// Config holds executor settings.
type Config struct {
	DatabasePath string
	Timeout      time.Duration
}

// Executor runs one SQL statement at a time against the SQLite database.
// A fresh connection is opened per call and closed unconditionally, even on
// error. There are no retries and no statement allow-listing: whatever SQL
// arrives is handed to the database, and rejections propagate to the caller
// carrying the offending text.
type Executor struct {
	config *Config
	logger logger.Logger

	// openDB is swappable so tests can inject a mock connection.
	openDB func() (*sql.DB, error)
}

func NewExecutor(config *Config, log logger.Logger) *Executor {
	return &Executor{
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "executor"}),
		openDB: func() (*sql.DB, error) {
			return sql.Open("sqlite3", config.DatabasePath)
		},
	}
}

// Execute runs sqlText as a single statement and returns all rows as ordered
// column-name to value records.
func (e *Executor) Execute(ctx context.Context, sqlText string) ([]map[string]interface{}, error) {
	start := time.Now()

	db, err := e.openDB()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSQLExecutionFailed, err)
	}
	defer db.Close()

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	rows, err := db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSQLExecutionFailed, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSQLExecutionFailed, err)
	}

	results := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSQLExecutionFailed, err)
		}

		record := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			record[col] = normalizeValue(values[i])
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSQLExecutionFailed, err)
	}

	elapsed := time.Since(start)
	metrics.SQLExecutionDuration.Observe(elapsed.Seconds())
	e.logger.Debug("executed statement", map[string]interface{}{
		"rowCount":   len(results),
		"durationMs": elapsed.Milliseconds(),
	})

	return results, nil
}

// normalizeValue converts driver-specific scan results into JSON-friendly
// scalars. SQLite hands TEXT columns back as []byte through database/sql.
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		return string(val)
	default:
		return v
	}
}
