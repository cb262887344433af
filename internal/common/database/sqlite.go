// internal/common/database/sqlite.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Violet0725/NLtoSQL/internal/common/config"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteClient wraps the SQL database connection used for startup checks and
// seeding. Query execution for /ask deliberately does not go through this
// client: the executor opens and closes its own connection per statement.
type SQLiteClient struct {
	DB   *sql.DB
	Path string
}

// NewSQLite creates a new SQLite client for the configured database file.
func NewSQLite(cfg config.SQLiteConfig) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &SQLiteClient{DB: db, Path: cfg.Path}, nil
}

// Ping tests the database connection.
func (c *SQLiteClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection.
func (c *SQLiteClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// Exec executes a statement that doesn't return rows.
func (c *SQLiteClient) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return c.DB.ExecContext(ctx, query, args...)
}

// QueryRow executes a query that returns at most one row.
func (c *SQLiteClient) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return c.DB.QueryRowContext(ctx, query, args...)
}

// OpenConn opens a fresh connection to the same database file. Callers own
// the returned handle and must close it.
func (c *SQLiteClient) OpenConn() (*sql.DB, error) {
	return sql.Open("sqlite3", c.Path)
}
