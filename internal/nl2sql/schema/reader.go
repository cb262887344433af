// internal/nl2sql/schema/reader.go

// Package schema reads table definitions from the SQLite catalog. The
// concatenated CREATE TABLE text is used as prompt context for the model
// fallback and served verbatim on the /schema endpoint.
package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrSchemaReadFailed = errors.New("SCHEMA_READ_FAILED")
)

const schemaQuery = "SELECT sql FROM sqlite_master WHERE type='table' AND sql IS NOT NULL"

// Reader returns the database's table definitions as a single string. It is
// a pure read with no state; each call opens and closes its own connection.
type Reader struct {
	databasePath string

	openDB func() (*sql.DB, error)
}

func NewReader(databasePath string) *Reader {
	return &Reader{
		databasePath: databasePath,
		openDB: func() (*sql.DB, error) {
			return sql.Open("sqlite3", databasePath)
		},
	}
}

// Read returns all CREATE TABLE statements joined by blank lines.
func (r *Reader) Read(ctx context.Context) (string, error) {
	db, err := r.openDB()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSchemaReadFailed, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, schemaQuery)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSchemaReadFailed, err)
	}
	defer rows.Close()

	var statements []string
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", fmt.Errorf("%w: %v", ErrSchemaReadFailed, err)
		}
		statements = append(statements, stmt)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSchemaReadFailed, err)
	}

	return strings.Join(statements, "\n\n"), nil
}
