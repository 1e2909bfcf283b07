package db

import (
	"context"
	"database/sql"
)

// DBTX is what the catalog repository needs from a connection. Both the
// pooled *sql.DB and an open *sql.Tx satisfy it, so one repository type
// serves plain reads and transactional imports alike.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
