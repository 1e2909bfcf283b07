package testutil

import (
	"context"
	"database/sql"
	"sync"

	"github.com/alexanderramin/mirrorer/internal/db"
)

// FailOnNthExecUoW is a real SQLite unit of work whose FailOn-th write
// statement returns Err instead of running. Writes are numbered from 1;
// reads are never intercepted. Statements records every write attempted,
// including the failing one.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error

	mu         sync.Mutex
	Statements []string
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn db.TxFunc) error {
	uow := db.NewSQLiteUnitOfWork(u.DB)
	uow.Wrap = func(tx db.DBTX) db.DBTX {
		return &interceptingTx{DBTX: tx, uow: u}
	}
	return uow.WithinTx(ctx, fn)
}

// record notes query and reports whether it is the write that must fail.
func (u *FailOnNthExecUoW) record(query string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Statements = append(u.Statements, query)
	return int32(len(u.Statements)) == u.FailOn
}

type interceptingTx struct {
	db.DBTX
	uow *FailOnNthExecUoW
}

func (t *interceptingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if t.uow.record(query) {
		return nil, t.uow.Err
	}
	return t.DBTX.ExecContext(ctx, query, args...)
}
