package testutil

import (
	"context"
	"database/sql"
	"strings"

	"github.com/alexanderramin/taskdesk/internal/db"
)

// FailingUoW runs the callback in a real transaction but makes the first
// write whose SQL contains FailOn return Err, so tests can check that the
// earlier writes of the same transaction roll back.
type FailingUoW struct {
	DB     *sql.DB
	FailOn string
	Err    error
}

func (u *FailingUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return db.NewSQLiteUnitOfWork(u.DB).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &failingTx{DBTX: tx, failOn: u.FailOn, err: u.Err})
	})
}

type failingTx struct {
	db.DBTX
	failOn string
	err    error
}

func (f *failingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if strings.Contains(query, f.failOn) {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
