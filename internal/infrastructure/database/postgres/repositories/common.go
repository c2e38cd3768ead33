package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

// queryExecutor abstracts sql.DB and sql.Tx.
type queryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// wrapQueryErr maps sql.ErrNoRows to a not-found error and everything else to
// a database error.
func wrapQueryErr(err error, what string) error {
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NotFound(what + " not found")
	}
	return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query "+what)
}

//Personal.AI order the ending
