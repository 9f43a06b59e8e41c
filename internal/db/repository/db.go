package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/quizdeck/quizdeck/internal/errs"
)

// DB is the subset of pgxpool.Pool the repositories need. pgxpool.Pool and
// pgx.Tx both satisfy it.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// TxBeginner starts transactions; pgxpool.Pool satisfies it.
type TxBeginner interface {
	DB
	Begin(ctx context.Context) (pgx.Tx, error)
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translateErr maps Postgres failures to the service error taxonomy so
// callers never have to inspect driver errors.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return errs.ErrConflict
		case pgForeignKeyViolation:
			return errs.Validationf("related record does not exist")
		}
	}
	return err
}
