package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx shared by transactions and pools.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UnitOfWork is one request's transaction. It is passed explicitly to every
// repository call made on behalf of that request.
type UnitOfWork interface {
	Querier

	// Savepoint runs fn in a nested transaction. Work done by fn is rolled
	// back to the savepoint if fn returns an error; the outer transaction
	// stays usable either way.
	Savepoint(ctx context.Context, fn func(uow UnitOfWork) error) error
}

// TxRunner opens units of work.
type TxRunner interface {
	InTx(ctx context.Context, fn func(uow UnitOfWork) error) error
}

type txUnitOfWork struct {
	tx pgx.Tx
}

func (u *txUnitOfWork) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return u.tx.Exec(ctx, sql, args...)
}

func (u *txUnitOfWork) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return u.tx.Query(ctx, sql, args...)
}

func (u *txUnitOfWork) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return u.tx.QueryRow(ctx, sql, args...)
}

func (u *txUnitOfWork) Savepoint(ctx context.Context, fn func(uow UnitOfWork) error) error {
	// Begin on a pgx.Tx issues SAVEPOINT.
	sp, err := u.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}

	if err := fn(&txUnitOfWork{tx: sp}); err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("failed to roll back to savepoint: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}

var _ UnitOfWork = (*txUnitOfWork)(nil)
