package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxFunc is the function type executed inside a transaction.
type TxFunc func(pgx.Tx) error

// TxRunner is the transaction boundary the lending engine depends on.
// Production code uses PoolRunner; tests substitute a pass-through runner
// so the engine can be exercised without a live pool.
type TxRunner interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// PoolRunner runs transactions against a pgx connection pool.
type PoolRunner struct {
	Pool *pgxpool.Pool
}

func (r *PoolRunner) WithinTx(ctx context.Context, fn TxFunc) error {
	return WithTransaction(ctx, r.Pool, fn)
}

// WithTransaction wraps fn in a transaction: rollback on error or panic,
// commit otherwise.
func WithTransaction(ctx context.Context, pool *pgxpool.Pool, fn TxFunc) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Rollback is a no-op once the transaction has been committed.
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	err = fn(tx)
	if err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// WithinTxResult runs a function returning a value inside a runner-managed
// transaction.
func WithinTxResult[T any](ctx context.Context, runner TxRunner, fn func(pgx.Tx) (T, error)) (T, error) {
	var result T
	var fnErr error

	err := runner.WithinTx(ctx, func(tx pgx.Tx) error {
		result, fnErr = fn(tx)
		return fnErr
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}
