package composables

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/siadin-id/siadin/pkg/constants"
	"github.com/siadin-id/siadin/pkg/repo"
)

var (
	ErrNoTx   = errors.New("no transaction found in context")
	ErrNoPool = errors.New("no database pool found in context")
)

func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, constants.TxKey, tx)
}

func UseTx(ctx context.Context) (repo.Tx, error) {
	tx := ctx.Value(constants.TxKey)
	if tx == nil {
		return UsePool(ctx)
	}
	return tx.(repo.Tx), nil
}

func WithPool(ctx context.Context, pool *pgxpool.Pool) context.Context {
	return context.WithValue(ctx, constants.PoolKey, pool)
}

func UsePool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, ok := ctx.Value(constants.PoolKey).(*pgxpool.Pool)
	if !ok {
		return nil, ErrNoPool
	}
	return pool, nil
}

func BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx := ctx.Value(constants.TxKey)
	if tx != nil {
		return tx.(pgx.Tx), nil
	}
	starter, err := useTxStarter(ctx)
	if err != nil {
		return nil, err
	}
	return starter.Begin(ctx)
}

// TxStarter begins transactions; *pgxpool.Pool implements it.
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

func useTxStarter(ctx context.Context) (TxStarter, error) {
	v := ctx.Value(constants.PoolKey)
	if v == nil {
		return nil, ErrNoPool
	}
	starter, ok := v.(TxStarter)
	if !ok {
		return nil, ErrNoPool
	}
	return starter, nil
}

// InTx runs the given function in a transaction. A transaction already on the
// context is joined rather than nested; commit and rollback stay with its
// opener.
func InTx(ctx context.Context, fn func(context.Context) error) error {
	if tx := ctx.Value(constants.TxKey); tx != nil {
		return fn(ctx)
	}

	starter, err := useTxStarter(ctx)
	if err != nil {
		return err
	}

	tx, err := starter.Begin(ctx)
	if err != nil {
		return err
	}

	txCtx := WithTx(ctx, tx)
	if err := fn(txCtx); err != nil {
		if rErr := tx.Rollback(ctx); rErr != nil {
			return errors.Join(err, rErr)
		}
		return err
	}
	return tx.Commit(ctx)
}

// InTxResult is InTx for callbacks that return a value alongside the error.
func InTxResult[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := InTx(ctx, func(txCtx context.Context) error {
		var innerErr error
		out, innerErr = fn(txCtx)
		return innerErr
	})
	return out, err
}

// InNestedTx runs fn in a nested transaction under the one on the context.
// pgx maps nested Begin to a savepoint, so a failed statement rolls back to
// the savepoint and the outer transaction stays usable; without it any error
// aborts the whole transaction and later statements fail with SQLSTATE 25P02.
func InNestedTx(ctx context.Context, fn func(context.Context) error) error {
	outer := ctx.Value(constants.TxKey)
	if outer == nil {
		return InTx(ctx, fn)
	}

	nested, err := outer.(pgx.Tx).Begin(ctx)
	if err != nil {
		return err
	}

	txCtx := WithTx(ctx, nested)
	if err := fn(txCtx); err != nil {
		if rErr := nested.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			return errors.Join(err, rErr)
		}
		return err
	}
	return nested.Commit(ctx)
}

// InNestedTxResult is InNestedTx for callbacks that return a value.
func InNestedTxResult[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := InNestedTx(ctx, func(txCtx context.Context) error {
		var innerErr error
		out, innerErr = fn(txCtx)
		return innerErr
	})
	return out, err
}
