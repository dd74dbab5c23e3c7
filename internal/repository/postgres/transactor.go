package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Transactor runs a function inside a single transaction. Repos in this
// package pick the transaction up from the context, so multi-table
// writes (post + tags, register + outbox row) commit atomically.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

var _ Transactor = (*transactorImpl)(nil)

type transactorImpl struct {
	db  *DB
	log *zap.Logger
}

func NewTransactor(db *DB, log *zap.Logger) *transactorImpl {
	return &transactorImpl{db: db, log: log}
}

func (t *transactorImpl) WithTx(ctx context.Context, fn func(ctx context.Context) error) (txErr error) {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		// Already inside a transaction; let the outer WithTx finish it.
		return fn(ctx)
	}

	txCtx, tx, err := beginTx(ctx, t.db)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if txErr != nil {
			if err := tx.Rollback(txCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
				t.log.Error("rollback", zap.Error(err))
			}
			return
		}
		if err := tx.Commit(txCtx); err != nil {
			t.log.Error("commit", zap.Error(err))
			txErr = err
		}
	}()

	return fn(txCtx)
}

type txKey struct{}

// beginTx reuses an ambient transaction if the context already carries
// one; nested WithTx calls share the outer transaction.
func beginTx(ctx context.Context, db *DB) (context.Context, pgx.Tx, error) {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return ctx, tx, nil
	}
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	return context.WithValue(ctx, txKey{}, tx), tx, nil
}

type execQueryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (db *DB) execQueryer(ctx context.Context) execQueryer {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db.Pool
}
