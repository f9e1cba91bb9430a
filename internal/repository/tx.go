package repository

import (
	"context"

	"github.com/blog-cms/internal/database"
	"github.com/jmoiron/sqlx"
)

type ctxKey string

const txKey ctxKey = "tx"

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx
type queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// txManager is the concrete implementation of TransactionManager
type txManager struct {
	db *database.DB
}

// NewTxManager creates a transaction manager bound to db
func NewTxManager(db *database.DB) TransactionManager {
	return &txManager{db: db}
}

// WithTransaction commits when fn returns nil and rolls back otherwise
func (m *txManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(context.WithValue(ctx, txKey, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func txFromContext(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txKey).(*sqlx.Tx)
	return tx
}

// executor returns the transaction stored in ctx, or the pool
func executor(ctx context.Context, db *database.DB) queryer {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return db.DB
}
