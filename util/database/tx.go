package database

import (
	"context"
	"database/sql"
)

// TxRunner executes fn inside a transaction boundary. Services depend on
// this instead of *sql.DB directly so tests can run fn without a database.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type sqlRunner struct{ db *sql.DB }

func NewTxRunner(db *sql.DB) TxRunner { return &sqlRunner{db: db} }

func (r *sqlRunner) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
