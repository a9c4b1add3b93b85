// Package dbx holds the small database/sql helpers shared by the SQL-backed
// stores: the DBTX handle satisfied by *sql.DB and *sql.Tx, a transaction
// runner, and a reader for single JSON documents.
package dbx

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/newsinsight/internal/common"
)

// DBTX is the subset of database/sql the stores use.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn in a transaction, committing when fn returns nil and
// rolling back on error or panic. Panics are re-raised.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "DELETE FROM news_items")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, tx)
}

// QueryJSON runs a query producing one text/json column in one row and
// returns it verbatim. No row, or a NULL value, yields common.ErrorNotFound.
func QueryJSON(ctx context.Context, db DBTX, query string, args ...any) (json.RawMessage, error) {
	var doc sql.NullString
	err := db.QueryRowContext(ctx, query, args...).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, err
	}
	if !doc.Valid {
		return nil, common.ErrorNotFound
	}
	return json.RawMessage(doc.String), nil
}
