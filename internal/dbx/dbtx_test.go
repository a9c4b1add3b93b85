package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dmitrijs2005/newsinsight/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS rumors (id INTEGER PRIMARY KEY, content TEXT);`)
	require.NoError(t, err)
	return db
}

func countRumors(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM rumors`).Scan(&n))
	return n
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO rumors(content) VALUES ('stocks crash tomorrow')`)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, countRumors(t, db))
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO rumors(content) VALUES ('fail')`)
		require.NoError(t, e)
		return errors.New("boom")
	})
	require.EqualError(t, err, "boom")
	require.Equal(t, 0, countRumors(t, db))
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 0, countRumors(t, db))
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO rumors(content) VALUES ('panic')`)
		require.NoError(t, e)
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return nil
	})
	require.Error(t, err)
}

func TestQueryJSON(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	doc, err := QueryJSON(ctx, db, `SELECT '[{"id":1}]'`)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(doc))

	_, err = QueryJSON(ctx, db, `SELECT NULL`)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = QueryJSON(ctx, db, `SELECT content FROM rumors WHERE id = ?`, 42)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = QueryJSON(ctx, db, `SELECT * FROM missing_table`)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}
