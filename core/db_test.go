package core_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursework/core"
)

func openDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open(core.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "tx.db")+"?_txlock=immediate")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE counters (n INTEGER NOT NULL)`)
	require.NoError(t, err)
	return db
}

func count(t *testing.T, db *sqlx.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM counters`))
	return n
}

func TestWithinTx(t *testing.T) {
	ctx := context.Background()
	errBoom := errors.New("boom")

	tests := []struct {
		name         string
		maxAttempts  int
		failures     int   // attempts failing before success
		failWith     error // error of failing attempts
		wantErr      error
		wantAttempts int
		wantRows     int
	}{
		{name: "success", maxAttempts: 3, wantAttempts: 1, wantRows: 1},
		{name: "retried conflict", maxAttempts: 3, failures: 2, failWith: core.ErrTxConflict, wantAttempts: 3, wantRows: 1},
		{name: "too many conflicts", maxAttempts: 3, failures: 5, failWith: core.ErrTxConflict, wantErr: core.ErrTxConflict, wantAttempts: 3},
		{name: "wrapped conflict", maxAttempts: 2, failures: 1, failWith: errors.Wrap(core.ErrTxConflict, "updating"), wantAttempts: 2, wantRows: 1},
		{name: "other errors are not retried", maxAttempts: 3, failures: 1, failWith: errBoom, wantErr: errBoom, wantAttempts: 1},
		{name: "at least one attempt", maxAttempts: 0, wantAttempts: 1, wantRows: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := openDB(t)

			var attempts int
			err := core.WithinTx(ctx, db, tc.maxAttempts, func(tx core.DBTransactor) error {
				attempts++
				if _, err := tx.ExecContext(ctx, `INSERT INTO counters (n) VALUES (?)`, attempts); err != nil {
					return err
				}
				if attempts <= tc.failures {
					return tc.failWith
				}
				return nil
			})

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.wantAttempts, attempts)
			assert.Equal(t, tc.wantRows, count(t, db), "failed attempts must be rolled back")
		})
	}
}

func TestWithinTx_Panic(t *testing.T) {
	db := openDB(t)

	assert.Panics(t, func() {
		_ = core.WithinTx(context.Background(), db, 1, func(tx core.DBTransactor) error {
			_, _ = tx.ExecContext(context.Background(), `INSERT INTO counters (n) VALUES (1)`)
			panic("oops")
		})
	})
	assert.Zero(t, count(t, db))
}

func TestWithinTx_CanceledContext(t *testing.T) {
	db := openDB(t)
	ctx, cancel := context.WithCancel(context.Background())

	var attempts int
	err := core.WithinTx(ctx, db, 5, func(tx core.DBTransactor) error {
		attempts++
		cancel()
		return core.ErrTxConflict
	})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDBOrdering_String(t *testing.T) {
	assert.Equal(t, "enrolled_at ASC", core.DBOrdering{Field: "enrolled_at", Ascending: true}.String())
	assert.Equal(t, "progress DESC", core.DBOrdering{Field: "progress"}.String())
}
