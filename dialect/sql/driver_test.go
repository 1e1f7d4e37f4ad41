package sql

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/syssam/cruddy/dialect"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOpenDB tests the OpenDB function with different dialects.
func TestOpenDB(t *testing.T) {
	tests := []struct {
		name    string
		dialect string
	}{
		{"Postgres", dialect.Postgres},
		{"MySQL", dialect.MySQL},
		{"SQLite", dialect.SQLite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			drv := OpenDB(tt.dialect, db)
			assert.NotNil(t, drv)
			assert.Equal(t, tt.dialect, drv.Dialect())
			assert.Same(t, db, drv.DB())
		})
	}
}

// TestDriverQuery tests query operations.
func TestDriverQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.Postgres, db)

	t.Run("query_with_args", func(t *testing.T) {
		mock.ExpectQuery("SELECT name FROM users WHERE id = \\$1").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Alice"))

		rows := &Rows{}
		err := drv.Query(context.Background(), "SELECT name FROM users WHERE id = $1", []any{1}, rows)
		require.NoError(t, err)
		require.True(t, rows.Next())
		var name string
		require.NoError(t, rows.Scan(&name))
		assert.Equal(t, "Alice", name)
		require.NoError(t, rows.Close())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query_error", func(t *testing.T) {
		expectedErr := errors.New("database error")
		mock.ExpectQuery("SELECT").WillReturnError(expectedErr)

		rows := &Rows{}
		err := drv.Query(context.Background(), "SELECT", []any{}, rows)
		require.ErrorIs(t, err, expectedErr)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid_types", func(t *testing.T) {
		err := drv.Query(context.Background(), "SELECT 1", []any{}, new(int))
		assert.EqualError(t, err, "dialect/sql: invalid type *int. expect *sql.Rows")
		err = drv.Query(context.Background(), "SELECT 1", "oops", &Rows{})
		assert.EqualError(t, err, "dialect/sql: invalid type string. expect []any for args")
	})
}

// TestDriverExec tests execute operations.
func TestDriverExec(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.MySQL, db)

	t.Run("exec_with_result", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO `users`").
			WithArgs("Alice").
			WillReturnResult(sqlmock.NewResult(42, 1))

		var res sql.Result
		err := drv.Exec(context.Background(), "INSERT INTO `users` (`name`) VALUES (?)", []any{"Alice"}, &res)
		require.NoError(t, err)
		id, err := res.LastInsertId()
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exec_error", func(t *testing.T) {
		expectedErr := errors.New("constraint violation")
		mock.ExpectExec("DELETE").WillReturnError(expectedErr)

		err := drv.Exec(context.Background(), "DELETE FROM users", []any{}, nil)
		require.ErrorIs(t, err, expectedErr)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid_result_type", func(t *testing.T) {
		err := drv.Exec(context.Background(), "DELETE FROM users", []any{}, new(int))
		assert.EqualError(t, err, "dialect/sql: invalid type *int. expect *sql.Result")
	})
}

// TestDriverTransaction tests transaction operations.
func TestDriverTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.Postgres, db)

	t.Run("successful_commit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		tx, err := drv.Tx(context.Background())
		require.NoError(t, err)
		require.NoError(t, tx.Exec(context.Background(), "INSERT INTO users (name) VALUES ('test')", []any{}, nil))
		require.NoError(t, tx.Commit())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").WillReturnError(errors.New("error"))
		mock.ExpectRollback()

		tx, err := drv.Tx(context.Background())
		require.NoError(t, err)
		require.Error(t, tx.Exec(context.Background(), "INSERT INTO users (name) VALUES ('test')", []any{}, nil))
		require.NoError(t, tx.Rollback())
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWithTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.Postgres, db)
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		err := WithTx(ctx, drv, func(tx dialect.Tx) error {
			assert.Equal(t, dialect.Postgres, tx.(*Tx).Dialect())
			return tx.Exec(ctx, "UPDATE users SET name = $1", []any{"a"}, nil)
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		failed := errors.New("no rows")
		mock.ExpectBegin()
		mock.ExpectRollback()
		err := WithTx(ctx, drv, func(dialect.Tx) error { return failed })
		require.ErrorIs(t, err, failed)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback_failure_keeps_cause", func(t *testing.T) {
		failed := errors.New("no rows")
		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(errors.New("conn lost"))
		err := WithTx(ctx, drv, func(dialect.Tx) error { return failed })
		require.ErrorIs(t, err, failed)
		assert.Contains(t, err.Error(), "rollback: conn lost")
	})

	t.Run("rollback_on_panic", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectRollback()
		assert.PanicsWithValue(t, "boom", func() {
			_ = WithTx(ctx, drv, func(dialect.Tx) error { panic("boom") })
		})
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin_error", func(t *testing.T) {
		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))
		called := false
		err := WithTx(ctx, drv, func(dialect.Tx) error { called = true; return nil })
		require.Error(t, err)
		assert.False(t, called)
		assert.Contains(t, err.Error(), "dialect/sql: begin")
	})

	t.Run("commit_error", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))
		err := WithTx(ctx, drv, func(dialect.Tx) error { return nil })
		assert.ErrorContains(t, err, "dialect/sql: commit: serialization failure")
	})
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open("oracle", "dsn")
	assert.EqualError(t, err, `dialect/sql: unsupported dialect "oracle"`)
}
