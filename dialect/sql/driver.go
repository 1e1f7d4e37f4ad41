package sql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/syssam/cruddy/dialect"
)

type (
	// Result is an alias to sql.Result.
	Result = sql.Result
	// TxOptions holds the options of BeginTx.
	TxOptions = sql.TxOptions
)

// ColumnScanner is the part of *sql.Rows that record scanning needs.
type ColumnScanner interface {
	Close() error
	Columns() ([]string, error)
	Err() error
	Next() bool
	Scan(dest ...any) error
}

// Rows is the destination of Query. It wraps *sql.Rows so that callers
// can pass it by pointer without copying locks.
type Rows struct{ ColumnScanner }

// ExecQuerier is implemented by *sql.DB, *sql.Conn and *sql.Tx.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Conn runs the statements rendered for one dialect on an ExecQuerier.
type Conn struct {
	ExecQuerier
	dialect string
}

// Dialect returns the dialect statements are rendered for.
func (c Conn) Dialect() string { return c.dialect }

// Exec runs a statement. v is nil or a *Result receiving the outcome.
func (c Conn) Exec(ctx context.Context, query string, args, v any) error {
	argv, err := argList(args)
	if err != nil {
		return err
	}
	if v != nil {
		if _, ok := v.(*Result); !ok {
			return fmt.Errorf("dialect/sql: invalid type %T. expect *sql.Result", v)
		}
	}
	res, err := c.ExecContext(ctx, query, argv...)
	if err != nil {
		return fmt.Errorf("dialect/sql: exec: %w", err)
	}
	if dst, ok := v.(*Result); ok {
		*dst = res
	}
	return nil
}

// Query runs a statement returning rows into v, which must be a *Rows.
// The caller closes the rows.
func (c Conn) Query(ctx context.Context, query string, args, v any) error {
	dst, ok := v.(*Rows)
	if !ok {
		return fmt.Errorf("dialect/sql: invalid type %T. expect *sql.Rows", v)
	}
	argv, err := argList(args)
	if err != nil {
		return err
	}
	rows, err := c.QueryContext(ctx, query, argv...)
	if err != nil {
		return fmt.Errorf("dialect/sql: query: %w", err)
	}
	dst.ColumnScanner = rows
	return nil
}

func argList(args any) ([]any, error) {
	argv, ok := args.([]any)
	if !ok {
		return nil, fmt.Errorf("dialect/sql: invalid type %T. expect []any for args", args)
	}
	return argv, nil
}

// Driver is the dialect.Driver of a *sql.DB.
type Driver struct {
	Conn
	db *sql.DB
}

// Open opens a database with the driver registered under the dialect
// name: lib/pq ("postgres"), go-sql-driver/mysql ("mysql") and
// modernc.org/sqlite ("sqlite").
func Open(name, source string) (*Driver, error) {
	if !dialect.Supported(name) {
		return nil, fmt.Errorf("dialect/sql: unsupported dialect %q", name)
	}
	db, err := sql.Open(name, source)
	if err != nil {
		return nil, err
	}
	return OpenDB(name, db), nil
}

// OpenDB returns a Driver rendering statements for name on db.
func OpenDB(name string, db *sql.DB) *Driver {
	return &Driver{Conn: Conn{ExecQuerier: db, dialect: name}, db: db}
}

// DB returns the underlying database.
func (d *Driver) DB() *sql.DB { return d.db }

// Tx begins a transaction with the default options.
func (d *Driver) Tx(ctx context.Context) (dialect.Tx, error) {
	return d.BeginTx(ctx, nil)
}

// BeginTx begins a transaction.
func (d *Driver) BeginTx(ctx context.Context, opts *TxOptions) (dialect.Tx, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: begin: %w", err)
	}
	return &Tx{Conn: Conn{ExecQuerier: tx, dialect: d.dialect}, tx: tx}, nil
}

// Close closes the database.
func (d *Driver) Close() error { return d.db.Close() }

// Tx is a transaction rendering statements for the driver's dialect.
type Tx struct {
	Conn
	tx *sql.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit() error { return t.tx.Commit() }

// Rollback aborts the transaction.
func (t *Tx) Rollback() error { return t.tx.Rollback() }

// WithTx runs fn in a transaction of drv. The transaction is committed
// when fn returns nil and rolled back otherwise, including when fn panics.
//
//	err := sql.WithTx(ctx, drv, func(tx dialect.Tx) error {
//	    return tx.Exec(ctx, query, args, nil)
//	})
func WithTx(ctx context.Context, drv dialect.Driver, fn func(tx dialect.Tx) error) error {
	tx, err := drv.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w: rollback: %v", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("dialect/sql: commit: %w", err)
	}
	return nil
}

var (
	_ dialect.Driver = (*Driver)(nil)
	_ dialect.Tx     = (*Tx)(nil)
)
