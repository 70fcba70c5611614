package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier returns the pool, or a stand-in that yields no rows for queries and
// ErrUnavailable for everything else.
func (db *DB) Querier() Querier {
	if db.Available() {
		return db.Pool
	}
	return unavailableQuerier{}
}

// IsUnavailable reports whether err comes from a missing database.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

type unavailableQuerier struct{}

func (unavailableQuerier) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, ErrUnavailable
}

func (unavailableQuerier) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return emptyRows{}, nil
}

func (unavailableQuerier) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return errRow{err: ErrUnavailable}
}

type errRow struct {
	err error
}

func (r errRow) Scan(...interface{}) error {
	return r.err
}

type emptyRows struct{}

func (emptyRows) Close()                                       {}
func (emptyRows) Err() error                                   { return nil }
func (emptyRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (emptyRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (emptyRows) Next() bool                                   { return false }
func (emptyRows) Scan(...interface{}) error                    { return ErrUnavailable }
func (emptyRows) Values() ([]interface{}, error)               { return nil, ErrUnavailable }
func (emptyRows) RawValues() [][]byte                          { return nil }
func (emptyRows) Conn() *pgx.Conn                              { return nil }

// TxRunner runs fn inside one transaction. Repositories called with the ctx
// handed to fn take part in that transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
