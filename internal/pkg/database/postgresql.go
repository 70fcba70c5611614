package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUnavailable is returned by write paths when the process has no database connection.
var ErrUnavailable = errors.New("database not available")

type DB struct {
	*pgxpool.Pool
}

// PoolConfig holds connection pool sizing.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

func NewPostgreSQLDB(ctx context.Context, dsn string, poolCfg PoolConfig) (*DB, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	// Connection pool settings
	config.MaxConns = 25
	config.MinConns = 5
	if poolCfg.MaxConns > 0 {
		config.MaxConns = poolCfg.MaxConns
	}
	if poolCfg.MinConns > 0 {
		config.MinConns = poolCfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &DB{Pool: pool}, nil
}

// Unavailable returns a handle with no pool behind it. Repositories built on it
// answer reads with empty results and reject writes with ErrUnavailable.
func Unavailable() *DB {
	return &DB{}
}

// Available reports whether a live pool is attached.
func (db *DB) Available() bool {
	return db != nil && db.Pool != nil
}

func (db *DB) BeginTx(ctx context.Context) (pgx.Tx, error) {
	if !db.Available() {
		return nil, ErrUnavailable
	}
	return db.Pool.Begin(ctx)
}

func (db *DB) Close() {
	if db.Available() {
		db.Pool.Close()
	}
}

type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}
