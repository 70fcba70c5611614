package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnavailable(t *testing.T) {
	db := Unavailable()
	assert.False(t, db.Available())

	_, err := db.BeginTx(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)

	// Close on a handle without a pool is a no-op.
	db.Close()

	var nilDB *DB
	assert.False(t, nilDB.Available())
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@localhost:5432/perfhub?sslmode=disable",
		migrateURL("postgres://u:p@localhost:5432/perfhub?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/x", migrateURL("postgresql://u@db/x"))
	assert.Equal(t, "pgx5://already", migrateURL("pgx5://already"))
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestUnavailableQuerier(t *testing.T) {
	ctx := context.Background()
	q := Unavailable().Querier()

	rows, err := q.Query(ctx, "SELECT 1")
	require.NoError(t, err)
	assert.False(t, rows.Next())
	rows.Close()

	var n int
	err = q.QueryRow(ctx, "SELECT 1").Scan(&n)
	assert.True(t, IsUnavailable(err))

	_, err = q.Exec(ctx, "DELETE FROM departments")
	assert.ErrorIs(t, err, ErrUnavailable)
}
