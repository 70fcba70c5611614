package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/perfhub/perfhub-backend-go/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup wraps the integration database.
type TestDatabaseSetup struct {
	DB *database.DB
}

var (
	setupOnce sync.Once
	shared    *TestDatabaseSetup
	setupErr  error
)

// NewTestDatabase connects to TEST_DATABASE_URL and applies the migrations
// once per test binary. Tests are skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	setupOnce.Do(func() {
		if err := database.RunMigrations(dsn); err != nil {
			setupErr = err
			return
		}
		db, err := database.NewPostgreSQLDB(context.Background(), dsn, database.PoolConfig{MaxConns: 4, MinConns: 1})
		if err != nil {
			setupErr = fmt.Errorf("failed to connect to test database: %w", err)
			return
		}
		shared = &TestDatabaseSetup{DB: db}
	})
	require.NoError(t, setupErr)

	require.NoError(t, shared.TruncateAllTables(context.Background()))
	return shared
}

// TruncateAllTables removes every row and resets identities.
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"notifications",
		"performance_cycles",
		"performance_evaluations",
		"kpi_actuals",
		"kpi_definitions",
		"task_progress",
		"tasks",
		"work_items",
		"work_logs",
		"users",
		"job_duties",
		"positions",
		"departments",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}
