package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/perfhub/perfhub-backend-go/internal/domain/performance"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/database"
)

type cycleRepositoryImpl struct {
	db *database.DB
}

func NewCycleRepository(db *database.DB) performance.CycleRepository {
	return &cycleRepositoryImpl{db: db}
}

const cycleColumns = `id, name, start_date, end_date, is_active, created_at, updated_at`

func scanCycle(row pgx.Row) (performance.Cycle, error) {
	var c performance.Cycle
	err := row.Scan(&c.ID, &c.Name, &c.StartDate, &c.EndDate, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func cycleError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return performance.ErrCycleNotFound
	}
	if database.IsUnavailable(err) {
		return err
	}
	if isUniqueViolation(err) {
		return performance.ErrActiveCycleConflict
	}
	return fmt.Errorf("failed to %s performance cycle: %w", op, err)
}

// Create implements performance.CycleRepository.
func (r *cycleRepositoryImpl) Create(ctx context.Context, c performance.Cycle) (performance.Cycle, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO performance_cycles (name, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + cycleColumns

	created, err := scanCycle(q.QueryRow(ctx, query, c.Name, c.StartDate, c.EndDate, c.IsActive))
	if err != nil {
		return performance.Cycle{}, cycleError("create", err)
	}
	return created, nil
}

// GetByID implements performance.CycleRepository.
func (r *cycleRepositoryImpl) GetByID(ctx context.Context, id int64) (performance.Cycle, error) {
	q := GetQuerier(ctx, r.db)

	c, err := scanCycle(q.QueryRow(ctx, `SELECT `+cycleColumns+` FROM performance_cycles WHERE id = $1`, id))
	if err != nil {
		return performance.Cycle{}, cycleError("get", err)
	}
	return c, nil
}

// List implements performance.CycleRepository.
func (r *cycleRepositoryImpl) List(ctx context.Context) ([]performance.Cycle, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+cycleColumns+` FROM performance_cycles ORDER BY start_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list performance cycles: %w", err)
	}
	defer rows.Close()

	cycles := []performance.Cycle{}
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan performance cycle: %w", err)
		}
		cycles = append(cycles, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return cycles, nil
}

// GetActive implements performance.CycleRepository.
func (r *cycleRepositoryImpl) GetActive(ctx context.Context) (performance.Cycle, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + cycleColumns + ` FROM performance_cycles
		WHERE is_active = TRUE ORDER BY start_date DESC, id DESC LIMIT 1`
	c, err := scanCycle(q.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return performance.Cycle{}, performance.ErrNoActiveCycle
		}
		return performance.Cycle{}, cycleError("get active", err)
	}
	return c, nil
}

// DeactivateAll implements performance.CycleRepository. It must run inside a
// transaction: the table lock serializes concurrent activations until commit.
func (r *cycleRepositoryImpl) DeactivateAll(ctx context.Context, keepID int64) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `LOCK TABLE performance_cycles IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return cycleError("lock", err)
	}

	_, err := q.Exec(ctx, `UPDATE performance_cycles SET is_active = FALSE, updated_at = NOW()
		WHERE is_active = TRUE AND id <> $1`, keepID)
	if err != nil {
		return cycleError("deactivate", err)
	}
	return nil
}

// SetActive implements performance.CycleRepository.
func (r *cycleRepositoryImpl) SetActive(ctx context.Context, id int64, active bool) (performance.Cycle, error) {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE performance_cycles SET is_active = $1, updated_at = NOW()
		WHERE id = $2 RETURNING ` + cycleColumns
	c, err := scanCycle(q.QueryRow(ctx, query, active, id))
	if err != nil {
		return performance.Cycle{}, cycleError("activate", err)
	}
	return c, nil
}
