package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/perfhub/perfhub-backend-go/internal/domain/kpi"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type kpiActualRepositoryImpl struct {
	db *database.DB
}

func NewKpiActualRepository(db *database.DB) kpi.ActualRepository {
	return &kpiActualRepositoryImpl{db: db}
}

const kpiActualColumns = `ka.id, ka.kpi_definition_id, ka.user_id, ka.period, ka.actual_value,
	ka.employee_note, ka.status, ka.reviewed_by, ka.reviewed_at, ka.supervisor_note,
	ka.achievement_rate, ka.score, ka.created_at, ka.updated_at`

func scanKpiActual(row pgx.Row) (kpi.Actual, error) {
	var a kpi.Actual
	var status string
	var rate, score decimal.NullDecimal
	err := row.Scan(&a.ID, &a.KpiDefinitionID, &a.UserID, &a.Period, &a.ActualValue,
		&a.EmployeeNote, &status, &a.ReviewedBy, &a.ReviewedAt, &a.SupervisorNote,
		&rate, &score, &a.CreatedAt, &a.UpdatedAt)
	a.Status = kpi.Status(status)
	a.AchievementRate = nullDecimalPtr(rate)
	a.Score = nullDecimalPtr(score)
	return a, err
}

func kpiActualError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return kpi.ErrActualNotFound
	}
	if database.IsUnavailable(err) {
		return err
	}
	return fmt.Errorf("failed to %s kpi actual: %w", op, err)
}

// Upsert replaces the value for (definition, user, period). A resubmission
// clears the previous review so the actual goes back to pending.
func (r *kpiActualRepositoryImpl) Upsert(ctx context.Context, a kpi.Actual) (kpi.Actual, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO kpi_actuals AS ka (kpi_definition_id, user_id, period, actual_value, employee_note, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		ON CONFLICT (kpi_definition_id, user_id, period) DO UPDATE
		SET actual_value = EXCLUDED.actual_value,
			employee_note = EXCLUDED.employee_note,
			status = 'pending',
			reviewed_by = NULL,
			reviewed_at = NULL,
			supervisor_note = NULL,
			achievement_rate = NULL,
			score = NULL,
			updated_at = NOW()
		RETURNING ` + kpiActualColumns

	saved, err := scanKpiActual(q.QueryRow(ctx, query,
		a.KpiDefinitionID, a.UserID, a.Period, a.ActualValue, a.EmployeeNote))
	if err != nil {
		return kpi.Actual{}, kpiActualError("save", err)
	}
	return saved, nil
}

// GetByID implements kpi.ActualRepository.
func (r *kpiActualRepositoryImpl) GetByID(ctx context.Context, id int64) (kpi.Actual, error) {
	q := GetQuerier(ctx, r.db)

	a, err := scanKpiActual(q.QueryRow(ctx, `SELECT `+kpiActualColumns+` FROM kpi_actuals ka WHERE ka.id = $1`, id))
	if err != nil {
		return kpi.Actual{}, kpiActualError("get", err)
	}
	return a, nil
}

// GetByKey implements kpi.ActualRepository.
func (r *kpiActualRepositoryImpl) GetByKey(ctx context.Context, definitionID, userID int64, period string) (kpi.Actual, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + kpiActualColumns + ` FROM kpi_actuals ka
		WHERE ka.kpi_definition_id = $1 AND ka.user_id = $2 AND ka.period = $3`
	a, err := scanKpiActual(q.QueryRow(ctx, query, definitionID, userID, period))
	if err != nil {
		return kpi.Actual{}, kpiActualError("get", err)
	}
	return a, nil
}

// ListByUserAndPeriod implements kpi.ActualRepository.
func (r *kpiActualRepositoryImpl) ListByUserAndPeriod(ctx context.Context, userID int64, period string) ([]kpi.Actual, error) {
	return r.list(ctx, `SELECT `+kpiActualColumns+` FROM kpi_actuals ka
		WHERE ka.user_id = $1 AND ka.period = $2
		ORDER BY ka.kpi_definition_id ASC`, userID, period)
}

// ListPendingByDepartment implements kpi.ActualRepository.
func (r *kpiActualRepositoryImpl) ListPendingByDepartment(ctx context.Context, departmentID int64) ([]kpi.Actual, error) {
	return r.list(ctx, `SELECT `+kpiActualColumns+` FROM kpi_actuals ka
		JOIN users u ON u.id = ka.user_id
		WHERE ka.status = 'pending' AND u.department_id = $1 AND u.is_active = TRUE
		ORDER BY ka.created_at ASC, ka.id ASC`, departmentID)
}

func (r *kpiActualRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]kpi.Actual, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list kpi actuals: %w", err)
	}
	defer rows.Close()

	actuals := []kpi.Actual{}
	for rows.Next() {
		a, err := scanKpiActual(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan kpi actual: %w", err)
		}
		actuals = append(actuals, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return actuals, nil
}

// Review records a decision on a pending actual. Only pending rows change.
func (r *kpiActualRepositoryImpl) Review(ctx context.Context, a kpi.Actual) (kpi.Actual, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE kpi_actuals AS ka
		SET status = $1, reviewed_by = $2, reviewed_at = $3, supervisor_note = $4,
			achievement_rate = $5, score = $6, updated_at = NOW()
		WHERE ka.id = $7 AND ka.status = 'pending'
		RETURNING ` + kpiActualColumns

	reviewed, err := scanKpiActual(q.QueryRow(ctx, query,
		string(a.Status), a.ReviewedBy, a.ReviewedAt, a.SupervisorNote,
		a.AchievementRate, a.Score, a.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kpi.Actual{}, kpi.ErrActualNotPending
		}
		return kpi.Actual{}, kpiActualError("review", err)
	}
	return reviewed, nil
}

// SumApprovedScore returns nil when the user has no scored approved actuals in the period.
func (r *kpiActualRepositoryImpl) SumApprovedScore(ctx context.Context, userID int64, period string) (*decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	var total decimal.NullDecimal
	query := `SELECT SUM(score) FROM kpi_actuals WHERE user_id = $1 AND period = $2 AND status = 'approved'`
	if err := q.QueryRow(ctx, query, userID, period).Scan(&total); err != nil {
		if err = degradeRead(err); err != nil {
			return nil, fmt.Errorf("failed to sum kpi scores: %w", err)
		}
		return nil, nil
	}
	return nullDecimalPtr(total), nil
}
