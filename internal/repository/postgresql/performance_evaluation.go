package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/perfhub/perfhub-backend-go/internal/domain/performance"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type evaluationRepositoryImpl struct {
	db *database.DB
}

func NewEvaluationRepository(db *database.DB) performance.EvaluationRepository {
	return &evaluationRepositoryImpl{db: db}
}

const evaluationColumns = `pe.id, pe.user_id, pe.evaluated_by, pe.period, pe.auto_calculated_score,
	pe.final_score, pe.adjustment_reason, pe.strengths, pe.improvements, pe.comments,
	pe.interview_date, pe.interview_notes, pe.status, pe.created_at, pe.updated_at`

func evaluationScanTargets(e *performance.Evaluation, auto *decimal.NullDecimal, status *string) []interface{} {
	return []interface{}{
		&e.ID, &e.UserID, &e.EvaluatedBy, &e.Period, auto,
		&e.FinalScore, &e.AdjustmentReason, &e.Strengths, &e.Improvements, &e.Comments,
		&e.InterviewDate, &e.InterviewNotes, status, &e.CreatedAt, &e.UpdatedAt,
	}
}

func scanEvaluation(row pgx.Row) (performance.Evaluation, error) {
	var e performance.Evaluation
	var auto decimal.NullDecimal
	var status string
	err := row.Scan(evaluationScanTargets(&e, &auto, &status)...)
	e.AutoCalculatedScore = nullDecimalPtr(auto)
	e.Status = performance.Status(status)
	return e, err
}

func evaluationError(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return performance.ErrEvaluationNotFound
	case isUniqueViolation(err):
		return performance.ErrEvaluationExists
	case database.IsUnavailable(err):
		return err
	}
	return fmt.Errorf("failed to %s performance evaluation: %w", op, err)
}

// Create implements performance.EvaluationRepository.
func (r *evaluationRepositoryImpl) Create(ctx context.Context, e performance.Evaluation) (performance.Evaluation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO performance_evaluations AS pe (
			user_id, evaluated_by, period, auto_calculated_score, final_score, adjustment_reason,
			strengths, improvements, comments, interview_date, interview_notes, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + evaluationColumns

	created, err := scanEvaluation(q.QueryRow(ctx, query,
		e.UserID, e.EvaluatedBy, e.Period, e.AutoCalculatedScore, e.FinalScore, e.AdjustmentReason,
		e.Strengths, e.Improvements, e.Comments, e.InterviewDate, e.InterviewNotes, string(e.Status)))
	if err != nil {
		return performance.Evaluation{}, evaluationError("create", err)
	}
	return created, nil
}

// GetByID implements performance.EvaluationRepository.
func (r *evaluationRepositoryImpl) GetByID(ctx context.Context, id int64) (performance.Evaluation, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanEvaluation(q.QueryRow(ctx, `SELECT `+evaluationColumns+` FROM performance_evaluations pe WHERE pe.id = $1`, id))
	if err != nil {
		return performance.Evaluation{}, evaluationError("get", err)
	}
	return e, nil
}

// ListByUser implements performance.EvaluationRepository.
func (r *evaluationRepositoryImpl) ListByUser(ctx context.Context, userID int64) ([]performance.Evaluation, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + evaluationColumns + ` FROM performance_evaluations pe
		WHERE pe.user_id = $1 ORDER BY pe.period DESC`
	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list performance evaluations: %w", err)
	}
	defer rows.Close()

	evaluations := []performance.Evaluation{}
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan performance evaluation: %w", err)
		}
		evaluations = append(evaluations, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return evaluations, nil
}

// ListByPeriod returns the period's evaluations with employee and department
// names, optionally limited to one department.
func (r *evaluationRepositoryImpl) ListByPeriod(ctx context.Context, period string, departmentID *int64) ([]performance.EvaluationRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + evaluationColumns + `,
			COALESCE(u.name, u.email, u.open_id) AS user_name,
			COALESCE(d.name, '') AS department_name
		FROM performance_evaluations pe
		JOIN users u ON u.id = pe.user_id
		LEFT JOIN departments d ON d.id = u.department_id
		WHERE pe.period = $1`
	args := []interface{}{period}
	if departmentID != nil {
		query += " AND u.department_id = $2"
		args = append(args, *departmentID)
	}
	query += " ORDER BY department_name ASC, user_name ASC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations by period: %w", err)
	}
	defer rows.Close()

	result := []performance.EvaluationRow{}
	for rows.Next() {
		var row performance.EvaluationRow
		var auto decimal.NullDecimal
		var status string
		targets := append(evaluationScanTargets(&row.Evaluation, &auto, &status), &row.UserName, &row.DepartmentName)
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation row: %w", err)
		}
		row.AutoCalculatedScore = nullDecimalPtr(auto)
		row.Status = performance.Status(status)
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return result, nil
}

// Update implements performance.EvaluationRepository.
func (r *evaluationRepositoryImpl) Update(ctx context.Context, e performance.Evaluation) (performance.Evaluation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE performance_evaluations AS pe
		SET auto_calculated_score = $1, final_score = $2, adjustment_reason = $3, strengths = $4,
			improvements = $5, comments = $6, interview_date = $7, interview_notes = $8,
			status = $9, updated_at = NOW()
		WHERE pe.id = $10
		RETURNING ` + evaluationColumns

	updated, err := scanEvaluation(q.QueryRow(ctx, query,
		e.AutoCalculatedScore, e.FinalScore, e.AdjustmentReason, e.Strengths, e.Improvements,
		e.Comments, e.InterviewDate, e.InterviewNotes, string(e.Status), e.ID))
	if err != nil {
		return performance.Evaluation{}, evaluationError("update", err)
	}
	return updated, nil
}
