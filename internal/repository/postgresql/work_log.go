package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/perfhub/perfhub-backend-go/internal/domain/worklog"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/database"
)

type workLogRepositoryImpl struct {
	db *database.DB
}

func NewWorkLogRepository(db *database.DB) worklog.WorkLogRepository {
	return &workLogRepositoryImpl{db: db}
}

const workLogColumns = `wl.id, wl.user_id, wl.date, wl.status, wl.submitted_at, wl.reviewed_at,
	wl.reviewed_by, wl.created_at, wl.updated_at`

func scanWorkLog(row pgx.Row) (worklog.WorkLog, error) {
	var l worklog.WorkLog
	var status string
	err := row.Scan(&l.ID, &l.UserID, &l.Date, &status, &l.SubmittedAt, &l.ReviewedAt,
		&l.ReviewedBy, &l.CreatedAt, &l.UpdatedAt)
	l.Status = worklog.Status(status)
	return l, err
}

// Create implements worklog.WorkLogRepository.
func (r *workLogRepositoryImpl) Create(ctx context.Context, l worklog.WorkLog) (worklog.WorkLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO work_logs AS wl (user_id, date, status)
		VALUES ($1, $2, $3)
		RETURNING ` + workLogColumns

	created, err := scanWorkLog(q.QueryRow(ctx, query, l.UserID, l.Date, string(worklog.StatusDraft)))
	if err != nil {
		if isUniqueViolation(err) {
			return worklog.WorkLog{}, worklog.ErrWorkLogExists
		}
		if database.IsUnavailable(err) {
			return worklog.WorkLog{}, err
		}
		return worklog.WorkLog{}, fmt.Errorf("failed to create work log: %w", err)
	}
	return created, nil
}

// GetByID implements worklog.WorkLogRepository.
func (r *workLogRepositoryImpl) GetByID(ctx context.Context, id int64) (worklog.WorkLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workLogColumns + ` FROM work_logs wl WHERE wl.id = $1`
	l, err := scanWorkLog(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return worklog.WorkLog{}, worklog.ErrWorkLogNotFound
		}
		if database.IsUnavailable(err) {
			return worklog.WorkLog{}, err
		}
		return worklog.WorkLog{}, fmt.Errorf("failed to get work log: %w", err)
	}
	return l, nil
}

// ListByUser implements worklog.WorkLogRepository.
func (r *workLogRepositoryImpl) ListByUser(ctx context.Context, userID int64, filter worklog.ListWorkLogsFilter) ([]worklog.WorkLog, error) {
	query := `SELECT ` + workLogColumns + ` FROM work_logs wl WHERE wl.user_id = $1`
	args := []interface{}{userID}
	argIdx := 2

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND wl.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND wl.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
	}
	query += " ORDER BY wl.date DESC"

	return r.list(ctx, query, args...)
}

// ListSubmittedByDepartment implements worklog.WorkLogRepository.
func (r *workLogRepositoryImpl) ListSubmittedByDepartment(ctx context.Context, departmentID int64) ([]worklog.WorkLog, error) {
	query := `
		SELECT ` + workLogColumns + `
		FROM work_logs wl
		JOIN users u ON u.id = wl.user_id
		WHERE wl.status = 'submitted' AND u.department_id = $1 AND u.is_active = TRUE
		ORDER BY wl.date DESC, wl.id DESC`
	return r.list(ctx, query, departmentID)
}

func (r *workLogRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]worklog.WorkLog, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list work logs: %w", err)
	}
	defer rows.Close()

	logs := []worklog.WorkLog{}
	for rows.Next() {
		l, err := scanWorkLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work log: %w", err)
		}
		logs = append(logs, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return logs, nil
}

// UpdateStatus moves a log from one status to the next. A log that is no
// longer in the from status is reported with the matching domain error.
func (r *workLogRepositoryImpl) UpdateStatus(ctx context.Context, id int64, from, to worklog.Status, reviewerID *int64, at time.Time) (worklog.WorkLog, error) {
	q := GetQuerier(ctx, r.db)

	var submittedAt, reviewedAt *time.Time
	switch to {
	case worklog.StatusSubmitted:
		submittedAt = &at
	case worklog.StatusReviewed:
		reviewedAt = &at
	}

	query := `
		UPDATE work_logs AS wl
		SET status = $1,
			submitted_at = COALESCE($2, wl.submitted_at),
			reviewed_at = COALESCE($3, wl.reviewed_at),
			reviewed_by = COALESCE($4, wl.reviewed_by),
			updated_at = NOW()
		WHERE wl.id = $5 AND wl.status = $6
		RETURNING ` + workLogColumns

	l, err := scanWorkLog(q.QueryRow(ctx, query, string(to), submittedAt, reviewedAt, reviewerID, id, string(from)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if from == worklog.StatusDraft {
				return worklog.WorkLog{}, worklog.ErrWorkLogNotEditable
			}
			return worklog.WorkLog{}, worklog.ErrWorkLogNotSubmitted
		}
		if database.IsUnavailable(err) {
			return worklog.WorkLog{}, err
		}
		return worklog.WorkLog{}, fmt.Errorf("failed to update work log status: %w", err)
	}
	return l, nil
}

// CountPendingReviewByDepartment implements worklog.WorkLogRepository.
func (r *workLogRepositoryImpl) CountPendingReviewByDepartment(ctx context.Context) ([]worklog.PendingReview, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT u.department_id, COUNT(*)
		FROM work_logs wl
		JOIN users u ON u.id = wl.user_id
		WHERE wl.status = 'submitted' AND u.is_active = TRUE AND u.department_id IS NOT NULL
		GROUP BY u.department_id
		ORDER BY u.department_id`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending reviews: %w", err)
	}
	defer rows.Close()

	pending := []worklog.PendingReview{}
	for rows.Next() {
		var p worklog.PendingReview
		if err := rows.Scan(&p.DepartmentID, &p.Count); err != nil {
			return nil, fmt.Errorf("failed to scan pending review: %w", err)
		}
		pending = append(pending, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return pending, nil
}
