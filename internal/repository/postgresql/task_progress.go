package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/perfhub/perfhub-backend-go/internal/domain/task"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/database"
)

type progressRepositoryImpl struct {
	db *database.DB
}

func NewTaskProgressRepository(db *database.DB) task.ProgressRepository {
	return &progressRepositoryImpl{db: db}
}

const progressColumns = `id, task_id, user_id, date, progress_percentage, progress_note,
	adjusted_completion_date, delay_reason, created_at`

func scanProgress(row pgx.Row) (task.Progress, error) {
	var p task.Progress
	err := row.Scan(&p.ID, &p.TaskID, &p.UserID, &p.Date, &p.ProgressPercentage, &p.ProgressNote,
		&p.AdjustedCompletionDate, &p.DelayReason, &p.CreatedAt)
	return p, err
}

// Create implements task.ProgressRepository.
func (r *progressRepositoryImpl) Create(ctx context.Context, p task.Progress) (task.Progress, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO task_progress (task_id, user_id, date, progress_percentage, progress_note,
			adjusted_completion_date, delay_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + progressColumns

	created, err := scanProgress(q.QueryRow(ctx, query,
		p.TaskID, p.UserID, p.Date, p.ProgressPercentage, p.ProgressNote,
		p.AdjustedCompletionDate, p.DelayReason))
	if err != nil {
		if database.IsUnavailable(err) {
			return task.Progress{}, err
		}
		return task.Progress{}, fmt.Errorf("failed to create task progress: %w", err)
	}
	return created, nil
}

// ListByTask implements task.ProgressRepository.
func (r *progressRepositoryImpl) ListByTask(ctx context.Context, taskID int64) ([]task.Progress, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + progressColumns + ` FROM task_progress WHERE task_id = $1 ORDER BY date DESC, id DESC`
	rows, err := q.Query(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list task progress: %w", err)
	}
	defer rows.Close()

	progress := []task.Progress{}
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task progress: %w", err)
		}
		progress = append(progress, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return progress, nil
}
