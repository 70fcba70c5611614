package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/perfhub/perfhub-backend-go/internal/domain/task"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/database"
)

type taskRepositoryImpl struct {
	db *database.DB
}

func NewTaskRepository(db *database.DB) task.TaskRepository {
	return &taskRepositoryImpl{db: db}
}

const taskColumns = `id, title, description, assigned_by, assigned_to, related_duties,
	planned_completion_date, completion_requirements, priority, status,
	completion_report, completion_attachments, self_evaluation_score, self_evaluation_note,
	supervisor_evaluation_score, supervisor_evaluation_note, closed_at, created_at, updated_at`

func scanTask(row pgx.Row) (task.Task, error) {
	var t task.Task
	var priority, status string
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.AssignedBy,
		&t.AssignedTo,
		&t.RelatedDuties,
		&t.PlannedCompletionDate,
		&t.CompletionRequirements,
		&priority,
		&status,
		&t.CompletionReport,
		&t.CompletionAttachments,
		&t.SelfEvaluationScore,
		&t.SelfEvaluationNote,
		&t.SupervisorEvaluationScore,
		&t.SupervisorEvaluationNote,
		&t.ClosedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	t.Priority = task.Priority(priority)
	t.Status = task.Status(status)
	if t.RelatedDuties == nil {
		t.RelatedDuties = []int64{}
	}
	return t, err
}

func taskError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return task.ErrTaskNotFound
	}
	if database.IsUnavailable(err) {
		return err
	}
	return fmt.Errorf("failed to %s task: %w", op, err)
}

// Create implements task.TaskRepository.
func (r *taskRepositoryImpl) Create(ctx context.Context, t task.Task) (task.Task, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO tasks (
			title, description, assigned_by, assigned_to, related_duties,
			planned_completion_date, completion_requirements, priority, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + taskColumns

	created, err := scanTask(q.QueryRow(ctx, query,
		t.Title,
		t.Description,
		t.AssignedBy,
		t.AssignedTo,
		int64Array(t.RelatedDuties),
		t.PlannedCompletionDate,
		t.CompletionRequirements,
		string(t.Priority),
		string(task.StatusAssigned),
	))
	if err != nil {
		return task.Task{}, taskError("create", err)
	}
	return created, nil
}

// GetByID implements task.TaskRepository.
func (r *taskRepositoryImpl) GetByID(ctx context.Context, id int64) (task.Task, error) {
	q := GetQuerier(ctx, r.db)

	t, err := scanTask(q.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		return task.Task{}, taskError("get", err)
	}
	return t, nil
}

// GetByIDForUpdate implements task.TaskRepository.
func (r *taskRepositoryImpl) GetByIDForUpdate(ctx context.Context, id int64) (task.Task, error) {
	q := GetQuerier(ctx, r.db)

	t, err := scanTask(q.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return task.Task{}, taskError("lock", err)
	}
	return t, nil
}

// ListByAssignee implements task.TaskRepository.
func (r *taskRepositoryImpl) ListByAssignee(ctx context.Context, userID int64) ([]task.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks WHERE assigned_to = $1 ORDER BY created_at DESC, id DESC`, userID)
}

// ListByAssigner implements task.TaskRepository.
func (r *taskRepositoryImpl) ListByAssigner(ctx context.Context, userID int64) ([]task.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks WHERE assigned_by = $1 ORDER BY created_at DESC, id DESC`, userID)
}

// ListOverdue implements task.TaskRepository.
func (r *taskRepositoryImpl) ListOverdue(ctx context.Context, now time.Time) ([]task.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks
		WHERE status IN ('assigned', 'in_progress') AND planned_completion_date < $1
		ORDER BY planned_completion_date ASC`, now)
}

func (r *taskRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]task.Task, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return tasks, nil
}

// Update writes every mutable column of t while the row is still in status from.
func (r *taskRepositoryImpl) Update(ctx context.Context, t task.Task, from task.Status) (task.Task, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE tasks
		SET planned_completion_date = $1, status = $2, completion_report = $3,
			completion_attachments = $4, self_evaluation_score = $5, self_evaluation_note = $6,
			supervisor_evaluation_score = $7, supervisor_evaluation_note = $8, closed_at = $9,
			updated_at = NOW()
		WHERE id = $10 AND status = $11
		RETURNING ` + taskColumns

	updated, err := scanTask(q.QueryRow(ctx, query,
		t.PlannedCompletionDate,
		string(t.Status),
		t.CompletionReport,
		optionalStrings(t.CompletionAttachments),
		t.SelfEvaluationScore,
		t.SelfEvaluationNote,
		t.SupervisorEvaluationScore,
		t.SupervisorEvaluationNote,
		t.ClosedAt,
		t.ID,
		string(from),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, t.ID); getErr != nil {
			return task.Task{}, getErr
		}
		return task.Task{}, task.ErrTaskChanged
	}
	if err != nil {
		return task.Task{}, taskError("update", err)
	}
	return updated, nil
}
