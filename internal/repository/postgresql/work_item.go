package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/perfhub/perfhub-backend-go/internal/domain/worklog"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/database"
)

type workItemRepositoryImpl struct {
	db *database.DB
}

func NewWorkItemRepository(db *database.DB) worklog.WorkItemRepository {
	return &workItemRepositoryImpl{db: db}
}

const workItemColumns = `id, work_log_id, work_code, work_name, planned_content, execution_result,
	related_duties, planned_completion_date, actual_completion_date, attachments,
	self_evaluation, self_evaluation_note, supervisor_evaluation, supervisor_evaluation_note,
	sort_order, created_at, updated_at`

func scanWorkItem(row pgx.Row) (worklog.WorkItem, error) {
	var item worklog.WorkItem
	var selfEval, supervisorEval *string
	err := row.Scan(
		&item.ID,
		&item.WorkLogID,
		&item.WorkCode,
		&item.WorkName,
		&item.PlannedContent,
		&item.ExecutionResult,
		&item.RelatedDuties,
		&item.PlannedCompletionDate,
		&item.ActualCompletionDate,
		&item.Attachments,
		&selfEval,
		&item.SelfEvaluationNote,
		&supervisorEval,
		&item.SupervisorEvaluationNote,
		&item.SortOrder,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if selfEval != nil {
		a := worklog.Alignment(*selfEval)
		item.SelfEvaluation = &a
	}
	if supervisorEval != nil {
		a := worklog.Alignment(*supervisorEval)
		item.SupervisorEvaluation = &a
	}
	if item.RelatedDuties == nil {
		item.RelatedDuties = []int64{}
	}
	return item, err
}

func workItemError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return worklog.ErrWorkItemNotFound
	}
	if database.IsUnavailable(err) {
		return err
	}
	return fmt.Errorf("failed to %s work item: %w", op, err)
}

func alignmentParam(a *worklog.Alignment) *string {
	if a == nil {
		return nil
	}
	s := string(*a)
	return &s
}

// Create implements worklog.WorkItemRepository.
func (r *workItemRepositoryImpl) Create(ctx context.Context, item worklog.WorkItem) (worklog.WorkItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO work_items (
			work_log_id, work_code, work_name, planned_content, execution_result, related_duties,
			planned_completion_date, actual_completion_date, attachments,
			self_evaluation, self_evaluation_note, sort_order
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + workItemColumns

	created, err := scanWorkItem(q.QueryRow(ctx, query,
		item.WorkLogID,
		item.WorkCode,
		item.WorkName,
		item.PlannedContent,
		item.ExecutionResult,
		int64Array(item.RelatedDuties),
		item.PlannedCompletionDate,
		item.ActualCompletionDate,
		optionalStrings(item.Attachments),
		alignmentParam(item.SelfEvaluation),
		item.SelfEvaluationNote,
		item.SortOrder,
	))
	if err != nil {
		return worklog.WorkItem{}, workItemError("create", err)
	}
	return created, nil
}

// GetByID implements worklog.WorkItemRepository.
func (r *workItemRepositoryImpl) GetByID(ctx context.Context, id int64) (worklog.WorkItem, error) {
	q := GetQuerier(ctx, r.db)

	item, err := scanWorkItem(q.QueryRow(ctx, `SELECT `+workItemColumns+` FROM work_items WHERE id = $1`, id))
	if err != nil {
		return worklog.WorkItem{}, workItemError("get", err)
	}
	return item, nil
}

// ListByLog implements worklog.WorkItemRepository.
func (r *workItemRepositoryImpl) ListByLog(ctx context.Context, workLogID int64) ([]worklog.WorkItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workItemColumns + ` FROM work_items WHERE work_log_id = $1 ORDER BY sort_order ASC, id ASC`
	rows, err := q.Query(ctx, query, workLogID)
	if err != nil {
		return nil, fmt.Errorf("failed to list work items: %w", err)
	}
	defer rows.Close()

	items := []worklog.WorkItem{}
	for rows.Next() {
		item, err := scanWorkItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return items, nil
}

// Update implements worklog.WorkItemRepository. Supervisor fields are not touched.
func (r *workItemRepositoryImpl) Update(ctx context.Context, item worklog.WorkItem) (worklog.WorkItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE work_items
		SET work_code = $1, work_name = $2, planned_content = $3, execution_result = $4,
			related_duties = $5, planned_completion_date = $6, actual_completion_date = $7,
			attachments = $8, self_evaluation = $9, self_evaluation_note = $10, sort_order = $11,
			updated_at = NOW()
		WHERE id = $12
		RETURNING ` + workItemColumns

	updated, err := scanWorkItem(q.QueryRow(ctx, query,
		item.WorkCode,
		item.WorkName,
		item.PlannedContent,
		item.ExecutionResult,
		int64Array(item.RelatedDuties),
		item.PlannedCompletionDate,
		item.ActualCompletionDate,
		optionalStrings(item.Attachments),
		alignmentParam(item.SelfEvaluation),
		item.SelfEvaluationNote,
		item.SortOrder,
		item.ID,
	))
	if err != nil {
		return worklog.WorkItem{}, workItemError("update", err)
	}
	return updated, nil
}

// Delete implements worklog.WorkItemRepository.
func (r *workItemRepositoryImpl) Delete(ctx context.Context, id int64) error {
	q := GetQuerier(ctx, r.db)

	result, err := q.Exec(ctx, `DELETE FROM work_items WHERE id = $1`, id)
	if err != nil {
		return workItemError("delete", err)
	}
	if result.RowsAffected() == 0 {
		return worklog.ErrWorkItemNotFound
	}
	return nil
}

// UpdateSupervisorEvaluation implements worklog.WorkItemRepository.
func (r *workItemRepositoryImpl) UpdateSupervisorEvaluation(ctx context.Context, id int64, evaluation worklog.Alignment, note string) (worklog.WorkItem, error) {
	q := GetQuerier(ctx, r.db)

	var notePtr *string
	if note != "" {
		notePtr = &note
	}

	query := `
		UPDATE work_items
		SET supervisor_evaluation = $1, supervisor_evaluation_note = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + workItemColumns

	item, err := scanWorkItem(q.QueryRow(ctx, query, string(evaluation), notePtr, id))
	if err != nil {
		return worklog.WorkItem{}, workItemError("review", err)
	}
	return item, nil
}

// CountByLog implements worklog.WorkItemRepository.
func (r *workItemRepositoryImpl) CountByLog(ctx context.Context, workLogID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM work_items WHERE work_log_id = $1`, workLogID)
}

// CountUnreviewedByLog implements worklog.WorkItemRepository.
func (r *workItemRepositoryImpl) CountUnreviewedByLog(ctx context.Context, workLogID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM work_items WHERE work_log_id = $1 AND supervisor_evaluation IS NULL`, workLogID)
}

func (r *workItemRepositoryImpl) count(ctx context.Context, query string, args ...interface{}) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var n int64
	if err := q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		if database.IsUnavailable(err) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to count work items: %w", err)
	}
	return n, nil
}
