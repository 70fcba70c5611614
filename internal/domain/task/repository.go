package task

import (
	"context"
	"time"
)

type TaskRepository interface {
	Create(ctx context.Context, t Task) (Task, error)
	GetByID(ctx context.Context, id int64) (Task, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (Task, error)
	// ListByAssignee and ListByAssigner return newest first.
	ListByAssignee(ctx context.Context, userID int64) ([]Task, error)
	ListByAssigner(ctx context.Context, userID int64) ([]Task, error)
	ListOverdue(ctx context.Context, now time.Time) ([]Task, error)
	// Update writes t only while the stored status is still from, and returns
	// ErrTaskChanged otherwise.
	Update(ctx context.Context, t Task, from Status) (Task, error)
}

type ProgressRepository interface {
	Create(ctx context.Context, p Progress) (Progress, error)
	// ListByTask returns progress newest first.
	ListByTask(ctx context.Context, taskID int64) ([]Progress, error)
}
