package worklog

import (
	"context"
	"time"
)

type WorkLogRepository interface {
	Create(ctx context.Context, l WorkLog) (WorkLog, error)
	GetByID(ctx context.Context, id int64) (WorkLog, error)
	// ListByUser returns the user's logs newest date first, optionally bounded by date.
	ListByUser(ctx context.Context, userID int64, filter ListWorkLogsFilter) ([]WorkLog, error)
	// ListSubmittedByDepartment returns submitted logs of active users of the department, newest date first.
	ListSubmittedByDepartment(ctx context.Context, departmentID int64) ([]WorkLog, error)
	UpdateStatus(ctx context.Context, id int64, from, to Status, reviewerID *int64, at time.Time) (WorkLog, error)
	CountPendingReviewByDepartment(ctx context.Context) ([]PendingReview, error)
}

type WorkItemRepository interface {
	Create(ctx context.Context, item WorkItem) (WorkItem, error)
	GetByID(ctx context.Context, id int64) (WorkItem, error)
	// ListByLog returns the items ordered by sort order ascending.
	ListByLog(ctx context.Context, workLogID int64) ([]WorkItem, error)
	Update(ctx context.Context, item WorkItem) (WorkItem, error)
	Delete(ctx context.Context, id int64) error
	UpdateSupervisorEvaluation(ctx context.Context, id int64, evaluation Alignment, note string) (WorkItem, error)
	CountByLog(ctx context.Context, workLogID int64) (int64, error)
	CountUnreviewedByLog(ctx context.Context, workLogID int64) (int64, error)
}
