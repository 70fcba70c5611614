package task

import (
	"context"

	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
)

type TaskService interface {
	ListMine(ctx context.Context, caller *user.User) ([]TaskResponse, error)
	ListAssignedByMe(ctx context.Context, caller *user.User) ([]TaskResponse, error)
	Get(ctx context.Context, caller *user.User, id int64) (*TaskResponse, error)
	ListProgress(ctx context.Context, caller *user.User, taskID int64) ([]ProgressResponse, error)
	// MyOpenTasks feeds the calendar export.
	MyOpenTasks(ctx context.Context, caller *user.User) ([]Task, error)

	Create(ctx context.Context, caller *user.User, req CreateTaskRequest) (*TaskResponse, error)
	ReportProgress(ctx context.Context, caller *user.User, taskID int64, req ProgressRequest) (*ProgressResponse, error)
	Complete(ctx context.Context, caller *user.User, taskID int64, req CompleteRequest) (*TaskResponse, error)
	Review(ctx context.Context, caller *user.User, taskID int64, req ReviewRequest) (*TaskResponse, error)

	// NotifyOverdue notifies assignees of overdue tasks and returns how many were notified.
	NotifyOverdue(ctx context.Context) (int, error)
}
