package worklog

import (
	"context"

	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
)

type WorkLogService interface {
	ListMine(ctx context.Context, caller *user.User, filter ListWorkLogsFilter) ([]WorkLogResponse, error)
	Get(ctx context.Context, caller *user.User, id int64) (*WorkLogDetailResponse, error)
	ListItems(ctx context.Context, caller *user.User, workLogID int64) ([]WorkItemResponse, error)
	ListUnreviewed(ctx context.Context, caller *user.User) ([]WorkLogResponse, error)

	Create(ctx context.Context, caller *user.User, req CreateWorkLogRequest) (*WorkLogResponse, error)
	AddItem(ctx context.Context, caller *user.User, workLogID int64, req WorkItemRequest) (*WorkItemResponse, error)
	UpdateItem(ctx context.Context, caller *user.User, itemID int64, req WorkItemRequest) (*WorkItemResponse, error)
	DeleteItem(ctx context.Context, caller *user.User, itemID int64) error
	Submit(ctx context.Context, caller *user.User, workLogID int64) (*WorkLogResponse, error)
	ReviewItem(ctx context.Context, caller *user.User, itemID int64, req ReviewItemRequest) (*WorkItemResponse, error)
	CompleteReview(ctx context.Context, caller *user.User, workLogID int64) (*WorkLogResponse, error)
}
