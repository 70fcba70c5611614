package notification

import (
	"context"

	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
)

// Sender is what other services need to notify users.
type Sender interface {
	// QueueNotification hands the notification to the background workers.
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error
	// SendNow persists immediately, for callers that need the notification to exist on return.
	SendNow(ctx context.Context, req CreateNotificationRequest) (*NotificationResponse, error)
}

type Service interface {
	Sender

	List(ctx context.Context, caller *user.User, limit int) ([]NotificationResponse, error)
	UnreadCount(ctx context.Context, caller *user.User) (int64, error)
	MarkRead(ctx context.Context, caller *user.User, id int64) error
	MarkAllRead(ctx context.Context, caller *user.User) (int64, error)

	Subscribe(ctx context.Context, caller *user.User) (<-chan SSEEvent, func(), error)

	// Stop drains the queue and waits for the workers.
	Stop()
}
