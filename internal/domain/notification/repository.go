package notification

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, n Notification) (Notification, error)
	CreateBatch(ctx context.Context, ns []Notification) ([]Notification, error)
	// ListByUser returns the newest notifications first.
	ListByUser(ctx context.Context, userID int64, limit int) ([]Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	// MarkRead flips one unread notification; it reports false when nothing changed.
	MarkRead(ctx context.Context, id, userID int64) (bool, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	GetByID(ctx context.Context, id int64) (Notification, error)
	// ExistsSince reports whether the user already got this kind of notice about relatedID after since.
	ExistsSince(ctx context.Context, userID int64, t NotificationType, relatedID *int64, since time.Time) (bool, error)
}
