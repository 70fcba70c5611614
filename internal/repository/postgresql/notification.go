package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/perfhub/perfhub-backend-go/internal/domain/notification"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/database"
)

type notificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepository{db: db}
}

const notificationColumns = `id, user_id, type, title, content, related_id, is_read, created_at`

func scanNotification(row pgx.Row) (notification.Notification, error) {
	var n notification.Notification
	var notifType string
	err := row.Scan(&n.ID, &n.UserID, &notifType, &n.Title, &n.Content, &n.RelatedID, &n.IsRead, &n.CreatedAt)
	n.Type = notification.NotificationType(notifType)
	return n, err
}

// Create creates a new notification
func (r *notificationRepository) Create(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	created, err := r.CreateBatch(ctx, []notification.Notification{n})
	if err != nil {
		return notification.Notification{}, err
	}
	return created[0], nil
}

// CreateBatch creates multiple notifications with a single insert
func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []notification.Notification) ([]notification.Notification, error) {
	if len(notifications) == 0 {
		return []notification.Notification{}, nil
	}

	q := GetQuerier(ctx, r.db)

	valueStrings := make([]string, 0, len(notifications))
	valueArgs := make([]interface{}, 0, len(notifications)*5)
	for i, n := range notifications {
		base := i * 5
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5))
		valueArgs = append(valueArgs, n.UserID, string(n.Type), n.Title, n.Content, n.RelatedID)
	}

	query := fmt.Sprintf(`
		INSERT INTO notifications (user_id, type, title, content, related_id)
		VALUES %s
		RETURNING %s`, strings.Join(valueStrings, ", "), notificationColumns)

	rows, err := q.Query(ctx, query, valueArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to batch create notifications: %w", err)
	}
	defer rows.Close()

	created := make([]notification.Notification, 0, len(notifications))
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		created = append(created, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to batch create notifications: %w", err)
	}
	if len(created) != len(notifications) {
		return nil, database.ErrUnavailable
	}
	return created, nil
}

// GetByID retrieves a notification by ID
func (r *notificationRepository) GetByID(ctx context.Context, id int64) (notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	n, err := scanNotification(q.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notification.Notification{}, notification.ErrNotificationNotFound
		}
		if database.IsUnavailable(err) {
			return notification.Notification{}, err
		}
		return notification.Notification{}, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

// ListByUser retrieves the newest notifications for a user
func (r *notificationRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []notification.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return notifications, nil
}

// CountUnread returns the count of unread notifications for a user
func (r *notificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var count int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID).Scan(&count)
	if err != nil {
		if err = degradeRead(err); err != nil {
			return 0, fmt.Errorf("failed to count unread notifications: %w", err)
		}
		return 0, nil
	}
	return count, nil
}

// MarkRead marks one of the user's notifications as read
func (r *notificationRepository) MarkRead(ctx context.Context, id, userID int64) (bool, error) {
	q := GetQuerier(ctx, r.db)

	result, err := q.Exec(ctx, `UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND user_id = $2 AND is_read = FALSE`, id, userID)
	if err != nil {
		if database.IsUnavailable(err) {
			return false, err
		}
		return false, fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// MarkAllRead marks all notifications as read for a user
func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	q := GetQuerier(ctx, r.db)

	result, err := q.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		if database.IsUnavailable(err) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	return result.RowsAffected(), nil
}

// ExistsSince implements notification.Repository.
func (r *notificationRepository) ExistsSince(ctx context.Context, userID int64, t notification.NotificationType, relatedID *int64, since time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT EXISTS (
		SELECT 1 FROM notifications
		WHERE user_id = $1 AND type = $2 AND related_id IS NOT DISTINCT FROM $3 AND created_at >= $4
	)`

	var exists bool
	if err := q.QueryRow(ctx, query, userID, string(t), relatedID, since).Scan(&exists); err != nil {
		if database.IsUnavailable(err) {
			return false, err
		}
		return false, fmt.Errorf("failed to check notification history: %w", err)
	}
	return exists, nil
}
