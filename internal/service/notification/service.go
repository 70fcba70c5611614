package notification

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/domain/notification"
	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/sse"
)

const eventName = "notification"

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

type service struct {
	repo   notification.Repository
	hub    *sse.Hub
	config Config
	logger *slog.Logger

	queue   chan notification.CreateNotificationRequest
	wg      sync.WaitGroup
	stopCh  chan struct{}
	stopped atomic.Bool
}

// NewNotificationService creates a new notification service with background workers
func NewNotificationService(repo notification.Repository, hub *sse.Hub, cfg Config, logger *slog.Logger) notification.Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &service{
		repo:   repo,
		hub:    hub,
		config: cfg,
		logger: logger.With("component", "notification"),
		queue:  make(chan notification.CreateNotificationRequest, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.logger.Info("notification workers started",
		"workers", cfg.WorkerCount, "batch_size", cfg.BatchSize, "flush_interval", cfg.FlushInterval)

	return s
}

// worker is the background worker that processes notification queue
func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.CreateNotificationRequest, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		notifications := make([]notification.Notification, len(batch))
		for i, req := range batch {
			notifications[i] = toEntity(req)
		}

		created, err := s.repo.CreateBatch(ctx, notifications)
		if err != nil {
			s.logger.Error("batch insert failed", "worker", id, "count", len(notifications), "error", err)
		} else {
			s.logger.Debug("notifications inserted", "worker", id, "count", len(created))
			for _, n := range created {
				s.publish(n)
			}
		}

		batch = batch[:0]
	}

	for {
		select {
		case req := <-s.queue:
			batch = append(batch, req)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// Drain whatever is still queued before exiting.
			for {
				select {
				case req := <-s.queue:
					batch = append(batch, req)
					if len(batch) >= s.config.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

func toEntity(req notification.CreateNotificationRequest) notification.Notification {
	return notification.Notification{
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     req.Title,
		Content:   req.Content,
		RelatedID: req.RelatedID,
	}
}

func validate(req notification.CreateNotificationRequest) error {
	if !req.Type.Valid() {
		return notification.ErrInvalidNotificationType
	}
	if req.UserID <= 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (s *service) publish(n notification.Notification) {
	s.hub.Publish(sse.Event{
		UserID: n.UserID,
		Name:   eventName,
		Data:   notification.ToResponse(n),
	})
}

// QueueNotification queues a notification for async processing
func (s *service) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	if err := validate(req); err != nil {
		return err
	}
	if s.stopped.Load() {
		return notification.ErrQueueClosed
	}

	select {
	case s.queue <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		// Queue full, insert directly
		_, err := s.SendNow(ctx, req)
		return err
	}
}

// SendNow persists the notification and pushes it to open streams.
func (s *service) SendNow(ctx context.Context, req notification.CreateNotificationRequest) (*notification.NotificationResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, toEntity(req))
	if err != nil {
		return nil, err
	}
	s.publish(created)

	resp := notification.ToResponse(created)
	return &resp, nil
}

// List returns the caller's newest notifications.
func (s *service) List(ctx context.Context, caller *user.User, limit int) ([]notification.NotificationResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	notifications, err := s.repo.ListByUser(ctx, caller.ID, notification.ClampLimit(limit))
	if err != nil {
		return nil, err
	}

	responses := make([]notification.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = notification.ToResponse(n)
	}
	return responses, nil
}

// UnreadCount returns the count of unread notifications
func (s *service) UnreadCount(ctx context.Context, caller *user.User) (int64, error) {
	if err := user.RequireCaller(caller); err != nil {
		return 0, err
	}
	return s.repo.CountUnread(ctx, caller.ID)
}

// MarkRead marks one of the caller's notifications as read. Marking an
// already read notification is not an error.
func (s *service) MarkRead(ctx context.Context, caller *user.User, id int64) error {
	if err := user.RequireCaller(caller); err != nil {
		return err
	}

	changed, err := s.repo.MarkRead(ctx, id, caller.ID)
	if err != nil {
		return err
	}
	if changed {
		return nil
	}

	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != caller.ID {
		return notification.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks all notifications as read for the caller
func (s *service) MarkAllRead(ctx context.Context, caller *user.User) (int64, error) {
	if err := user.RequireCaller(caller); err != nil {
		return 0, err
	}
	return s.repo.MarkAllRead(ctx, caller.ID)
}

// Subscribe creates an SSE subscription for the caller
func (s *service) Subscribe(ctx context.Context, caller *user.User) (<-chan notification.SSEEvent, func(), error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, nil, err
	}

	ch, cleanup := s.hub.Subscribe(caller.ID)
	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				resp, ok := event.Data.(notification.NotificationResponse)
				if !ok {
					continue
				}
				select {
				case out <- notification.SSEEvent{Event: event.Name, Data: resp}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup, nil
}

// Stop gracefully stops the notification service
func (s *service) Stop() {
	if !s.stopped.CompareAndSwap(false, true) {
		return
	}
	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info("notification workers stopped")
}
