package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/domain/notification"
	"github.com/perfhub/perfhub-backend-go/internal/domain/task"
	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	"github.com/perfhub/perfhub-backend-go/internal/domain/worklog"
)

// JobsConfig controls when the reminder jobs fire.
type JobsConfig struct {
	OverdueInterval  time.Duration
	ReminderInterval time.Duration
	// ReminderHour is the UTC hour during which the review reminder is sent.
	ReminderHour int
}

// ReminderJobs sends overdue-task and unreviewed-log reminders.
type ReminderJobs struct {
	tasks         task.TaskService
	workLogRepo   worklog.WorkLogRepository
	userRepo      user.UserRepository
	notifier      notification.Sender
	notifications notification.Repository
	cfg           JobsConfig
	now           func() time.Time
}

func NewReminderJobs(
	tasks task.TaskService,
	workLogRepo worklog.WorkLogRepository,
	userRepo user.UserRepository,
	notifier notification.Sender,
	notifications notification.Repository,
	cfg JobsConfig,
) *ReminderJobs {
	if cfg.OverdueInterval <= 0 {
		cfg.OverdueInterval = time.Hour
	}
	if cfg.ReminderInterval <= 0 {
		cfg.ReminderInterval = time.Hour
	}
	return &ReminderJobs{
		tasks:         tasks,
		workLogRepo:   workLogRepo,
		userRepo:      userRepo,
		notifier:      notifier,
		notifications: notifications,
		cfg:           cfg,
		now:           time.Now,
	}
}

func (j *ReminderJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("notify_overdue_tasks", j.cfg.OverdueInterval, j.NotifyOverdueTasks)
	scheduler.AddJob("remind_unreviewed_logs", j.cfg.ReminderInterval, j.RemindUnreviewedLogs)
}

func (j *ReminderJobs) NotifyOverdueTasks(ctx context.Context) error {
	n, err := j.tasks.NotifyOverdue(ctx)
	if err != nil {
		return fmt.Errorf("failed to notify overdue tasks: %w", err)
	}
	if n > 0 {
		slog.Info("Cron: overdue task reminders sent", "count", n)
	}
	return nil
}

// RemindUnreviewedLogs tells each department's supervisors how many logs wait
// for review. It runs once a day during the configured hour.
func (j *ReminderJobs) RemindUnreviewedLogs(ctx context.Context) error {
	now := j.now().UTC()
	if now.Hour() != j.cfg.ReminderHour {
		return nil
	}

	pending, err := j.workLogRepo.CountPendingReviewByDepartment(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending reviews: %w", err)
	}

	since := now.Add(-20 * time.Hour)
	supervisorRole := user.RoleSupervisor
	sent := 0
	for _, p := range pending {
		if p.Count == 0 {
			continue
		}
		departmentID := p.DepartmentID
		supervisors, err := j.userRepo.List(ctx, user.ListUsersFilter{
			DepartmentID: &departmentID,
			Role:         &supervisorRole,
			ActiveOnly:   true,
		})
		if err != nil {
			return fmt.Errorf("failed to list supervisors: %w", err)
		}

		for _, s := range supervisors {
			seen, err := j.notifications.ExistsSince(ctx, s.ID, notification.TypeUnreviewedLog, &departmentID, since)
			if err != nil {
				return fmt.Errorf("failed to check reminder history: %w", err)
			}
			if seen {
				continue
			}
			if _, err := j.notifier.SendNow(ctx, notification.CreateNotificationRequest{
				UserID:    s.ID,
				Type:      notification.TypeUnreviewedLog,
				Title:     "Work logs awaiting review",
				Content:   fmt.Sprintf("%d submitted work log(s) in your department are waiting for review.", p.Count),
				RelatedID: &departmentID,
			}); err != nil {
				slog.Error("Cron: failed to send review reminder", "user_id", s.ID, "error", err)
				continue
			}
			sent++
		}
	}

	if sent > 0 {
		slog.Info("Cron: unreviewed log reminders sent", "count", sent)
	}
	return nil
}
