package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/domain/notification"
	"github.com/perfhub/perfhub-backend-go/internal/domain/task"
	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/database"
)

// DefaultOverdueGrace is how long an overdue reminder suppresses the next one
// for the same task.
const DefaultOverdueGrace = 24 * time.Hour

// notificationHistory is the part of the notification store used to avoid
// repeating overdue reminders.
type notificationHistory interface {
	ExistsSince(ctx context.Context, userID int64, t notification.NotificationType, relatedID *int64, since time.Time) (bool, error)
}

type taskServiceImpl struct {
	taskRepo     task.TaskRepository
	progressRepo task.ProgressRepository
	userRepo     user.UserRepository
	notifier     notification.Sender
	history      notificationHistory
	tx           database.TxRunner
	overdueGrace time.Duration
	now          func() time.Time
}

func NewTaskService(
	taskRepo task.TaskRepository,
	progressRepo task.ProgressRepository,
	userRepo user.UserRepository,
	notifier notification.Sender,
	history notificationHistory,
	tx database.TxRunner,
	overdueGrace time.Duration,
) task.TaskService {
	if overdueGrace <= 0 {
		overdueGrace = DefaultOverdueGrace
	}
	return &taskServiceImpl{
		taskRepo:     taskRepo,
		progressRepo: progressRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		history:      history,
		tx:           tx,
		overdueGrace: overdueGrace,
		now:          time.Now,
	}
}

func (s *taskServiceImpl) toResponses(tasks []task.Task) []task.TaskResponse {
	now := s.now()
	responses := make([]task.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		responses = append(responses, task.ToResponse(t, now))
	}
	return responses
}

func (s *taskServiceImpl) respond(t task.Task) *task.TaskResponse {
	resp := task.ToResponse(t, s.now())
	return &resp
}

func (s *taskServiceImpl) notify(ctx context.Context, req notification.CreateNotificationRequest) {
	if err := s.notifier.QueueNotification(ctx, req); err != nil {
		slog.Warn("failed to queue task notification", "user_id", req.UserID, "type", req.Type, "error", err)
	}
}

// visible loads a task the caller assigned, was assigned, or oversees as chairman.
func (s *taskServiceImpl) visible(ctx context.Context, caller *user.User, id int64) (task.Task, error) {
	t, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	if t.AssignedTo == caller.ID || t.AssignedBy == caller.ID || caller.Role == user.RoleChairman {
		return t, nil
	}
	return task.Task{}, user.ErrForbidden
}

// assigned locks an open task belonging to the caller. Call it inside a transaction.
func (s *taskServiceImpl) assigned(ctx context.Context, caller *user.User, id int64) (task.Task, error) {
	t, err := s.taskRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	if t.AssignedTo != caller.ID {
		return task.Task{}, task.ErrNotAssignee
	}
	if !t.Status.Open() {
		return task.Task{}, task.ErrTaskNotOpen
	}
	return t, nil
}

func (s *taskServiceImpl) ListMine(ctx context.Context, caller *user.User) ([]task.TaskResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListByAssignee(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	return s.toResponses(tasks), nil
}

func (s *taskServiceImpl) ListAssignedByMe(ctx context.Context, caller *user.User) ([]task.TaskResponse, error) {
	if err := user.RequireRole(caller, user.RolesSupervisor...); err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListByAssigner(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	return s.toResponses(tasks), nil
}

func (s *taskServiceImpl) Get(ctx context.Context, caller *user.User, id int64) (*task.TaskResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	t, err := s.visible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.respond(t), nil
}

func (s *taskServiceImpl) ListProgress(ctx context.Context, caller *user.User, taskID int64) ([]task.ProgressResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	if _, err := s.visible(ctx, caller, taskID); err != nil {
		return nil, err
	}
	progress, err := s.progressRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	responses := make([]task.ProgressResponse, 0, len(progress))
	for _, p := range progress {
		responses = append(responses, task.ToProgressResponse(p))
	}
	return responses, nil
}

// MyOpenTasks returns the caller's assigned and in-progress tasks.
func (s *taskServiceImpl) MyOpenTasks(ctx context.Context, caller *user.User) ([]task.Task, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListByAssignee(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	open := []task.Task{}
	for _, t := range tasks {
		if t.Status.Open() {
			open = append(open, t)
		}
	}
	return open, nil
}

func (s *taskServiceImpl) Create(ctx context.Context, caller *user.User, req task.CreateTaskRequest) (*task.TaskResponse, error) {
	if err := user.RequireRole(caller, user.RolesSupervisor...); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.AssignedTo == caller.ID {
		return nil, task.ErrCannotAssignToSelf
	}

	assignee, err := s.userRepo.GetByID(ctx, req.AssignedTo)
	if errors.Is(err, user.ErrUserNotFound) || (err == nil && !assignee.IsActive) {
		return nil, task.ErrAssigneeNotFound
	}
	if err != nil {
		return nil, err
	}

	duties := req.RelatedDuties
	if duties == nil {
		duties = []int64{}
	}
	created, err := s.taskRepo.Create(ctx, task.Task{
		Title:                  req.Title,
		Description:            req.Description,
		AssignedBy:             caller.ID,
		AssignedTo:             assignee.ID,
		RelatedDuties:          duties,
		PlannedCompletionDate:  req.PlannedCompletionDate,
		CompletionRequirements: req.CompletionRequirements,
		Priority:               req.Priority,
	})
	if err != nil {
		return nil, err
	}

	relatedID := created.ID
	s.notify(ctx, notification.CreateNotificationRequest{
		UserID:    assignee.ID,
		Type:      notification.TypeSystem,
		Title:     "New task assigned",
		Content:   fmt.Sprintf("You have been assigned %q, due %s.", created.Title, created.PlannedCompletionDate.Format("2006-01-02")),
		RelatedID: &relatedID,
	})
	return s.respond(created), nil
}

// ReportProgress appends a progress record. The first report starts the task
// and a revised due date replaces the planned one.
func (s *taskServiceImpl) ReportProgress(ctx context.Context, caller *user.User, taskID int64, req task.ProgressRequest) (*task.ProgressResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var created task.Progress
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := s.assigned(ctx, caller, taskID)
		if err != nil {
			return err
		}

		created, err = s.progressRepo.Create(ctx, task.Progress{
			TaskID:                 t.ID,
			UserID:                 caller.ID,
			Date:                   s.now(),
			ProgressPercentage:     req.ProgressPercentage,
			ProgressNote:           req.ProgressNote,
			AdjustedCompletionDate: req.AdjustedCompletionDate,
			DelayReason:            req.DelayReason,
		})
		if err != nil {
			return err
		}

		from := t.Status
		changed := false
		if t.Status == task.StatusAssigned {
			t.Status = task.StatusInProgress
			changed = true
		}
		if req.AdjustedCompletionDate != nil {
			t.PlannedCompletionDate = *req.AdjustedCompletionDate
			changed = true
		}
		if changed {
			_, err = s.taskRepo.Update(ctx, t, from)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := task.ToProgressResponse(created)
	return &resp, nil
}

func (s *taskServiceImpl) Complete(ctx context.Context, caller *user.User, taskID int64, req task.CompleteRequest) (*task.TaskResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var updated task.Task
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := s.assigned(ctx, caller, taskID)
		if err != nil {
			return err
		}
		from := t.Status
		score := req.SelfEvaluationScore
		t.Status = task.StatusCompleted
		t.CompletionReport = &req.CompletionReport
		t.CompletionAttachments = req.CompletionAttachments
		t.SelfEvaluationScore = &score
		t.SelfEvaluationNote = req.SelfEvaluationNote

		updated, err = s.taskRepo.Update(ctx, t, from)
		return err
	})
	if err != nil {
		return nil, err
	}

	relatedID := updated.ID
	s.notify(ctx, notification.CreateNotificationRequest{
		UserID:    updated.AssignedBy,
		Type:      notification.TypeSystem,
		Title:     "Task completed",
		Content:   fmt.Sprintf("%q is ready for review.", updated.Title),
		RelatedID: &relatedID,
	})
	return s.respond(updated), nil
}

// Review closes a completed task. Only the assigner or the chairman may review.
func (s *taskServiceImpl) Review(ctx context.Context, caller *user.User, taskID int64, req task.ReviewRequest) (*task.TaskResponse, error) {
	if err := user.RequireRole(caller, user.RolesSupervisor...); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	score := req.SupervisorEvaluationScore
	var updated task.Task
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := s.taskRepo.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if t.AssignedBy != caller.ID && caller.Role != user.RoleChairman {
			return task.ErrNotAssigner
		}
		if t.Status != task.StatusCompleted {
			return task.ErrTaskNotCompleted
		}

		now := s.now()
		t.Status = task.StatusClosed
		t.SupervisorEvaluationScore = &score
		t.SupervisorEvaluationNote = &req.SupervisorEvaluationNote
		t.ClosedAt = &now

		updated, err = s.taskRepo.Update(ctx, t, task.StatusCompleted)
		return err
	})
	if err != nil {
		return nil, err
	}

	relatedID := updated.ID
	s.notify(ctx, notification.CreateNotificationRequest{
		UserID:    updated.AssignedTo,
		Type:      notification.TypeSystem,
		Title:     "Task reviewed",
		Content:   fmt.Sprintf("%q was closed with a score of %d.", updated.Title, score),
		RelatedID: &relatedID,
	})
	return s.respond(updated), nil
}

// NotifyOverdue reminds assignees of overdue tasks, at most once per task
// within the grace period. Reminders are stored synchronously so the next run
// sees them.
func (s *taskServiceImpl) NotifyOverdue(ctx context.Context) (int, error) {
	now := s.now()
	overdue, err := s.taskRepo.ListOverdue(ctx, now)
	if err != nil {
		return 0, err
	}

	notified := 0
	for _, t := range overdue {
		relatedID := t.ID
		seen, err := s.history.ExistsSince(ctx, t.AssignedTo, notification.TypeOverdueTask, &relatedID, now.Add(-s.overdueGrace))
		if err != nil {
			return notified, err
		}
		if seen {
			continue
		}
		_, err = s.notifier.SendNow(ctx, notification.CreateNotificationRequest{
			UserID:    t.AssignedTo,
			Type:      notification.TypeOverdueTask,
			Title:     "Task overdue",
			Content:   fmt.Sprintf("%q was due %s.", t.Title, t.PlannedCompletionDate.Format("2006-01-02")),
			RelatedID: &relatedID,
		})
		if err != nil {
			return notified, err
		}
		notified++
	}
	return notified, nil
}
