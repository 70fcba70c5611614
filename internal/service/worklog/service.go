package worklog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/domain/notification"
	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	"github.com/perfhub/perfhub-backend-go/internal/domain/worklog"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/database"
)

type workLogServiceImpl struct {
	logRepo  worklog.WorkLogRepository
	itemRepo worklog.WorkItemRepository
	userRepo user.UserRepository
	notifier notification.Sender
	tx       database.TxRunner
	now      func() time.Time
}

func NewWorkLogService(
	logRepo worklog.WorkLogRepository,
	itemRepo worklog.WorkItemRepository,
	userRepo user.UserRepository,
	notifier notification.Sender,
	tx database.TxRunner,
) worklog.WorkLogService {
	return &workLogServiceImpl{
		logRepo:  logRepo,
		itemRepo: itemRepo,
		userRepo: userRepo,
		notifier: notifier,
		tx:       tx,
		now:      time.Now,
	}
}

func toLogResponses(logs []worklog.WorkLog) []worklog.WorkLogResponse {
	responses := make([]worklog.WorkLogResponse, 0, len(logs))
	for _, l := range logs {
		responses = append(responses, worklog.ToResponse(l))
	}
	return responses
}

func toItemResponses(items []worklog.WorkItem) []worklog.WorkItemResponse {
	responses := make([]worklog.WorkItemResponse, 0, len(items))
	for _, i := range items {
		responses = append(responses, worklog.ToItemResponse(i))
	}
	return responses
}

// reviewerOf reports whether caller may review logs written by author.
func reviewerOf(caller, author *user.User) bool {
	if caller.Role == user.RoleChairman {
		return true
	}
	return caller.Role == user.RoleSupervisor && caller.SameDepartment(author)
}

func (s *workLogServiceImpl) authorOf(ctx context.Context, l worklog.WorkLog) (*user.User, error) {
	author, err := s.userRepo.GetByID(ctx, l.UserID)
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// viewable loads a log the caller may read: their own, or one they review.
func (s *workLogServiceImpl) viewable(ctx context.Context, caller *user.User, id int64) (worklog.WorkLog, error) {
	l, err := s.logRepo.GetByID(ctx, id)
	if err != nil {
		return worklog.WorkLog{}, err
	}
	if l.UserID == caller.ID {
		return l, nil
	}
	if !caller.IsSupervisor() {
		return worklog.WorkLog{}, user.ErrForbidden
	}
	author, err := s.authorOf(ctx, l)
	if err != nil {
		return worklog.WorkLog{}, err
	}
	if !reviewerOf(caller, author) {
		return worklog.WorkLog{}, user.ErrForbidden
	}
	return l, nil
}

// editable loads one of the caller's own draft logs.
func (s *workLogServiceImpl) editable(ctx context.Context, caller *user.User, id int64) (worklog.WorkLog, error) {
	l, err := s.logRepo.GetByID(ctx, id)
	if err != nil {
		return worklog.WorkLog{}, err
	}
	if l.UserID != caller.ID {
		return worklog.WorkLog{}, worklog.ErrNotLogOwner
	}
	if l.Status != worklog.StatusDraft {
		return worklog.WorkLog{}, worklog.ErrWorkLogNotEditable
	}
	return l, nil
}

// reviewable loads a submitted log the caller may review.
func (s *workLogServiceImpl) reviewable(ctx context.Context, caller *user.User, id int64) (worklog.WorkLog, *user.User, error) {
	l, err := s.logRepo.GetByID(ctx, id)
	if err != nil {
		return worklog.WorkLog{}, nil, err
	}
	if l.UserID == caller.ID {
		return worklog.WorkLog{}, nil, user.ErrSelfReview
	}
	author, err := s.authorOf(ctx, l)
	if err != nil {
		return worklog.WorkLog{}, nil, err
	}
	if !reviewerOf(caller, author) {
		return worklog.WorkLog{}, nil, user.ErrForbidden
	}
	if l.Status != worklog.StatusSubmitted {
		return worklog.WorkLog{}, nil, worklog.ErrWorkLogNotSubmitted
	}
	return l, author, nil
}

// ListMine returns the caller's logs, newest date first.
func (s *workLogServiceImpl) ListMine(ctx context.Context, caller *user.User, filter worklog.ListWorkLogsFilter) ([]worklog.WorkLogResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	logs, err := s.logRepo.ListByUser(ctx, caller.ID, filter)
	if err != nil {
		return nil, err
	}
	return toLogResponses(logs), nil
}

func (s *workLogServiceImpl) Get(ctx context.Context, caller *user.User, id int64) (*worklog.WorkLogDetailResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	l, err := s.viewable(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	items, err := s.itemRepo.ListByLog(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	return &worklog.WorkLogDetailResponse{
		WorkLogResponse: worklog.ToResponse(l),
		Items:           toItemResponses(items),
	}, nil
}

func (s *workLogServiceImpl) ListItems(ctx context.Context, caller *user.User, workLogID int64) ([]worklog.WorkItemResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	if _, err := s.viewable(ctx, caller, workLogID); err != nil {
		return nil, err
	}
	items, err := s.itemRepo.ListByLog(ctx, workLogID)
	if err != nil {
		return nil, err
	}
	return toItemResponses(items), nil
}

// ListUnreviewed returns submitted logs of the caller's department. A caller
// without a department sees nothing.
func (s *workLogServiceImpl) ListUnreviewed(ctx context.Context, caller *user.User) ([]worklog.WorkLogResponse, error) {
	if err := user.RequireRole(caller, user.RolesSupervisor...); err != nil {
		return nil, err
	}
	if caller.DepartmentID == nil {
		return []worklog.WorkLogResponse{}, nil
	}
	logs, err := s.logRepo.ListSubmittedByDepartment(ctx, *caller.DepartmentID)
	if err != nil {
		return nil, err
	}
	return toLogResponses(logs), nil
}

func (s *workLogServiceImpl) Create(ctx context.Context, caller *user.User, req worklog.CreateWorkLogRequest) (*worklog.WorkLogResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	date, err := req.Validate()
	if err != nil {
		return nil, err
	}

	created, err := s.logRepo.Create(ctx, worklog.WorkLog{UserID: caller.ID, Date: date})
	if err != nil {
		return nil, err
	}
	resp := worklog.ToResponse(created)
	return &resp, nil
}

func itemFromRequest(req worklog.WorkItemRequest) worklog.WorkItem {
	item := worklog.WorkItem{
		WorkCode:              req.WorkCode,
		WorkName:              req.WorkName,
		PlannedContent:        req.PlannedContent,
		ExecutionResult:       req.ExecutionResult,
		RelatedDuties:         req.RelatedDuties,
		PlannedCompletionDate: req.PlannedCompletionDate,
		ActualCompletionDate:  req.ActualCompletionDate,
		Attachments:           req.Attachments,
		SelfEvaluation:        req.SelfEvaluation,
		SelfEvaluationNote:    req.SelfEvaluationNote,
	}
	if item.RelatedDuties == nil {
		item.RelatedDuties = []int64{}
	}
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}
	return item
}

// AddItem appends an item to a draft log. Without an explicit sort order the
// item goes last.
func (s *workLogServiceImpl) AddItem(ctx context.Context, caller *user.User, workLogID int64, req worklog.WorkItemRequest) (*worklog.WorkItemResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var created worklog.WorkItem
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		l, err := s.editable(ctx, caller, workLogID)
		if err != nil {
			return err
		}

		item := itemFromRequest(req)
		item.WorkLogID = l.ID
		if req.SortOrder == nil {
			count, err := s.itemRepo.CountByLog(ctx, l.ID)
			if err != nil {
				return err
			}
			item.SortOrder = int(count) + 1
		}

		created, err = s.itemRepo.Create(ctx, item)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := worklog.ToItemResponse(created)
	return &resp, nil
}

func (s *workLogServiceImpl) UpdateItem(ctx context.Context, caller *user.User, itemID int64, req worklog.WorkItemRequest) (*worklog.WorkItemResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if _, err := s.editable(ctx, caller, existing.WorkLogID); err != nil {
		return nil, err
	}

	item := itemFromRequest(req)
	item.ID = existing.ID
	item.WorkLogID = existing.WorkLogID
	if req.SortOrder == nil {
		item.SortOrder = existing.SortOrder
	}

	updated, err := s.itemRepo.Update(ctx, item)
	if err != nil {
		return nil, err
	}
	resp := worklog.ToItemResponse(updated)
	return &resp, nil
}

func (s *workLogServiceImpl) DeleteItem(ctx context.Context, caller *user.User, itemID int64) error {
	if err := user.RequireCaller(caller); err != nil {
		return err
	}
	existing, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if _, err := s.editable(ctx, caller, existing.WorkLogID); err != nil {
		return err
	}
	return s.itemRepo.Delete(ctx, itemID)
}

// Submit moves a draft log with at least one item to submitted.
func (s *workLogServiceImpl) Submit(ctx context.Context, caller *user.User, workLogID int64) (*worklog.WorkLogResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}

	var submitted worklog.WorkLog
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		l, err := s.editable(ctx, caller, workLogID)
		if err != nil {
			return err
		}
		count, err := s.itemRepo.CountByLog(ctx, l.ID)
		if err != nil {
			return err
		}
		if count == 0 {
			return worklog.ErrWorkLogEmpty
		}
		submitted, err = s.logRepo.UpdateStatus(ctx, l.ID, worklog.StatusDraft, worklog.StatusSubmitted, nil, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := worklog.ToResponse(submitted)
	return &resp, nil
}

func (s *workLogServiceImpl) ReviewItem(ctx context.Context, caller *user.User, itemID int64, req worklog.ReviewItemRequest) (*worklog.WorkItemResponse, error) {
	if err := user.RequireRole(caller, user.RolesSupervisor...); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.reviewable(ctx, caller, item.WorkLogID); err != nil {
		return nil, err
	}

	reviewed, err := s.itemRepo.UpdateSupervisorEvaluation(ctx, itemID, req.SupervisorEvaluation, req.SupervisorEvaluationNote)
	if err != nil {
		return nil, err
	}
	resp := worklog.ToItemResponse(reviewed)
	return &resp, nil
}

// CompleteReview closes the review once every item carries a supervisor
// evaluation and lets the author know.
func (s *workLogServiceImpl) CompleteReview(ctx context.Context, caller *user.User, workLogID int64) (*worklog.WorkLogResponse, error) {
	if err := user.RequireRole(caller, user.RolesSupervisor...); err != nil {
		return nil, err
	}

	var reviewed worklog.WorkLog
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		l, _, err := s.reviewable(ctx, caller, workLogID)
		if err != nil {
			return err
		}
		pending, err := s.itemRepo.CountUnreviewedByLog(ctx, l.ID)
		if err != nil {
			return err
		}
		if pending > 0 {
			return worklog.ErrItemsNotReviewed
		}
		reviewerID := caller.ID
		reviewed, err = s.logRepo.UpdateStatus(ctx, l.ID, worklog.StatusSubmitted, worklog.StatusReviewed, &reviewerID, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	relatedID := reviewed.ID
	if err := s.notifier.QueueNotification(ctx, notification.CreateNotificationRequest{
		UserID:    reviewed.UserID,
		Type:      notification.TypeSystem,
		Title:     "Work log reviewed",
		Content:   fmt.Sprintf("Your work log for %s has been reviewed.", reviewed.Date.Format("2006-01-02")),
		RelatedID: &relatedID,
	}); err != nil {
		slog.Warn("failed to queue review notification", "work_log_id", reviewed.ID, "error", err)
	}

	resp := worklog.ToResponse(reviewed)
	return &resp, nil
}
