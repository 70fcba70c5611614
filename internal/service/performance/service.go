package performance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/perfhub/perfhub-backend-go/internal/domain/kpi"
	"github.com/perfhub/perfhub-backend-go/internal/domain/notification"
	"github.com/perfhub/perfhub-backend-go/internal/domain/performance"
	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/export"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/validator"
)

type performanceServiceImpl struct {
	evaluationRepo performance.EvaluationRepository
	actualRepo     kpi.ActualRepository
	userRepo       user.UserRepository
	notifier       notification.Sender
}

func NewPerformanceService(
	evaluationRepo performance.EvaluationRepository,
	actualRepo kpi.ActualRepository,
	userRepo user.UserRepository,
	notifier notification.Sender,
) performance.PerformanceService {
	return &performanceServiceImpl{
		evaluationRepo: evaluationRepo,
		actualRepo:     actualRepo,
		userRepo:       userRepo,
		notifier:       notifier,
	}
}

func blank(s *string) bool {
	return s == nil || validator.IsEmpty(*s)
}

// checkAdjustment requires a reason whenever the final score departs from
// the calculated one.
func checkAdjustment(e performance.Evaluation) error {
	if e.Adjusted() && blank(e.AdjustmentReason) {
		return performance.ErrAdjustmentReasonRequired
	}
	return nil
}

// employeeFor loads the employee a supervisor may evaluate.
func (s *performanceServiceImpl) employeeFor(ctx context.Context, caller *user.User, userID int64) (*user.User, error) {
	if userID == caller.ID {
		return nil, user.ErrSelfReview
	}
	employee, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, user.ErrUserNotFound) || (err == nil && !employee.IsActive) {
		return nil, performance.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	if caller.Role != user.RoleChairman && !caller.SameDepartment(&employee) {
		return nil, performance.ErrNotSameDepartment
	}
	return &employee, nil
}

func (s *performanceServiceImpl) notifyInterview(ctx context.Context, e performance.Evaluation) {
	if e.Status != performance.StatusCompleted || e.InterviewDate == nil {
		return
	}
	relatedID := e.ID
	if err := s.notifier.QueueNotification(ctx, notification.CreateNotificationRequest{
		UserID:    e.UserID,
		Type:      notification.TypePerformanceInterview,
		Title:     "Performance interview scheduled",
		Content:   fmt.Sprintf("Your %s review interview is on %s.", e.Period, e.InterviewDate.Format("2006-01-02 15:04")),
		RelatedID: &relatedID,
	}); err != nil {
		slog.Warn("failed to queue interview notification", "evaluation_id", e.ID, "error", err)
	}
}

func (s *performanceServiceImpl) ListMine(ctx context.Context, caller *user.User) ([]performance.EvaluationResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	evaluations, err := s.evaluationRepo.ListByUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	responses := make([]performance.EvaluationResponse, 0, len(evaluations))
	for _, e := range evaluations {
		responses = append(responses, performance.ToResponse(e))
	}
	return responses, nil
}

// Get returns an evaluation to its subject, its evaluator, a supervisor of
// the subject's department or the chairman.
func (s *performanceServiceImpl) Get(ctx context.Context, caller *user.User, id int64) (*performance.EvaluationResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	e, err := s.evaluationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := e.UserID == caller.ID || e.EvaluatedBy == caller.ID || caller.Role == user.RoleChairman
	if !allowed && caller.Role == user.RoleSupervisor {
		subject, err := s.userRepo.GetByID(ctx, e.UserID)
		if err != nil && !errors.Is(err, user.ErrUserNotFound) {
			return nil, err
		}
		allowed = err == nil && caller.SameDepartment(&subject)
	}
	if !allowed {
		return nil, user.ErrForbidden
	}

	resp := performance.ToResponse(e)
	return &resp, nil
}

func (s *performanceServiceImpl) Create(ctx context.Context, caller *user.User, req performance.CreateEvaluationRequest) (*performance.EvaluationResponse, error) {
	if err := user.RequireRole(caller, user.RolesSupervisor...); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	employee, err := s.employeeFor(ctx, caller, req.UserID)
	if err != nil {
		return nil, err
	}

	auto, err := s.actualRepo.SumApprovedScore(ctx, employee.ID, req.Period)
	if err != nil {
		return nil, err
	}

	e := performance.Evaluation{
		UserID:              employee.ID,
		EvaluatedBy:         caller.ID,
		Period:              req.Period,
		AutoCalculatedScore: auto,
		FinalScore:          req.FinalScore,
		AdjustmentReason:    req.AdjustmentReason,
		Strengths:           req.Strengths,
		Improvements:        req.Improvements,
		Comments:            req.Comments,
		InterviewDate:       req.InterviewDate,
		InterviewNotes:      req.InterviewNotes,
		Status:              performance.StatusDraft,
	}
	if req.Complete {
		e.Status = performance.StatusCompleted
	}
	if err := checkAdjustment(e); err != nil {
		return nil, err
	}

	created, err := s.evaluationRepo.Create(ctx, e)
	if err != nil {
		return nil, err
	}
	s.notifyInterview(ctx, created)

	resp := performance.ToResponse(created)
	return &resp, nil
}

// Update edits a draft evaluation. The calculated score is refreshed so KPI
// approvals made since creation are reflected.
func (s *performanceServiceImpl) Update(ctx context.Context, caller *user.User, req performance.UpdateEvaluationRequest) (*performance.EvaluationResponse, error) {
	if err := user.RequireRole(caller, user.RolesSupervisor...); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	e, err := s.evaluationRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if e.EvaluatedBy != caller.ID && caller.Role != user.RoleChairman {
		return nil, user.ErrForbidden
	}
	if e.Status == performance.StatusCompleted {
		return nil, performance.ErrEvaluationCompleted
	}

	auto, err := s.actualRepo.SumApprovedScore(ctx, e.UserID, e.Period)
	if err != nil {
		return nil, err
	}
	e.AutoCalculatedScore = auto
	e.FinalScore = req.FinalScore
	e.AdjustmentReason = req.AdjustmentReason
	e.Strengths = req.Strengths
	e.Improvements = req.Improvements
	e.Comments = req.Comments
	e.InterviewDate = req.InterviewDate
	e.InterviewNotes = req.InterviewNotes
	if req.Complete {
		e.Status = performance.StatusCompleted
	}
	if err := checkAdjustment(e); err != nil {
		return nil, err
	}

	updated, err := s.evaluationRepo.Update(ctx, e)
	if err != nil {
		return nil, err
	}
	s.notifyInterview(ctx, updated)

	resp := performance.ToResponse(updated)
	return &resp, nil
}

var exportHeaders = []string{
	"Employee", "Department", "Period", "Calculated score", "Final score",
	"Adjustment reason", "Strengths", "Improvements", "Interview date", "Status",
}

func text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ExportPeriod writes the period's evaluations as xlsx. Supervisors export
// their own department, the chairman exports everyone.
func (s *performanceServiceImpl) ExportPeriod(ctx context.Context, caller *user.User, period string, w io.Writer) (string, error) {
	if err := user.RequireRole(caller, user.RolesSupervisor...); err != nil {
		return "", err
	}
	if !validator.IsValidPeriod(period) {
		var errs validator.ValidationErrors
		errs.Add("period", "period must be in YYYY-MM format")
		return "", errs
	}

	var departmentID *int64
	if caller.Role != user.RoleChairman {
		if caller.DepartmentID == nil {
			return "", user.ErrNoDepartment
		}
		departmentID = caller.DepartmentID
	}

	rows, err := s.evaluationRepo.ListByPeriod(ctx, period, departmentID)
	if err != nil {
		return "", err
	}

	table := export.Table{
		Sheet:   "Evaluations",
		Title:   fmt.Sprintf("Performance evaluations %s", period),
		Headers: exportHeaders,
		Widths:  []float64{20, 18, 10, 16, 12, 30, 30, 30, 18, 12},
		Rows:    make([][]interface{}, 0, len(rows)),
	}
	for _, r := range rows {
		auto := ""
		if r.AutoCalculatedScore != nil {
			auto = r.AutoCalculatedScore.StringFixed(2)
		}
		interview := ""
		if r.InterviewDate != nil {
			interview = r.InterviewDate.Format("2006-01-02 15:04")
		}
		final, _ := r.FinalScore.Float64()
		table.Rows = append(table.Rows, []interface{}{
			r.UserName, r.DepartmentName, r.Period, auto, final,
			text(r.AdjustmentReason), text(r.Strengths), text(r.Improvements), interview, string(r.Status),
		})
	}

	if err := export.WriteXLSX(w, table); err != nil {
		return "", err
	}
	return fmt.Sprintf("performance-%s.xlsx", period), nil
}
