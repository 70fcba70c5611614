package task

import (
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/pkg/validator"
)

type CreateTaskRequest struct {
	Title                  string    `json:"title" validate:"required,max=200"`
	Description            string    `json:"description" validate:"required"`
	AssignedTo             int64     `json:"assigned_to" validate:"required,gt=0"`
	RelatedDuties          []int64   `json:"related_duties"`
	PlannedCompletionDate  time.Time `json:"planned_completion_date" validate:"required"`
	CompletionRequirements string    `json:"completion_requirements" validate:"required"`
	Priority               Priority  `json:"priority" validate:"omitempty,oneof=low medium high"`
}

func (r *CreateTaskRequest) Validate() error {
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	return validator.Struct(r)
}

type ProgressRequest struct {
	ProgressPercentage     int        `json:"progress_percentage" validate:"gte=0,lte=100"`
	ProgressNote           string     `json:"progress_note" validate:"required"`
	AdjustedCompletionDate *time.Time `json:"adjusted_completion_date,omitempty"`
	DelayReason            *string    `json:"delay_reason,omitempty"`
}

func (r *ProgressRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	if r.AdjustedCompletionDate != nil && (r.DelayReason == nil || validator.IsEmpty(*r.DelayReason)) {
		var errs validator.ValidationErrors
		errs.Add("delay_reason", ErrDelayReasonRequired.Error())
		return errs
	}
	return nil
}

type CompleteRequest struct {
	CompletionReport      string   `json:"completion_report" validate:"required"`
	CompletionAttachments []string `json:"completion_attachments,omitempty" validate:"omitempty,dive,url"`
	SelfEvaluationScore   int      `json:"self_evaluation_score" validate:"required,gte=1,lte=5"`
	SelfEvaluationNote    *string  `json:"self_evaluation_note,omitempty"`
}

func (r *CompleteRequest) Validate() error {
	return validator.Struct(r)
}

type ReviewRequest struct {
	SupervisorEvaluationScore int    `json:"supervisor_evaluation_score" validate:"required,gte=1,lte=5"`
	SupervisorEvaluationNote  string `json:"supervisor_evaluation_note" validate:"required"`
}

func (r *ReviewRequest) Validate() error {
	return validator.Struct(r)
}

type TaskResponse struct {
	ID                        int64      `json:"id"`
	Title                     string     `json:"title"`
	Description               string     `json:"description"`
	AssignedBy                int64      `json:"assigned_by"`
	AssignedTo                int64      `json:"assigned_to"`
	RelatedDuties             []int64    `json:"related_duties"`
	PlannedCompletionDate     time.Time  `json:"planned_completion_date"`
	CompletionRequirements    string     `json:"completion_requirements"`
	Priority                  Priority   `json:"priority"`
	Status                    Status     `json:"status"`
	Overdue                   bool       `json:"overdue"`
	CompletionReport          *string    `json:"completion_report"`
	CompletionAttachments     []string   `json:"completion_attachments"`
	SelfEvaluationScore       *int       `json:"self_evaluation_score"`
	SelfEvaluationNote        *string    `json:"self_evaluation_note"`
	SupervisorEvaluationScore *int       `json:"supervisor_evaluation_score"`
	SupervisorEvaluationNote  *string    `json:"supervisor_evaluation_note"`
	ClosedAt                  *time.Time `json:"closed_at"`
	CreatedAt                 time.Time  `json:"created_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`
}

func ToResponse(t Task, now time.Time) TaskResponse {
	duties := t.RelatedDuties
	if duties == nil {
		duties = []int64{}
	}
	return TaskResponse{
		ID:                        t.ID,
		Title:                     t.Title,
		Description:               t.Description,
		AssignedBy:                t.AssignedBy,
		AssignedTo:                t.AssignedTo,
		RelatedDuties:             duties,
		PlannedCompletionDate:     t.PlannedCompletionDate,
		CompletionRequirements:    t.CompletionRequirements,
		Priority:                  t.Priority,
		Status:                    t.Status,
		Overdue:                   t.Overdue(now),
		CompletionReport:          t.CompletionReport,
		CompletionAttachments:     t.CompletionAttachments,
		SelfEvaluationScore:       t.SelfEvaluationScore,
		SelfEvaluationNote:        t.SelfEvaluationNote,
		SupervisorEvaluationScore: t.SupervisorEvaluationScore,
		SupervisorEvaluationNote:  t.SupervisorEvaluationNote,
		ClosedAt:                  t.ClosedAt,
		CreatedAt:                 t.CreatedAt,
		UpdatedAt:                 t.UpdatedAt,
	}
}

type ProgressResponse struct {
	ID                     int64      `json:"id"`
	TaskID                 int64      `json:"task_id"`
	UserID                 int64      `json:"user_id"`
	Date                   time.Time  `json:"date"`
	ProgressPercentage     int        `json:"progress_percentage"`
	ProgressNote           string     `json:"progress_note"`
	AdjustedCompletionDate *time.Time `json:"adjusted_completion_date"`
	DelayReason            *string    `json:"delay_reason"`
}

func ToProgressResponse(p Progress) ProgressResponse {
	return ProgressResponse{
		ID:                     p.ID,
		TaskID:                 p.TaskID,
		UserID:                 p.UserID,
		Date:                   p.Date,
		ProgressPercentage:     p.ProgressPercentage,
		ProgressNote:           p.ProgressNote,
		AdjustedCompletionDate: p.AdjustedCompletionDate,
		DelayReason:            p.DelayReason,
	}
}
