package worklog

import (
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/pkg/validator"
)

type ListWorkLogsFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
}

func (f ListWorkLogsFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		errs.Add("end_date", "end_date must not be before start_date")
	}
	return errs.Err()
}

type CreateWorkLogRequest struct {
	Date string `json:"date"`
}

func (r *CreateWorkLogRequest) Validate() (time.Time, error) {
	var errs validator.ValidationErrors
	date, ok := validator.IsValidDate(r.Date)
	if validator.IsEmpty(r.Date) {
		errs.Add("date", "date is required")
	} else if !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	return date, errs.Err()
}

// WorkItemRequest is used both to add and to update an item of a draft log.
type WorkItemRequest struct {
	WorkCode              *string    `json:"work_code,omitempty" validate:"omitempty,max=20"`
	WorkName              string     `json:"work_name" validate:"required,max=200"`
	PlannedContent        *string    `json:"planned_content,omitempty"`
	ExecutionResult       string     `json:"execution_result" validate:"required"`
	RelatedDuties         []int64    `json:"related_duties"`
	PlannedCompletionDate *time.Time `json:"planned_completion_date,omitempty"`
	ActualCompletionDate  *time.Time `json:"actual_completion_date,omitempty"`
	Attachments           []string   `json:"attachments,omitempty" validate:"omitempty,dive,url"`
	SelfEvaluation        *Alignment `json:"self_evaluation,omitempty" validate:"omitempty,oneof=fully_aligned partially_aligned not_aligned"`
	SelfEvaluationNote    *string    `json:"self_evaluation_note,omitempty"`
	SortOrder             *int       `json:"sort_order,omitempty" validate:"omitempty,gte=0"`
}

func (r *WorkItemRequest) Validate() error {
	return validator.Struct(r)
}

type ReviewItemRequest struct {
	SupervisorEvaluation     Alignment `json:"supervisor_evaluation" validate:"required,oneof=fully_aligned partially_aligned not_aligned"`
	SupervisorEvaluationNote string    `json:"supervisor_evaluation_note" validate:"required"`
}

func (r *ReviewItemRequest) Validate() error {
	return validator.Struct(r)
}

type WorkLogResponse struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Date        string     `json:"date"`
	Status      Status     `json:"status"`
	SubmittedAt *time.Time `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	ReviewedBy  *int64     `json:"reviewed_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func ToResponse(l WorkLog) WorkLogResponse {
	return WorkLogResponse{
		ID:          l.ID,
		UserID:      l.UserID,
		Date:        l.Date.Format("2006-01-02"),
		Status:      l.Status,
		SubmittedAt: l.SubmittedAt,
		ReviewedAt:  l.ReviewedAt,
		ReviewedBy:  l.ReviewedBy,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

type WorkItemResponse struct {
	ID                       int64      `json:"id"`
	WorkLogID                int64      `json:"work_log_id"`
	WorkCode                 *string    `json:"work_code"`
	WorkName                 string     `json:"work_name"`
	PlannedContent           *string    `json:"planned_content"`
	ExecutionResult          string     `json:"execution_result"`
	RelatedDuties            []int64    `json:"related_duties"`
	PlannedCompletionDate    *time.Time `json:"planned_completion_date"`
	ActualCompletionDate     *time.Time `json:"actual_completion_date"`
	Attachments              []string   `json:"attachments"`
	SelfEvaluation           *Alignment `json:"self_evaluation"`
	SelfEvaluationNote       *string    `json:"self_evaluation_note"`
	SupervisorEvaluation     *Alignment `json:"supervisor_evaluation"`
	SupervisorEvaluationNote *string    `json:"supervisor_evaluation_note"`
	SortOrder                int        `json:"sort_order"`
}

func ToItemResponse(i WorkItem) WorkItemResponse {
	duties := i.RelatedDuties
	if duties == nil {
		duties = []int64{}
	}
	return WorkItemResponse{
		ID:                       i.ID,
		WorkLogID:                i.WorkLogID,
		WorkCode:                 i.WorkCode,
		WorkName:                 i.WorkName,
		PlannedContent:           i.PlannedContent,
		ExecutionResult:          i.ExecutionResult,
		RelatedDuties:            duties,
		PlannedCompletionDate:    i.PlannedCompletionDate,
		ActualCompletionDate:     i.ActualCompletionDate,
		Attachments:              i.Attachments,
		SelfEvaluation:           i.SelfEvaluation,
		SelfEvaluationNote:       i.SelfEvaluationNote,
		SupervisorEvaluation:     i.SupervisorEvaluation,
		SupervisorEvaluationNote: i.SupervisorEvaluationNote,
		SortOrder:                i.SortOrder,
	}
}

// WorkLogDetailResponse is a log together with its items.
type WorkLogDetailResponse struct {
	WorkLogResponse
	Items []WorkItemResponse `json:"items"`
}
