package worklog

import "time"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusReviewed  Status = "reviewed"
)

// Alignment grades how well a work item matches the related job duties.
type Alignment string

const (
	AlignmentFull    Alignment = "fully_aligned"
	AlignmentPartial Alignment = "partially_aligned"
	AlignmentNone    Alignment = "not_aligned"
)

func (a Alignment) Valid() bool {
	switch a {
	case AlignmentFull, AlignmentPartial, AlignmentNone:
		return true
	}
	return false
}

// WorkLog is one user's record for one day.
type WorkLog struct {
	ID          int64
	UserID      int64
	Date        time.Time
	Status      Status
	SubmittedAt *time.Time
	ReviewedAt  *time.Time
	ReviewedBy  *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type WorkItem struct {
	ID                       int64
	WorkLogID                int64
	WorkCode                 *string
	WorkName                 string
	PlannedContent           *string
	ExecutionResult          string
	RelatedDuties            []int64
	PlannedCompletionDate    *time.Time
	ActualCompletionDate     *time.Time
	Attachments              []string
	SelfEvaluation           *Alignment
	SelfEvaluationNote       *string
	SupervisorEvaluation     *Alignment
	SupervisorEvaluationNote *string
	SortOrder                int
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// PendingReview counts submitted logs awaiting review in one department.
type PendingReview struct {
	DepartmentID int64
	Count        int64
}
