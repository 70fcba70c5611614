package task

import "time"

type Status string

const (
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusClosed     Status = "closed"
)

// Open reports whether the assignee still has work to do.
func (s Status) Open() bool {
	return s == StatusAssigned || s == StatusInProgress
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Task struct {
	ID                        int64
	Title                     string
	Description               string
	AssignedBy                int64
	AssignedTo                int64
	RelatedDuties             []int64
	PlannedCompletionDate     time.Time
	CompletionRequirements    string
	Priority                  Priority
	Status                    Status
	CompletionReport          *string
	CompletionAttachments     []string
	SelfEvaluationScore       *int
	SelfEvaluationNote        *string
	SupervisorEvaluationScore *int
	SupervisorEvaluationNote  *string
	ClosedAt                  *time.Time
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// Overdue reports whether the task is still open past its planned date.
func (t *Task) Overdue(now time.Time) bool {
	return t.Status.Open() && t.PlannedCompletionDate.Before(now)
}

// Progress is an append-only report against a task.
type Progress struct {
	ID                     int64
	TaskID                 int64
	UserID                 int64
	Date                   time.Time
	ProgressPercentage     int
	ProgressNote           string
	AdjustedCompletionDate *time.Time
	DelayReason            *string
	CreatedAt              time.Time
}
