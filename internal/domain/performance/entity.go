package performance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusCompleted Status = "completed"
)

// Evaluation is the periodic review of one user, unique per (user, period).
type Evaluation struct {
	ID                  int64
	UserID              int64
	EvaluatedBy         int64
	Period              string
	AutoCalculatedScore *decimal.Decimal
	FinalScore          decimal.Decimal
	AdjustmentReason    *string
	Strengths           *string
	Improvements        *string
	Comments            *string
	InterviewDate       *time.Time
	InterviewNotes      *string
	Status              Status
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Adjusted reports whether the final score differs from the calculated one.
func (e *Evaluation) Adjusted() bool {
	if e.AutoCalculatedScore == nil {
		return false
	}
	return !e.FinalScore.Equal(*e.AutoCalculatedScore)
}

// Cycle is an administrative date range defining an evaluation period.
type Cycle struct {
	ID        int64
	Name      string
	StartDate time.Time
	EndDate   time.Time
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EvaluationRow is an evaluation joined with the employee's name for reports.
type EvaluationRow struct {
	Evaluation
	UserName       string
	DepartmentName string
}
