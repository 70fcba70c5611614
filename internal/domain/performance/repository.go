package performance

import "context"

type EvaluationRepository interface {
	Create(ctx context.Context, e Evaluation) (Evaluation, error)
	GetByID(ctx context.Context, id int64) (Evaluation, error)
	// ListByUser returns evaluations newest period first.
	ListByUser(ctx context.Context, userID int64) ([]Evaluation, error)
	ListByPeriod(ctx context.Context, period string, departmentID *int64) ([]EvaluationRow, error)
	Update(ctx context.Context, e Evaluation) (Evaluation, error)
}

type CycleRepository interface {
	Create(ctx context.Context, c Cycle) (Cycle, error)
	GetByID(ctx context.Context, id int64) (Cycle, error)
	List(ctx context.Context) ([]Cycle, error)
	GetActive(ctx context.Context) (Cycle, error)
	// DeactivateAll clears the flag on every cycle except keepID.
	DeactivateAll(ctx context.Context, keepID int64) error
	SetActive(ctx context.Context, id int64, active bool) (Cycle, error)
}
