package kpi

import (
	"context"

	"github.com/shopspring/decimal"
)

type DefinitionRepository interface {
	Create(ctx context.Context, d Definition) (Definition, error)
	GetByID(ctx context.Context, id int64) (Definition, error)
	ListActiveByPosition(ctx context.Context, positionID int64) ([]Definition, error)
	ListByPosition(ctx context.Context, positionID int64) ([]Definition, error)
	Update(ctx context.Context, d Definition) (Definition, error)
}

type ActualRepository interface {
	// Upsert inserts or replaces the value for (definition, user, period) and resets it to pending.
	Upsert(ctx context.Context, a Actual) (Actual, error)
	GetByID(ctx context.Context, id int64) (Actual, error)
	GetByKey(ctx context.Context, definitionID, userID int64, period string) (Actual, error)
	ListByUserAndPeriod(ctx context.Context, userID int64, period string) ([]Actual, error)
	// ListPendingByDepartment returns pending actuals of active users of the department.
	ListPendingByDepartment(ctx context.Context, departmentID int64) ([]Actual, error)
	Review(ctx context.Context, a Actual) (Actual, error)
	SumApprovedScore(ctx context.Context, userID int64, period string) (*decimal.Decimal, error)
}
