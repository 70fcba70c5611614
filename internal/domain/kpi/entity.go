package kpi

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type Definition struct {
	ID                int64
	PositionID        int64
	Category          string
	Name              string
	Description       *string
	Unit              *string
	CalculationMethod *string
	Weight            decimal.Decimal
	TargetValue       *decimal.Decimal
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Actual is a measured value for one definition, user and period.
type Actual struct {
	ID              int64
	KpiDefinitionID int64
	UserID          int64
	Period          string
	ActualValue     decimal.Decimal
	EmployeeNote    *string
	Status          Status
	ReviewedBy      *int64
	ReviewedAt      *time.Time
	SupervisorNote  *string
	AchievementRate *decimal.Decimal
	Score           *decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

var hundred = decimal.NewFromInt(100)

// Achievement returns actual/target*100 and the weighted score rate*weight/100,
// both rounded to two places. Both are nil when the definition has no usable target.
func Achievement(def Definition, actual decimal.Decimal) (rate *decimal.Decimal, score *decimal.Decimal) {
	if def.TargetValue == nil || def.TargetValue.IsZero() {
		return nil, nil
	}
	r := actual.Div(*def.TargetValue).Mul(hundred).Round(2)
	s := r.Mul(def.Weight).Div(hundred).Round(2)
	return &r, &s
}
