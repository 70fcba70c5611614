package kpi

import (
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateDefinitionRequest struct {
	PositionID        int64            `json:"position_id" validate:"required,gt=0"`
	Category          string           `json:"category" validate:"required,max=50"`
	Name              string           `json:"name" validate:"required,max=200"`
	Description       *string          `json:"description,omitempty"`
	Unit              *string          `json:"unit,omitempty" validate:"omitempty,max=50"`
	CalculationMethod *string          `json:"calculation_method,omitempty"`
	Weight            decimal.Decimal  `json:"weight"`
	TargetValue       *decimal.Decimal `json:"target_value,omitempty"`
}

func (r *CreateDefinitionRequest) Validate() error {
	errs, err := validator.Split(validator.Struct(r))
	if err != nil {
		return err
	}
	validateWeight(&errs, r.Weight)
	return errs.Err()
}

type UpdateDefinitionRequest struct {
	ID                int64            `json:"-"`
	Category          string           `json:"category" validate:"required,max=50"`
	Name              string           `json:"name" validate:"required,max=200"`
	Description       *string          `json:"description,omitempty"`
	Unit              *string          `json:"unit,omitempty" validate:"omitempty,max=50"`
	CalculationMethod *string          `json:"calculation_method,omitempty"`
	Weight            decimal.Decimal  `json:"weight"`
	TargetValue       *decimal.Decimal `json:"target_value,omitempty"`
	IsActive          *bool            `json:"is_active,omitempty"`
}

func (r *UpdateDefinitionRequest) Validate() error {
	errs, err := validator.Split(validator.Struct(r))
	if err != nil {
		return err
	}
	validateWeight(&errs, r.Weight)
	return errs.Err()
}

func validateWeight(errs *validator.ValidationErrors, w decimal.Decimal) {
	if w.IsNegative() || w.GreaterThan(hundred) {
		errs.Add("weight", "weight must be between 0 and 100")
	}
}

type SubmitActualRequest struct {
	KpiDefinitionID int64           `json:"kpi_definition_id" validate:"required,gt=0"`
	Period          string          `json:"period" validate:"required,period"`
	ActualValue     decimal.Decimal `json:"actual_value"`
	EmployeeNote    *string         `json:"employee_note,omitempty"`
}

func (r *SubmitActualRequest) Validate() error {
	return validator.Struct(r)
}

type ReviewActualRequest struct {
	SupervisorNote *string `json:"supervisor_note,omitempty"`
}

type DefinitionResponse struct {
	ID                int64            `json:"id"`
	PositionID        int64            `json:"position_id"`
	Category          string           `json:"category"`
	Name              string           `json:"name"`
	Description       *string          `json:"description"`
	Unit              *string          `json:"unit"`
	CalculationMethod *string          `json:"calculation_method"`
	Weight            decimal.Decimal  `json:"weight"`
	TargetValue       *decimal.Decimal `json:"target_value"`
	IsActive          bool             `json:"is_active"`
}

func ToDefinitionResponse(d Definition) DefinitionResponse {
	return DefinitionResponse{
		ID:                d.ID,
		PositionID:        d.PositionID,
		Category:          d.Category,
		Name:              d.Name,
		Description:       d.Description,
		Unit:              d.Unit,
		CalculationMethod: d.CalculationMethod,
		Weight:            d.Weight,
		TargetValue:       d.TargetValue,
		IsActive:          d.IsActive,
	}
}

type ActualResponse struct {
	ID              int64            `json:"id"`
	KpiDefinitionID int64            `json:"kpi_definition_id"`
	UserID          int64            `json:"user_id"`
	Period          string           `json:"period"`
	ActualValue     decimal.Decimal  `json:"actual_value"`
	EmployeeNote    *string          `json:"employee_note"`
	Status          Status           `json:"status"`
	ReviewedBy      *int64           `json:"reviewed_by"`
	ReviewedAt      *time.Time       `json:"reviewed_at"`
	SupervisorNote  *string          `json:"supervisor_note"`
	AchievementRate *decimal.Decimal `json:"achievement_rate"`
	Score           *decimal.Decimal `json:"score"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func ToActualResponse(a Actual) ActualResponse {
	return ActualResponse{
		ID:              a.ID,
		KpiDefinitionID: a.KpiDefinitionID,
		UserID:          a.UserID,
		Period:          a.Period,
		ActualValue:     a.ActualValue,
		EmployeeNote:    a.EmployeeNote,
		Status:          a.Status,
		ReviewedBy:      a.ReviewedBy,
		ReviewedAt:      a.ReviewedAt,
		SupervisorNote:  a.SupervisorNote,
		AchievementRate: a.AchievementRate,
		Score:           a.Score,
		UpdatedAt:       a.UpdatedAt,
	}
}
