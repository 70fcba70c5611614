package performance

import (
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateEvaluationRequest struct {
	UserID           int64           `json:"user_id" validate:"required,gt=0"`
	Period           string          `json:"period" validate:"required,period"`
	FinalScore       decimal.Decimal `json:"final_score"`
	AdjustmentReason *string         `json:"adjustment_reason,omitempty"`
	Strengths        *string         `json:"strengths,omitempty"`
	Improvements     *string         `json:"improvements,omitempty"`
	Comments         *string         `json:"comments,omitempty"`
	InterviewDate    *time.Time      `json:"interview_date,omitempty"`
	InterviewNotes   *string         `json:"interview_notes,omitempty"`
	Complete         bool            `json:"complete"`
}

func (r *CreateEvaluationRequest) Validate() error {
	errs, err := validator.Split(validator.Struct(r))
	if err != nil {
		return err
	}
	validateScore(&errs, r.FinalScore)
	return errs.Err()
}

type UpdateEvaluationRequest struct {
	ID               int64           `json:"-"`
	FinalScore       decimal.Decimal `json:"final_score"`
	AdjustmentReason *string         `json:"adjustment_reason,omitempty"`
	Strengths        *string         `json:"strengths,omitempty"`
	Improvements     *string         `json:"improvements,omitempty"`
	Comments         *string         `json:"comments,omitempty"`
	InterviewDate    *time.Time      `json:"interview_date,omitempty"`
	InterviewNotes   *string         `json:"interview_notes,omitempty"`
	Complete         bool            `json:"complete"`
}

func (r *UpdateEvaluationRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.ID <= 0 {
		errs.Add("id", "id is required")
	}
	validateScore(&errs, r.FinalScore)
	return errs.Err()
}

func validateScore(errs *validator.ValidationErrors, score decimal.Decimal) {
	if score.IsNegative() || score.GreaterThan(decimal.NewFromInt(100)) {
		errs.Add("final_score", "final_score must be between 0 and 100")
	}
}

type EvaluationResponse struct {
	ID                  int64            `json:"id"`
	UserID              int64            `json:"user_id"`
	EvaluatedBy         int64            `json:"evaluated_by"`
	Period              string           `json:"period"`
	AutoCalculatedScore *decimal.Decimal `json:"auto_calculated_score"`
	FinalScore          decimal.Decimal  `json:"final_score"`
	AdjustmentReason    *string          `json:"adjustment_reason"`
	Strengths           *string          `json:"strengths"`
	Improvements        *string          `json:"improvements"`
	Comments            *string          `json:"comments"`
	InterviewDate       *time.Time       `json:"interview_date"`
	InterviewNotes      *string          `json:"interview_notes"`
	Status              Status           `json:"status"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

func ToResponse(e Evaluation) EvaluationResponse {
	return EvaluationResponse{
		ID:                  e.ID,
		UserID:              e.UserID,
		EvaluatedBy:         e.EvaluatedBy,
		Period:              e.Period,
		AutoCalculatedScore: e.AutoCalculatedScore,
		FinalScore:          e.FinalScore,
		AdjustmentReason:    e.AdjustmentReason,
		Strengths:           e.Strengths,
		Improvements:        e.Improvements,
		Comments:            e.Comments,
		InterviewDate:       e.InterviewDate,
		InterviewNotes:      e.InterviewNotes,
		Status:              e.Status,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

type CreateCycleRequest struct {
	Name      string `json:"name" validate:"notblank,max=100"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Activate  bool   `json:"activate"`
}

// Validate checks the request and returns the parsed dates.
func (r *CreateCycleRequest) Validate() (start, end time.Time, err error) {
	errs, err := validator.Split(validator.Struct(r))
	if err != nil {
		return start, end, err
	}

	start, okStart := validator.IsValidDate(r.StartDate)
	if !okStart {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	end, okEnd := validator.IsValidDate(r.EndDate)
	if !okEnd {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if okStart && okEnd && end.Before(start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}

	return start, end, errs.Err()
}

type CycleResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	IsActive  bool   `json:"is_active"`
}

func ToCycleResponse(c Cycle) CycleResponse {
	return CycleResponse{
		ID:        c.ID,
		Name:      c.Name,
		StartDate: c.StartDate.Format("2006-01-02"),
		EndDate:   c.EndDate.Format("2006-01-02"),
		IsActive:  c.IsActive,
	}
}
