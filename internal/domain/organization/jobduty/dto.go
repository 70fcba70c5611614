package jobduty

import (
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/pkg/validator"
)

type CreateJobDutyRequest struct {
	PositionID  int64   `json:"position_id" validate:"required,gt=0"`
	Code        string  `json:"code" validate:"required,max=20"`
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty" validate:"omitempty,max=50"`
	SortOrder   *int    `json:"sort_order,omitempty" validate:"omitempty,gte=0"`
}

func (r *CreateJobDutyRequest) Validate() error {
	return validator.Struct(r)
}

type UpdateJobDutyRequest struct {
	ID          int64   `json:"-" validate:"required,gt=0"`
	PositionID  int64   `json:"position_id" validate:"required,gt=0"`
	Code        string  `json:"code" validate:"required,max=20"`
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty" validate:"omitempty,max=50"`
	SortOrder   *int    `json:"sort_order,omitempty" validate:"omitempty,gte=0"`
}

func (r *UpdateJobDutyRequest) Validate() error {
	return validator.Struct(r)
}

type JobDutyResponse struct {
	ID          int64     `json:"id"`
	PositionID  int64     `json:"position_id"`
	Code        string    `json:"code"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToResponse(d JobDuty) JobDutyResponse {
	return JobDutyResponse{
		ID:          d.ID,
		PositionID:  d.PositionID,
		Code:        d.Code,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		SortOrder:   d.SortOrder,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
