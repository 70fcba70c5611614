package position

import (
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/pkg/validator"
)

type CreatePositionRequest struct {
	DepartmentID int64   `json:"department_id" validate:"required,gt=0"`
	Title        string  `json:"title" validate:"required,max=100"`
	Level        Level   `json:"level" validate:"required,oneof=staff supervisor manager director"`
	Description  *string `json:"description,omitempty"`
}

func (r *CreatePositionRequest) Validate() error {
	return validator.Struct(r)
}

type UpdatePositionRequest struct {
	ID           int64   `json:"-" validate:"required,gt=0"`
	DepartmentID int64   `json:"department_id" validate:"required,gt=0"`
	Title        string  `json:"title" validate:"required,max=100"`
	Level        Level   `json:"level" validate:"required,oneof=staff supervisor manager director"`
	Description  *string `json:"description,omitempty"`
}

func (r *UpdatePositionRequest) Validate() error {
	return validator.Struct(r)
}

type PositionResponse struct {
	ID           int64     `json:"id"`
	DepartmentID int64     `json:"department_id"`
	Title        string    `json:"title"`
	Level        Level     `json:"level"`
	Description  *string   `json:"description"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func ToResponse(p Position) PositionResponse {
	return PositionResponse{
		ID:           p.ID,
		DepartmentID: p.DepartmentID,
		Title:        p.Title,
		Level:        p.Level,
		Description:  p.Description,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
