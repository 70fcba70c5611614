package department

import (
	"strings"
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/pkg/validator"
)

type CreateDepartmentRequest struct {
	Name        string  `json:"name" validate:"notblank,max=100"`
	Code        string  `json:"code" validate:"notblank,max=20"`
	Description *string `json:"description,omitempty"`
}

func (r *CreateDepartmentRequest) Validate() error {
	r.Code = strings.TrimSpace(r.Code)
	return validator.Struct(r)
}

type UpdateDepartmentRequest struct {
	ID          int64   `json:"-" validate:"required,gt=0"`
	Name        string  `json:"name" validate:"notblank,max=100"`
	Code        string  `json:"code" validate:"notblank,max=20"`
	Description *string `json:"description,omitempty"`
}

func (r *UpdateDepartmentRequest) Validate() error {
	r.Code = strings.TrimSpace(r.Code)
	return validator.Struct(r)
}

type DepartmentResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToResponse(d Department) DepartmentResponse {
	return DepartmentResponse{
		ID:          d.ID,
		Name:        d.Name,
		Code:        d.Code,
		Description: d.Description,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
