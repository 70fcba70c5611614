package user

import (
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/pkg/validator"
)

// UserResponse represents user data in API responses
type UserResponse struct {
	ID           int64     `json:"id"`
	OpenID       string    `json:"open_id"`
	Name         *string   `json:"name"`
	Email        *string   `json:"email"`
	LoginMethod  *string   `json:"login_method"`
	Role         Role      `json:"role"`
	DepartmentID *int64    `json:"department_id"`
	PositionID   *int64    `json:"position_id"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastSignedIn time.Time `json:"last_signed_in"`
}

func ToResponse(u *User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:           u.ID,
		OpenID:       u.OpenID,
		Name:         u.Name,
		Email:        u.Email,
		LoginMethod:  u.LoginMethod,
		Role:         u.Role,
		DepartmentID: u.DepartmentID,
		PositionID:   u.PositionID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		LastSignedIn: u.LastSignedIn,
	}
}

// UpsertUserParams is used by sign-in flows; missing fields keep their stored value.
type UpsertUserParams struct {
	OpenID      string
	Name        *string
	Email       *string
	LoginMethod *string
	Role        *Role
}

// CreateUserRequest provisions a password account.
type CreateUserRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email,max=320"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	Role         Role   `json:"role" validate:"required,oneof=employee supervisor chairman admin"`
	DepartmentID *int64 `json:"department_id"`
	PositionID   *int64 `json:"position_id"`
}

func (r *CreateUserRequest) Validate() error {
	return validator.Struct(r)
}

// UpdateUserRequest represents request to update user assignment
type UpdateUserRequest struct {
	ID           int64  `json:"-"`
	Role         *Role  `json:"role,omitempty"`
	DepartmentID *int64 `json:"department_id,omitempty"`
	PositionID   *int64 `json:"position_id,omitempty"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

func (r *UpdateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ID <= 0 {
		errs.Add("id", "id is required")
	}
	if r.Role != nil && !r.Role.Valid() {
		errs.Add("role", "invalid role")
	}
	if r.DepartmentID != nil && *r.DepartmentID <= 0 {
		errs.Add("department_id", "department_id must be positive")
	}
	if r.PositionID != nil && *r.PositionID <= 0 {
		errs.Add("position_id", "position_id must be positive")
	}

	return errs.Err()
}

type ListUsersFilter struct {
	DepartmentID *int64
	Role         *Role
	ActiveOnly   bool
}
