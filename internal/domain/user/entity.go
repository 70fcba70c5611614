package user

import "time"

type Role string

const (
	RoleEmployee   Role = "employee"
	RoleSupervisor Role = "supervisor"
	RoleChairman   Role = "chairman"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleSupervisor, RoleChairman, RoleAdmin:
		return true
	}
	return false
}

type LoginMethod string

const (
	LoginMethodGoogle   LoginMethod = "google"
	LoginMethodPassword LoginMethod = "password"
)

type User struct {
	ID           int64
	OpenID       string
	Name         *string
	Email        *string
	LoginMethod  *string
	PasswordHash *string
	Role         Role
	DepartmentID *int64
	PositionID   *int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastSignedIn time.Time
}

// HasRole reports whether the user holds any of roles.
func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// IsSupervisor checks if user reviews the work of a department
func (u *User) IsSupervisor() bool {
	return u.HasRole(RolesSupervisor...)
}

// CanManageOrganization checks if user may edit departments, positions and duties
func (u *User) CanManageOrganization() bool {
	return u.HasRole(RolesOrgAdmin...)
}

// SameDepartment reports whether both users belong to the same department.
func (u *User) SameDepartment(other *User) bool {
	return u.DepartmentID != nil && other.DepartmentID != nil && *u.DepartmentID == *other.DepartmentID
}
