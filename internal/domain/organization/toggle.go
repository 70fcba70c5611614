// Package organization holds what the department, position and job duty areas share.
package organization

// ToggleActiveRequest sets the active flag. When IsActive is omitted the flag is flipped.
type ToggleActiveRequest struct {
	IsActive *bool `json:"is_active,omitempty"`
}
