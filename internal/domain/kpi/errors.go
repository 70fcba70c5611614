package kpi

import "errors"

var (
	ErrPositionNotAssigned = errors.New("user has no position assigned")
	ErrDefinitionNotFound  = errors.New("kpi definition not found")
	ErrDefinitionInactive  = errors.New("kpi definition is inactive")
	ErrDefinitionMismatch  = errors.New("kpi definition does not belong to your position")
	ErrActualNotFound      = errors.New("kpi actual not found")
	ErrActualNotPending    = errors.New("kpi actual has already been reviewed")
	ErrActualLocked        = errors.New("approved kpi actuals cannot be changed")
	ErrNotSameDepartment   = errors.New("kpi actual belongs to another department")
)
