package performance

import "errors"

var (
	ErrEvaluationNotFound       = errors.New("performance evaluation not found")
	ErrEvaluationExists         = errors.New("an evaluation already exists for this user and period")
	ErrEvaluationCompleted      = errors.New("completed evaluations cannot be changed")
	ErrAdjustmentReasonRequired = errors.New("adjustment_reason is required when the final score differs from the calculated score")
	ErrEmployeeNotFound         = errors.New("employee not found")
	ErrNotSameDepartment        = errors.New("employee belongs to another department")
	ErrCycleNotFound            = errors.New("performance cycle not found")
	ErrNoActiveCycle            = errors.New("no active performance cycle")
	ErrActiveCycleConflict      = errors.New("another performance cycle was activated concurrently")
)
