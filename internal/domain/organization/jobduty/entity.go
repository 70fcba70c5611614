package jobduty

import "time"

// JobDuty is a concrete responsibility attached to a position.
type JobDuty struct {
	ID          int64
	PositionID  int64
	Code        string
	Title       string
	Description *string
	Category    *string
	SortOrder   int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
