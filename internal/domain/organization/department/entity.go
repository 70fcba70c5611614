package department

import "time"

type Department struct {
	ID          int64
	Name        string
	Code        string
	Description *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
