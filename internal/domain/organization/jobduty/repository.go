package jobduty

import "context"

type JobDutyRepository interface {
	Create(ctx context.Context, d JobDuty) (JobDuty, error)
	GetByID(ctx context.Context, id int64) (JobDuty, error)
	ListAll(ctx context.Context) ([]JobDuty, error)
	// ListActiveByPosition returns active duties ordered by sort order ascending.
	ListActiveByPosition(ctx context.Context, positionID int64) ([]JobDuty, error)
	Update(ctx context.Context, req UpdateJobDutyRequest) (JobDuty, error)
	SetActive(ctx context.Context, id int64, active bool) (JobDuty, error)
}
