package dashboard

import (
	"context"
	"time"
)

// TaskCounts combines the task counters of one user in a single query.
type TaskCounts struct {
	Open      int64
	Completed int64
	Overdue   int64
}

type WorkLogCounts struct {
	Draft     int64
	Submitted int64
	Reviewed  int64
}

type KpiCounts struct {
	Pending  int64
	Approved int64
	Rejected int64
}

type OrganizationCounts struct {
	Departments int64
	Positions   int64
	Users       int64
}

type DashboardRepository interface {
	GetTaskCountsByAssignee(ctx context.Context, userID int64, now time.Time) (TaskCounts, error)
	GetTaskCountsByAssigner(ctx context.Context, userID int64, now time.Time) (TaskCounts, error)
	GetCompanyTaskCounts(ctx context.Context, now time.Time) (TaskCounts, error)
	GetWorkLogCounts(ctx context.Context, userID int64) (WorkLogCounts, error)
	GetKpiCounts(ctx context.Context, userID int64, period string) (KpiCounts, error)
	CountActiveKpiDefinitions(ctx context.Context, positionID int64) (int64, error)
	CountUnreadNotifications(ctx context.Context, userID int64) (int64, error)
	CountSubmittedLogsByDepartment(ctx context.Context, departmentID int64) (int64, error)
	CountPendingKpisByDepartment(ctx context.Context, departmentID int64) (int64, error)
	CountActiveUsersByDepartment(ctx context.Context, departmentID int64) (int64, error)
	GetOrganizationCounts(ctx context.Context) (OrganizationCounts, error)
}
