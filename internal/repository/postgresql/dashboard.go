package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/domain/dashboard"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/database"
)

type dashboardRepositoryImpl struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) dashboard.DashboardRepository {
	return &dashboardRepositoryImpl{db: db}
}

const taskCountsSelect = `
	SELECT
		COALESCE(SUM(CASE WHEN status IN ('assigned', 'in_progress') THEN 1 ELSE 0 END), 0) AS open_count,
		COALESCE(SUM(CASE WHEN status IN ('completed', 'closed') THEN 1 ELSE 0 END), 0) AS completed_count,
		COALESCE(SUM(CASE WHEN status IN ('assigned', 'in_progress') AND planned_completion_date < $1 THEN 1 ELSE 0 END), 0) AS overdue_count
	FROM tasks`

func (r *dashboardRepositoryImpl) taskCounts(ctx context.Context, where string, args ...interface{}) (dashboard.TaskCounts, error) {
	q := GetQuerier(ctx, r.db)

	var counts dashboard.TaskCounts
	err := q.QueryRow(ctx, taskCountsSelect+where, args...).Scan(&counts.Open, &counts.Completed, &counts.Overdue)
	if err = degradeRead(err); err != nil {
		return dashboard.TaskCounts{}, fmt.Errorf("failed to get task counts: %w", err)
	}
	return counts, nil
}

// GetTaskCountsByAssignee returns open, completed and overdue tasks assigned to the user in a single query
func (r *dashboardRepositoryImpl) GetTaskCountsByAssignee(ctx context.Context, userID int64, now time.Time) (dashboard.TaskCounts, error) {
	return r.taskCounts(ctx, " WHERE assigned_to = $2", now, userID)
}

// GetTaskCountsByAssigner counts the tasks the user handed out
func (r *dashboardRepositoryImpl) GetTaskCountsByAssigner(ctx context.Context, userID int64, now time.Time) (dashboard.TaskCounts, error) {
	return r.taskCounts(ctx, " WHERE assigned_by = $2", now, userID)
}

func (r *dashboardRepositoryImpl) GetCompanyTaskCounts(ctx context.Context, now time.Time) (dashboard.TaskCounts, error) {
	return r.taskCounts(ctx, "", now)
}

// GetWorkLogCounts returns the user's logs per status
func (r *dashboardRepositoryImpl) GetWorkLogCounts(ctx context.Context, userID int64) (dashboard.WorkLogCounts, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'draft' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'submitted' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'reviewed' THEN 1 ELSE 0 END), 0)
		FROM work_logs
		WHERE user_id = $1`

	var counts dashboard.WorkLogCounts
	err := q.QueryRow(ctx, query, userID).Scan(&counts.Draft, &counts.Submitted, &counts.Reviewed)
	if err = degradeRead(err); err != nil {
		return dashboard.WorkLogCounts{}, fmt.Errorf("failed to get work log counts: %w", err)
	}
	return counts, nil
}

// GetKpiCounts returns the user's actuals per status for one period
func (r *dashboardRepositoryImpl) GetKpiCounts(ctx context.Context, userID int64, period string) (dashboard.KpiCounts, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END), 0)
		FROM kpi_actuals
		WHERE user_id = $1 AND period = $2`

	var counts dashboard.KpiCounts
	err := q.QueryRow(ctx, query, userID, period).Scan(&counts.Pending, &counts.Approved, &counts.Rejected)
	if err = degradeRead(err); err != nil {
		return dashboard.KpiCounts{}, fmt.Errorf("failed to get kpi counts: %w", err)
	}
	return counts, nil
}

func (r *dashboardRepositoryImpl) count(ctx context.Context, what, query string, args ...interface{}) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var n int64
	err := q.QueryRow(ctx, query, args...).Scan(&n)
	if err = degradeRead(err); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", what, err)
	}
	return n, nil
}

func (r *dashboardRepositoryImpl) CountActiveKpiDefinitions(ctx context.Context, positionID int64) (int64, error) {
	return r.count(ctx, "kpi definitions",
		`SELECT COUNT(*) FROM kpi_definitions WHERE position_id = $1 AND is_active = TRUE`, positionID)
}

func (r *dashboardRepositoryImpl) CountUnreadNotifications(ctx context.Context, userID int64) (int64, error) {
	return r.count(ctx, "unread notifications",
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID)
}

func (r *dashboardRepositoryImpl) CountSubmittedLogsByDepartment(ctx context.Context, departmentID int64) (int64, error) {
	return r.count(ctx, "submitted work logs", `
		SELECT COUNT(*) FROM work_logs wl
		JOIN users u ON u.id = wl.user_id
		WHERE wl.status = 'submitted' AND u.department_id = $1 AND u.is_active = TRUE`, departmentID)
}

func (r *dashboardRepositoryImpl) CountPendingKpisByDepartment(ctx context.Context, departmentID int64) (int64, error) {
	return r.count(ctx, "pending kpi actuals", `
		SELECT COUNT(*) FROM kpi_actuals ka
		JOIN users u ON u.id = ka.user_id
		WHERE ka.status = 'pending' AND u.department_id = $1 AND u.is_active = TRUE`, departmentID)
}

func (r *dashboardRepositoryImpl) CountActiveUsersByDepartment(ctx context.Context, departmentID int64) (int64, error) {
	return r.count(ctx, "department users",
		`SELECT COUNT(*) FROM users WHERE department_id = $1 AND is_active = TRUE`, departmentID)
}

// GetOrganizationCounts returns active departments, positions and users in a single query
func (r *dashboardRepositoryImpl) GetOrganizationCounts(ctx context.Context) (dashboard.OrganizationCounts, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			(SELECT COUNT(*) FROM departments WHERE is_active = TRUE),
			(SELECT COUNT(*) FROM positions WHERE is_active = TRUE),
			(SELECT COUNT(*) FROM users WHERE is_active = TRUE)`

	var counts dashboard.OrganizationCounts
	err := q.QueryRow(ctx, query).Scan(&counts.Departments, &counts.Positions, &counts.Users)
	if err = degradeRead(err); err != nil {
		return dashboard.OrganizationCounts{}, fmt.Errorf("failed to get organization counts: %w", err)
	}
	return counts, nil
}
