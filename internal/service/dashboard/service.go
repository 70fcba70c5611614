package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/domain/dashboard"
	"github.com/perfhub/perfhub-backend-go/internal/domain/performance"
	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/database"
	"golang.org/x/sync/errgroup"
)

type DashboardServiceImpl struct {
	dashboard.DashboardRepository
	cycles performance.CycleRepository
	now    func() time.Time
}

func NewDashboardService(repo dashboard.DashboardRepository, cycles performance.CycleRepository) dashboard.DashboardService {
	return &DashboardServiceImpl{
		DashboardRepository: repo,
		cycles:              cycles,
		now:                 time.Now,
	}
}

// parsePeriod accepts YYYY-MM and defaults to the current month.
func parsePeriod(period string, now time.Time) string {
	if period != "" {
		if parsed, err := time.Parse("2006-01", period); err == nil {
			return parsed.Format("2006-01")
		}
	}
	return now.Format("2006-01")
}

// GetEmployeeDashboard returns the caller's own counters using parallel goroutines.
func (s *DashboardServiceImpl) GetEmployeeDashboard(ctx context.Context, caller *user.User, period string) (*dashboard.EmployeeDashboardResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}

	now := s.now()
	resp := &dashboard.EmployeeDashboardResponse{Period: parsePeriod(period, now)}

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Tasks (open, completed, overdue in one query)
	g.Go(func() error {
		counts, err := s.GetTaskCountsByAssignee(gCtx, caller.ID, now)
		if err != nil {
			return err
		}
		resp.Tasks = dashboard.TaskSummary{
			Pending:   counts.Open,
			Completed: counts.Completed,
			Overdue:   counts.Overdue,
		}
		return nil
	})

	// 2. Work logs by status
	g.Go(func() error {
		counts, err := s.GetWorkLogCounts(gCtx, caller.ID)
		if err != nil {
			return err
		}
		resp.WorkLogs = dashboard.WorkLogSummary{
			Draft:     counts.Draft,
			Submitted: counts.Submitted,
			Reviewed:  counts.Reviewed,
		}
		return nil
	})

	// 3. KPI actuals for the period
	g.Go(func() error {
		counts, err := s.GetKpiCounts(gCtx, caller.ID, resp.Period)
		if err != nil {
			return err
		}
		resp.Kpis.Pending = counts.Pending
		resp.Kpis.Approved = counts.Approved
		resp.Kpis.Rejected = counts.Rejected
		return nil
	})

	// 4. KPI definitions of the caller's position
	if caller.PositionID != nil {
		positionID := *caller.PositionID
		g.Go(func() error {
			n, err := s.CountActiveKpiDefinitions(gCtx, positionID)
			if err != nil {
				return err
			}
			resp.Kpis.Definitions = n
			return nil
		})
	}

	// 5. Unread notifications
	g.Go(func() error {
		n, err := s.CountUnreadNotifications(gCtx, caller.ID)
		if err != nil {
			return err
		}
		resp.UnreadNotifications = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetSupervisorDashboard summarises review work for the caller's department
// and the tasks the caller assigned.
func (s *DashboardServiceImpl) GetSupervisorDashboard(ctx context.Context, caller *user.User) (*dashboard.SupervisorDashboardResponse, error) {
	if err := user.RequireRole(caller, user.RolesSupervisor...); err != nil {
		return nil, err
	}

	now := s.now()
	resp := &dashboard.SupervisorDashboardResponse{}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := s.GetTaskCountsByAssigner(gCtx, caller.ID, now)
		if err != nil {
			return err
		}
		resp.OpenTasks = counts.Open
		resp.OverdueTasks = counts.Overdue
		return nil
	})

	if caller.DepartmentID != nil {
		departmentID := *caller.DepartmentID

		g.Go(func() error {
			n, err := s.CountSubmittedLogsByDepartment(gCtx, departmentID)
			if err != nil {
				return err
			}
			resp.UnreviewedLogs = n
			return nil
		})

		g.Go(func() error {
			n, err := s.CountPendingKpisByDepartment(gCtx, departmentID)
			if err != nil {
				return err
			}
			resp.PendingKpis = n
			return nil
		})

		g.Go(func() error {
			n, err := s.CountActiveUsersByDepartment(gCtx, departmentID)
			if err != nil {
				return err
			}
			resp.TeamMemberCount = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetCompanyDashboard returns organisation-wide counters and the active cycle.
func (s *DashboardServiceImpl) GetCompanyDashboard(ctx context.Context, caller *user.User) (*dashboard.CompanyDashboardResponse, error) {
	if err := user.RequireRole(caller, user.RolesOrgAdmin...); err != nil {
		return nil, err
	}

	now := s.now()
	resp := &dashboard.CompanyDashboardResponse{}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := s.GetOrganizationCounts(gCtx)
		if err != nil {
			return err
		}
		resp.ActiveDepartments = counts.Departments
		resp.ActivePositions = counts.Positions
		resp.ActiveUsers = counts.Users
		return nil
	})

	g.Go(func() error {
		counts, err := s.GetCompanyTaskCounts(gCtx, now)
		if err != nil {
			return err
		}
		resp.OpenTasks = counts.Open
		resp.OverdueTasks = counts.Overdue
		return nil
	})

	g.Go(func() error {
		c, err := s.cycles.GetActive(gCtx)
		if errors.Is(err, performance.ErrNoActiveCycle) || database.IsUnavailable(err) {
			return nil
		}
		if err != nil {
			return err
		}
		cycle := performance.ToCycleResponse(c)
		resp.ActiveCycle = &cycle
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resp, nil
}
