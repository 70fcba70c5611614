package dashboard

import (
	"context"

	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
)

// DashboardService builds each view by running its queries concurrently.
type DashboardService interface {
	GetEmployeeDashboard(ctx context.Context, caller *user.User, period string) (*EmployeeDashboardResponse, error)
	GetSupervisorDashboard(ctx context.Context, caller *user.User) (*SupervisorDashboardResponse, error)
	GetCompanyDashboard(ctx context.Context, caller *user.User) (*CompanyDashboardResponse, error)
}
