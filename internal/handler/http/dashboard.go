package http

import (
	"net/http"

	"github.com/perfhub/perfhub-backend-go/internal/domain/dashboard"
	"github.com/perfhub/perfhub-backend-go/internal/handler/http/response"
)

type DashboardHandler interface {
	// GetEmployeeDashboard returns the caller's own counters
	GetEmployeeDashboard(w http.ResponseWriter, r *http.Request)
	// GetSupervisorDashboard returns review and delegation counters
	GetSupervisorDashboard(w http.ResponseWriter, r *http.Request)
	// GetCompanyDashboard returns organization-wide counters
	GetCompanyDashboard(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
}

func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService}
}

// GetEmployeeDashboard handles GET /dashboard/employee
func (h *dashboardHandlerImpl) GetEmployeeDashboard(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period") // format: YYYY-MM, default: current month

	result, err := h.dashboardService.GetEmployeeDashboard(r.Context(), caller(r), period)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetSupervisorDashboard handles GET /dashboard/supervisor
func (h *dashboardHandlerImpl) GetSupervisorDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.GetSupervisorDashboard(r.Context(), caller(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetCompanyDashboard handles GET /dashboard/company
func (h *dashboardHandlerImpl) GetCompanyDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.GetCompanyDashboard(r.Context(), caller(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
