package dashboard

import "github.com/perfhub/perfhub-backend-go/internal/domain/performance"

// EmployeeDashboardResponse is the personal view every user gets.
type EmployeeDashboardResponse struct {
	Period              string           `json:"period"`
	Tasks               TaskSummary      `json:"tasks"`
	WorkLogs            WorkLogSummary   `json:"work_logs"`
	Kpis                KpiStatusSummary `json:"kpis"`
	UnreadNotifications int64            `json:"unread_notifications"`
}

type TaskSummary struct {
	Pending   int64 `json:"pending"`
	Completed int64 `json:"completed"`
	Overdue   int64 `json:"overdue"`
}

type WorkLogSummary struct {
	Draft     int64 `json:"draft"`
	Submitted int64 `json:"submitted"`
	Reviewed  int64 `json:"reviewed"`
}

type KpiStatusSummary struct {
	Definitions int64 `json:"definitions"`
	Pending     int64 `json:"pending"`
	Approved    int64 `json:"approved"`
	Rejected    int64 `json:"rejected"`
}

// SupervisorDashboardResponse summarises what waits on a supervisor.
type SupervisorDashboardResponse struct {
	UnreviewedLogs  int64 `json:"unreviewed_logs"`
	PendingKpis     int64 `json:"pending_kpis"`
	OpenTasks       int64 `json:"open_tasks"`
	OverdueTasks    int64 `json:"overdue_tasks"`
	TeamMemberCount int64 `json:"team_member_count"`
}

// CompanyDashboardResponse is the organisation-wide view.
type CompanyDashboardResponse struct {
	ActiveDepartments int64                      `json:"active_departments"`
	ActivePositions   int64                      `json:"active_positions"`
	ActiveUsers       int64                      `json:"active_users"`
	OpenTasks         int64                      `json:"open_tasks"`
	OverdueTasks      int64                      `json:"overdue_tasks"`
	ActiveCycle       *performance.CycleResponse `json:"active_cycle"`
}
