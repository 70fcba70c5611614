package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/perfhub/perfhub-backend-go/internal/domain/auth"
	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	"github.com/perfhub/perfhub-backend-go/internal/handler/http/middleware"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/jwt"
)

// RouterOptions carries the process settings the router needs.
type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	Version        string
	LogLevel       slog.Level
}

// Handlers groups every HTTP handler mounted under /api/v1.
type Handlers struct {
	Auth         AuthHandler
	User         UserHandler
	Organization OrganizationHandler
	WorkLog      WorkLogHandler
	Task         TaskHandler
	Kpi          KpiHandler
	Performance  PerformanceHandler
	Notification NotificationHandler
	Dashboard    DashboardHandler
}

func NewRouter(opts RouterOptions, jwtService jwt.Service, authService auth.AuthService, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env == "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "perfhub"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	authRequired := middleware.AuthRequired(authService)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtService.Verifier())

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Get("/login/oauth/google", h.Auth.LoginWithGoogle)
			r.Get("/oauth/callback/google", h.Auth.OAuthCallbackGoogle)
			r.Post("/logout", h.Auth.Logout)
			r.With(middleware.AuthOptional(authService)).Get("/me", h.Auth.Me)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(authRequired)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.User.List)
				r.Get("/{id}", h.User.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(user.RolesOrgAdmin...))
					r.Post("/", h.User.Create)
					r.Put("/{id}", h.User.Update)
				})
			})

			r.Route("/organization", func(r chi.Router) {
				r.Route("/departments", func(r chi.Router) {
					r.Get("/", h.Organization.ListDepartments)
					r.Post("/", h.Organization.CreateDepartment)
					r.Get("/{id}", h.Organization.GetDepartment)
					r.Put("/{id}", h.Organization.UpdateDepartment)
					r.Patch("/{id}/toggle", h.Organization.ToggleDepartment)
					r.Get("/{id}/positions", h.Organization.ListDepartmentPositions)
				})
				r.Route("/positions", func(r chi.Router) {
					r.Get("/", h.Organization.ListPositions)
					r.Post("/", h.Organization.CreatePosition)
					r.Get("/{id}", h.Organization.GetPosition)
					r.Put("/{id}", h.Organization.UpdatePosition)
					r.Patch("/{id}/toggle", h.Organization.TogglePosition)
					r.Get("/{id}/job-duties", h.Organization.ListPositionJobDuties)
				})
				r.Route("/job-duties", func(r chi.Router) {
					r.Get("/", h.Organization.ListJobDuties)
					r.Post("/", h.Organization.CreateJobDuty)
					r.Get("/{id}", h.Organization.GetJobDuty)
					r.Put("/{id}", h.Organization.UpdateJobDuty)
					r.Patch("/{id}/toggle", h.Organization.ToggleJobDuty)
				})
			})

			r.Route("/work-logs", func(r chi.Router) {
				r.Get("/", h.WorkLog.ListMine)
				r.Post("/", h.WorkLog.Create)
				r.With(middleware.RequireRole(user.RolesSupervisor...)).Get("/unreviewed", h.WorkLog.ListUnreviewed)
				r.Get("/{id}", h.WorkLog.Get)
				r.Get("/{id}/items", h.WorkLog.ListItems)
				r.Post("/{id}/items", h.WorkLog.AddItem)
				r.Post("/{id}/submit", h.WorkLog.Submit)
				r.Post("/{id}/complete-review", h.WorkLog.CompleteReview)
				r.Put("/items/{itemID}", h.WorkLog.UpdateItem)
				r.Delete("/items/{itemID}", h.WorkLog.DeleteItem)
				r.Post("/items/{itemID}/review", h.WorkLog.ReviewItem)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/my", h.Task.ListMine)
				r.Get("/my/calendar.ics", h.Task.Calendar)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(user.RolesSupervisor...))
					r.Get("/assigned", h.Task.ListAssignedByMe)
					r.Post("/", h.Task.Create)
				})
				r.Get("/{id}", h.Task.Get)
				r.Get("/{id}/progress", h.Task.ListProgress)
				r.Post("/{id}/progress", h.Task.ReportProgress)
				r.Post("/{id}/complete", h.Task.Complete)
				r.Post("/{id}/review", h.Task.Review)
			})

			r.Route("/kpis", func(r chi.Router) {
				r.Get("/definitions/my", h.Kpi.ListMyDefinitions)
				r.Post("/definitions", h.Kpi.CreateDefinition)
				r.Put("/definitions/{id}", h.Kpi.UpdateDefinition)
				r.Get("/positions/{id}/definitions", h.Kpi.ListDefinitionsByPosition)
				r.Get("/actuals/my", h.Kpi.ListMyActuals)
				r.Post("/actuals", h.Kpi.SubmitActual)
				r.With(middleware.RequireRole(user.RolesSupervisor...)).Get("/actuals/pending", h.Kpi.ListPending)
				r.Post("/actuals/{id}/approve", h.Kpi.Approve)
				r.Post("/actuals/{id}/reject", h.Kpi.Reject)
			})

			r.Route("/performance", func(r chi.Router) {
				r.Get("/my", h.Performance.ListMine)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(user.RolesSupervisor...))
					r.Post("/", h.Performance.Create)
					r.Put("/{id}", h.Performance.Update)
					r.Get("/export", h.Performance.Export)
				})
				r.Get("/{id}", h.Performance.Get)
			})

			r.Route("/cycles", func(r chi.Router) {
				r.Get("/active", h.Performance.GetActiveCycle)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(user.RolesOrgAdmin...))
					r.Get("/", h.Performance.ListCycles)
					r.Post("/", h.Performance.CreateCycle)
					r.Post("/{id}/activate", h.Performance.ActivateCycle)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Get("/stream", h.Notification.Stream)
				r.Patch("/{id}/read", h.Notification.MarkAsRead)
				r.Post("/read-all", h.Notification.MarkAllAsRead)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/employee", h.Dashboard.GetEmployeeDashboard)
				r.With(middleware.RequireRole(user.RolesSupervisor...)).Get("/supervisor", h.Dashboard.GetSupervisorDashboard)
				r.With(middleware.RequireRole(user.RolesOrgAdmin...)).Get("/company", h.Dashboard.GetCompanyDashboard)
			})
		})
	})
	return r
}
