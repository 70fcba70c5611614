package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/domain/task"
	"github.com/perfhub/perfhub-backend-go/internal/handler/http/response"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/calendar"
)

type TaskHandler interface {
	ListMine(w http.ResponseWriter, r *http.Request)
	ListAssignedByMe(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ListProgress(w http.ResponseWriter, r *http.Request)
	Calendar(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	ReportProgress(w http.ResponseWriter, r *http.Request)
	Complete(w http.ResponseWriter, r *http.Request)
	Review(w http.ResponseWriter, r *http.Request)
}

type taskHandlerImpl struct {
	taskService task.TaskService
}

func NewTaskHandler(taskService task.TaskService) TaskHandler {
	return &taskHandlerImpl{taskService: taskService}
}

func (h *taskHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	result, err := h.taskService.ListMine(r.Context(), caller(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *taskHandlerImpl) ListAssignedByMe(w http.ResponseWriter, r *http.Request) {
	result, err := h.taskService.ListAssignedByMe(r.Context(), caller(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *taskHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	result, err := h.taskService.Get(r.Context(), caller(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *taskHandlerImpl) ListProgress(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	result, err := h.taskService.ListProgress(r.Context(), caller(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func icsPriority(p task.Priority) int {
	switch p {
	case task.PriorityHigh:
		return 1
	case task.PriorityLow:
		return 9
	default:
		return 5
	}
}

// Calendar handles GET /tasks/my/calendar.ics with one all-day event per open task.
func (h *taskHandlerImpl) Calendar(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.MyOpenTasks(r.Context(), caller(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	feed := calendar.Feed{Name: "My tasks", Events: make([]calendar.Event, 0, len(tasks))}
	for _, t := range tasks {
		feed.Events = append(feed.Events, calendar.Event{
			UID:         fmt.Sprintf("task-%d@perfhub", t.ID),
			Summary:     t.Title,
			Description: t.Description,
			Date:        t.PlannedCompletionDate,
			Priority:    icsPriority(t.Priority),
			Updated:     t.UpdatedAt,
		})
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tasks.ics"`)
	if err := calendar.Write(w, feed, time.Now()); err != nil {
		slog.Error("Failed to write task calendar", "error", err)
	}
}

func (h *taskHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req task.CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	result, err := h.taskService.Create(r.Context(), caller(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Task created", result)
}

func (h *taskHandlerImpl) ReportProgress(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	var req task.ProgressRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	result, err := h.taskService.ReportProgress(r.Context(), caller(r), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Progress recorded", result)
}

func (h *taskHandlerImpl) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	var req task.CompleteRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	result, err := h.taskService.Complete(r.Context(), caller(r), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Task completed", result)
}

func (h *taskHandlerImpl) Review(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	var req task.ReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	result, err := h.taskService.Review(r.Context(), caller(r), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Task closed", result)
}
