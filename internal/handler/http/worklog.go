package http

import (
	"net/http"

	"github.com/perfhub/perfhub-backend-go/internal/domain/worklog"
	"github.com/perfhub/perfhub-backend-go/internal/handler/http/response"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/validator"
)

type WorkLogHandler interface {
	ListMine(w http.ResponseWriter, r *http.Request)
	ListUnreviewed(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ListItems(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	AddItem(w http.ResponseWriter, r *http.Request)
	UpdateItem(w http.ResponseWriter, r *http.Request)
	DeleteItem(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
	ReviewItem(w http.ResponseWriter, r *http.Request)
	CompleteReview(w http.ResponseWriter, r *http.Request)
}

type workLogHandlerImpl struct {
	workLogService worklog.WorkLogService
}

func NewWorkLogHandler(workLogService worklog.WorkLogService) WorkLogHandler {
	return &workLogHandlerImpl{workLogService: workLogService}
}

// ListMine handles GET /work-logs?start_date=&end_date=
func (h *workLogHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	var errs validator.ValidationErrors
	filter := worklog.ListWorkLogsFilter{
		StartDate: dateQueryParam(r, "start_date", &errs),
		EndDate:   dateQueryParam(r, "end_date", &errs),
	}
	if err := errs.Err(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.workLogService.ListMine(r.Context(), caller(r), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListUnreviewed handles GET /work-logs/unreviewed
func (h *workLogHandlerImpl) ListUnreviewed(w http.ResponseWriter, r *http.Request) {
	result, err := h.workLogService.ListUnreviewed(r.Context(), caller(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *workLogHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	result, err := h.workLogService.Get(r.Context(), caller(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *workLogHandlerImpl) ListItems(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	result, err := h.workLogService.ListItems(r.Context(), caller(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *workLogHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req worklog.CreateWorkLogRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	result, err := h.workLogService.Create(r.Context(), caller(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Work log created", result)
}

func (h *workLogHandlerImpl) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	var req worklog.WorkItemRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	result, err := h.workLogService.AddItem(r.Context(), caller(r), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Work item added", result)
}

func (h *workLogHandlerImpl) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := idParam(r, "itemID")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	var req worklog.WorkItemRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	result, err := h.workLogService.UpdateItem(r.Context(), caller(r), itemID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Work item updated", result)
}

func (h *workLogHandlerImpl) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := idParam(r, "itemID")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if err := h.workLogService.DeleteItem(r.Context(), caller(r), itemID); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Work item deleted", nil)
}

func (h *workLogHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	result, err := h.workLogService.Submit(r.Context(), caller(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Work log submitted", result)
}

func (h *workLogHandlerImpl) ReviewItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := idParam(r, "itemID")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	var req worklog.ReviewItemRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	result, err := h.workLogService.ReviewItem(r.Context(), caller(r), itemID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Work item reviewed", result)
}

func (h *workLogHandlerImpl) CompleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	result, err := h.workLogService.CompleteReview(r.Context(), caller(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Work log reviewed", result)
}
