package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/domain/kpi"
	"github.com/perfhub/perfhub-backend-go/internal/handler/http/response"
)

type KpiHandler interface {
	ListMyDefinitions(w http.ResponseWriter, r *http.Request)
	ListMyActuals(w http.ResponseWriter, r *http.Request)
	ListPending(w http.ResponseWriter, r *http.Request)
	ListDefinitionsByPosition(w http.ResponseWriter, r *http.Request)
	CreateDefinition(w http.ResponseWriter, r *http.Request)
	UpdateDefinition(w http.ResponseWriter, r *http.Request)
	SubmitActual(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type kpiHandlerImpl struct {
	kpiService kpi.KpiService
}

func NewKpiHandler(kpiService kpi.KpiService) KpiHandler {
	return &kpiHandlerImpl{kpiService: kpiService}
}

// ListMyDefinitions handles GET /kpis/definitions/my
func (h *kpiHandlerImpl) ListMyDefinitions(w http.ResponseWriter, r *http.Request) {
	result, err := h.kpiService.ListMyDefinitions(r.Context(), caller(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListMyActuals handles GET /kpis/actuals/my?period=YYYY-MM, default: current month
func (h *kpiHandlerImpl) ListMyActuals(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = time.Now().Format("2006-01")
	}
	result, err := h.kpiService.ListMyActuals(r.Context(), caller(r), period)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListPending handles GET /kpis/actuals/pending
func (h *kpiHandlerImpl) ListPending(w http.ResponseWriter, r *http.Request) {
	result, err := h.kpiService.ListPending(r.Context(), caller(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ListDefinitionsByPosition handles GET /kpis/positions/{id}/definitions
func (h *kpiHandlerImpl) ListDefinitionsByPosition(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	result, err := h.kpiService.ListDefinitionsByPosition(r.Context(), caller(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *kpiHandlerImpl) CreateDefinition(w http.ResponseWriter, r *http.Request) {
	var req kpi.CreateDefinitionRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	result, err := h.kpiService.CreateDefinition(r.Context(), caller(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "KPI definition created", result)
}

func (h *kpiHandlerImpl) UpdateDefinition(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	var req kpi.UpdateDefinitionRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id
	result, err := h.kpiService.UpdateDefinition(r.Context(), caller(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "KPI definition updated", result)
}

// SubmitActual handles POST /kpis/actuals; resubmitting the same period replaces the value.
func (h *kpiHandlerImpl) SubmitActual(w http.ResponseWriter, r *http.Request) {
	var req kpi.SubmitActualRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	result, err := h.kpiService.SubmitActual(r.Context(), caller(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "KPI actual submitted", result)
}

func (h *kpiHandlerImpl) decodeReview(w http.ResponseWriter, r *http.Request) (int64, kpi.ReviewActualRequest, bool) {
	var req kpi.ReviewActualRequest
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return 0, req, false
	}
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body", nil)
		return 0, req, false
	}
	return id, req, true
}

func (h *kpiHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	id, req, ok := h.decodeReview(w, r)
	if !ok {
		return
	}
	result, err := h.kpiService.Approve(r.Context(), caller(r), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "KPI actual approved", result)
}

func (h *kpiHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	id, req, ok := h.decodeReview(w, r)
	if !ok {
		return
	}
	result, err := h.kpiService.Reject(r.Context(), caller(r), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "KPI actual rejected", result)
}
