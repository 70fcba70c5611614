package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/perfhub/perfhub-backend-go/internal/domain/performance"
	"github.com/perfhub/perfhub-backend-go/internal/handler/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PerformanceHandler interface {
	ListMine(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)

	ListCycles(w http.ResponseWriter, r *http.Request)
	GetActiveCycle(w http.ResponseWriter, r *http.Request)
	CreateCycle(w http.ResponseWriter, r *http.Request)
	ActivateCycle(w http.ResponseWriter, r *http.Request)
}

type performanceHandlerImpl struct {
	performanceService performance.PerformanceService
	cycleService       performance.CycleService
}

func NewPerformanceHandler(performanceService performance.PerformanceService, cycleService performance.CycleService) PerformanceHandler {
	return &performanceHandlerImpl{
		performanceService: performanceService,
		cycleService:       cycleService,
	}
}

// ListMine handles GET /performance/my, newest period first.
func (h *performanceHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	result, err := h.performanceService.ListMine(r.Context(), caller(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *performanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	result, err := h.performanceService.Get(r.Context(), caller(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *performanceHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req performance.CreateEvaluationRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	result, err := h.performanceService.Create(r.Context(), caller(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Evaluation created", result)
}

func (h *performanceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	var req performance.UpdateEvaluationRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id
	result, err := h.performanceService.Update(r.Context(), caller(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Evaluation updated", result)
}

// Export handles GET /performance/export?period=YYYY-MM. The workbook is
// buffered so failures still produce a JSON error.
func (h *performanceHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	filename, err := h.performanceService.ExportPeriod(r.Context(), caller(r), r.URL.Query().Get("period"), &buf)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write export", "filename", filename, "error", err)
	}
}

// ==================== CYCLES ====================

func (h *performanceHandlerImpl) ListCycles(w http.ResponseWriter, r *http.Request) {
	result, err := h.cycleService.List(r.Context(), caller(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// GetActiveCycle handles GET /cycles/active
func (h *performanceHandlerImpl) GetActiveCycle(w http.ResponseWriter, r *http.Request) {
	result, err := h.cycleService.GetActive(r.Context(), caller(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *performanceHandlerImpl) CreateCycle(w http.ResponseWriter, r *http.Request) {
	var req performance.CreateCycleRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	result, err := h.cycleService.Create(r.Context(), caller(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Cycle created", result)
}

func (h *performanceHandlerImpl) ActivateCycle(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	result, err := h.cycleService.Activate(r.Context(), caller(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Cycle activated", result)
}
