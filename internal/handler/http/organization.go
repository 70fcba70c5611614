package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/perfhub/perfhub-backend-go/internal/domain/organization"
	"github.com/perfhub/perfhub-backend-go/internal/domain/organization/department"
	"github.com/perfhub/perfhub-backend-go/internal/domain/organization/jobduty"
	"github.com/perfhub/perfhub-backend-go/internal/domain/organization/position"
	"github.com/perfhub/perfhub-backend-go/internal/handler/http/response"
	orgService "github.com/perfhub/perfhub-backend-go/internal/service/organization"
)

type OrganizationHandler interface {
	// Departments
	ListDepartments(w http.ResponseWriter, r *http.Request)
	GetDepartment(w http.ResponseWriter, r *http.Request)
	CreateDepartment(w http.ResponseWriter, r *http.Request)
	UpdateDepartment(w http.ResponseWriter, r *http.Request)
	ToggleDepartment(w http.ResponseWriter, r *http.Request)
	ListDepartmentPositions(w http.ResponseWriter, r *http.Request)

	// Positions
	ListPositions(w http.ResponseWriter, r *http.Request)
	GetPosition(w http.ResponseWriter, r *http.Request)
	CreatePosition(w http.ResponseWriter, r *http.Request)
	UpdatePosition(w http.ResponseWriter, r *http.Request)
	TogglePosition(w http.ResponseWriter, r *http.Request)
	ListPositionJobDuties(w http.ResponseWriter, r *http.Request)

	// Job duties
	ListJobDuties(w http.ResponseWriter, r *http.Request)
	GetJobDuty(w http.ResponseWriter, r *http.Request)
	CreateJobDuty(w http.ResponseWriter, r *http.Request)
	UpdateJobDuty(w http.ResponseWriter, r *http.Request)
	ToggleJobDuty(w http.ResponseWriter, r *http.Request)
}

type organizationHandlerImpl struct {
	orgService orgService.OrganizationService
}

func NewOrganizationHandler(service orgService.OrganizationService) OrganizationHandler {
	return &organizationHandlerImpl{orgService: service}
}

// decodeToggle accepts an empty body, which flips the flag.
func decodeToggle(r *http.Request) (organization.ToggleActiveRequest, error) {
	var req organization.ToggleActiveRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		return req, err
	}
	return req, nil
}

// ==================== DEPARTMENTS ====================

// ListDepartments handles GET /organization/departments; ?all=true includes inactive ones.
func (h *organizationHandlerImpl) ListDepartments(w http.ResponseWriter, r *http.Request) {
	var (
		result []department.DepartmentResponse
		err    error
	)
	if getBoolQueryParam(r, "all", false) {
		result, err = h.orgService.ListAllDepartments(r.Context(), caller(r))
	} else {
		result, err = h.orgService.ListDepartments(r.Context(), caller(r))
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *organizationHandlerImpl) GetDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	result, err := h.orgService.GetDepartment(r.Context(), caller(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *organizationHandlerImpl) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req department.CreateDepartmentRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	result, err := h.orgService.CreateDepartment(r.Context(), caller(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Department created", result)
}

func (h *organizationHandlerImpl) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	var req department.UpdateDepartmentRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id
	result, err := h.orgService.UpdateDepartment(r.Context(), caller(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Department updated", result)
}

func (h *organizationHandlerImpl) ToggleDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	req, err := decodeToggle(r)
	if err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	result, err := h.orgService.ToggleDepartment(r.Context(), caller(r), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Department updated", result)
}

// ListDepartmentPositions handles GET /organization/departments/{id}/positions
func (h *organizationHandlerImpl) ListDepartmentPositions(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	result, err := h.orgService.ListPositionsByDepartment(r.Context(), caller(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ==================== POSITIONS ====================

func (h *organizationHandlerImpl) ListPositions(w http.ResponseWriter, r *http.Request) {
	result, err := h.orgService.ListPositions(r.Context(), caller(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *organizationHandlerImpl) GetPosition(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	result, err := h.orgService.GetPosition(r.Context(), caller(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *organizationHandlerImpl) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var req position.CreatePositionRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	result, err := h.orgService.CreatePosition(r.Context(), caller(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Position created", result)
}

func (h *organizationHandlerImpl) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	var req position.UpdatePositionRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id
	result, err := h.orgService.UpdatePosition(r.Context(), caller(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Position updated", result)
}

func (h *organizationHandlerImpl) TogglePosition(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	req, err := decodeToggle(r)
	if err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	result, err := h.orgService.TogglePosition(r.Context(), caller(r), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Position updated", result)
}

// ListPositionJobDuties handles GET /organization/positions/{id}/job-duties
func (h *organizationHandlerImpl) ListPositionJobDuties(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	result, err := h.orgService.ListJobDutiesByPosition(r.Context(), caller(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ==================== JOB DUTIES ====================

func (h *organizationHandlerImpl) ListJobDuties(w http.ResponseWriter, r *http.Request) {
	result, err := h.orgService.ListJobDuties(r.Context(), caller(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *organizationHandlerImpl) GetJobDuty(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	result, err := h.orgService.GetJobDuty(r.Context(), caller(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *organizationHandlerImpl) CreateJobDuty(w http.ResponseWriter, r *http.Request) {
	var req jobduty.CreateJobDutyRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	result, err := h.orgService.CreateJobDuty(r.Context(), caller(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Job duty created", result)
}

func (h *organizationHandlerImpl) UpdateJobDuty(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	var req jobduty.UpdateJobDutyRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id
	result, err := h.orgService.UpdateJobDuty(r.Context(), caller(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Job duty updated", result)
}

func (h *organizationHandlerImpl) ToggleJobDuty(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	req, err := decodeToggle(r)
	if err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	result, err := h.orgService.ToggleJobDuty(r.Context(), caller(r), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Job duty updated", result)
}
