package organization

import (
	"context"

	"github.com/perfhub/perfhub-backend-go/internal/domain/organization"
	"github.com/perfhub/perfhub-backend-go/internal/domain/organization/department"
	"github.com/perfhub/perfhub-backend-go/internal/domain/organization/jobduty"
	"github.com/perfhub/perfhub-backend-go/internal/domain/organization/position"
	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/database"
)

// OrganizationService manages departments, positions and job duties. Reads are
// open to every signed-in user; writes need an organization admin.
type OrganizationService interface {
	// Department operations
	ListDepartments(ctx context.Context, caller *user.User) ([]department.DepartmentResponse, error)
	ListAllDepartments(ctx context.Context, caller *user.User) ([]department.DepartmentResponse, error)
	GetDepartment(ctx context.Context, caller *user.User, id int64) (department.DepartmentResponse, error)
	CreateDepartment(ctx context.Context, caller *user.User, req department.CreateDepartmentRequest) (department.DepartmentResponse, error)
	UpdateDepartment(ctx context.Context, caller *user.User, req department.UpdateDepartmentRequest) (department.DepartmentResponse, error)
	ToggleDepartment(ctx context.Context, caller *user.User, id int64, req organization.ToggleActiveRequest) (department.DepartmentResponse, error)

	// Position operations
	ListPositions(ctx context.Context, caller *user.User) ([]position.PositionResponse, error)
	ListPositionsByDepartment(ctx context.Context, caller *user.User, departmentID int64) ([]position.PositionResponse, error)
	GetPosition(ctx context.Context, caller *user.User, id int64) (position.PositionResponse, error)
	CreatePosition(ctx context.Context, caller *user.User, req position.CreatePositionRequest) (position.PositionResponse, error)
	UpdatePosition(ctx context.Context, caller *user.User, req position.UpdatePositionRequest) (position.PositionResponse, error)
	TogglePosition(ctx context.Context, caller *user.User, id int64, req organization.ToggleActiveRequest) (position.PositionResponse, error)

	// Job duty operations
	ListJobDuties(ctx context.Context, caller *user.User) ([]jobduty.JobDutyResponse, error)
	ListJobDutiesByPosition(ctx context.Context, caller *user.User, positionID int64) ([]jobduty.JobDutyResponse, error)
	GetJobDuty(ctx context.Context, caller *user.User, id int64) (jobduty.JobDutyResponse, error)
	CreateJobDuty(ctx context.Context, caller *user.User, req jobduty.CreateJobDutyRequest) (jobduty.JobDutyResponse, error)
	UpdateJobDuty(ctx context.Context, caller *user.User, req jobduty.UpdateJobDutyRequest) (jobduty.JobDutyResponse, error)
	ToggleJobDuty(ctx context.Context, caller *user.User, id int64, req organization.ToggleActiveRequest) (jobduty.JobDutyResponse, error)

	// SeedReferenceData loads the reference departments, positions and duties once.
	SeedReferenceData(ctx context.Context) (SeedResult, error)
}

type organizationServiceImpl struct {
	departmentRepo department.DepartmentRepository
	positionRepo   position.PositionRepository
	jobDutyRepo    jobduty.JobDutyRepository
	tx             database.TxRunner
}

func NewOrganizationService(
	departmentRepo department.DepartmentRepository,
	positionRepo position.PositionRepository,
	jobDutyRepo jobduty.JobDutyRepository,
	tx database.TxRunner,
) OrganizationService {
	return &organizationServiceImpl{
		departmentRepo: departmentRepo,
		positionRepo:   positionRepo,
		jobDutyRepo:    jobDutyRepo,
		tx:             tx,
	}
}

func nextActive(current bool, req organization.ToggleActiveRequest) bool {
	if req.IsActive == nil {
		return !current
	}
	return *req.IsActive
}

// ==================== DEPARTMENT OPERATIONS ====================

func (s *organizationServiceImpl) ListDepartments(ctx context.Context, caller *user.User) ([]department.DepartmentResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	departments, err := s.departmentRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return toDepartmentResponses(departments), nil
}

func (s *organizationServiceImpl) ListAllDepartments(ctx context.Context, caller *user.User) ([]department.DepartmentResponse, error) {
	if err := user.RequireRole(caller, user.RolesOrgAdmin...); err != nil {
		return nil, err
	}
	departments, err := s.departmentRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toDepartmentResponses(departments), nil
}

func toDepartmentResponses(departments []department.Department) []department.DepartmentResponse {
	responses := make([]department.DepartmentResponse, 0, len(departments))
	for _, d := range departments {
		responses = append(responses, department.ToResponse(d))
	}
	return responses
}

func (s *organizationServiceImpl) GetDepartment(ctx context.Context, caller *user.User, id int64) (department.DepartmentResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return department.DepartmentResponse{}, err
	}
	d, err := s.departmentRepo.GetByID(ctx, id)
	if err != nil {
		return department.DepartmentResponse{}, err
	}
	return department.ToResponse(d), nil
}

func (s *organizationServiceImpl) CreateDepartment(ctx context.Context, caller *user.User, req department.CreateDepartmentRequest) (department.DepartmentResponse, error) {
	if err := user.RequireRole(caller, user.RolesOrgAdmin...); err != nil {
		return department.DepartmentResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return department.DepartmentResponse{}, err
	}

	created, err := s.departmentRepo.Create(ctx, department.Department{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
	})
	if err != nil {
		return department.DepartmentResponse{}, err
	}
	return department.ToResponse(created), nil
}

func (s *organizationServiceImpl) UpdateDepartment(ctx context.Context, caller *user.User, req department.UpdateDepartmentRequest) (department.DepartmentResponse, error) {
	if err := user.RequireRole(caller, user.RolesOrgAdmin...); err != nil {
		return department.DepartmentResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return department.DepartmentResponse{}, err
	}

	updated, err := s.departmentRepo.Update(ctx, req)
	if err != nil {
		return department.DepartmentResponse{}, err
	}
	return department.ToResponse(updated), nil
}

// ToggleDepartment changes only the department; its positions keep their flag.
func (s *organizationServiceImpl) ToggleDepartment(ctx context.Context, caller *user.User, id int64, req organization.ToggleActiveRequest) (department.DepartmentResponse, error) {
	if err := user.RequireRole(caller, user.RolesOrgAdmin...); err != nil {
		return department.DepartmentResponse{}, err
	}

	var result department.Department
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.departmentRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		result, err = s.departmentRepo.SetActive(ctx, id, nextActive(current.IsActive, req))
		return err
	})
	if err != nil {
		return department.DepartmentResponse{}, err
	}
	return department.ToResponse(result), nil
}

// ==================== POSITION OPERATIONS ====================

func (s *organizationServiceImpl) ListPositions(ctx context.Context, caller *user.User) ([]position.PositionResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	positions, err := s.positionRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toPositionResponses(positions), nil
}

func (s *organizationServiceImpl) ListPositionsByDepartment(ctx context.Context, caller *user.User, departmentID int64) ([]position.PositionResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	positions, err := s.positionRepo.ListActiveByDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	return toPositionResponses(positions), nil
}

func toPositionResponses(positions []position.Position) []position.PositionResponse {
	responses := make([]position.PositionResponse, 0, len(positions))
	for _, p := range positions {
		responses = append(responses, position.ToResponse(p))
	}
	return responses
}

func (s *organizationServiceImpl) GetPosition(ctx context.Context, caller *user.User, id int64) (position.PositionResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return position.PositionResponse{}, err
	}
	p, err := s.positionRepo.GetByID(ctx, id)
	if err != nil {
		return position.PositionResponse{}, err
	}
	return position.ToResponse(p), nil
}

func (s *organizationServiceImpl) CreatePosition(ctx context.Context, caller *user.User, req position.CreatePositionRequest) (position.PositionResponse, error) {
	if err := user.RequireRole(caller, user.RolesOrgAdmin...); err != nil {
		return position.PositionResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return position.PositionResponse{}, err
	}
	if _, err := s.departmentRepo.GetByID(ctx, req.DepartmentID); err != nil {
		return position.PositionResponse{}, err
	}

	created, err := s.positionRepo.Create(ctx, position.Position{
		DepartmentID: req.DepartmentID,
		Title:        req.Title,
		Level:        req.Level,
		Description:  req.Description,
	})
	if err != nil {
		return position.PositionResponse{}, err
	}
	return position.ToResponse(created), nil
}

func (s *organizationServiceImpl) UpdatePosition(ctx context.Context, caller *user.User, req position.UpdatePositionRequest) (position.PositionResponse, error) {
	if err := user.RequireRole(caller, user.RolesOrgAdmin...); err != nil {
		return position.PositionResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return position.PositionResponse{}, err
	}
	if _, err := s.departmentRepo.GetByID(ctx, req.DepartmentID); err != nil {
		return position.PositionResponse{}, err
	}

	updated, err := s.positionRepo.Update(ctx, req)
	if err != nil {
		return position.PositionResponse{}, err
	}
	return position.ToResponse(updated), nil
}

func (s *organizationServiceImpl) TogglePosition(ctx context.Context, caller *user.User, id int64, req organization.ToggleActiveRequest) (position.PositionResponse, error) {
	if err := user.RequireRole(caller, user.RolesOrgAdmin...); err != nil {
		return position.PositionResponse{}, err
	}

	var result position.Position
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.positionRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		result, err = s.positionRepo.SetActive(ctx, id, nextActive(current.IsActive, req))
		return err
	})
	if err != nil {
		return position.PositionResponse{}, err
	}
	return position.ToResponse(result), nil
}

// ==================== JOB DUTY OPERATIONS ====================

func (s *organizationServiceImpl) ListJobDuties(ctx context.Context, caller *user.User) ([]jobduty.JobDutyResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	duties, err := s.jobDutyRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toJobDutyResponses(duties), nil
}

func (s *organizationServiceImpl) ListJobDutiesByPosition(ctx context.Context, caller *user.User, positionID int64) ([]jobduty.JobDutyResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	duties, err := s.jobDutyRepo.ListActiveByPosition(ctx, positionID)
	if err != nil {
		return nil, err
	}
	return toJobDutyResponses(duties), nil
}

func toJobDutyResponses(duties []jobduty.JobDuty) []jobduty.JobDutyResponse {
	responses := make([]jobduty.JobDutyResponse, 0, len(duties))
	for _, d := range duties {
		responses = append(responses, jobduty.ToResponse(d))
	}
	return responses
}

func (s *organizationServiceImpl) GetJobDuty(ctx context.Context, caller *user.User, id int64) (jobduty.JobDutyResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return jobduty.JobDutyResponse{}, err
	}
	d, err := s.jobDutyRepo.GetByID(ctx, id)
	if err != nil {
		return jobduty.JobDutyResponse{}, err
	}
	return jobduty.ToResponse(d), nil
}

func (s *organizationServiceImpl) CreateJobDuty(ctx context.Context, caller *user.User, req jobduty.CreateJobDutyRequest) (jobduty.JobDutyResponse, error) {
	if err := user.RequireRole(caller, user.RolesOrgAdmin...); err != nil {
		return jobduty.JobDutyResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return jobduty.JobDutyResponse{}, err
	}
	if _, err := s.positionRepo.GetByID(ctx, req.PositionID); err != nil {
		return jobduty.JobDutyResponse{}, err
	}

	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}
	created, err := s.jobDutyRepo.Create(ctx, jobduty.JobDuty{
		PositionID:  req.PositionID,
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		SortOrder:   sortOrder,
	})
	if err != nil {
		return jobduty.JobDutyResponse{}, err
	}
	return jobduty.ToResponse(created), nil
}

func (s *organizationServiceImpl) UpdateJobDuty(ctx context.Context, caller *user.User, req jobduty.UpdateJobDutyRequest) (jobduty.JobDutyResponse, error) {
	if err := user.RequireRole(caller, user.RolesOrgAdmin...); err != nil {
		return jobduty.JobDutyResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return jobduty.JobDutyResponse{}, err
	}
	if _, err := s.positionRepo.GetByID(ctx, req.PositionID); err != nil {
		return jobduty.JobDutyResponse{}, err
	}

	updated, err := s.jobDutyRepo.Update(ctx, req)
	if err != nil {
		return jobduty.JobDutyResponse{}, err
	}
	return jobduty.ToResponse(updated), nil
}

func (s *organizationServiceImpl) ToggleJobDuty(ctx context.Context, caller *user.User, id int64, req organization.ToggleActiveRequest) (jobduty.JobDutyResponse, error) {
	if err := user.RequireRole(caller, user.RolesOrgAdmin...); err != nil {
		return jobduty.JobDutyResponse{}, err
	}

	var result jobduty.JobDuty
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.jobDutyRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		result, err = s.jobDutyRepo.SetActive(ctx, id, nextActive(current.IsActive, req))
		return err
	})
	if err != nil {
		return jobduty.JobDutyResponse{}, err
	}
	return jobduty.ToResponse(result), nil
}
