package kpi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/domain/kpi"
	"github.com/perfhub/perfhub-backend-go/internal/domain/notification"
	"github.com/perfhub/perfhub-backend-go/internal/domain/organization/position"
	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/database"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/validator"
)

// rolesDefinitionReaders may browse definitions of any position.
var rolesDefinitionReaders = []user.Role{user.RoleAdmin, user.RoleChairman, user.RoleSupervisor}

type kpiServiceImpl struct {
	definitionRepo kpi.DefinitionRepository
	actualRepo     kpi.ActualRepository
	positionRepo   position.PositionRepository
	userRepo       user.UserRepository
	notifier       notification.Sender
	tx             database.TxRunner
	now            func() time.Time
}

func NewKpiService(
	definitionRepo kpi.DefinitionRepository,
	actualRepo kpi.ActualRepository,
	positionRepo position.PositionRepository,
	userRepo user.UserRepository,
	notifier notification.Sender,
	tx database.TxRunner,
) kpi.KpiService {
	return &kpiServiceImpl{
		definitionRepo: definitionRepo,
		actualRepo:     actualRepo,
		positionRepo:   positionRepo,
		userRepo:       userRepo,
		notifier:       notifier,
		tx:             tx,
		now:            time.Now,
	}
}

func toDefinitionResponses(defs []kpi.Definition) []kpi.DefinitionResponse {
	responses := make([]kpi.DefinitionResponse, 0, len(defs))
	for _, d := range defs {
		responses = append(responses, kpi.ToDefinitionResponse(d))
	}
	return responses
}

func toActualResponses(actuals []kpi.Actual) []kpi.ActualResponse {
	responses := make([]kpi.ActualResponse, 0, len(actuals))
	for _, a := range actuals {
		responses = append(responses, kpi.ToActualResponse(a))
	}
	return responses
}

func validatePeriod(period string) error {
	var errs validator.ValidationErrors
	if !validator.IsValidPeriod(period) {
		errs.Add("period", "period must be in YYYY-MM format")
	}
	return errs.Err()
}

// ListMyDefinitions returns the active definitions of the caller's position.
func (s *kpiServiceImpl) ListMyDefinitions(ctx context.Context, caller *user.User) ([]kpi.DefinitionResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	if caller.PositionID == nil {
		return nil, kpi.ErrPositionNotAssigned
	}
	defs, err := s.definitionRepo.ListActiveByPosition(ctx, *caller.PositionID)
	if err != nil {
		return nil, err
	}
	return toDefinitionResponses(defs), nil
}

func (s *kpiServiceImpl) ListMyActuals(ctx context.Context, caller *user.User, period string) ([]kpi.ActualResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	if err := validatePeriod(period); err != nil {
		return nil, err
	}
	actuals, err := s.actualRepo.ListByUserAndPeriod(ctx, caller.ID, period)
	if err != nil {
		return nil, err
	}
	return toActualResponses(actuals), nil
}

// ListPending returns pending actuals in the caller's department.
func (s *kpiServiceImpl) ListPending(ctx context.Context, caller *user.User) ([]kpi.ActualResponse, error) {
	if err := user.RequireRole(caller, user.RolesSupervisor...); err != nil {
		return nil, err
	}
	if caller.DepartmentID == nil {
		return []kpi.ActualResponse{}, nil
	}
	actuals, err := s.actualRepo.ListPendingByDepartment(ctx, *caller.DepartmentID)
	if err != nil {
		return nil, err
	}
	return toActualResponses(actuals), nil
}

func (s *kpiServiceImpl) ListDefinitionsByPosition(ctx context.Context, caller *user.User, positionID int64) ([]kpi.DefinitionResponse, error) {
	if err := user.RequireRole(caller, rolesDefinitionReaders...); err != nil {
		return nil, err
	}
	if _, err := s.positionRepo.GetByID(ctx, positionID); err != nil {
		return nil, err
	}
	defs, err := s.definitionRepo.ListByPosition(ctx, positionID)
	if err != nil {
		return nil, err
	}
	return toDefinitionResponses(defs), nil
}

func (s *kpiServiceImpl) CreateDefinition(ctx context.Context, caller *user.User, req kpi.CreateDefinitionRequest) (*kpi.DefinitionResponse, error) {
	if err := user.RequireRole(caller, user.RolesOrgAdmin...); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.positionRepo.GetByID(ctx, req.PositionID); err != nil {
		return nil, err
	}

	created, err := s.definitionRepo.Create(ctx, kpi.Definition{
		PositionID:        req.PositionID,
		Category:          req.Category,
		Name:              req.Name,
		Description:       req.Description,
		Unit:              req.Unit,
		CalculationMethod: req.CalculationMethod,
		Weight:            req.Weight,
		TargetValue:       req.TargetValue,
		IsActive:          true,
	})
	if err != nil {
		return nil, err
	}
	resp := kpi.ToDefinitionResponse(created)
	return &resp, nil
}

func (s *kpiServiceImpl) UpdateDefinition(ctx context.Context, caller *user.User, req kpi.UpdateDefinitionRequest) (*kpi.DefinitionResponse, error) {
	if err := user.RequireRole(caller, user.RolesOrgAdmin...); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	def, err := s.definitionRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	def.Category = req.Category
	def.Name = req.Name
	def.Description = req.Description
	def.Unit = req.Unit
	def.CalculationMethod = req.CalculationMethod
	def.Weight = req.Weight
	def.TargetValue = req.TargetValue
	if req.IsActive != nil {
		def.IsActive = *req.IsActive
	}

	updated, err := s.definitionRepo.Update(ctx, def)
	if err != nil {
		return nil, err
	}
	resp := kpi.ToDefinitionResponse(updated)
	return &resp, nil
}

// SubmitActual records the caller's value for a period. Resubmitting replaces
// a pending or rejected value; approved values are final.
func (s *kpiServiceImpl) SubmitActual(ctx context.Context, caller *user.User, req kpi.SubmitActualRequest) (*kpi.ActualResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if caller.PositionID == nil {
		return nil, kpi.ErrPositionNotAssigned
	}

	var saved kpi.Actual
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		def, err := s.definitionRepo.GetByID(ctx, req.KpiDefinitionID)
		if err != nil {
			return err
		}
		if def.PositionID != *caller.PositionID {
			return kpi.ErrDefinitionMismatch
		}
		if !def.IsActive {
			return kpi.ErrDefinitionInactive
		}

		existing, err := s.actualRepo.GetByKey(ctx, def.ID, caller.ID, req.Period)
		switch {
		case err == nil && existing.Status == kpi.StatusApproved:
			return kpi.ErrActualLocked
		case err != nil && !errors.Is(err, kpi.ErrActualNotFound):
			return err
		}

		saved, err = s.actualRepo.Upsert(ctx, kpi.Actual{
			KpiDefinitionID: def.ID,
			UserID:          caller.ID,
			Period:          req.Period,
			ActualValue:     req.ActualValue,
			EmployeeNote:    req.EmployeeNote,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := kpi.ToActualResponse(saved)
	return &resp, nil
}

func (s *kpiServiceImpl) Approve(ctx context.Context, caller *user.User, actualID int64, req kpi.ReviewActualRequest) (*kpi.ActualResponse, error) {
	return s.review(ctx, caller, actualID, kpi.StatusApproved, req)
}

func (s *kpiServiceImpl) Reject(ctx context.Context, caller *user.User, actualID int64, req kpi.ReviewActualRequest) (*kpi.ActualResponse, error) {
	return s.review(ctx, caller, actualID, kpi.StatusRejected, req)
}

// review decides a pending actual. Approval fills in achievement rate and
// score from the definition's target and weight.
func (s *kpiServiceImpl) review(ctx context.Context, caller *user.User, actualID int64, decision kpi.Status, req kpi.ReviewActualRequest) (*kpi.ActualResponse, error) {
	if err := user.RequireRole(caller, user.RolesSupervisor...); err != nil {
		return nil, err
	}

	var (
		reviewed kpi.Actual
		def      kpi.Definition
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		actual, err := s.actualRepo.GetByID(ctx, actualID)
		if err != nil {
			return err
		}
		if actual.UserID == caller.ID {
			return user.ErrSelfReview
		}
		if caller.Role != user.RoleChairman {
			author, err := s.userRepo.GetByID(ctx, actual.UserID)
			if err != nil {
				return err
			}
			if !caller.SameDepartment(&author) {
				return kpi.ErrNotSameDepartment
			}
		}
		if actual.Status != kpi.StatusPending {
			return kpi.ErrActualNotPending
		}

		def, err = s.definitionRepo.GetByID(ctx, actual.KpiDefinitionID)
		if err != nil {
			return err
		}

		now := s.now()
		reviewerID := caller.ID
		actual.Status = decision
		actual.ReviewedBy = &reviewerID
		actual.ReviewedAt = &now
		actual.SupervisorNote = req.SupervisorNote
		actual.AchievementRate, actual.Score = nil, nil
		if decision == kpi.StatusApproved {
			actual.AchievementRate, actual.Score = kpi.Achievement(def, actual.ActualValue)
		}

		reviewed, err = s.actualRepo.Review(ctx, actual)
		return err
	})
	if err != nil {
		return nil, err
	}

	relatedID := reviewed.ID
	if err := s.notifier.QueueNotification(ctx, notification.CreateNotificationRequest{
		UserID:    reviewed.UserID,
		Type:      notification.TypeKpiUpdate,
		Title:     fmt.Sprintf("KPI %s", reviewed.Status),
		Content:   fmt.Sprintf("Your %s value for %s was %s.", def.Name, reviewed.Period, reviewed.Status),
		RelatedID: &relatedID,
	}); err != nil {
		slog.Warn("failed to queue kpi notification", "kpi_actual_id", reviewed.ID, "error", err)
	}

	resp := kpi.ToActualResponse(reviewed)
	return &resp, nil
}
