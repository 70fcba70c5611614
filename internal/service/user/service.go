package user

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/perfhub/perfhub-backend-go/internal/domain/organization/department"
	"github.com/perfhub/perfhub-backend-go/internal/domain/organization/position"
	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	authservice "github.com/perfhub/perfhub-backend-go/internal/service/auth"
)

type UserServiceImpl struct {
	user.UserRepository
	departmentRepo department.DepartmentRepository
	positionRepo   position.PositionRepository
}

func NewUserService(userRepository user.UserRepository, departmentRepo department.DepartmentRepository, positionRepo position.PositionRepository) user.UserService {
	return &UserServiceImpl{
		UserRepository: userRepository,
		departmentRepo: departmentRepo,
		positionRepo:   positionRepo,
	}
}

func toResponses(users []user.User) []user.UserResponse {
	responses := make([]user.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *user.ToResponse(&users[i]))
	}
	return responses
}

// List implements user.UserService.
func (s *UserServiceImpl) List(ctx context.Context, caller *user.User, filter user.ListUsersFilter) ([]user.UserResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, user.ErrInvalidRole
	}
	users, err := s.UserRepository.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toResponses(users), nil
}

// Get implements user.UserService.
func (s *UserServiceImpl) Get(ctx context.Context, caller *user.User, id int64) (*user.UserResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	u, err := s.UserRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(&u), nil
}

// Create provisions a password account.
func (s *UserServiceImpl) Create(ctx context.Context, caller *user.User, req user.CreateUserRequest) (*user.UserResponse, error) {
	if err := user.RequireRole(caller, user.RolesOrgAdmin...); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkAssignment(ctx, req.DepartmentID, req.PositionID); err != nil {
		return nil, err
	}

	hash, err := authservice.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	method := string(user.LoginMethodPassword)
	name := strings.TrimSpace(req.Name)

	created, err := s.UserRepository.Create(ctx, user.User{
		OpenID:       "local:" + uuid.NewString(),
		Name:         &name,
		Email:        &email,
		LoginMethod:  &method,
		PasswordHash: &hash,
		Role:         req.Role,
		DepartmentID: req.DepartmentID,
		PositionID:   req.PositionID,
		IsActive:     true,
	})
	if err != nil {
		return nil, err
	}
	return user.ToResponse(&created), nil
}

// Update changes role, assignment or the active flag. Admins cannot change
// their own role or deactivate themselves.
func (s *UserServiceImpl) Update(ctx context.Context, caller *user.User, req user.UpdateUserRequest) (*user.UserResponse, error) {
	if err := user.RequireRole(caller, user.RolesOrgAdmin...); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.ID == caller.ID {
		if (req.Role != nil && *req.Role != caller.Role) || (req.IsActive != nil && !*req.IsActive) {
			return nil, user.ErrCannotDemoteSelf
		}
	}
	if err := s.checkAssignment(ctx, req.DepartmentID, req.PositionID); err != nil {
		return nil, err
	}

	updated, err := s.UserRepository.Update(ctx, req)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(&updated), nil
}

func (s *UserServiceImpl) checkAssignment(ctx context.Context, departmentID, positionID *int64) error {
	if departmentID != nil {
		if _, err := s.departmentRepo.GetByID(ctx, *departmentID); err != nil {
			return err
		}
	}
	if positionID != nil {
		if _, err := s.positionRepo.GetByID(ctx, *positionID); err != nil {
			return err
		}
	}
	return nil
}
