package user

import "context"

type UserService interface {
	List(ctx context.Context, caller *User, filter ListUsersFilter) ([]UserResponse, error)
	Get(ctx context.Context, caller *User, id int64) (*UserResponse, error)
	Create(ctx context.Context, caller *User, req CreateUserRequest) (*UserResponse, error)
	Update(ctx context.Context, caller *User, req UpdateUserRequest) (*UserResponse, error)
}
