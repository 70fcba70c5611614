package user

import "context"

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (User, error)
	GetByOpenID(ctx context.Context, openID string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, u User) (User, error)
	// Upsert inserts by open id or refreshes the profile fields and last_signed_in.
	Upsert(ctx context.Context, params UpsertUserParams) (User, error)
	Update(ctx context.Context, req UpdateUserRequest) (User, error)
	List(ctx context.Context, filter ListUsersFilter) ([]User, error)
}
