package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	"github.com/perfhub/perfhub-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func strPtr(s string) *string {
	return &s
}

func createTestUser(t *testing.T, ctx context.Context, repo user.UserRepository, email string) user.User {
	t.Helper()
	return createTestUserIn(t, ctx, repo, email, nil)
}

func createTestUserIn(t *testing.T, ctx context.Context, repo user.UserRepository, email string, departmentID *int64) user.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	created, err := repo.Create(ctx, user.User{
		OpenID:       "password:" + email,
		Name:         strPtr("Test User"),
		Email:        strPtr(email),
		LoginMethod:  strPtr(string(user.LoginMethodPassword)),
		PasswordHash: strPtr(string(hashed)),
		Role:         user.RoleEmployee,
		DepartmentID: departmentID,
		IsActive:     true,
	})
	require.NoError(t, err)
	return created
}

// ===== USER REPOSITORY TESTS =====

func TestUserRepository_CreateAndGet(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(setup.DB)

	created := createTestUser(t, ctx, repo, "employee@example.com")
	assert.NotZero(t, created.ID)
	assert.Equal(t, user.RoleEmployee, created.Role)

	byEmail, err := repo.GetByEmail(ctx, "employee@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.OpenID, byID.OpenID)
}

func TestUserRepository_NotFoundAndDuplicate(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(setup.DB)

	_, err := repo.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	createTestUser(t, ctx, repo, "dup@example.com")
	_, err = repo.Create(ctx, user.User{
		OpenID:   "password:other",
		Email:    strPtr("dup@example.com"),
		Role:     user.RoleEmployee,
		IsActive: true,
	})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)
}

func TestUserRepository_UpsertRefreshesSignIn(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(setup.DB)

	first, err := repo.Upsert(ctx, user.UpsertUserParams{OpenID: "google:123", Email: strPtr("g@example.com")})
	require.NoError(t, err)
	assert.Equal(t, user.RoleEmployee, first.Role)

	time.Sleep(10 * time.Millisecond)
	second, err := repo.Upsert(ctx, user.UpsertUserParams{OpenID: "google:123"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, second.Email)
	assert.Equal(t, "g@example.com", *second.Email)
	assert.True(t, second.LastSignedIn.After(first.LastSignedIn))
}

func TestUserRepository_OwnerRoleReappliedOnSignIn(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(setup.DB)

	first, err := repo.Upsert(ctx, user.UpsertUserParams{OpenID: "google:owner"})
	require.NoError(t, err)
	assert.Equal(t, user.RoleEmployee, first.Role)

	chairman := user.RoleChairman
	second, err := repo.Upsert(ctx, user.UpsertUserParams{OpenID: "google:owner", Role: &chairman})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, user.RoleChairman, second.Role)
}
