package auth

import (
	"context"

	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (Session, error)
	// GoogleRedirectURL starts the OAuth flow; state is echoed back to the callback.
	GoogleRedirectURL(state string) (string, error)
	OAuthCallbackGoogle(ctx context.Context, code string) (Session, error)
	Logout(ctx context.Context, req LogoutRequest) error
	// Authenticate resolves a verified token into the current user record.
	Authenticate(ctx context.Context, userID int64, tokenID string) (*user.User, error)
}
