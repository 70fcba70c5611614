package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/domain/auth"
	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/jwt"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/oauth"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/session"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	user.UserRepository
	jwt.Service
	google      oauth.GoogleService
	sessions    session.Store
	ownerOpenID string
	now         func() time.Time
}

// NewAuthService wires sign-in and session handling. google may be nil when
// Google sign-in is not configured.
func NewAuthService(userRepository user.UserRepository, jwtService jwt.Service, google oauth.GoogleService, sessions session.Store, ownerOpenID string) auth.AuthService {
	return &AuthServiceImpl{
		UserRepository: userRepository,
		Service:        jwtService,
		google:         google,
		sessions:       sessions,
		ownerOpenID:    ownerOpenID,
		now:            time.Now,
	}
}

// HashPassword returns the bcrypt hash stored for password accounts.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (a *AuthServiceImpl) issue(u user.User) (auth.Session, error) {
	token, tokenID, expiresAt, err := a.Service.GenerateSessionToken(u.ID, u.Role)
	if err != nil {
		return auth.Session{}, fmt.Errorf("failed to create session token: %w", err)
	}
	return auth.Session{Token: token, TokenID: tokenID, ExpiresAt: expiresAt, User: u}, nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.Session, error) {
	if err := req.Validate(); err != nil {
		return auth.Session{}, err
	}

	userData, err := a.UserRepository.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.Session{}, auth.ErrInvalidCredentials
		}
		return auth.Session{}, err
	}

	if userData.PasswordHash == nil {
		return auth.Session{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*userData.PasswordHash), []byte(req.Password)); err != nil {
		return auth.Session{}, auth.ErrInvalidCredentials
	}
	if !userData.IsActive {
		return auth.Session{}, user.ErrUserInactive
	}

	// Refresh last_signed_in.
	userData, err = a.UserRepository.Upsert(ctx, user.UpsertUserParams{OpenID: userData.OpenID})
	if err != nil {
		return auth.Session{}, err
	}

	return a.issue(userData)
}

// GoogleRedirectURL implements auth.AuthService.
func (a *AuthServiceImpl) GoogleRedirectURL(state string) (string, error) {
	if a.google == nil {
		return "", auth.ErrOAuthDisabled
	}
	return a.google.RedirectURL(state), nil
}

// OAuthCallbackGoogle implements auth.AuthService.
func (a *AuthServiceImpl) OAuthCallbackGoogle(ctx context.Context, code string) (auth.Session, error) {
	if a.google == nil {
		return auth.Session{}, auth.ErrOAuthDisabled
	}

	profile, err := a.google.Exchange(ctx, code)
	if err != nil {
		return auth.Session{}, fmt.Errorf("google sign-in failed: %w", err)
	}
	if profile.Email == "" || !profile.VerifiedEmail {
		return auth.Session{}, auth.ErrOAuthEmailMissing
	}

	method := string(user.LoginMethodGoogle)
	email := strings.ToLower(profile.Email)
	params := user.UpsertUserParams{
		OpenID:      profile.OpenID(),
		Email:       &email,
		LoginMethod: &method,
	}
	if profile.Name != "" {
		params.Name = &profile.Name
	}
	if a.ownerOpenID != "" && params.OpenID == a.ownerOpenID {
		chairman := user.RoleChairman
		params.Role = &chairman
	}

	userData, err := a.UserRepository.Upsert(ctx, params)
	if err != nil {
		return auth.Session{}, err
	}
	if !userData.IsActive {
		return auth.Session{}, user.ErrUserInactive
	}

	slog.Info("user signed in", "user_id", userData.ID, "login_method", method)
	return a.issue(userData)
}

// Logout revokes the token until it would have expired anyway. A request
// without a session still succeeds.
func (a *AuthServiceImpl) Logout(ctx context.Context, req auth.LogoutRequest) error {
	if req.TokenID == "" {
		return nil
	}
	ttl := req.ExpiresAt.Sub(a.now())
	if ttl <= 0 {
		return nil
	}
	if err := a.sessions.Revoke(ctx, req.TokenID, ttl); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// Authenticate implements auth.AuthService.
func (a *AuthServiceImpl) Authenticate(ctx context.Context, userID int64, tokenID string) (*user.User, error) {
	if tokenID != "" {
		revoked, err := a.sessions.IsRevoked(ctx, tokenID)
		if err != nil {
			return nil, fmt.Errorf("failed to check session: %w", err)
		}
		if revoked {
			return nil, auth.ErrTokenRevoked
		}
	}

	userData, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrUnauthenticated
		}
		return nil, err
	}
	if !userData.IsActive {
		return nil, user.ErrUnauthenticated
	}
	return &userData, nil
}
