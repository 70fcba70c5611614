package auth

import (
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/validator"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Email) {
		errs.Add("email", "email is required")
	} else if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "invalid email format")
	}

	if validator.IsEmpty(r.Password) {
		errs.Add("password", "password is required")
	}

	return errs.Err()
}

// Session is the result of a successful sign-in. The token travels in the
// session cookie and may also be sent back as a bearer token.
type Session struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
	User      user.User
}

type SessionResponse struct {
	AccessToken string             `json:"access_token"`
	TokenType   string             `json:"token_type"`
	ExpiresAt   time.Time          `json:"expires_at"`
	User        *user.UserResponse `json:"user"`
}

func (s Session) ToResponse() SessionResponse {
	return SessionResponse{
		AccessToken: s.Token,
		TokenType:   "Bearer",
		ExpiresAt:   s.ExpiresAt,
		User:        user.ToResponse(&s.User),
	}
}

// LogoutRequest identifies the session being closed.
type LogoutRequest struct {
	TokenID   string
	ExpiresAt time.Time
}

type LogoutResponse struct {
	Success bool `json:"success"`
}
