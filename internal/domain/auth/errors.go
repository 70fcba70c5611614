package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("session has been revoked")
	ErrOAuthDisabled      = errors.New("google sign-in is not configured")
	ErrInvalidOAuthState  = errors.New("invalid oauth state")
	ErrOAuthEmailMissing  = errors.New("google account has no verified email")
)
