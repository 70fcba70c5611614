package jwt

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
)

const tokenTypeAccess = "access"

var ErrInvalidClaims = errors.New("invalid session claims")

// Claims is the decoded content of a session token.
type Claims struct {
	UserID    int64
	Role      user.Role
	TokenID   string
	ExpiresAt time.Time
}

type Service interface {
	GenerateSessionToken(userID int64, role user.Role) (token string, tokenID string, expiresAt time.Time, err error)
	JWTAuth() *jwtauth.JWTAuth
	// Verifier wraps jwtauth.Verify, reading the bearer header first and then the session cookie.
	Verifier() func(http.Handler) http.Handler
	SessionCookie(token string, expiresAt time.Time) *http.Cookie
	ClearSessionCookie() *http.Cookie
	CookieName() string
}

type JWTService struct {
	accessTokenExpirationTime time.Duration
	cookieName                string
	secureCookie              bool
	tokenAuth                 *jwtauth.JWTAuth
}

// Options configures the session cookie.
type Options struct {
	CookieName   string
	SecureCookie bool
}

func NewJWTService(secretKey string, accessTokenExpirationTime string, opts Options) (Service, error) {
	expiration, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, err
	}
	if opts.CookieName == "" {
		opts.CookieName = "app_session_id"
	}
	return &JWTService{
		accessTokenExpirationTime: expiration,
		cookieName:                opts.CookieName,
		secureCookie:              opts.SecureCookie,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}, nil
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) CookieName() string {
	return j.cookieName
}

func (j *JWTService) GenerateSessionToken(userID int64, role user.Role) (token string, tokenID string, expiresAt time.Time, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpirationTime)
	tokenID = uuid.NewString()

	_, token, err = j.tokenAuth.Encode(map[string]interface{}{
		"user_id": strconv.FormatInt(userID, 10),
		"role":    string(role),
		"type":    tokenTypeAccess,
		"jti":     tokenID,
		"exp":     expiresAt.Unix(),
	})
	if err != nil {
		return "", "", time.Time{}, err
	}
	return token, tokenID, expiresAt, nil
}

func (j *JWTService) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verify(j.tokenAuth, jwtauth.TokenFromHeader, j.tokenFromCookie)
}

func (j *JWTService) tokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(j.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (j *JWTService) SessionCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     j.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   j.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func (j *JWTService) ClearSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     j.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   j.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// ParseClaims extracts session claims from a verified token.
func ParseClaims(token jwt.Token) (Claims, error) {
	if token == nil {
		return Claims{}, ErrInvalidClaims
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != tokenTypeAccess {
		return Claims{}, ErrInvalidClaims
	}

	rawUserID, ok := token.Get("user_id")
	if !ok {
		return Claims{}, ErrInvalidClaims
	}
	userIDStr, ok := rawUserID.(string)
	if !ok {
		return Claims{}, ErrInvalidClaims
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil || userID <= 0 {
		return Claims{}, ErrInvalidClaims
	}

	var role user.Role
	if rawRole, ok := token.Get("role"); ok {
		if s, ok := rawRole.(string); ok {
			role = user.Role(s)
		}
	}

	return Claims{
		UserID:    userID,
		Role:      role,
		TokenID:   token.JwtID(),
		ExpiresAt: token.Expiration(),
	}, nil
}
