package middleware

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/perfhub/perfhub-backend-go/internal/domain/auth"
	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	"github.com/perfhub/perfhub-backend-go/internal/handler/http/response"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/jwt"
)

// AuthRequired runs after jwtauth.Verifier. It resolves the verified token
// into the current user record and stores it as the request caller.
func AuthRequired(authService auth.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			claims, err := jwt.ParseClaims(token)
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			caller, err := authService.Authenticate(r.Context(), claims.UserID, claims.TokenID)
			if err != nil {
				slog.Debug("session rejected", "user_id", claims.UserID, "error", err)
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(user.WithCaller(r.Context(), caller)))
		}
		return http.HandlerFunc(hfn)
	}
}

// AuthOptional resolves the caller like AuthRequired but lets anonymous
// requests through with no caller set.
func AuthOptional(authService auth.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := jwt.ParseClaims(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			caller, err := authService.Authenticate(r.Context(), claims.UserID, claims.TokenID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(user.WithCaller(r.Context(), caller)))
		})
	}
}
