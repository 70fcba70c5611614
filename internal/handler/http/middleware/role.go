package middleware

import (
	"net/http"

	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	"github.com/perfhub/perfhub-backend-go/internal/handler/http/response"
)

// RequireRole rejects callers outside roles. Services repeat the check, so
// this only short-circuits whole route groups.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := user.RequireRole(user.CallerFromContext(r.Context()), roles...); err != nil {
				response.HandleError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
