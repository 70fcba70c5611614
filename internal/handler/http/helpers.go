package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/validator"
)

// caller returns the authenticated user placed on the context by the auth middleware.
func caller(r *http.Request) *user.User {
	return user.CallerFromContext(r.Context())
}

// decodeJSON decodes the request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

// idParam parses a positive int64 route parameter.
func idParam(r *http.Request, key string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id <= 0 {
		var errs validator.ValidationErrors
		errs.Add(key, key+" must be a positive integer")
		return 0, errs
	}
	return id, nil
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getBoolQueryParam gets a bool query parameter with a default value
func getBoolQueryParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

// dateQueryParam parses an optional YYYY-MM-DD query parameter.
func dateQueryParam(r *http.Request, key string, errs *validator.ValidationErrors) *time.Time {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	date, ok := validator.IsValidDate(val)
	if !ok {
		errs.Add(key, key+" must be in YYYY-MM-DD format")
		return nil
	}
	return &date
}
