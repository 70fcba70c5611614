package http

import (
	"net/http"

	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	"github.com/perfhub/perfhub-backend-go/internal/handler/http/response"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/validator"
)

type UserHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
}

type userHandlerImpl struct {
	userService user.UserService
}

func NewUserHandler(userService user.UserService) UserHandler {
	return &userHandlerImpl{userService: userService}
}

// List supports ?department_id=, ?role= and ?active=true.
func (h *userHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var errs validator.ValidationErrors
	filter := user.ListUsersFilter{ActiveOnly: getBoolQueryParam(r, "active", false)}

	if v := getIntQueryParam(r, "department_id", 0); v > 0 {
		id := int64(v)
		filter.DepartmentID = &id
	}
	if v := r.URL.Query().Get("role"); v != "" {
		role := user.Role(v)
		if !role.Valid() {
			errs.Add("role", "invalid role")
		}
		filter.Role = &role
	}
	if err := errs.Err(); err != nil {
		response.HandleError(w, err)
		return
	}

	users, err := h.userService.List(r.Context(), caller(r), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, users)
}

func (h *userHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	u, err := h.userService.Get(r.Context(), caller(r), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, u)
}

func (h *userHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req user.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	u, err := h.userService.Create(r.Context(), caller(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "User created", u)
}

func (h *userHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	var req user.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id
	u, err := h.userService.Update(r.Context(), caller(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "User updated", u)
}
