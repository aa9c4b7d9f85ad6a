// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
	"github.com/byzip-v2/byzip-backend-v2/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/me", h.GetMe)
		r.Patch("/me", h.UpdateMe)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Get("/", h.ListUsers)
			r.Get("/{id}", h.GetUser)
			r.Patch("/{id}", h.UpdateUser)
			r.Delete("/{id}", h.DeleteUser)
		})
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetMe(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, "user retrieved", ToUserResponse(user))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.UpdateMe(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, "profile updated", ToUserResponse(user))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := ParseListUsersParams(r)

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		"users retrieved",
		ToUserResponseList(users),
		params.Page,
		params.Limit,
		total,
		len(users),
	)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "id")
	if err != nil {
		core.JSONError(w, err)
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.OK(w, "user retrieved", ToUserResponse(user))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "id")
	if err != nil {
		core.JSONError(w, err)
		return
	}

	var req AdminUpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, req)
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.OK(w, "user updated", ToUserResponse(user))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "id")
	if err != nil {
		core.JSONError(w, err)
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		writeUserError(w, err)
		return
	}

	core.OK(w, "user deleted", nil)
}

func writeUserError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "user")
		return
	}
	core.JSONError(w, err)
}
