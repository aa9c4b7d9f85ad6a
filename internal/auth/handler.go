// AngelaMos | 2026
// handler.go

package auth

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
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
		r.Post("/refresh", h.Refresh)
		r.Post("/delete", h.DeleteAccount)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Post("/logout", h.Logout)
		})
	})
}

// Login takes credentials from HTTP Basic auth when present, otherwise
// from the JSON body.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if userID, password, ok := r.BasicAuth(); ok {
		req = LoginRequest{UserID: userID, Password: password}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Login(r.Context(), req, clientMeta(r))
	if err != nil {
		writeAuthError(w, err)
		return
	}

	core.OK(w, "login successful", resp)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Register(r.Context(), req, clientMeta(r))
	if err != nil {
		writeAuthError(w, err)
		return
	}

	core.Created(w, "registration successful", resp)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Refresh(r.Context(), req.RefreshToken, clientMeta(r))
	if err != nil {
		writeAuthError(w, err)
		return
	}

	core.OK(w, "token refreshed", resp)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	resp, err := h.service.Logout(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp.Message, resp)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req DeleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.DeleteUser(r.Context(), req.UserID, req.Password); err != nil {
		writeAuthError(w, err)
		return
	}

	core.OK(w, "account deleted", nil)
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		core.Unauthorized(w, "invalid user id or password")
	case errors.Is(err, ErrUserExists):
		core.Unauthorized(w, "user id already registered")
	default:
		core.JSONError(w, err)
	}
}

func clientMeta(r *http.Request) ClientMeta {
	return ClientMeta{
		UserAgent: r.UserAgent(),
		IPAddress: middleware.ClientIP(r),
	}
}
