// AngelaMos | 2026
// handler.go

package bugreport

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

// RegisterRoutes leaves submission open to anonymous clients; triage is
// admin only.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/bug-reports", func(r chi.Router) {
		r.Post("/", h.Create)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Use(middleware.RequireAdmin)

			r.Get("/", h.List)
			r.Get("/{id}", h.Get)
			r.Patch("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	report, err := h.service.Create(r.Context(), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, "bug report submitted", report)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ParseListParams(r)

	reports, total, err := h.service.FindAll(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, "bug reports retrieved", reports,
		params.Page, params.Limit, total, len(reports))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "id")
	if err != nil {
		core.JSONError(w, err)
		return
	}

	report, err := h.service.FindOne(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, "bug report retrieved", report)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "id")
	if err != nil {
		core.JSONError(w, err)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	report, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, "bug report updated", report)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "id")
	if err != nil {
		core.JSONError(w, err)
		return
	}

	if err := h.service.Remove(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, "bug report deleted", nil)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "bug report")
		return
	}
	core.JSONError(w, err)
}
