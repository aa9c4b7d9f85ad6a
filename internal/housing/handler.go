// AngelaMos | 2026
// handler.go

package housing

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
	"github.com/byzip-v2/byzip-backend-v2/internal/middleware"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/housing-supplies", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/missing-coordinates", h.MissingCoordinates)
			r.Post("/", h.Create)
			r.Patch("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})

		r.Get("/{id}", h.Get)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params, err := ParseListParams(r)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	supplies, total, err := h.service.FindAll(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, "housing supplies retrieved", supplies,
		params.Page, params.Limit, total, len(supplies))
}

func (h *Handler) MissingCoordinates(w http.ResponseWriter, r *http.Request) {
	params, err := ParseListParams(r)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	supplies, total, err := h.service.MissingCoordinates(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, "housing supplies missing coordinates", supplies,
		params.Page, params.Limit, total, len(supplies))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "id")
	if err != nil {
		core.JSONError(w, err)
		return
	}

	supply, err := h.service.FindOne(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, "housing supply retrieved", supply)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	supply, err := h.service.Create(r.Context(), body)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, "housing supply created", supply)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "id")
	if err != nil {
		core.JSONError(w, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	supply, err := h.service.Update(r.Context(), id, body)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, "housing supply updated", supply)
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

	core.OK(w, "housing supply deleted", nil)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "housing supply")
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.ConflictError("pblancNo already exists"))
	default:
		core.JSONError(w, err)
	}
}
