// AngelaMos | 2026
// handler.go

package ingest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
)

type Runner interface {
	Run(ctx context.Context) (*RunResult, error)
}

type Handler struct {
	runner Runner
}

func NewHandler(runner Runner) *Handler {
	return &Handler{runner: runner}
}

// RegisterRoutes mounts the trigger behind guard, normally the scheduler
// API key check.
func (h *Handler) RegisterRoutes(r chi.Router, guard func(http.Handler) http.Handler) {
	r.Route("/scheduler", func(r chi.Router) {
		r.Use(guard)
		r.Get("/public-data", h.TriggerPublicData)
	})
}

type triggerResponse struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Results   []SourceResult `json:"results"`
	Error     string         `json:"error,omitempty"`
}

func (h *Handler) TriggerPublicData(w http.ResponseWriter, r *http.Request) {
	run, err := h.runner.Run(r.Context())
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.JSON(w, http.StatusOK, triggerResponse{
		Success:   run.Success,
		Message:   run.Message,
		Status:    run.Status,
		Timestamp: run.FinishedAt,
		Results:   run.Results,
		Error:     run.Error,
	})
}
