// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	StatusOK           = "ok"
	StatusDegraded     = "degraded"
	StatusNotReady     = "not_ready"
	StatusShuttingDown = "shutting_down"

	checkTimeout = 5 * time.Second
)

type Checker interface {
	Ping(ctx context.Context) error
}

type dependency struct {
	name    string
	checker Checker
}

// Handler serves the root liveness message and the probes. Readiness pings
// every dependency concurrently.
type Handler struct {
	service  string
	deps     []dependency
	ready    atomic.Bool
	shutdown atomic.Bool
}

func NewHandler(service string, db, redis Checker) *Handler {
	h := &Handler{
		service: service,
		deps: []dependency{
			{name: "database", checker: db},
			{name: "redis", checker: redis},
		},
	}
	h.ready.Store(true)
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Root)
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	h.writeStatus(w, http.StatusOK, RootResponse{
		Status:  StatusOK,
		Message: h.service + " is running",
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	if h.shutdown.Load() {
		h.writeStatus(w, http.StatusServiceUnavailable, StatusResponse{Status: StatusShuttingDown})
		return
	}
	h.writeStatus(w, http.StatusOK, StatusResponse{Status: StatusOK})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	switch {
	case h.shutdown.Load():
		h.writeStatus(w, http.StatusServiceUnavailable, StatusResponse{Status: StatusShuttingDown})
		return
	case !h.ready.Load():
		h.writeStatus(w, http.StatusServiceUnavailable, StatusResponse{Status: StatusNotReady})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	checks := h.runChecks(ctx)

	status, code := StatusOK, http.StatusOK
	for _, c := range checks {
		if !c.Healthy {
			status, code = StatusDegraded, http.StatusServiceUnavailable
			break
		}
	}

	h.writeStatus(w, code, ReadinessResponse{Status: status, Checks: checks})
}

func (h *Handler) runChecks(ctx context.Context) []HealthCheck {
	checks := make([]HealthCheck, len(h.deps))

	var wg sync.WaitGroup
	for i, dep := range h.deps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			checks[i] = check(ctx, dep)
		}()
	}
	wg.Wait()

	return checks
}

func check(ctx context.Context, dep dependency) HealthCheck {
	result := HealthCheck{Name: dep.name, Healthy: true}

	if dep.checker == nil {
		result.Healthy = false
		result.Message = dep.name + " checker not configured"
		return result
	}

	start := time.Now()
	err := dep.checker.Ping(ctx)
	result.Latency = time.Since(start).String()

	if err != nil {
		result.Healthy = false
		result.Message = "ping failed"
	}
	return result
}

func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *Handler) SetShutdown(shutdown bool) {
	h.shutdown.Store(shutdown)
}

func (h *Handler) writeStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data) //nolint:errchkjson
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ReadinessResponse struct {
	Status string        `json:"status"`
	Checks []HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}
