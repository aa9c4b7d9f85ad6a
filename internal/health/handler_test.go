// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

var (
	healthy   = pingFunc(func(context.Context) error { return nil })
	unhealthy = pingFunc(func(context.Context) error { return errors.New("connection refused") })
)

func serve(t *testing.T, h *Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	r := chi.NewRouter()
	h.RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestRoot(t *testing.T) {
	w, body := serve(t, NewHandler("byzip", healthy, healthy), "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "byzip is running", body["message"])
}

func TestReadiness(t *testing.T) {
	t.Run("all dependencies up", func(t *testing.T) {
		w, body := serve(t, NewHandler("byzip", healthy, healthy), "/readyz")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, StatusOK, body["status"])
		assert.Len(t, body["checks"], 2)
	})

	t.Run("redis down", func(t *testing.T) {
		w, body := serve(t, NewHandler("byzip", healthy, unhealthy), "/readyz")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, StatusDegraded, body["status"])

		checks := body["checks"].([]any)
		redisCheck := checks[1].(map[string]any)
		assert.Equal(t, "redis", redisCheck["name"])
		assert.Equal(t, false, redisCheck["healthy"])
	})

	t.Run("missing checker", func(t *testing.T) {
		w, _ := serve(t, NewHandler("byzip", nil, healthy), "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		h := NewHandler("byzip", healthy, healthy)
		h.SetReady(false)

		w, body := serve(t, h, "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, StatusNotReady, body["status"])
	})
}

func TestLivenessDuringShutdown(t *testing.T) {
	h := NewHandler("byzip", healthy, healthy)

	w, _ := serve(t, h, "/livez")
	assert.Equal(t, http.StatusOK, w.Code)

	h.SetShutdown(true)

	w, body := serve(t, h, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, StatusShuttingDown, body["status"])
}
