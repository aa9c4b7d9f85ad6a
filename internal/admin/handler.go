// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
	"github.com/byzip-v2/byzip-backend-v2/internal/housing"
)

type CoverageReporter interface {
	Coverage(ctx context.Context) (*housing.Coverage, error)
}

type Handler struct {
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
	redisPing  func(ctx context.Context) error
	dbPing     func(ctx context.Context) error
	housing    CoverageReporter
	logger     *slog.Logger
}

type HandlerConfig struct {
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	RedisPing  func(ctx context.Context) error
	DBPing     func(ctx context.Context) error
	Housing    CoverageReporter
	Logger     *slog.Logger
}

func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Handler{
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
		redisPing:  cfg.RedisPing,
		dbPing:     cfg.DBPing,
		housing:    cfg.Housing,
		logger:     cfg.Logger,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/stats", h.GetSystemStats)
		r.Get("/stats/db", h.GetDatabaseStats)
		r.Get("/stats/redis", h.GetRedisStats)
		r.Get("/stats/runtime", h.GetRuntimeStats)
		r.Get("/stats/housing", h.GetHousingStats)
	})
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response := SystemStatsResponse{
		Database: DatabaseStatus{
			Healthy: pingOK(ctx, h.dbPing),
			Stats:   h.getDBStats(),
		},
		Redis: RedisStatus{
			Healthy: pingOK(ctx, h.redisPing),
			Stats:   h.getRedisStats(),
		},
		Runtime: readRuntimeStats(),
		Housing: h.getCoverage(ctx),
	}

	core.OK(w, "system stats", response)
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, "database stats", h.getDBStats())
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, "redis stats", h.getRedisStats())
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, "runtime stats", readRuntimeStats())
}

func (h *Handler) GetHousingStats(w http.ResponseWriter, r *http.Request) {
	if h.housing == nil {
		core.NotFound(w, "housing stats")
		return
	}

	coverage, err := h.housing.Coverage(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "housing coverage", "error", err)
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, "housing coordinate coverage", coverage)
}

// pingOK treats an unconfigured ping as healthy.
func pingOK(ctx context.Context, ping func(ctx context.Context) error) bool {
	if ping == nil {
		return true
	}
	return ping(ctx) == nil
}

func readRuntimeStats() RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     memStats.Alloc,
		MemSys:       memStats.Sys,
		NumGC:        memStats.NumGC,
	}
}

// getCoverage is best-effort; the system view still renders without it.
func (h *Handler) getCoverage(ctx context.Context) *housing.Coverage {
	if h.housing == nil {
		return nil
	}

	coverage, err := h.housing.Coverage(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "housing coverage unavailable", "error", err)
		return nil
	}
	return coverage
}

func (h *Handler) getDBStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	stats := h.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxIdleTimeClosed:  stats.MaxIdleTimeClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}
}

func (h *Handler) getRedisStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	stats := h.redisStats()
	if stats == nil {
		return nil
	}
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
		StaleConns: stats.StaleConns,
	}
}

type SystemStatsResponse struct {
	Database DatabaseStatus    `json:"database"`
	Redis    RedisStatus       `json:"redis"`
	Runtime  RuntimeStats      `json:"runtime"`
	Housing  *housing.Coverage `json:"housing,omitempty"`
}

type DatabaseStatus struct {
	Healthy bool         `json:"healthy"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"maxOpenConnections"`
	OpenConnections    int    `json:"openConnections"`
	InUse              int    `json:"inUse"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"waitCount"`
	WaitDuration       string `json:"waitDuration"`
	MaxIdleClosed      int64  `json:"maxIdleClosed"`
	MaxIdleTimeClosed  int64  `json:"maxIdleTimeClosed"`
	MaxLifetimeClosed  int64  `json:"maxLifetimeClosed"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"totalConns"`
	IdleConns  uint32 `json:"idleConns"`
	StaleConns uint32 `json:"staleConns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
	NumCPU       int    `json:"numCpu"`
	MemAlloc     uint64 `json:"memAllocBytes"`
	MemSys       uint64 `json:"memSysBytes"`
	NumGC        uint32 `json:"numGc"`
}
