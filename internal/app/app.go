// AngelaMos | 2026
// app.go

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/byzip-v2/byzip-backend-v2/internal/admin"
	"github.com/byzip-v2/byzip-backend-v2/internal/auth"
	"github.com/byzip-v2/byzip-backend-v2/internal/bugreport"
	"github.com/byzip-v2/byzip-backend-v2/internal/config"
	"github.com/byzip-v2/byzip-backend-v2/internal/core"
	"github.com/byzip-v2/byzip-backend-v2/internal/health"
	"github.com/byzip-v2/byzip-backend-v2/internal/housing"
	"github.com/byzip-v2/byzip-backend-v2/internal/httpclient"
	"github.com/byzip-v2/byzip-backend-v2/internal/ingest"
	"github.com/byzip-v2/byzip-backend-v2/internal/middleware"
	"github.com/byzip-v2/byzip-backend-v2/internal/server"
	"github.com/byzip-v2/byzip-backend-v2/internal/user"
	"github.com/byzip-v2/byzip-backend-v2/migrations"
)

const apiPrefix = "/api"

// App is the process-wide dependency graph.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	DB        *core.Database
	Redis     *core.Redis
	Telemetry *core.Telemetry
	Health    *health.Handler
	Server    *server.Server
	Pipeline  *ingest.Pipeline
}

var (
	mu       sync.Mutex
	instance *App
	build    = New
)

// Get returns the shared App, building it on first use. Concurrent callers
// wait for the first build; a failed build is retried by the next caller.
func Get(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance, nil
	}

	a, err := build(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	instance = a
	return instance, nil
}

//nolint:funlen // composition root
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	if cfg.Otel.Enabled {
		tel, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if err != nil {
			logger.Warn("failed to initialize telemetry", "error", err)
		} else {
			a.Telemetry = tel
			logger.Info("OpenTelemetry tracer initialized", "endpoint", cfg.Otel.Endpoint)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, errors.Join(err, a.Close(ctx))
	}
	a.DB = db
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx, migrations.FS, logger); err != nil {
			return nil, errors.Join(fmt.Errorf("run migrations: %w", err), a.Close(ctx))
		}
	}

	rdb, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, errors.Join(err, a.Close(ctx))
	}
	a.Redis = rdb
	logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return nil, errors.Join(err, a.Close(ctx))
	}
	logger.Info("JWT manager initialized", "algorithm", "HS256")

	userSvc := user.NewService(user.NewRepository(db.DB))
	authSvc := auth.NewService(auth.NewRepository(db.DB), jwtManager, userSvc)
	bugSvc := bugreport.NewService(bugreport.NewRepository(db.DB))
	housingRepo := housing.NewRepository(db.DB)
	housingSvc := housing.NewService(housingRepo)

	a.Pipeline = newPipeline(cfg, logger, housingRepo, rdb)
	a.Health = health.NewHandler(cfg.App.Name, db, rdb)

	a.Server = server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: a.Health,
		Logger:        logger,
		Middleware:    globalMiddleware(cfg, logger, rdb),
	})

	authenticator := middleware.Authenticator(jwtManager, userSvc)
	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: rdb.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  rdb.Ping,
		Housing:    housingSvc,
		Logger:     logger,
	})

	router := a.Server.Router()
	a.Health.RegisterRoutes(router)

	router.Route(apiPrefix, func(r chi.Router) {
		auth.NewHandler(authSvc).RegisterRoutes(r, authenticator)
		user.NewHandler(userSvc).RegisterRoutes(r, authenticator)
		bugreport.NewHandler(bugSvc).RegisterRoutes(r, authenticator)
		housing.NewHandler(housingSvc).RegisterRoutes(r, authenticator)
		ingest.NewHandler(a.Pipeline).RegisterRoutes(r, middleware.APIKey(cfg.Scheduler.APIKey))
		adminHandler.RegisterRoutes(r, authenticator, middleware.RequireAdmin)
	})

	return a, nil
}

func globalMiddleware(
	cfg *config.Config,
	logger *slog.Logger,
	rdb *core.Redis,
) []func(http.Handler) http.Handler {
	limiter := middleware.NewRateLimiter(rdb.Client, middleware.RateLimitConfig{
		Limit: middleware.PerWindow(
			cfg.RateLimit.Requests,
			cfg.RateLimit.Burst,
			cfg.RateLimit.Window,
		),
		FailOpen:   true,
		BypassFunc: isProbe,
	})

	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.Tracing,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.Metrics,
		limiter.Handler,
		middleware.SecurityHeaders(cfg.IsProduction()),
		middleware.CORS(cfg.CORS),
	}
}

func isProbe(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/livez", "/readyz", "/metrics":
		return true
	}
	return false
}

func newPipeline(
	cfg *config.Config,
	logger *slog.Logger,
	repo housing.Repository,
	rdb *core.Redis,
) *ingest.Pipeline {
	publicData := httpclient.NewCircuitBreakerClient(
		httpclient.New(clientConfig(cfg.PublicData.Timeout)),
		httpclient.DefaultCircuitBreakerConfig("public-data"),
		logger,
	)
	geocodeHTTP := httpclient.NewCircuitBreakerClient(
		httpclient.New(clientConfig(cfg.Geocoding.Timeout)),
		httpclient.DefaultCircuitBreakerConfig("naver-geocode"),
		logger,
	)

	return ingest.NewPipeline(ingest.Deps{
		Repo:    repo,
		Fetcher: ingest.NewPublicDataClient(publicData, cfg.PublicData, logger),
		Geocoder: ingest.NewCachedGeocoder(
			ingest.NewNaverGeocoder(geocodeHTTP, cfg.Geocoding),
			rdb.Client,
			cfg.Geocoding.CacheTTL,
			logger,
		),
		Notifier: ingest.NewSlackNotifier(
			httpclient.New(clientConfig(cfg.Slack.Timeout)),
			cfg.Slack.WebhookURL,
			logger,
		),
		Redis:   rdb,
		LockTTL: cfg.Scheduler.LockTTL,
		Logger:  logger,
	})
}

func clientConfig(timeout time.Duration) httpclient.Config {
	c := httpclient.DefaultConfig()
	if timeout > 0 {
		c.Timeout = timeout
	}
	return c
}

// Close releases everything New opened, in reverse order. It is safe on a
// partially built App.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if a.Telemetry != nil {
		if err := a.Telemetry.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(errs...)
}
