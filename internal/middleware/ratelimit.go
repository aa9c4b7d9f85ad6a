// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
)

type RateLimitConfig struct {
	Limit      redis_rate.Limit
	KeyFunc    func(*http.Request) string
	FailOpen   bool
	BypassFunc func(*http.Request) bool
}

// RateLimiter enforces a redis-backed GCRA limit and falls back to an
// in-process token bucket per key when redis is unavailable.
type RateLimiter struct {
	limiter  *redis_rate.Limiter
	fallback *localLimiter
	config   RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}

	return &RateLimiter{
		limiter:  redis_rate.NewLimiter(rdb),
		fallback: newLocalLimiter(),
		config:   cfg,
	}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.config.BypassFunc != nil && rl.config.BypassFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		key := rl.config.KeyFunc(r)
		res, err := rl.allow(r.Context(), key)
		if err != nil {
			if rl.config.FailOpen {
				slog.Warn("rate limiter error, failing open",
					"error", err,
					"key", key,
				)
				next.ServeHTTP(w, r)
				return
			}
			core.JSONError(w, core.NewAppError(
				err,
				"rate limiter unavailable",
				http.StatusServiceUnavailable,
				"SERVICE_UNAVAILABLE",
			))
			return
		}

		setRateLimitHeaders(w, res, rl.config.Limit)

		if res.Allowed == 0 {
			writeRateLimitExceeded(w, res)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(
	ctx context.Context,
	key string,
) (*redis_rate.Result, error) {
	res, err := rl.limiter.Allow(ctx, key, rl.config.Limit)
	if err != nil {
		return rl.fallback.allow(key, rl.config.Limit)
	}
	return res, nil
}

func KeyByIP(r *http.Request) string {
	return "ratelimit:ip:" + ClientIP(r)
}

// ClientIP prefers the proxy-appended (last) X-Forwarded-For entry.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[len(ips)-1])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return ip
}

func setRateLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(
		time.Now().Add(res.ResetAfter).Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := int(res.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSONError(w, core.NewAppError(
		nil,
		fmt.Sprintf("rate limit exceeded, retry after %d seconds", retryAfter),
		http.StatusTooManyRequests,
		"RATE_LIMITED",
	))
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

type localLimiter struct {
	limiters sync.Map
}

const (
	cleanupInterval = 5 * time.Minute
	entryTTL        = 10 * time.Minute
)

func newLocalLimiter() *localLimiter {
	l := &localLimiter{}
	go l.cleanup()
	return l
}

func (l *localLimiter) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-entryTTL)
		l.limiters.Range(func(key, value any) bool {
			entry, ok := value.(*limiterEntry)
			if !ok {
				return true
			}
			entry.mu.Lock()
			stale := entry.lastAccess.Before(cutoff)
			entry.mu.Unlock()
			if stale {
				l.limiters.Delete(key)
			}
			return true
		})
	}
}

func (l *localLimiter) allow(
	key string,
	limit redis_rate.Limit,
) (*redis_rate.Result, error) {
	ratePerSec := float64(limit.Rate) / limit.Period.Seconds()

	entryI, _ := l.limiters.LoadOrStore(key, &limiterEntry{
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), limit.Burst),
	})
	entry, ok := entryI.(*limiterEntry)
	if !ok {
		return nil, fmt.Errorf("invalid limiter entry type")
	}

	entry.mu.Lock()
	entry.lastAccess = time.Now()
	entry.mu.Unlock()

	allowed := entry.limiter.Allow()
	remaining := max(int(entry.limiter.Tokens()), 0)
	interval := time.Duration(float64(time.Second) / ratePerSec)

	res := &redis_rate.Result{
		Limit:      limit,
		Remaining:  remaining,
		RetryAfter: -1,
		ResetAfter: interval,
	}
	if allowed {
		res.Allowed = 1
	} else {
		res.RetryAfter = interval
	}

	return res, nil
}

func PerWindow(requests, burst int, window time.Duration) redis_rate.Limit {
	if window <= 0 {
		window = time.Minute
	}
	return redis_rate.Limit{
		Rate:   requests,
		Burst:  burst,
		Period: window,
	}
}
